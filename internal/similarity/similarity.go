// Package similarity scores pairs of fingerprints by token-set overlap.
//
// The score ignores token order and offset: two tracks sharing content at
// different positions still score high, while tracks whose shared content is
// shifted enough to change the tokens themselves can be missed. Truncation
// is penalized only through the larger set size.
package similarity

import (
	"fmt"
	"strings"
)

// DefaultThreshold is the score at or above which a pair is a match.
const DefaultThreshold = 0.90

// TokenSet is the distinct tokens of one fingerprint.
type TokenSet map[string]struct{}

// Tokenize splits a comma-delimited fingerprint into its distinct tokens.
// Empty tokens are dropped, so "" and "," both yield an empty set.
func Tokenize(fp string) TokenSet {
	set := make(TokenSet)
	for token := range strings.SplitSeq(fp, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}

// Overlap returns |a ∩ b| / max(|a|, |b|), or 0 when both are empty.
func Overlap(a, b TokenSet) float64 {
	denom := max(len(a), len(b))
	if denom == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	shared := 0
	for token := range small {
		if _, ok := large[token]; ok {
			shared++
		}
	}
	return float64(shared) / float64(denom)
}

// Similarity scores two raw fingerprints. The result is symmetric and lies
// in [0, 1]; identical non-empty fingerprints score exactly 1.
func Similarity(fp1, fp2 string) float64 {
	return Overlap(Tokenize(fp1), Tokenize(fp2))
}

// Engine classifies scores against a fixed threshold.
type Engine struct {
	Threshold float64
}

// NewEngine returns an Engine for threshold, which must lie in (0, 1].
func NewEngine(threshold float64) (Engine, error) {
	if threshold <= 0 || threshold > 1 {
		return Engine{}, fmt.Errorf("similarity threshold %v outside (0, 1]", threshold)
	}
	return Engine{Threshold: threshold}, nil
}

// Score is Similarity.
func (e Engine) Score(fp1, fp2 string) float64 {
	return Similarity(fp1, fp2)
}

// IsMatch reports whether score meets the threshold.
func (e Engine) IsMatch(score float64) bool {
	return score >= e.Threshold
}
