package matcher

import (
	"context"
	"fmt"
	"strings"

	"dupefinder/internal/similarity"
)

const (
	StrategyPairwise = "pairwise"
	StrategyIndexed  = "indexed"
)

// Entry is one scannable fingerprint.
type Entry struct {
	Path        string
	Fingerprint string
}

// Match is an unordered pair whose score met the threshold. A precedes B
// in the scan order.
type Match struct {
	A     string  `json:"a"`
	B     string  `json:"b"`
	Score float64 `json:"score"`
}

// Percent returns the score as a percentage rounded to two decimals.
func (m Match) Percent() float64 {
	return RoundPercent(m.Score)
}

// Stats summarizes one scan.
type Stats struct {
	Entries     int
	Pairs       int
	Comparisons int
	Matches     int
}

// EmitFunc receives each match as soon as it is found. Returning an error
// stops the scan.
type EmitFunc func(Match) error

// Scanner finds every matching pair among entries.
type Scanner interface {
	Scan(ctx context.Context, entries []Entry, emit EmitFunc) (Stats, error)
}

// New returns the scanner for strategy.
func New(strategy string, engine similarity.Engine) (Scanner, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", StrategyPairwise:
		return NewPairwise(engine), nil
	case StrategyIndexed:
		return NewIndexed(engine), nil
	default:
		return nil, fmt.Errorf("unsupported match strategy %q", strategy)
	}
}

// PairCount returns C(n, 2).
func PairCount(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

func tokenize(entries []Entry) []similarity.TokenSet {
	sets := make([]similarity.TokenSet, len(entries))
	for i, entry := range entries {
		sets[i] = similarity.Tokenize(entry.Fingerprint)
	}
	return sets
}
