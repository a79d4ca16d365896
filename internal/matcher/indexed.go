package matcher

import (
	"context"
	"slices"

	"dupefinder/internal/similarity"
)

// IndexedScanner only scores pairs that share at least one token. With a
// positive threshold a pair sharing nothing scores 0 and can never match,
// so the result equals an exhaustive scan.
type IndexedScanner struct {
	engine similarity.Engine
}

// NewIndexed returns a candidate-pruning scanner.
func NewIndexed(engine similarity.Engine) *IndexedScanner {
	return &IndexedScanner{engine: engine}
}

func (s *IndexedScanner) Scan(ctx context.Context, entries []Entry, emit EmitFunc) (Stats, error) {
	if s.engine.Threshold <= 0 {
		return NewPairwise(s.engine).Scan(ctx, entries, emit)
	}

	stats := Stats{Entries: len(entries), Pairs: PairCount(len(entries))}
	sets := tokenize(entries)

	// token -> ascending entry indices
	postings := make(map[string][]int)
	for i, set := range sets {
		for token := range set {
			postings[token] = append(postings[token], i)
		}
	}

	shared := make(map[int]int)
	candidates := make([]int, 0, 16)
	for i := range entries {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		clear(shared)
		candidates = candidates[:0]
		for token := range sets[i] {
			list := postings[token]
			start, _ := slices.BinarySearch(list, i+1)
			for _, j := range list[start:] {
				if shared[j] == 0 {
					candidates = append(candidates, j)
				}
				shared[j]++
			}
		}
		slices.Sort(candidates)

		for _, j := range candidates {
			stats.Comparisons++
			denom := max(len(sets[i]), len(sets[j]))
			score := float64(shared[j]) / float64(denom)
			if !s.engine.IsMatch(score) {
				continue
			}
			stats.Matches++
			if emit == nil {
				continue
			}
			if err := emit(Match{A: entries[i].Path, B: entries[j].Path, Score: score}); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}
