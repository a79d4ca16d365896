package matcher

import (
	"context"

	"dupefinder/internal/similarity"
)

// PairwiseScanner compares every unordered pair.
type PairwiseScanner struct {
	engine similarity.Engine
}

// NewPairwise returns an exhaustive scanner.
func NewPairwise(engine similarity.Engine) *PairwiseScanner {
	return &PairwiseScanner{engine: engine}
}

func (s *PairwiseScanner) Scan(ctx context.Context, entries []Entry, emit EmitFunc) (Stats, error) {
	stats := Stats{Entries: len(entries), Pairs: PairCount(len(entries))}
	sets := tokenize(entries)

	for i := range entries {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		for j := i + 1; j < len(entries); j++ {
			score := similarity.Overlap(sets[i], sets[j])
			stats.Comparisons++
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
