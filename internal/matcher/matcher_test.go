package matcher_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"dupefinder/internal/matcher"
	"dupefinder/internal/similarity"
)

func engine(t *testing.T, threshold float64) similarity.Engine {
	t.Helper()
	e, err := similarity.NewEngine(threshold)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func collect(t *testing.T, scanner matcher.Scanner, entries []matcher.Entry) ([]matcher.Match, matcher.Stats) {
	t.Helper()
	var got []matcher.Match
	stats, err := scanner.Scan(context.Background(), entries, func(m matcher.Match) error {
		got = append(got, m)
		return nil
	})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	return got, stats
}

var threeTracks = []matcher.Entry{
	{Path: "A", Fingerprint: "x,y,z"},
	{Path: "B", Fingerprint: "x,y,w"},
	{Path: "C", Fingerprint: "p,q,r"},
}

func TestScannersThreeTracksAtDefaultThreshold(t *testing.T) {
	for _, strategy := range []string{matcher.StrategyPairwise, matcher.StrategyIndexed} {
		t.Run(strategy, func(t *testing.T) {
			scanner, err := matcher.New(strategy, engine(t, 0.90))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			got, stats := collect(t, scanner, threeTracks)
			if len(got) != 0 {
				t.Fatalf("expected no matches, got %v", got)
			}
			if stats.Pairs != 3 || stats.Entries != 3 {
				t.Fatalf("unexpected stats %+v", stats)
			}
		})
	}
}

func TestScannersThreeTracksAtLoweredThreshold(t *testing.T) {
	for _, strategy := range []string{matcher.StrategyPairwise, matcher.StrategyIndexed} {
		t.Run(strategy, func(t *testing.T) {
			scanner, err := matcher.New(strategy, engine(t, 0.60))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			got, stats := collect(t, scanner, threeTracks)
			if len(got) != 1 || got[0].A != "A" || got[0].B != "B" {
				t.Fatalf("expected only {A,B}, got %v", got)
			}
			if matcher.FormatPercent(got[0].Score) != "66.67" {
				t.Fatalf("unexpected percent %s", matcher.FormatPercent(got[0].Score))
			}
			if stats.Matches != 1 {
				t.Fatalf("unexpected match count %d", stats.Matches)
			}
		})
	}
}

func TestPairwiseComparesEveryPairOnce(t *testing.T) {
	entries := make([]matcher.Entry, 6)
	for i := range entries {
		entries[i] = matcher.Entry{Path: fmt.Sprintf("f%d", i), Fingerprint: "1,2,3"}
	}
	got, stats := collect(t, matcher.NewPairwise(engine(t, 1)), entries)
	if stats.Comparisons != 15 || stats.Pairs != 15 {
		t.Fatalf("expected C(6,2)=15 comparisons, got %+v", stats)
	}
	if len(got) != 15 {
		t.Fatalf("identical fingerprints should all match, got %d", len(got))
	}
	seen := map[string]bool{}
	for _, m := range got {
		if m.A == m.B {
			t.Fatalf("self pair emitted: %v", m)
		}
		key := m.A + "|" + m.B
		if m.B < m.A {
			key = m.B + "|" + m.A
		}
		if seen[key] {
			t.Fatalf("pair emitted twice: %v", m)
		}
		seen[key] = true
	}
}

func TestIndexedMatchesPairwise(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	entries := make([]matcher.Entry, 60)
	for i := range entries {
		n := 1 + rng.IntN(12)
		tokens := make([]string, n)
		for k := range tokens {
			tokens[k] = strconv.Itoa(rng.IntN(20))
		}
		if i%10 == 0 {
			tokens = nil
		}
		entries[i] = matcher.Entry{Path: fmt.Sprintf("track-%02d", i), Fingerprint: strings.Join(tokens, ",")}
	}

	for _, threshold := range []float64{0.3, 0.5, 0.75, 0.9, 1} {
		e := engine(t, threshold)
		want, wantStats := collect(t, matcher.NewPairwise(e), entries)
		got, gotStats := collect(t, matcher.NewIndexed(e), entries)
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("threshold %v: indexed scan differs\nwant %v\ngot  %v", threshold, want, got)
		}
		if gotStats.Comparisons > wantStats.Comparisons {
			t.Fatalf("indexed scan should not compare more pairs: %d > %d", gotStats.Comparisons, wantStats.Comparisons)
		}
	}
}

func TestScanStopsOnEmitError(t *testing.T) {
	entries := []matcher.Entry{
		{Path: "a", Fingerprint: "1"},
		{Path: "b", Fingerprint: "1"},
		{Path: "c", Fingerprint: "1"},
	}
	boom := errors.New("disk full")
	for _, scanner := range []matcher.Scanner{matcher.NewPairwise(engine(t, 0.9)), matcher.NewIndexed(engine(t, 0.9))} {
		calls := 0
		_, err := scanner.Scan(context.Background(), entries, func(matcher.Match) error {
			calls++
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected emit error, got %v", err)
		}
		if calls != 1 {
			t.Fatalf("expected scan to stop after first emit, got %d calls", calls)
		}
	}
}

func TestScanHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := matcher.NewPairwise(engine(t, 0.9)).Scan(ctx, threeTracks, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewRejectsUnknownStrategy(t *testing.T) {
	if _, err := matcher.New("lsh", engine(t, 0.9)); err == nil {
		t.Fatal("expected unknown strategy error")
	}
}

func TestFormatPercent(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{1, "100.0"},
		{0.955, "95.5"},
		{2.0 / 3.0, "66.67"},
		{0.9, "90.0"},
		{0.91234, "91.23"},
	}
	for _, tc := range cases {
		if got := matcher.FormatPercent(tc.score); got != tc.want {
			t.Fatalf("FormatPercent(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestPairCount(t *testing.T) {
	for n, want := range map[int]int{0: 0, 1: 0, 2: 1, 3: 3, 10: 45} {
		if got := matcher.PairCount(n); got != want {
			t.Fatalf("PairCount(%d) = %d, want %d", n, got, want)
		}
	}
}
