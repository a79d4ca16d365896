// Package matcher enumerates fingerprint pairs and streams the ones that
// meet the similarity threshold.
//
// Two strategies share the Scanner interface:
//
//	pairwise  compares every unordered pair, C(n,2) comparisons
//	indexed   uses an inverted token index to skip pairs with no shared
//	          token; results are identical because such pairs score 0
//
// Both emit matches in the same order: ascending (i, j) over the entry
// order supplied by the caller, each unordered pair at most once and never
// a file paired with itself.
package matcher
