package descriptor

import (
	"cmp"
	"slices"
)

// Scoring computes the quality score of a descriptor. *Scorer implements it.
type Scoring interface {
	Score(d Descriptor) int
}

// Dedupe scores every descriptor and keeps the best one per identity key in a
// single pass. A later duplicate replaces the kept one only with a strictly
// higher score, so ties keep the first encountered. The result is ordered by
// the first appearance of each key.
func Dedupe(items []Descriptor, scorer Scoring) []Scored {
	index := make(map[string]int, len(items))
	out := make([]Scored, 0, len(items))

	for _, d := range items {
		candidate := Scored{
			Score:      scorer.Score(d),
			Key:        IdentityKey(d),
			Descriptor: d,
		}
		i, ok := index[candidate.Key]
		if !ok {
			index[candidate.Key] = len(out)
			out = append(out, candidate)
			continue
		}
		if candidate.Score > out[i].Score {
			out[i] = candidate
		}
	}
	return out
}

// Select orders by score, highest first, keeping input order among equal
// scores, and returns at most limit entries. A limit of zero or less means no
// cap. The input slice is not modified.
func Select(items []Scored, limit int) []Scored {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b Scored) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// Links returns the rewritten wire form of each entry.
func Links(items []Scored) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.Descriptor.Link
	}
	return out
}
