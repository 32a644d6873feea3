package progress

import "github.com/mcdev12/reckoning/go/internal/models"

// Merge joins two progress snapshots into the least state that dominates both.
//
// Score and streak take the maximum, completed items take the union in first-appearance
// order of a then b. Merge is commutative, associative and idempotent up to Equal, and
// never decreases or drops anything present in either input. Identity and user name are
// carried from a when set, otherwise from b.
func Merge(a, b models.ProgressState) models.ProgressState {
	out := models.ProgressState{
		Identity:       a.Identity,
		UserName:       a.UserName,
		Score:          max(a.Score, b.Score),
		StreakLength:   max(a.StreakLength, b.StreakLength),
		CompletedItems: union(a.CompletedItems, b.CompletedItems),
	}
	if out.Identity == "" {
		out.Identity = b.Identity
	}
	if out.UserName == "" {
		out.UserName = b.UserName
	}
	return out
}

// Equal reports whether two states carry the same replicated values.
// Completed items compare as sets; identity and user name are ignored.
func Equal(a, b models.ProgressState) bool {
	if a.Score != b.Score || a.StreakLength != b.StreakLength {
		return false
	}
	as, bs := set(a.CompletedItems), set(b.CompletedItems)
	if len(as) != len(bs) {
		return false
	}
	for item := range as {
		if _, ok := bs[item]; !ok {
			return false
		}
	}
	return true
}

// Dominates reports whether a is at least b in every component
func Dominates(a, b models.ProgressState) bool {
	if a.Score < b.Score || a.StreakLength < b.StreakLength {
		return false
	}
	as := set(a.CompletedItems)
	for _, item := range b.CompletedItems {
		if _, ok := as[item]; !ok {
			return false
		}
	}
	return true
}

// Normalize clamps negative counters and dedupes completed items, keeping first appearances
func Normalize(s models.ProgressState) models.ProgressState {
	out := s
	out.Score = max(s.Score, 0)
	out.StreakLength = max(s.StreakLength, 0)
	out.CompletedItems = union(s.CompletedItems, nil)
	return out
}

func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, items := range [][]string{a, b} {
		for _, item := range items {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

func set(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, item := range items {
		m[item] = struct{}{}
	}
	return m
}
