package core

import (
	"sort"

	"github.com/hbollon/go-edlib"
)

const suggestionThreshold = 0.7

// SuggestNames returns up to limit known names most similar to name by
// normalized Levenshtein similarity.
func SuggestNames(name string, known []string, limit int) []string {
	type scored struct {
		name  string
		score float32
	}
	var matches []scored
	for _, candidate := range known {
		if candidate == name {
			continue
		}
		score, err := edlib.StringsSimilarity(name, candidate, edlib.Levenshtein)
		if err != nil || score < suggestionThreshold {
			continue
		}
		matches = append(matches, scored{name: candidate, score: score})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].name < matches[j].name
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.name)
	}
	return out
}
