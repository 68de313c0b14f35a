package generator

import (
	"fmt"
	"strings"

	"github.com/fika-quiz/backend/internal/models"
)

// ReviewDraft returns advisory notes for a reviewer: clustered correct
// answers and near-duplicate question texts.
func ReviewDraft(qs []models.Question) []string {
	var notes []string

	counts := make(map[string]int)
	for _, q := range qs {
		counts[q.CorrectLabel()]++
	}
	if len(qs) >= 6 {
		limit := len(qs)/2 + 1
		for _, label := range []string{"A", "B", "C", "D"} {
			if counts[label] >= limit {
				notes = append(notes, fmt.Sprintf("correct answer %s appears %d times in %d questions", label, counts[label], len(qs)))
			}
		}
	}

	tokenSets := make([]map[string]bool, len(qs))
	for i, q := range qs {
		tokenSets[i] = tokenize(q.Question)
	}
	for i := 0; i < len(qs); i++ {
		for j := i + 1; j < len(qs); j++ {
			if overlap := jaccardSimilarity(tokenSets[i], tokenSets[j]); overlap > 0.60 {
				notes = append(notes, fmt.Sprintf("questions %d and %d have %.0f%% keyword overlap", i+1, j+1, overlap*100))
			}
		}
	}
	return notes
}

func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.Trim(word, ".,;:?!\"'()")
		// skip articles and prepositions
		if len(word) > 3 {
			tokens[word] = true
		}
	}
	return tokens
}

func jaccardSimilarity(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
