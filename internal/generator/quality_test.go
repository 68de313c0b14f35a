package generator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fika-quiz/backend/internal/models"
)

func draft(text, answerLabel string) models.Question {
	q := models.Question{Chapter: 1, Question: text, A: "a", B: "b", C: "c", D: "d"}
	q.Answer, _ = optionByLabel(q, answerLabel)
	return q
}

func TestReviewDraft_Clean(t *testing.T) {
	var qs []models.Question
	topics := []string{"slices grow", "maps hash", "interfaces satisfy", "goroutines schedule", "channels block", "errors wrap"}
	for i, topic := range topics {
		qs = append(qs, draft(fmt.Sprintf("How does %s work in practice?", topic), string(rune('A'+i%4))))
	}
	if notes := ReviewDraft(qs); len(notes) != 0 {
		t.Errorf("expected no notes, got %v", notes)
	}
}

func TestReviewDraft_ClusteredAnswers(t *testing.T) {
	var qs []models.Question
	for i := 0; i < 6; i++ {
		qs = append(qs, draft(fmt.Sprintf("Distinct question %d about topic%d?", i, i), "B"))
	}
	notes := ReviewDraft(qs)
	if len(notes) == 0 || !strings.Contains(notes[0], "correct answer B") {
		t.Errorf("expected clustering note, got %v", notes)
	}
}

func TestReviewDraft_Overlap(t *testing.T) {
	qs := []models.Question{
		draft("What does the built-in append function return when capacity is exceeded?", "A"),
		draft("What does the built-in append function return when capacity is exceeded here?", "B"),
	}
	notes := ReviewDraft(qs)
	if len(notes) != 1 || !strings.Contains(notes[0], "questions 1 and 2") {
		t.Errorf("expected overlap note, got %v", notes)
	}
}

func TestJaccardSimilarity(t *testing.T) {
	a := tokenize("channels block until ready")
	b := tokenize("channels block forever")
	if got := jaccardSimilarity(a, b); got <= 0 || got >= 1 {
		t.Errorf("similarity = %v, want between 0 and 1", got)
	}
	if got := jaccardSimilarity(map[string]bool{}, map[string]bool{}); got != 0 {
		t.Errorf("empty similarity = %v", got)
	}
}
