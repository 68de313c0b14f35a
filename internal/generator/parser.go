package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fika-quiz/backend/internal/models"
	"github.com/fika-quiz/backend/internal/questions"
)

type DraftBatch struct {
	Questions []DraftQuestion `json:"questions"`
}

type DraftQuestion struct {
	Question      string       `json:"question"`
	Options       DraftOptions `json:"options"`
	CorrectOption string       `json:"correct_option"`
}

type DraftOptions struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
	D string `json:"D"`
}

// ParseResponse decodes a model response and converts it into catalog
// questions for chapter. The answer is stored as the text of the correct
// option, which is how the catalog identifies it.
func ParseResponse(responseBody string, chapter int) ([]models.Question, error) {
	cleaned := stripCodeFences(responseBody)

	var batch DraftBatch
	if err := json.Unmarshal([]byte(cleaned), &batch); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	if len(batch.Questions) == 0 {
		return nil, &questions.ValidationError{Errors: []string{"no questions in batch"}}
	}

	var errs []string
	qs := make([]models.Question, 0, len(batch.Questions))
	for i, d := range batch.Questions {
		q := models.Question{
			Chapter:  chapter,
			Question: d.Question,
			A:        d.Options.A,
			B:        d.Options.B,
			C:        d.Options.C,
			D:        d.Options.D,
		}
		answer, ok := optionByLabel(q, d.CorrectOption)
		if !ok {
			errs = append(errs, fmt.Sprintf("question %d: invalid correct_option %q", i+1, d.CorrectOption))
		}
		q.Answer = answer
		qs = append(qs, q)
	}
	if len(errs) > 0 {
		return nil, &questions.ValidationError{Errors: errs}
	}

	if err := questions.ValidateQuestions(qs); err != nil {
		return nil, err
	}
	return qs, nil
}

func optionByLabel(q models.Question, label string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "A":
		return q.A, true
	case "B":
		return q.B, true
	case "C":
		return q.C, true
	case "D":
		return q.D, true
	}
	return "", false
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}
