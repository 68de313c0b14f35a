package questions

import (
	"fmt"
	"strings"

	"github.com/fika-quiz/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// CatalogFile is the on-disk format read by cmd/seed. JSON files parse as
// well since JSON is valid YAML.
type CatalogFile struct {
	Questions []models.Question `yaml:"questions"`
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

func ParseCatalog(data []byte) (*CatalogFile, error) {
	var file CatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	if err := ValidateQuestions(file.Questions); err != nil {
		return nil, err
	}
	return &file, nil
}

// ValidateQuestions trims every question in place and reports all problems
// found in one ValidationError.
func ValidateQuestions(qs []models.Question) error {
	for i := range qs {
		normalizeQuestion(&qs[i])
	}
	return validateCatalog(qs)
}

func normalizeQuestion(q *models.Question) {
	q.Question = strings.TrimSpace(q.Question)
	q.A = strings.TrimSpace(q.A)
	q.B = strings.TrimSpace(q.B)
	q.C = strings.TrimSpace(q.C)
	q.D = strings.TrimSpace(q.D)
	q.Answer = strings.TrimSpace(q.Answer)
}

func validateCatalog(qs []models.Question) error {
	if len(qs) == 0 {
		return &ValidationError{Errors: []string{"no questions in catalog"}}
	}

	var errs []string
	for i, q := range qs {
		qNum := i + 1

		if q.Chapter < 1 {
			errs = append(errs, fmt.Sprintf("question %d: chapter must be 1 or greater, got %d", qNum, q.Chapter))
		}
		if q.Question == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty question text", qNum))
		}

		labels := []string{"A", "B", "C", "D"}
		seen := make(map[string]string, 4)
		for j, opt := range q.Options() {
			if opt == "" {
				errs = append(errs, fmt.Sprintf("question %d: option %s is empty", qNum, labels[j]))
				continue
			}
			if prev, dup := seen[opt]; dup {
				errs = append(errs, fmt.Sprintf("question %d: options %s and %s share the value %q", qNum, prev, labels[j], opt))
			}
			seen[opt] = labels[j]
		}

		// The correct option is identified by value, so the answer has to
		// equal exactly one option.
		if q.CorrectLabel() == "" {
			errs = append(errs, fmt.Sprintf("question %d: answer %q matches no option", qNum, q.Answer))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
