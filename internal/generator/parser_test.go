package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fika-quiz/backend/internal/logger"
	"github.com/fika-quiz/backend/internal/questions"
)

func validBatchJSON(count int) string {
	labels := []string{"A", "B", "C", "D"}
	batch := DraftBatch{Questions: make([]DraftQuestion, count)}
	for i := 0; i < count; i++ {
		batch.Questions[i] = DraftQuestion{
			Question: fmt.Sprintf("Question number %d about channels?", i+1),
			Options: DraftOptions{
				A: fmt.Sprintf("first %d", i),
				B: fmt.Sprintf("second %d", i),
				C: fmt.Sprintf("third %d", i),
				D: fmt.Sprintf("fourth %d", i),
			},
			CorrectOption: labels[i%4],
		}
	}
	data, _ := json.Marshal(batch)
	return string(data)
}

func TestParseResponse_ValidJSON(t *testing.T) {
	qs, err := ParseResponse(validBatchJSON(6), 3)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(qs) != 6 {
		t.Fatalf("expected 6 questions, got %d", len(qs))
	}

	for i, q := range qs {
		if q.Chapter != 3 {
			t.Errorf("question %d: chapter = %d, want 3", i+1, q.Chapter)
		}
		if want := string(rune('A' + i%4)); q.CorrectLabel() != want {
			t.Errorf("question %d: correct label = %q, want %q", i+1, q.CorrectLabel(), want)
		}
	}
	if qs[1].Answer != "second 1" {
		t.Errorf("answer stored as %q, want the option text", qs[1].Answer)
	}
}

func TestParseResponse_CodeFences(t *testing.T) {
	for _, wrapped := range []string{
		"```json\n" + validBatchJSON(2) + "\n```",
		"```\n" + validBatchJSON(2) + "\n```",
		"  " + validBatchJSON(2) + "  ",
	} {
		if _, err := ParseResponse(wrapped, 1); err != nil {
			t.Errorf("ParseResponse(%q...): %v", wrapped[:10], err)
		}
	}
}

func TestParseResponse_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", "sorry, I cannot help with that"},
		{"empty batch", `{"questions":[]}`},
		{"bad label", `{"questions":[{"question":"q?","options":{"A":"a","B":"b","C":"c","D":"d"},"correct_option":"E"}]}`},
		{"missing option", `{"questions":[{"question":"q?","options":{"A":"a","B":"b","C":"c"},"correct_option":"A"}]}`},
		{"duplicate options", `{"questions":[{"question":"q?","options":{"A":"same","B":"same","C":"c","D":"d"},"correct_option":"C"}]}`},
	}
	for _, tt := range tests {
		if _, err := ParseResponse(tt.input, 1); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}

	_, err := ParseResponse(`{"questions":[{"question":"q?","options":{"A":"a","B":"b","C":"c","D":"d"},"correct_option":"Z"}]}`, 1)
	var verr *questions.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected a ValidationError, got %T", err)
	}
}

func TestGenerator_MockDraft(t *testing.T) {
	g := NewGenerator(Options{Mock: true}, logger.Nop())
	if g.ModelName() != "mock" {
		t.Errorf("model = %q", g.ModelName())
	}

	qs, _, err := g.DraftChapter(context.Background(), 5, "Go basics", 4)
	if err != nil {
		t.Fatalf("DraftChapter: %v", err)
	}
	if len(qs) != 4 {
		t.Fatalf("got %d questions, want 4", len(qs))
	}
	for _, q := range qs {
		if q.Chapter != 5 || !strings.HasPrefix(q.Question, "[Mock]") {
			t.Errorf("unexpected draft %+v", q)
		}
	}
}

type failingLLM struct{}

func (failingLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (*LLMResponse, error) {
	return &LLMResponse{Content: "not json"}, nil
}

func TestGenerator_DraftParseFailure(t *testing.T) {
	g := &Generator{llm: failingLLM{}, model: "test", log: logger.Nop()}
	if _, _, err := g.DraftChapter(context.Background(), 1, "x", 1); err == nil {
		t.Error("expected parse error")
	}
}
