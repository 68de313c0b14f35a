package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/fika-quiz/backend/internal/logger"
	"github.com/fika-quiz/backend/internal/models"
)

const defaultModel = "claude-opus-4-5-20251101"

// LLMClient is the interface both drafting backends satisfy.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

type Options struct {
	APIKey string
	Model  string
	Mock   bool
}

// Generator drafts chapter questions for review before they are imported.
type Generator struct {
	llm   LLMClient
	model string
	log   *logger.Logger
}

func NewGenerator(opts Options, log *logger.Logger) *Generator {
	log = log.With("component", "generator")
	if opts.Mock {
		log.Info("generator using mock data")
		return &Generator{llm: NewMockClient(), model: "mock", log: log}
	}

	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	log.Info("generator using Anthropic API", "model", model)
	return &Generator{llm: NewAPIClient(opts.APIKey, model, log), model: model, log: log}
}

func (g *Generator) ModelName() string {
	return g.model
}

// DraftChapter asks the model for count questions about topic and returns
// them as catalog entries for chapter. Review notes are advisory and do not
// fail the draft.
func (g *Generator) DraftChapter(ctx context.Context, chapter int, topic string, count int) ([]models.Question, []string, error) {
	resp, err := g.llm.Generate(ctx, SystemPrompt(), BuildChapterPrompt(chapter, topic, count))
	if err != nil {
		return nil, nil, fmt.Errorf("draft chapter %d: %w", chapter, err)
	}

	qs, err := ParseResponse(resp.Content, chapter)
	if err != nil {
		return nil, nil, fmt.Errorf("parse draft for chapter %d: %w", chapter, err)
	}

	notes := ReviewDraft(qs)
	g.log.Info("chapter drafted",
		"chapter", chapter,
		"questions", len(qs),
		"notes", len(notes),
		"usage_in", resp.PromptTokens,
		"usage_out", resp.OutputTokens,
	)
	return qs, notes, nil
}

// ── APIClient ───────────────────────────────────────────

type APIClient struct {
	client *anthropic.Client
	model  string
	log    *logger.Logger
}

func NewAPIClient(apiKey, model string, log *logger.Logger) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &APIClient{client: &client, model: model, log: log}
}

func (c *APIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   4096,
		Temperature: param.NewOpt(0.7),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}
	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &LLMResponse{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func (c *APIClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			wait := time.Duration(1<<uint(attempt)) * time.Second
			c.log.Warn("retrying Anthropic API call", "attempt", attempt+1, "wait", wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		c.log.Warn("Anthropic API call failed", "attempt", attempt+1, "error", err)
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}

// ── MockClient ──────────────────────────────────────────

// MockClient returns a fixed, well-formed batch for local runs without an
// API key.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	return &LLMResponse{
		Content:      "```json\n" + buildMockJSON(4) + "\n```",
		PromptTokens: 400,
		OutputTokens: 900,
	}, nil
}

func buildMockJSON(count int) string {
	labels := []string{"A", "B", "C", "D"}
	topics := []string{"slices", "maps", "interfaces", "goroutines", "channels", "errors"}

	questions := "["
	for i := 0; i < count; i++ {
		topic := topics[i%len(topics)]
		if i > 0 {
			questions += ","
		}
		questions += fmt.Sprintf(
			`{"question":"[Mock] Which statement about %s is correct?","options":{"A":"[Mock] %s statement one","B":"[Mock] %s statement two","C":"[Mock] %s statement three","D":"[Mock] %s statement four"},"correct_option":"%s"}`,
			topic, topic, topic, topic, topic, labels[i%len(labels)],
		)
	}
	questions += "]"

	return fmt.Sprintf(`{"questions":%s}`, questions)
}
