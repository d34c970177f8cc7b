package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const systemPrompt = `You are a financial news sentiment classifier.
Given a list of headlines about one company, respond with a single JSON
object and nothing else:

{"probability": <confidence in [0,1]>, "label": "positive"|"negative"|"neutral"}

The label is the overall sentiment of the batch; the probability is your
confidence in that label.`

// LLMConfig selects and configures the chat-model backend.
type LLMConfig struct {
	Provider string // "openai" or "deepseek"
	APIKey   string
	Model    string // provider default when empty
	BaseURL  string // optional override
}

func (c LLMConfig) model() string {
	if c.Model != "" {
		return c.Model
	}
	switch c.Provider {
	case "deepseek":
		return "deepseek-chat"
	default:
		return "gpt-4o-mini"
	}
}

// LLMEstimator asks a chat model for a sentiment verdict over the batch.
type LLMEstimator struct {
	chatModel model.BaseChatModel
}

// NewLLMEstimator builds the chat model for the configured provider.
func NewLLMEstimator(ctx context.Context, cfg LLMConfig) (*LLMEstimator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key not configured", cfg.Provider)
	}

	var (
		cm  model.BaseChatModel
		err error
	)
	switch cfg.Provider {
	case "deepseek":
		cm, err = deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    cfg.APIKey,
			Model:     cfg.model(),
			BaseURL:   cfg.BaseURL,
			MaxTokens: 256,
		})
	case "openai":
		maxTokens := 256
		cm, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:    cfg.APIKey,
			Model:     cfg.model(),
			BaseURL:   cfg.BaseURL,
			MaxTokens: &maxTokens,
		})
	default:
		return nil, fmt.Errorf("unknown sentiment provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s chat model: %w", cfg.Provider, err)
	}

	return &LLMEstimator{chatModel: cm}, nil
}

// Estimate implements Estimator.
func (e *LLMEstimator) Estimate(ctx context.Context, headlines []string) (Reading, error) {
	if len(headlines) == 0 {
		return NeutralReading(), nil
	}

	var sb strings.Builder
	for _, h := range headlines {
		sb.WriteString("- ")
		sb.WriteString(h)
		sb.WriteString("\n")
	}

	msg, err := e.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(sb.String()),
	})
	if err != nil {
		return Reading{}, fmt.Errorf("sentiment model call: %w", err)
	}

	return parseVerdict(msg.Content)
}

// parseVerdict extracts the JSON verdict from the model output, tolerating
// surrounding prose or a markdown fence.
func parseVerdict(content string) (Reading, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return Reading{}, fmt.Errorf("no JSON verdict in model output: %q", content)
	}

	var reading Reading
	if err := json.Unmarshal([]byte(content[start:end+1]), &reading); err != nil {
		return Reading{}, fmt.Errorf("parse sentiment verdict: %w", err)
	}

	switch reading.Label {
	case Positive, Negative, Neutral:
	default:
		return Reading{}, fmt.Errorf("unexpected sentiment label: %q", reading.Label)
	}
	if reading.Probability < 0 || reading.Probability > 1 {
		return Reading{}, fmt.Errorf("probability out of range: %v", reading.Probability)
	}
	return reading, nil
}
