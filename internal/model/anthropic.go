package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/sapiens-run/sapiens/internal/chathistory"
	"github.com/sapiens-run/sapiens/internal/message"
	"github.com/sapiens-run/sapiens/internal/observability"
	"github.com/sapiens-run/sapiens/internal/retry"
)

// anthropicContextSizes maps model families to their context window. Models
// not listed fall back to anthropicDefaultContext.
var anthropicContextSizes = map[string]int{
	"claude-sonnet-4-5": 200000,
	"claude-opus-4":     200000,
	"claude-3-5-sonnet": 200000,
	"claude-3-5-haiku":  200000,
	"claude-3-opus":     200000,
}

const anthropicDefaultContext = 200000

// AnthropicConfig configures an Anthropic adapter.
type AnthropicConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	RetryConfig retry.Config
	// Metrics, when set, receives request latency, token, and error
	// observations for every Query call. Optional.
	Metrics *observability.Metrics
}

// Anthropic adapts Model onto Anthropic's Messages API.
type Anthropic struct {
	client   anthropic.Client
	model    string
	retryCfg retry.Config
	metrics  *observability.Metrics
}

// NewAnthropic constructs an Anthropic adapter. cfg.Model selects the
// concrete model id (e.g. "claude-sonnet-4-5"); cfg.RetryConfig defaults to
// retry.Exponential(3, 100ms, 10s) when zero.
func NewAnthropic(cfg AnthropicConfig) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("model: anthropic: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-5"
	}
	if cfg.RetryConfig.MaxAttempts == 0 {
		cfg.RetryConfig = retry.Exponential(3, 100*time.Millisecond, 10*time.Second)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Anthropic{
		client:   anthropic.NewClient(opts...),
		model:    cfg.Model,
		retryCfg: cfg.RetryConfig,
		metrics:  cfg.Metrics,
	}, nil
}

func (a *Anthropic) ContextSize() int {
	for prefix, size := range anthropicContextSizes {
		if strings.HasPrefix(a.model, prefix) {
			return size
		}
	}
	return anthropicDefaultContext
}

func (a *Anthropic) Query(ctx context.Context, in chathistory.Input, maxTokens int) (Response, error) {
	params := a.buildParams(in, maxTokens)
	start := time.Now()

	msg, result := retry.DoWithValue(ctx, a.retryCfg, func() (*anthropic.Message, error) {
		m, err := a.client.Messages.New(ctx, params)
		if err != nil {
			return nil, classifyPermanent(err)
		}
		return m, nil
	})
	if result.Err != nil {
		if a.metrics != nil {
			a.metrics.RecordModelRequest("anthropic", a.model, "error", time.Since(start).Seconds(), 0, 0)
			a.metrics.RecordError("model.anthropic", errorKind(result.Err))
		}
		return Response{}, fmt.Errorf("model: anthropic: %w", result.Err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.AsText().Text)
		}
	}

	prompt, completion := int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens)
	if a.metrics != nil {
		a.metrics.RecordModelRequest("anthropic", a.model, "success", time.Since(start).Seconds(), prompt, completion)
		a.metrics.RecordContextWindow("anthropic", a.model, prompt+completion)
	}

	return Response{
		Text: text.String(),
		Usage: &message.Usage{
			Prompt:     prompt,
			Completion: completion,
			Total:      prompt + completion,
		},
	}, nil
}

// NumTokens estimates token count via a whitespace split; Anthropic's
// Messages API exposes no standalone tokenizer endpoint for non-streaming
// clients, so chathistory.Purge gets an approximation here rather than an
// exact count.
func (a *Anthropic) NumTokens(ctx context.Context, in chathistory.Input) (int, error) {
	return estimateTokens(in), nil
}

func (a *Anthropic) buildParams(in chathistory.Input, maxTokens int) anthropic.MessageNewParams {
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	var system []anthropic.TextBlockParam
	for _, e := range in.Context {
		system = append(system, anthropic.TextBlockParam{Text: e.Text})
	}

	var messages []anthropic.MessageParam
	for _, ex := range in.Examples {
		messages = append(messages,
			anthropic.NewUserMessage(anthropic.NewTextBlock(ex.User.Text)),
			anthropic.NewAssistantMessage(anthropic.NewTextBlock(ex.Assistant.Text)),
		)
	}
	for _, e := range in.Chitchat {
		if e.Role == chathistory.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(e.Text)))
		} else {
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(e.Text)))
		}
	}

	return anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(maxTokens),
		System:    system,
		Messages:  messages,
	}
}

var _ Model = (*Anthropic)(nil)
