package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sapiens-run/sapiens/internal/chathistory"
	"github.com/sapiens-run/sapiens/internal/message"
	"github.com/sapiens-run/sapiens/internal/observability"
	"github.com/sapiens-run/sapiens/internal/retry"
)

var openaiContextSizes = map[string]int{
	"gpt-4.1":   1047576,
	"gpt-4o":    128000,
	"gpt-4":     8192,
	"gpt-3.5":   16385,
	"o1":        200000,
	"o3":        200000,
}

const openaiDefaultContext = 128000

// OpenAIConfig configures an OpenAI adapter.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	RetryConfig retry.Config
	// Metrics, when set, receives request latency, token, and error
	// observations for every Query call. Optional.
	Metrics *observability.Metrics
}

// OpenAI adapts Model onto the Chat Completions API.
type OpenAI struct {
	client   *openai.Client
	model    string
	retryCfg retry.Config
	metrics  *observability.Metrics
}

func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("model: openai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.RetryConfig.MaxAttempts == 0 {
		cfg.RetryConfig = retry.Exponential(3, 100*time.Millisecond, 10*time.Second)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAI{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		retryCfg: cfg.RetryConfig,
		metrics:  cfg.Metrics,
	}, nil
}

func (o *OpenAI) ContextSize() int {
	for prefix, size := range openaiContextSizes {
		if strings.HasPrefix(o.model, prefix) {
			return size
		}
	}
	return openaiDefaultContext
}

func (o *OpenAI) Query(ctx context.Context, in chathistory.Input, maxTokens int) (Response, error) {
	req := o.buildRequest(in, maxTokens)
	start := time.Now()

	resp, result := retry.DoWithValue(ctx, o.retryCfg, func() (openai.ChatCompletionResponse, error) {
		r, err := o.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return r, classifyPermanent(err)
		}
		return r, nil
	})
	if result.Err != nil {
		if o.metrics != nil {
			o.metrics.RecordModelRequest("openai", o.model, "error", time.Since(start).Seconds(), 0, 0)
			o.metrics.RecordError("model.openai", errorKind(result.Err))
		}
		return Response{}, fmt.Errorf("model: openai: %w", result.Err)
	}
	if len(resp.Choices) == 0 {
		if o.metrics != nil {
			o.metrics.RecordError("model.openai", "empty_response")
		}
		return Response{}, fmt.Errorf("model: openai: empty response")
	}

	if o.metrics != nil {
		o.metrics.RecordModelRequest("openai", o.model, "success", time.Since(start).Seconds(), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
		o.metrics.RecordContextWindow("openai", o.model, resp.Usage.TotalTokens)
	}

	return Response{
		Text: resp.Choices[0].Message.Content,
		Usage: &message.Usage{
			Prompt:     resp.Usage.PromptTokens,
			Completion: resp.Usage.CompletionTokens,
			Total:      resp.Usage.TotalTokens,
		},
	}, nil
}

// NumTokens estimates via whitespace split; tiktoken-accurate counting
// would require a separate BPE dependency the other adapters don't carry,
// and chathistory.Purge only needs a budget approximation.
func (o *OpenAI) NumTokens(ctx context.Context, in chathistory.Input) (int, error) {
	return estimateTokens(in), nil
}

func (o *OpenAI) buildRequest(in chathistory.Input, maxTokens int) openai.ChatCompletionRequest {
	var messages []openai.ChatCompletionMessage
	for _, e := range in.Context {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: e.Text})
	}
	for _, ex := range in.Examples {
		messages = append(messages,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: ex.User.Text},
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: ex.Assistant.Text},
		)
	}
	for _, e := range in.Chitchat {
		role := openai.ChatMessageRoleUser
		if e.Role == chathistory.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: e.Text})
	}

	req := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	}
	if maxTokens > 0 {
		req.MaxTokens = maxTokens
	}
	return req
}

var _ Model = (*OpenAI)(nil)
