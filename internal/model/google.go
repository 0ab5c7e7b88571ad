package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/sapiens-run/sapiens/internal/chathistory"
	"github.com/sapiens-run/sapiens/internal/message"
	"github.com/sapiens-run/sapiens/internal/observability"
	"github.com/sapiens-run/sapiens/internal/retry"
)

var googleContextSizes = map[string]int{
	"gemini-2.0-flash": 1000000,
	"gemini-1.5-pro":   2000000,
	"gemini-1.5-flash": 1000000,
}

const googleDefaultContext = 1000000

// GoogleConfig configures a Google Gemini adapter.
type GoogleConfig struct {
	APIKey      string
	Model       string
	RetryConfig retry.Config
	// Metrics, when set, receives request latency, token, and error
	// observations for every Query call. Optional.
	Metrics *observability.Metrics
}

// Google adapts Model onto the Gemini GenerateContent API.
type Google struct {
	client   *genai.Client
	model    string
	retryCfg retry.Config
	metrics  *observability.Metrics
}

func NewGoogle(ctx context.Context, cfg GoogleConfig) (*Google, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("model: google: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.RetryConfig.MaxAttempts == 0 {
		cfg.RetryConfig = retry.Exponential(3, 100*time.Millisecond, 10*time.Second)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("model: google: failed to create client: %w", err)
	}

	return &Google{client: client, model: cfg.Model, retryCfg: cfg.RetryConfig, metrics: cfg.Metrics}, nil
}

func (g *Google) ContextSize() int {
	for prefix, size := range googleContextSizes {
		if strings.HasPrefix(g.model, prefix) {
			return size
		}
	}
	return googleDefaultContext
}

func (g *Google) Query(ctx context.Context, in chathistory.Input, maxTokens int) (Response, error) {
	contents := g.buildContents(in)
	genCfg := g.buildConfig(in, maxTokens)
	start := time.Now()

	resp, result := retry.DoWithValue(ctx, g.retryCfg, func() (*genai.GenerateContentResponse, error) {
		r, err := g.client.Models.GenerateContent(ctx, g.model, contents, genCfg)
		if err != nil {
			return r, classifyPermanent(err)
		}
		return r, nil
	})
	if result.Err != nil {
		if g.metrics != nil {
			g.metrics.RecordModelRequest("google", g.model, "error", time.Since(start).Seconds(), 0, 0)
			g.metrics.RecordError("model.google", errorKind(result.Err))
		}
		return Response{}, fmt.Errorf("model: google: %w", result.Err)
	}

	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			text.WriteString(part.Text)
		}
	}

	usage := &message.Usage{}
	if resp.UsageMetadata != nil {
		usage.Prompt = int(resp.UsageMetadata.PromptTokenCount)
		usage.Completion = int(resp.UsageMetadata.CandidatesTokenCount)
		usage.Total = int(resp.UsageMetadata.TotalTokenCount)
	}

	if g.metrics != nil {
		g.metrics.RecordModelRequest("google", g.model, "success", time.Since(start).Seconds(), usage.Prompt, usage.Completion)
		g.metrics.RecordContextWindow("google", g.model, usage.Total)
	}

	return Response{Text: text.String(), Usage: usage}, nil
}

// NumTokens estimates via whitespace split, avoiding a second round-trip
// to the API's CountTokens endpoint on every chathistory.Purge iteration.
func (g *Google) NumTokens(ctx context.Context, in chathistory.Input) (int, error) {
	return estimateTokens(in), nil
}

func (g *Google) buildContents(in chathistory.Input) []*genai.Content {
	var contents []*genai.Content
	for _, ex := range in.Examples {
		contents = append(contents,
			&genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{{Text: ex.User.Text}}},
			&genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: ex.Assistant.Text}}},
		)
	}
	for _, e := range in.Chitchat {
		role := genai.RoleUser
		if e.Role == chathistory.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []*genai.Part{{Text: e.Text}}})
	}
	return contents
}

func (g *Google) buildConfig(in chathistory.Input, maxTokens int) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if len(in.Context) > 0 {
		var parts []*genai.Part
		for _, e := range in.Context {
			parts = append(parts, &genai.Part{Text: e.Text})
		}
		cfg.SystemInstruction = &genai.Content{Parts: parts}
	}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}
	return cfg
}

var _ Model = (*Google)(nil)
