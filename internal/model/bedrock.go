package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/sapiens-run/sapiens/internal/chathistory"
	"github.com/sapiens-run/sapiens/internal/message"
	"github.com/sapiens-run/sapiens/internal/observability"
	"github.com/sapiens-run/sapiens/internal/retry"
)

var bedrockContextSizes = map[string]int{
	"anthropic.claude-3-5-sonnet": 200000,
	"anthropic.claude-3-sonnet":   200000,
	"anthropic.claude-3-haiku":    200000,
	"anthropic.claude-3-opus":     200000,
	"meta.llama3":                 8192,
}

const bedrockDefaultContext = 100000

// BedrockConfig configures a Bedrock adapter.
type BedrockConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Model           string
	RetryConfig     retry.Config
	// Metrics, when set, receives request latency, token, and error
	// observations for every Query call. Optional.
	Metrics *observability.Metrics
}

// Bedrock adapts Model onto the Bedrock Converse API.
type Bedrock struct {
	client   *bedrockruntime.Client
	model    string
	retryCfg retry.Config
	metrics  *observability.Metrics
}

func NewBedrock(ctx context.Context, cfg BedrockConfig) (*Bedrock, error) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Model == "" {
		cfg.Model = "anthropic.claude-3-5-sonnet-20241022-v2:0"
	}
	if cfg.RetryConfig.MaxAttempts == 0 {
		cfg.RetryConfig = retry.Exponential(3, 100*time.Millisecond, 10*time.Second)
	}

	var awsCfg aws.Config
	var err error
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.Region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken,
			)),
		)
	} else {
		awsCfg, err = config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	}
	if err != nil {
		return nil, fmt.Errorf("model: bedrock: failed to load AWS config: %w", err)
	}

	return &Bedrock{
		client:   bedrockruntime.NewFromConfig(awsCfg),
		model:    cfg.Model,
		retryCfg: cfg.RetryConfig,
		metrics:  cfg.Metrics,
	}, nil
}

func (b *Bedrock) ContextSize() int {
	for prefix, size := range bedrockContextSizes {
		if strings.HasPrefix(b.model, prefix) {
			return size
		}
	}
	return bedrockDefaultContext
}

func (b *Bedrock) Query(ctx context.Context, in chathistory.Input, maxTokens int) (Response, error) {
	input := b.buildInput(in, maxTokens)
	start := time.Now()

	out, result := retry.DoWithValue(ctx, b.retryCfg, func() (*bedrockruntime.ConverseOutput, error) {
		o, err := b.client.Converse(ctx, input)
		if err != nil {
			return o, classifyPermanent(err)
		}
		return o, nil
	})
	if result.Err != nil {
		if b.metrics != nil {
			b.metrics.RecordModelRequest("bedrock", b.model, "error", time.Since(start).Seconds(), 0, 0)
			b.metrics.RecordError("model.bedrock", errorKind(result.Err))
		}
		return Response{}, fmt.Errorf("model: bedrock: %w", result.Err)
	}

	msgOutput, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		if b.metrics != nil {
			b.metrics.RecordError("model.bedrock", "unexpected_output")
		}
		return Response{}, fmt.Errorf("model: bedrock: unexpected output type")
	}

	var text strings.Builder
	for _, block := range msgOutput.Value.Content {
		if t, ok := block.(*types.ContentBlockMemberText); ok {
			text.WriteString(t.Value)
		}
	}

	usage := &message.Usage{}
	if out.Usage != nil {
		usage.Prompt = int(aws.ToInt32(out.Usage.InputTokens))
		usage.Completion = int(aws.ToInt32(out.Usage.OutputTokens))
		usage.Total = int(aws.ToInt32(out.Usage.TotalTokens))
	}

	if b.metrics != nil {
		b.metrics.RecordModelRequest("bedrock", b.model, "success", time.Since(start).Seconds(), usage.Prompt, usage.Completion)
		b.metrics.RecordContextWindow("bedrock", b.model, usage.Total)
	}

	return Response{Text: text.String(), Usage: usage}, nil
}

// NumTokens estimates via whitespace split; Bedrock's Converse API reports
// usage only after a call completes, with no standalone counting endpoint.
func (b *Bedrock) NumTokens(ctx context.Context, in chathistory.Input) (int, error) {
	return estimateTokens(in), nil
}

func (b *Bedrock) buildInput(in chathistory.Input, maxTokens int) *bedrockruntime.ConverseInput {
	var system []types.SystemContentBlock
	for _, e := range in.Context {
		system = append(system, &types.SystemContentBlockMemberText{Value: e.Text})
	}

	var messages []types.Message
	for _, ex := range in.Examples {
		messages = append(messages,
			types.Message{Role: types.ConversationRoleUser, Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: ex.User.Text}}},
			types.Message{Role: types.ConversationRoleAssistant, Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: ex.Assistant.Text}}},
		)
	}
	for _, e := range in.Chitchat {
		role := types.ConversationRoleUser
		if e.Role == chathistory.RoleAssistant {
			role = types.ConversationRoleAssistant
		}
		messages = append(messages, types.Message{Role: role, Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: e.Text}}})
	}

	cfg := &types.InferenceConfiguration{}
	if maxTokens > 0 {
		mt := int32(maxTokens)
		cfg.MaxTokens = &mt
	}

	return &bedrockruntime.ConverseInput{
		ModelId:         aws.String(b.model),
		Messages:        messages,
		System:          system,
		InferenceConfig: cfg,
	}
}

var _ Model = (*Bedrock)(nil)
