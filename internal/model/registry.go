package model

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sapiens-run/sapiens/internal/observability"
)

// ProviderConfig carries the credentials each provider adapter needs,
// normally sourced from environment variables by the caller.
type ProviderConfig struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string

	BedrockRegion          string
	BedrockAccessKeyID     string
	BedrockSecretAccessKey string
	BedrockSessionToken    string
}

// ProviderConfigFromEnv reads the credentials New looks for from the
// environment: ANTHROPIC_API_KEY, OPENAI_API_KEY, GOOGLE_API_KEY,
// AWS_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, AWS_SESSION_TOKEN.
func ProviderConfigFromEnv() ProviderConfig {
	return ProviderConfig{
		AnthropicAPIKey:        os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:           os.Getenv("OPENAI_API_KEY"),
		GoogleAPIKey:           os.Getenv("GOOGLE_API_KEY"),
		BedrockRegion:          os.Getenv("AWS_REGION"),
		BedrockAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		BedrockSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		BedrockSessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
	}
}

// New constructs the Model adapter named by modelRef, a "<provider>:<model>"
// string such as "anthropic:claude-sonnet-4-5" or
// "bedrock:anthropic.claude-3-5-sonnet-20241022-v2:0". The provider prefix
// is split on the first colon; everything after it is the provider's own
// model identifier (which may itself contain colons, as Bedrock's do).
// metrics may be nil, in which case the adapter records nothing.
func New(ctx context.Context, modelRef string, creds ProviderConfig, metrics *observability.Metrics) (Model, error) {
	provider, modelID, ok := strings.Cut(modelRef, ":")
	if !ok {
		return nil, fmt.Errorf("model: model_ref %q missing \"<provider>:<model>\" prefix", modelRef)
	}

	switch provider {
	case "anthropic":
		return NewAnthropic(AnthropicConfig{APIKey: creds.AnthropicAPIKey, Model: modelID, Metrics: metrics})
	case "openai":
		return NewOpenAI(OpenAIConfig{APIKey: creds.OpenAIAPIKey, Model: modelID, Metrics: metrics})
	case "bedrock":
		return NewBedrock(ctx, BedrockConfig{
			Region:          creds.BedrockRegion,
			AccessKeyID:     creds.BedrockAccessKeyID,
			SecretAccessKey: creds.BedrockSecretAccessKey,
			SessionToken:    creds.BedrockSessionToken,
			Model:           modelID,
			Metrics:         metrics,
		})
	case "google":
		return NewGoogle(ctx, GoogleConfig{APIKey: creds.GoogleAPIKey, Model: modelID, Metrics: metrics})
	default:
		return nil, fmt.Errorf("model: unknown provider %q in model_ref %q", provider, modelRef)
	}
}
