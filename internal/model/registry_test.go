package model

import (
	"context"
	"testing"
)

func TestNewRejectsMissingPrefix(t *testing.T) {
	_, err := New(context.Background(), "claude-sonnet-4-5", ProviderConfig{}, nil)
	if err == nil {
		t.Fatal("expected an error for a model_ref with no provider prefix")
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), "cohere:command-r", ProviderConfig{}, nil)
	if err == nil {
		t.Fatal("expected an error for an unknown provider")
	}
}

func TestNewRejectsMissingCredentials(t *testing.T) {
	cases := []string{"anthropic:claude-sonnet-4-5", "openai:gpt-4o", "google:gemini-2.0-flash"}
	for _, ref := range cases {
		t.Run(ref, func(t *testing.T) {
			if _, err := New(context.Background(), ref, ProviderConfig{}, nil); err == nil {
				t.Fatalf("expected an error constructing %q without an API key", ref)
			}
		})
	}
}

func TestNewBedrockModelRefPreservesColons(t *testing.T) {
	// Bedrock model ids legitimately contain colons (e.g.
	// "anthropic.claude-3-5-sonnet-20241022-v2:0"), so New must only split
	// on the first colon.
	b, err := NewBedrock(context.Background(), BedrockConfig{
		Region: "us-east-1",
		Model:  "anthropic.claude-3-5-sonnet-20241022-v2:0",
	})
	if err != nil {
		t.Fatalf("NewBedrock: %v", err)
	}
	if b.model != "anthropic.claude-3-5-sonnet-20241022-v2:0" {
		t.Errorf("expected model id to retain its colon suffix, got %q", b.model)
	}
}
