package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sapiens.yaml")
	doc := "version: 1\nmodel_ref: \"openai:gpt-4.1\"\nmax_steps: 10\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ModelRef != "openai:gpt-4.1" {
		t.Errorf("expected overridden model_ref, got %q", cfg.ModelRef)
	}
	if cfg.MaxSteps != 10 {
		t.Errorf("expected overridden max_steps 10, got %d", cfg.MaxSteps)
	}
	if cfg.MaxTokens != Defaults().MaxTokens {
		t.Errorf("expected default max_tokens to survive, got %d", cfg.MaxTokens)
	}
	if cfg.ChainType != Defaults().ChainType {
		t.Errorf("expected default chain_type to survive, got %q", cfg.ChainType)
	}
}

func TestLoadRejectsBadChainType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sapiens.yaml")
	doc := "version: 1\nmodel_ref: \"anthropic:claude\"\nchain_type: \"bogus\"\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown chain_type")
	}
}

func TestWriteThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sapiens.yaml")
	cfg := Defaults()
	cfg.ModelRef = "bedrock:anthropic.claude-3-5-sonnet"

	if err := Write(path, cfg); err != nil {
		t.Fatalf("Write: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ModelRef != cfg.ModelRef {
		t.Errorf("round trip mismatch: got %q, want %q", loaded.ModelRef, cfg.ModelRef)
	}
}
