package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loom.yaml")
	if err := os.WriteFile(path, []byte("model:\n  default: custom/model\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model.Default != "custom/model" {
		t.Fatalf("got %q", cfg.Model.Default)
	}
	if cfg.Model.BearerEnv != defaultBearerEnv {
		t.Fatalf("got %q", cfg.Model.BearerEnv)
	}
	if cfg.Retry.MaxAttempts != defaultMaxAttempts {
		t.Fatalf("got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Sandbox.HeadLines != defaultHeadLines || cfg.Sandbox.TailLines != defaultTailLines {
		t.Fatalf("got head=%d tail=%d", cfg.Sandbox.HeadLines, cfg.Sandbox.TailLines)
	}
}

func TestValidateRequiresBaseImageWhenEmptied(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Sandbox.BaseImage = ""
	errs := Validate(cfg)
	if len(errs) == 0 {
		t.Fatal("expected a validation error")
	}
}

func TestParseDescriptor(t *testing.T) {
	data := []byte("default_model: anthropic/claude-opus-4-6\ntools: read,write,bash\n\nYou are a coding assistant.\nBe terse.\n")
	d, err := ParseDescriptor(data)
	if err != nil {
		t.Fatal(err)
	}
	if d.DefaultModel != "anthropic/claude-opus-4-6" {
		t.Fatalf("got %q", d.DefaultModel)
	}
	if len(d.Tools) != 3 || d.Tools[0] != "read" {
		t.Fatalf("got %v", d.Tools)
	}
	if d.SystemPrompt != "You are a coding assistant.\nBe terse.\n" {
		t.Fatalf("got %q", d.SystemPrompt)
	}
}

func TestParseDescriptorUnknownKeyIsError(t *testing.T) {
	data := []byte("default_model: x\nbogus: 1\n\nbody\n")
	if _, err := ParseDescriptor(data); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestParseDescriptorMissingModelIsError(t *testing.T) {
	data := []byte("tools: read\n\nbody\n")
	if _, err := ParseDescriptor(data); err == nil {
		t.Fatal("expected error for missing default_model")
	}
}
