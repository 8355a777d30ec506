package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesSampleConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	if err := root.Execute(); err != nil {
		t.Fatalf("init execute: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, "swagger2client configuration") {
		t.Fatalf("unexpected config contents: %s", s)
	}
}

func TestInit_SampleConfigKeysAreAccepted(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	var uncommented []string
	for _, line := range strings.Split(sampleConfigYAML, "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, ": ") {
			key, _, _ := strings.Cut(strings.TrimPrefix(line, "# "), ":")
			if !strings.Contains(key, " ") {
				uncommented = append(uncommented, strings.TrimPrefix(line, "# "))
			}
		}
	}
	if len(uncommented) == 0 {
		t.Fatalf("expected sample keys in config")
	}
	if err := os.WriteFile(path, []byte(strings.Join(uncommented, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := defaultGenerateConfig()
	if err := applyGenerateConfigFromFile(&cfg, path); err != nil {
		t.Fatalf("sample config rejected: %v", err)
	}
	if cfg.Input != "./openapi.yaml" {
		t.Fatalf("input: got %q", cfg.Input)
	}
	if want := []string{"ecmascript", "rust"}; !equalStringSlices(cfg.Langs, want) {
		t.Fatalf("langs: got %v", cfg.Langs)
	}
}

func TestInit_ExistingWithoutForce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected error for existing file without --force")
	}
	if _, ok := err.(usageError); !ok {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}
}
