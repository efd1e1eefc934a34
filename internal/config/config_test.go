package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 0},
		Storage: StorageConfig{InMemory: true},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingStoragePath(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing storage path")
	}
}

func TestValidate_InvalidWeight(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 8080},
		Storage: StorageConfig{InMemory: true},
		Search: SearchConfig{
			Weights: map[string]float64{"title": 1.5},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for out-of-range weight")
	}
}

func TestValidate_InvalidThreshold(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 8080},
		Storage: StorageConfig{InMemory: true},
		Search:  SearchConfig{Threshold: 1.2},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for threshold above 1")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Storage.KeyPrefix != "chemsearch" {
		t.Errorf("expected KeyPrefix=chemsearch, got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Search.Threshold != 0.3 {
		t.Errorf("expected Threshold=0.3, got %g", cfg.Search.Threshold)
	}
	if cfg.Search.Distance != 2 {
		t.Errorf("expected Distance=2, got %d", cfg.Search.Distance)
	}
	if cfg.Session.MaxHistory != 50 {
		t.Errorf("expected MaxHistory=50, got %d", cfg.Session.MaxHistory)
	}
	if cfg.Session.MaxBookmarks != 100 {
		t.Errorf("expected MaxBookmarks=100, got %d", cfg.Session.MaxBookmarks)
	}
	if cfg.Session.MaxSuggestions != 10 {
		t.Errorf("expected MaxSuggestions=10, got %d", cfg.Session.MaxSuggestions)
	}
	if cfg.Session.DebounceMS != 300 {
		t.Errorf("expected DebounceMS=300, got %d", cfg.Session.DebounceMS)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CHEMSEARCH_TEST_PORT", "9090")

	in := []byte("port: ${CHEMSEARCH_TEST_PORT}\npath: ${CHEMSEARCH_TEST_PATH:-/tmp/chem}\n")
	out := string(expandEnvVars(in))

	want := "port: 9090\npath: /tmp/chem\n"
	if out != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", out, want)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "config")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `
http:
  port: 8085
storage:
  in_memory: true
search:
  threshold: 0.4
  weights:
    title: 1.0
    formula: 0.9
`
	if err := os.WriteFile(filepath.Join(cfgDir, "test.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 8085 {
		t.Errorf("expected port 8085, got %d", cfg.HTTP.Port)
	}
	if cfg.Search.Threshold != 0.4 {
		t.Errorf("expected threshold 0.4, got %g", cfg.Search.Threshold)
	}
	if cfg.Search.Weights["formula"] != 0.9 {
		t.Errorf("weights not parsed: %v", cfg.Search.Weights)
	}
	// Defaults fill the rest.
	if cfg.Session.MaxHistory != 50 {
		t.Errorf("defaults not applied, MaxHistory=%d", cfg.Session.MaxHistory)
	}
}
