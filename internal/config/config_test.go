package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"quill/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "quill", "data")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.BlobDir != filepath.Join(tempHome, ".local", "share", "quill", "blobs") {
		t.Fatalf("unexpected blob dir: %q", cfg.Paths.BlobDir)
	}
	if cfg.Workflow.WorkerCount != 2 {
		t.Fatalf("unexpected default worker count: %d", cfg.Workflow.WorkerCount)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected default log format: %q", cfg.Logging.Format)
	}
}

func TestLoadExplicitConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quill.toml")
	content := strings.Join([]string{
		"[paths]",
		`data_dir = "` + filepath.Join(dir, "data") + `"`,
		`blob_dir = "` + filepath.Join(dir, "blobs") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		"[extractor]",
		`base_url = "https://source.example.com/"`,
		"[workflow]",
		"worker_count = 4",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q to exist, got resolved=%q exists=%v", path, resolved, exists)
	}
	if cfg.Workflow.WorkerCount != 4 {
		t.Fatalf("worker_count override not applied: %d", cfg.Workflow.WorkerCount)
	}
	if cfg.Extractor.BaseURL != "https://source.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Extractor.BaseURL)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"empty data dir", func(c *config.Config) { c.Paths.DataDir = "" }, "data_dir"},
		{"zero poll interval", func(c *config.Config) { c.Workflow.JobPollInterval = 0 }, "job_poll_interval"},
		{"zero workers", func(c *config.Config) { c.Workflow.WorkerCount = 0 }, "worker_count"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"relative extractor url", func(c *config.Config) { c.Extractor.BaseURL = "source.example.com" }, "extractor.base_url"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Logging.Format = "console"
			cfg.Logging.Level = "info"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestEnvTokenOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quill.toml")
	content := "[paths]\napi_token = \"from-file\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("QUILL_API_TOKEN", "from-env")

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.APIToken != "from-env" {
		t.Fatalf("expected env token to win, got %q", cfg.Paths.APIToken)
	}
}

func TestSampleConfigParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	written, err := config.CreateSample(path)
	if err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(written)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if cfg.Workflow.JobPollInterval != 5 {
		t.Fatalf("sample poll interval mismatch: %d", cfg.Workflow.JobPollInterval)
	}
}
