package testsupport

import (
	"path/filepath"
	"testing"

	"quill/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.BlobDir = filepath.Join(base, "blobs")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Extractor.BaseURL = "https://source.test"
	cfg.Workflow.JobPollInterval = 1
	cfg.Workflow.ErrorRetryInterval = 1

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithWorkerCount overrides the workflow worker pool size on the test config.
func WithWorkerCount(count int) ConfigOption {
	return func(c *config.Config) {
		c.Workflow.WorkerCount = count
	}
}

// WithExtractorBaseURL overrides the extractor endpoint on the test config.
func WithExtractorBaseURL(url string) ConfigOption {
	return func(c *config.Config) {
		c.Extractor.BaseURL = url
	}
}
