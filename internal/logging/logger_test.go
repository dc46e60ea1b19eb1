package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quill/internal/logging"
	"quill/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quill.log")
	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("ingest started", logging.String("novel_slug", "green-tea-lady"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"novel_slug":"green-tea-lady"`) {
		t.Fatalf("log output missing attribute: %s", data)
	}
	if !strings.Contains(string(data), `"msg":"ingest started"`) {
		t.Fatalf("log output missing message: %s", data)
	}
}

func TestWithContextCarriesJobFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quill.log")
	logger, err := logging.New(logging.Options{
		Level:       "debug",
		Format:      "json",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := services.WithJobID(context.Background(), 42)
	ctx = services.WithStage(ctx, "fetching")
	logging.WithContext(ctx, logger).Info("stage started")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"job_id":42`) {
		t.Fatalf("expected job_id in output: %s", out)
	}
	if !strings.Contains(out, `"stage":"fetching"`) {
		t.Fatalf("expected stage in output: %s", out)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	// Must not panic or write anywhere.
	logger.Error("discarded", logging.Error(os.ErrNotExist))
}
