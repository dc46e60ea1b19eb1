package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"quill/internal/blobstore"
	"quill/internal/catalog"
	"quill/internal/config"
	"quill/internal/daemon"
	"quill/internal/extractor"
	"quill/internal/ingest"
	"quill/internal/jobs"
	"quill/internal/logging"
	"quill/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := jobs.Open(cfg)
	if err != nil {
		log.Fatalf("open job store: %v", err)
	}
	cat, err := catalog.Open(cfg)
	if err != nil {
		log.Fatalf("open catalog: %v", err)
	}
	blobs, err := blobstore.NewFilesystem(cfg.Paths.BlobDir, cfg.Paths.PublicBlobURL)
	if err != nil {
		log.Fatalf("open blob store: %v", err)
	}
	ext, err := extractor.NewClient(cfg)
	if err != nil {
		log.Fatalf("init extractor: %v", err)
	}

	stages := ingest.NewStages(ext, blobs, cat, logger)
	manager := workflow.NewManager(cfg, store, stages, logger)
	auditor := ingest.NewAuditor(blobs, logger)

	d, err := daemon.New(cfg, store, cat, blobs, manager, auditor, logger)
	if err != nil {
		log.Fatalf("create daemon: %v", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		log.Fatalf("start daemon: %v", err)
	}

	<-ctx.Done()
	d.Stop()
}
