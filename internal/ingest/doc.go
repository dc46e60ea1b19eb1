// Package ingest implements the novel ingestion pipeline: the fetch, store,
// and import stage handlers, the catalog reconciler that folds extraction
// payloads into the relational catalog idempotently, the storage completeness
// auditor, and the normalization backfill pass.
package ingest
