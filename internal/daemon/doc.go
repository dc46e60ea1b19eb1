// Package daemon hosts the long-running ingestion service: single-instance
// locking, the workflow worker pool, and the HTTP API for job submission,
// status queries, and completeness audits.
package daemon
