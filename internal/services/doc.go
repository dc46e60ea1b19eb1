// Package services provides shared error classification and context plumbing
// for the ingestion pipeline.
//
// Stage implementations wrap failures with one of the sentinel markers so the
// workflow manager can record a classified, human-readable message on the job.
// Context helpers carry job, stage, and correlation identifiers across
// goroutine and I/O boundaries for logging.
package services
