// Package jobs persists ingestion jobs in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, and the monotonic status transitions of the pipeline state machine
// (pending, fetching, storing, importing, completed, failed). Claiming a
// pending job is a compare-and-swap against the status column so a job runs
// at most once even with concurrent workers.
//
// Jobs are an audit trail: the pipeline never deletes them. Removal happens
// only through explicit operator commands.
//
// Treat this package as the single source of truth for job semantics; when
// you add new statuses or fields, update schema.sql and bump schemaVersion.
package jobs
