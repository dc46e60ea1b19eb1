// Command quill is the operator CLI for the ingestion daemon: submitting
// jobs, inspecting job and catalog state, running completeness audits, and
// managing configuration. Job operations go through the daemon's HTTP API;
// catalog inspection and the normalizer backfill read the stores directly.
package main
