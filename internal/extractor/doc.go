// Package extractor defines the source extraction surface consumed by the
// ingestion pipeline and an HTTP client for a JSON extractor service. The
// site-specific scraping lives in the external service; this package handles
// transport, retries, and payload validation only.
package extractor
