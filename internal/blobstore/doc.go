// Package blobstore persists raw per-novel artifacts (metadata documents,
// cover images, chapter text) under a deterministic key scheme. Keys derive
// only from the novel slug and chapter number, so repeated ingestion runs
// overwrite the same objects instead of accumulating duplicates.
package blobstore
