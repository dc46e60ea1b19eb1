// Package stage defines the handler contract implemented by each ingestion
// stage and the health record surfaced through daemon status.
package stage
