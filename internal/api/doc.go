// Package api defines transport-friendly views of jobs and daemon state plus
// the job submission service shared by the HTTP surface and the CLI.
package api
