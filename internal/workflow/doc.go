// Package workflow runs the ingestion state machine: a worker pool claims
// pending jobs and drives each through fetching, storing, and importing,
// persisting every transition before the stage executes. Stage errors are
// recorded on the job and never crash the host process.
package workflow
