// Package workflow drives queue items through the download, trim, and tweet
// stages. A single background loop claims the oldest eligible item, runs the
// stage handler under a heartbeat and per-stage timeout, applies the bounded
// retry policy for transient failures, and publishes a completion event per
// finished or failed stage.
package workflow
