// Package queue persists share jobs in SQLite and exposes the status
// transitions the workflow manager drives.
//
// A job moves through pending -> downloading -> downloaded -> trimming ->
// trimmed -> publishing -> completed, or ends at failed. Processing statuses
// carry a heartbeat so a restarted daemon can reclaim abandoned work.
package queue
