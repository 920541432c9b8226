// Package services provides the shared error taxonomy and context helpers
// used by pipeline stages and the clients they drive.
//
// Stage code wraps failures with Wrap and one of the sentinel markers so the
// workflow manager can decide between bounded retry (ErrTransient) and a
// terminal failed status (everything else) without inspecting error strings.
package services
