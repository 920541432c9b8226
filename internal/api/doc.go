// Package api provides the queue service facade and transport-friendly DTOs
// shared by the CLI. Access token pairs never leave the queue layer through
// these types.
package api
