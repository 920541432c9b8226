// Package notifications publishes per-client stage completion events over
// Redis pub/sub. Subscribers listen on "<client_id>-<stage>-finish" channels
// and receive a JSON payload carrying the outcome and stage response.
package notifications
