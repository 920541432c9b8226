// Command clipshare is the operator CLI: it queues jobs, inspects the queue
// database, runs the OAuth authorization flow, and exercises the notifier.
package main
