// Package serverrun wires the broker and the viewer HTTP server into one
// process lifecycle: start, serve until the context is cancelled or a signal
// arrives, shut down in order.
package serverrun
