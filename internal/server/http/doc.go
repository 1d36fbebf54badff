// Package httpserver exposes the viewer surface: the embedded live-view
// page, the websocket subscription endpoint backed by the broker, a health
// probe and a history export.
//
// Example:
//
//	b := broker.New(broker.Options{Address: "/tmp/vslogger.sock"})
//	_ = b.Start()
//	s := httpserver.New(b, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":18080")
package httpserver
