// Package log provides the structured logging facade used for pipeline
// diagnostics.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. Sink failures inside the event
// pipeline are reported through this facade and never propagate to the
// instrumented caller.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("broker"))
//	l.Info("listening", log.Str("addr", "/tmp/a.0"))
//
// # Interop
//
// To capture output from libraries that use the standard library logger
// (Pebble does), use RedirectStdLog.
package log
