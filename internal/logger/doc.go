// Package logger implements the sequencing entry point of the pipeline.
//
// A Logger is the only writer of seq for its instance. One ordering mutex
// covers the clock read, the counter increment, and both sink writes, so file
// order, publish order, and seq order are always identical. Sink failures are
// reported to the diagnostic logger and never reach the caller: logging must
// not break the instrumented application.
package logger
