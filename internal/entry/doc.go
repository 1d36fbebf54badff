// Package entry defines the immutable log event record and its two wire
// shapes: the line-oriented file sink format and the JSON relay payload.
//
// An Entry is built once by the sequencer, written to whichever sinks are
// enabled, and discarded. Nothing in the pipeline mutates or retains it.
package entry
