// Package id mints opaque 64-bit identifiers for tagging causally related
// log entries (activity and parent ids). Identifiers are non-zero, unique,
// and monotonically increasing within one process.
package id
