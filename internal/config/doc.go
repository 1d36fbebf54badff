// Package config holds the configuration surface consumed by the pipeline:
// sink targets for producers, the rendezvous address shared with the broker,
// and the viewer-serving options. Defaults come first, then an optional JSON
// file, then VSLOG_* environment overlays.
package config
