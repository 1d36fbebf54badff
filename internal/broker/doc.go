// Package broker implements the relay between the rendezvous datagram
// channel and the live subscriber set.
//
// # Overview
//
// One Broker binds the configured unixgram address exclusively (a stale
// socket file left by a dead process is unlinked first) and runs a single
// receive worker that blocks on the socket. Every received payload is fanned
// out, byte for byte, to all currently registered subscribers; a failed send
// removes only that subscriber, within the same broadcast.
//
// The subscriber registry is arena-style: Register hands out a stable id and
// Unregister detaches by id, both safe concurrently with an in-flight
// broadcast.
//
// Two optional facilities ride along: a pebble-backed History of recently
// relayed payloads (replayed only on explicit request) and per-subscriber
// CEL filters evaluated against the payload's JSON fields. Neither ever
// modifies the forwarded bytes.
package broker
