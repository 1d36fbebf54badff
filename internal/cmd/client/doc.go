// Package client holds the producer-side CLI commands.
package client
