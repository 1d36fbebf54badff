package client

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	logpkg "github.com/lazy-eggplant/vs.logger/pkg/log"
)

func TestEmitWritesFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	cmd := NewEmitCommand(logpkg.NewNopLogger())
	cmd.SetArgs([]string{"--file", path, "--count", "3", "--kind", "WARNING", "--severity", "HIGH", "hello"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines: %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "[WARNING], {HIGH},") {
		t.Fatalf("line format: %q", lines[0])
	}
	if !strings.Contains(lines[2], "hello 3") {
		t.Fatalf("message numbering: %q", lines[2])
	}
}

func TestEmitRejectsNoSinks(t *testing.T) {
	cmd := NewEmitCommand(logpkg.NewNopLogger())
	cmd.SetArgs([]string{"--count", "1"})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error with neither sink configured")
	}
}

func TestEmitRejectsUnknownKind(t *testing.T) {
	cmd := NewEmitCommand(logpkg.NewNopLogger())
	cmd.SetArgs([]string{"--file", filepath.Join(t.TempDir(), "x.log"), "--kind", "NOISE"})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for an unknown kind")
	}
}
