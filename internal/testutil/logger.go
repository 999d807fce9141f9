// Package testutil holds fakes and helpers shared by package tests.
package testutil

import (
	"bytes"
	"log/slog"
)

// NopLogger returns a logger that drops every record
func NopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// BufferLogger returns a debug-level JSON logger and the buffer it writes to.
// The buffer is not synchronised; read it after the code under test is done.
func BufferLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}
