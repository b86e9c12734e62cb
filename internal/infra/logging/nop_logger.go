package logging

import (
	"context"
	"log/slog"
)

// discardHandler is disabled at every level, so records are never built.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// NewNopLogger returns a logger for the "discard" output and for tests.
func NewNopLogger() Logger {
	return slog.New(discardHandler{})
}
