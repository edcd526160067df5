// Package xlog centralizes the structured logging used by the
// compiler, the step driver and the command-line tools. It wraps log/slog the way the
// teacher wraps it in core/emu.go: a package-level logger plus a small
// title-casing helper (built on golang.org/x/text/cases/language, as
// the teacher's toTitleCase is) for formatting boundary-kind and
// activation names in diagnostics.
package xlog

import (
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	logger      = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	titleCaser  = cases.Title(language.English)
)

// Logger returns the package-level logger.
func Logger() *slog.Logger { return logger }

// SetLevel adjusts the minimum level the package logger emits.
func SetLevel(level slog.Level) {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Title converts a lower_snake identifier into a readable Title Case
// phrase, e.g. "torus" -> "Torus", "grid_scatter" -> "Grid Scatter".
func Title(s string) string {
	return titleCaser.String(strings.ReplaceAll(strings.ToLower(s), "_", " "))
}

// Debugf emits an op-by-op trace line.
func Debugf(msg string, args ...any) { logger.Debug(msg, args...) }

// Warnf emits a soft-error line (e.g. CapacityOverflow).
func Warnf(msg string, args ...any) { logger.Warn(msg, args...) }
