package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// ConsoleHandler renders log records as single colored, timestamped lines
// for interactive use. It is not meant for machine consumption; use the
// JSON handler from New for that.
type ConsoleHandler struct {
	mu    *sync.Mutex
	out   io.Writer
	level slog.Level
	color bool
	attrs []slog.Attr
}

// NewConsoleHandler creates a ConsoleHandler writing to out. Color is
// enabled only when out is a terminal.
func NewConsoleHandler(out io.Writer, level slog.Level) *ConsoleHandler {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &ConsoleHandler{
		mu:    &sync.Mutex{},
		out:   out,
		level: level,
		color: color,
	}
}

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *ConsoleHandler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder

	b.WriteString(h.paint(colorDim, record.Time.Format("15:04:05")))
	b.WriteByte(' ')
	b.WriteString(h.severity(record.Level))
	b.WriteByte(' ')
	b.WriteString(record.Message)

	writeAttr := func(a slog.Attr) {
		b.WriteByte(' ')
		b.WriteString(h.paint(colorDim, a.Key+"="))
		b.WriteString(fmt.Sprint(a.Value.Any()))
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	record.Attrs(func(a slog.Attr) bool {
		writeAttr(a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup is accepted but groups are flattened; the console output is
// for humans, not for round-tripping structure.
func (h *ConsoleHandler) WithGroup(string) slog.Handler { return h }

func (h *ConsoleHandler) severity(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return h.paint(colorRed, "✗ ERROR")
	case level >= slog.LevelWarn:
		return h.paint(colorYellow, "⚠ WARN ")
	case level >= slog.LevelInfo:
		return h.paint(colorGreen, "✓ INFO ")
	default:
		return h.paint(colorCyan, "· DEBUG")
	}
}

func (h *ConsoleHandler) paint(color, s string) string {
	if !h.color {
		return s
	}
	return color + s + colorReset
}
