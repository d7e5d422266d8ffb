package clog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// leadKeys are printed as bare columns before the message, in this order.
var leadKeys = []string{"method", "route", "path", "status"}

// TextHandler renders one colored line per record for local development:
//
//	15:04:05.000 INFO  POST /task_assignment/{assignmentID}/finish 200 OK  assignment_id=01H... duration=1.2ms
type TextHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	color  bool
	prefix string
	attrs  []slog.Attr
}

type TextHandlerOption func(*TextHandler)

func WithColor(c bool) TextHandlerOption {
	return func(h *TextHandler) {
		h.color = c
	}
}

func WithLevel(level slog.Leveler) TextHandlerOption {
	return func(h *TextHandler) {
		h.level = level
	}
}

func NewTextHandler(w io.Writer, opts ...TextHandlerOption) *TextHandler {
	h := &TextHandler{mu: &sync.Mutex{}, w: w, level: slog.LevelInfo, color: true}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *TextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	nh.attrs = append(nh.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		nh.attrs = append(nh.attrs, a)
	}
	return &nh
}

func (h *TextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.prefix = h.prefix + name + "."
	return &nh
}

func (h *TextHandler) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if h.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func levelColor(l slog.Level) color.Attribute {
	switch {
	case l >= slog.LevelError:
		return color.FgRed
	case l >= slog.LevelWarn:
		return color.FgYellow
	case l >= slog.LevelInfo:
		return color.FgBlue
	default:
		return color.FgCyan
	}
}

func (h *TextHandler) Handle(_ context.Context, record slog.Record) error {
	kv := make(map[string]slog.Value, len(h.attrs)+record.NumAttrs())
	for _, a := range h.attrs {
		kv[a.Key] = a.Value
	}
	record.Attrs(func(a slog.Attr) bool {
		kv[h.prefix+a.Key] = a.Value
		return true
	})

	var buf bytes.Buffer
	if !record.Time.IsZero() {
		buf.WriteString(record.Time.Format("15:04:05.000 "))
	}
	h.paint(levelColor(record.Level)).Fprintf(&buf, "%-5s ", record.Level.String())
	for _, key := range leadKeys {
		if v, ok := kv[key]; ok {
			fmt.Fprintf(&buf, "%s ", v)
			delete(kv, key)
		}
	}
	h.paint(color.FgGreen).Fprint(&buf, record.Message)
	if v, ok := kv[ErrorAttributeKey]; ok {
		delete(kv, ErrorAttributeKey)
		h.paint(color.FgRed).Fprintf(&buf, " %s", v)
	}
	stack, hasStack := kv[StackAttributeKey]
	delete(kv, StackAttributeKey)

	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&buf, " %s=%s", h.paint(color.Faint).Sprint(k), formatValue(kv[k]))
	}
	buf.WriteByte('\n')
	if hasStack {
		for _, line := range strings.Split(strings.TrimRight(stack.String(), "\n"), "\n") {
			buf.WriteString("    " + line + "\n")
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func formatValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().Round(time.Microsecond).String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindString:
		if s := v.String(); strings.ContainsAny(s, " \t\"") {
			return fmt.Sprintf("%q", s)
		}
	}
	return v.String()
}
