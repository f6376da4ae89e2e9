package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLineHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		command string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			command: "serve",
			level:   slog.LevelInfo,
			message: "server listening",
			want:    "2024-06-15T14:30:45Z\tINFO\tserve\tserver listening\n",
		},
		{
			name:    "with attrs",
			command: "app add",
			level:   slog.LevelWarn,
			message: "reload failed",
			attrs:   []slog.Attr{slog.String("owner", "u1"), slog.Int("records", 3)},
			want:    "2024-06-15T14:30:45Z\tWARN\tapp add\treload failed\towner=u1\trecords=3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &lineHandler{mu: &sync.Mutex{}, w: &buf, level: slog.LevelDebug, command: tt.command}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			r.AddAttrs(tt.attrs...)
			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLineHandler_WithAttrsDoesNotMutateOriginal(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "cmd", slog.LevelInfo)
	child := logger.With("component", "cache")

	logger.Info("plain")
	child.Info("tagged")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	if strings.Contains(lines[0], "component=") {
		t.Errorf("parent logger picked up child attrs: %q", lines[0])
	}
	if !strings.Contains(lines[1], "component=cache") {
		t.Errorf("child logger missing attr: %q", lines[1])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "cmd", slog.LevelWarn)

	logger.Info("dropped")
	logger.Error("kept")

	got := buf.String()
	if strings.Contains(got, "dropped") {
		t.Errorf("info record written at warn level: %q", got)
	}
	if !strings.Contains(got, "kept") {
		t.Errorf("error record missing: %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "", want: slog.LevelInfo},
		{in: "debug", want: slog.LevelDebug},
		{in: "WARN", want: slog.LevelWarn},
		{in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
