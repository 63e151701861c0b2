package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newCaptureLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug, // so Debug lines are captured too
	})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_RoutesLevels(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		level string
		emit  func(l *SlogLogger)
	}{
		{"DEBUG", func(l *SlogLogger) { l.Debug(ctx, "record", "record_id", "r1") }},
		{"INFO", func(l *SlogLogger) { l.Info(ctx, "record", "record_id", "r1") }},
		{"WARN", func(l *SlogLogger) { l.Warn(ctx, "record", "record_id", "r1") }},
		{"ERROR", func(l *SlogLogger) { l.Error(ctx, "record", "record_id", "r1") }},
	}

	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			l, buf := newCaptureLogger(t)
			tc.emit(l)
			out := buf.String()
			if !strings.Contains(out, "level="+tc.level) {
				t.Fatalf("expected level=%s in output:\n%s", tc.level, out)
			}
			if !strings.Contains(out, "msg=record") {
				t.Fatalf("expected msg=record in output:\n%s", out)
			}
			if !strings.Contains(out, "record_id=r1") {
				t.Fatalf("expected record_id=r1 in output:\n%s", out)
			}
		})
	}
}

func TestSlogLogger_With_PropagatesToDerived(t *testing.T) {
	l, buf := newCaptureLogger(t)
	ctx := context.Background()

	derived := l.With("module", "tokens", "user_id", "u1")
	derived.Info(ctx, "rotated", "session_id", "s1")

	out := buf.String()
	for _, want := range []string{"msg=rotated", "module=tokens", "user_id=u1", "session_id=s1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestSlogLogger_With_DoesNotMutateReceiver(t *testing.T) {
	l, buf := newCaptureLogger(t)
	ctx := context.Background()

	_ = l.With("module", "tokens")
	l.Info(ctx, "plain")

	if strings.Contains(buf.String(), "module=tokens") {
		t.Fatalf("attributes from derived logger leaked into receiver:\n%s", buf.String())
	}
}
