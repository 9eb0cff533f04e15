package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "info")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log.Named("predict").Info(context.Background(), "evaluated",
		Float64("vdot", 49.5), Int("signals", 4), Error(errors.New("boom")))

	out := buf.String()
	for _, want := range []string{"msg=evaluated", "predict.vdot=49.5", "predict.signals=4", "predict.error=boom", "logger/logger_test.go:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "warn")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	log.Debug(ctx, "debug")
	log.Info(ctx, "info")
	if buf.Len() != 0 {
		t.Errorf("expected nothing below warn, got %q", buf.String())
	}

	log.Warn(ctx, "warned")
	if !strings.Contains(buf.String(), "msg=warned") {
		t.Errorf("warn message missing from %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"debug", false},
		{"INFO", false},
		{"", false},
		{" warning ", false},
		{"error", false},
		{"verbose", true},
	}

	for _, tt := range tests {
		_, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}

	if _, err := New(&bytes.Buffer{}, "verbose"); err == nil {
		t.Error("New() with bad level should fail")
	}
}
