package cli

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestLineReader_ReadLine(t *testing.T) {
	reader := NewLineReader(strings.NewReader("  hello world  \nsecond\n"))
	ctx := context.Background()

	line, err := reader.ReadLine(ctx)
	if err != nil {
		t.Fatalf("Failed to read line: %v", err)
	}
	if line != "hello world" {
		t.Errorf("Expected trimmed line, got %q", line)
	}

	line, err = reader.ReadLine(ctx)
	if err != nil {
		t.Fatalf("Failed to read second line: %v", err)
	}
	if line != "second" {
		t.Errorf("Expected second, got %q", line)
	}
}

func TestLineReader_EOF(t *testing.T) {
	reader := NewLineReader(strings.NewReader(""))

	_, err := reader.ReadLine(context.Background())
	if !errors.Is(err, io.EOF) {
		t.Errorf("Expected EOF on empty input, got %v", err)
	}
}

func TestLineReader_LastLineWithoutNewline(t *testing.T) {
	reader := NewLineReader(strings.NewReader("no newline"))

	line, err := reader.ReadLine(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if line != "no newline" {
		t.Errorf("Expected final partial line, got %q", line)
	}
}

func TestLineReader_ContextCancellation(t *testing.T) {
	// A pipe that never delivers data keeps the read blocked.
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()
	reader := NewLineReader(pr)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := reader.ReadLine(ctx)
	if !errors.Is(err, ErrInputCancelled) {
		t.Errorf("Expected ErrInputCancelled, got %v", err)
	}
}

func TestNewLineReader_NilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for nil reader")
		}
	}()
	NewLineReader(nil)
}
