package pdf

import (
	"context"
	"errors"
	"testing"
)

// fakeRunner is a test double for CommandRunner.
type fakeRunner struct {
	output   []byte
	err      error
	lastName string
	lastArgs []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.lastName = name
	f.lastArgs = args
	return f.output, f.err
}

func TestExtractor_Extract(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		runner   *fakeRunner
		wantText string
		wantErr  error
	}{
		{
			name:     "extracts trimmed text",
			data:     []byte("%PDF-1.7 ..."),
			runner:   &fakeRunner{output: []byte("  Hello from page one.\n\n")},
			wantText: "Hello from page one.",
		},
		{
			name:    "rejects non-PDF payload",
			data:    []byte("plain text, no header"),
			runner:  &fakeRunner{},
			wantErr: ErrNotPDF,
		},
		{
			name:    "empty extraction",
			data:    []byte("%PDF-1.4"),
			runner:  &fakeRunner{output: []byte("   \n ")},
			wantErr: ErrEmptyDocument,
		},
		{
			name:    "runner failure surfaces",
			data:    []byte("%PDF-1.4"),
			runner:  &fakeRunner{err: errors.New("pdftotext: command not found")},
			wantErr: nil, // wrapped, checked below by presence
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(WithRunner(tt.runner), WithWorkDir(t.TempDir()))
			text, err := e.Extract(context.Background(), tt.data)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Extract() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if tt.runner.err != nil {
				if err == nil {
					t.Fatal("Extract() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract() unexpected error: %v", err)
			}
			if text != tt.wantText {
				t.Errorf("Extract() = %q, want %q", text, tt.wantText)
			}
		})
	}
}

func TestExtractor_Extract_InvokesPdftotext(t *testing.T) {
	runner := &fakeRunner{output: []byte("content")}
	e := NewExtractor(WithRunner(runner), WithWorkDir(t.TempDir()))

	if _, err := e.Extract(context.Background(), []byte("%PDF-1.5")); err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	if runner.lastName != "pdftotext" {
		t.Errorf("Extract() ran %q, want pdftotext", runner.lastName)
	}
	if len(runner.lastArgs) == 0 || runner.lastArgs[len(runner.lastArgs)-1] != "-" {
		t.Errorf("Extract() args = %v, want trailing \"-\" for stdout output", runner.lastArgs)
	}
}
