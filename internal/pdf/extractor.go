package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
)

var (
	// ErrNotPDF is returned when the payload is not a PDF document.
	ErrNotPDF = errors.New("not a PDF document")
	// ErrEmptyDocument is returned when extraction produces no text.
	ErrEmptyDocument = errors.New("document contains no extractable text")
)

var pdfMagic = []byte("%PDF-")

// CommandRunner executes an external command and returns its combined stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w: %s", name, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// Extractor extracts plain text from PDF payloads by shelling out to
// pdftotext (poppler-utils). The binary must be on PATH.
type Extractor struct {
	runner  CommandRunner
	workDir string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRunner replaces the command runner, used by tests.
func WithRunner(r CommandRunner) Option {
	return func(e *Extractor) { e.runner = r }
}

// WithWorkDir sets the directory for temporary PDF files.
func WithWorkDir(dir string) Option {
	return func(e *Extractor) { e.workDir = dir }
}

// NewExtractor creates a pdftotext-backed extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		runner:  execRunner{},
		workDir: os.TempDir(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract converts a PDF payload into plain text. It fails with ErrNotPDF if
// the payload lacks a PDF header and ErrEmptyDocument if no text comes out.
func (e *Extractor) Extract(ctx context.Context, data []byte) (string, error) {
	if !bytes.HasPrefix(data, pdfMagic) {
		return "", ErrNotPDF
	}

	// pdftotext wants a file path; "-" sends the text to stdout.
	tmpPath := filepath.Join(e.workDir, uuid.New().String()+".pdf")
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	out, err := e.runner.Run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", tmpPath, "-")
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}

	text := string(bytes.TrimSpace(out))
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}
