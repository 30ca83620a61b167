package chunker

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNewSplitter(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "defaults",
			cfg:     Config{},
			wantErr: false,
		},
		{
			name:    "explicit valid config",
			cfg:     Config{ChunkSize: 500, ChunkOverlap: 100},
			wantErr: false,
		},
		{
			name:    "zero overlap",
			cfg:     Config{ChunkSize: 500},
			wantErr: false,
		},
		{
			name:    "overlap equals size",
			cfg:     Config{ChunkSize: 500, ChunkOverlap: 500},
			wantErr: true,
		},
		{
			name:    "overlap exceeds size",
			cfg:     Config{ChunkSize: 100, ChunkOverlap: 200},
			wantErr: true,
		},
		{
			name:    "negative size",
			cfg:     Config{ChunkSize: -1},
			wantErr: true,
		},
		{
			name:    "negative overlap",
			cfg:     Config{ChunkSize: 100, ChunkOverlap: -5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSplitter(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewSplitter() expected error, got nil")
				}
				if !errors.Is(err, ErrBadConfig) {
					t.Errorf("NewSplitter() error = %v, want ErrBadConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSplitter() unexpected error: %v", err)
			}
			if s == nil {
				t.Fatal("NewSplitter() returned nil")
			}
		})
	}
}

func TestSplitter_Split_Basics(t *testing.T) {
	s, err := NewSplitter(Config{ChunkSize: 1000, ChunkOverlap: 200})
	if err != nil {
		t.Fatalf("NewSplitter() error = %v", err)
	}

	tests := []struct {
		name  string
		text  string
		check func([]string) bool
	}{
		{
			name: "empty input yields zero chunks",
			text: "",
			check: func(chunks []string) bool {
				return len(chunks) == 0
			},
		},
		{
			name: "short input yields exactly one chunk",
			text: "hello world",
			check: func(chunks []string) bool {
				return len(chunks) == 1 && chunks[0] == "hello world"
			},
		},
		{
			name: "input at exact size yields one chunk",
			text: strings.Repeat("a", 1000),
			check: func(chunks []string) bool {
				return len(chunks) == 1
			},
		},
		{
			name: "paragraphs split on paragraph break first",
			text: strings.Repeat("x", 600) + "\n\n" + strings.Repeat("y", 600),
			check: func(chunks []string) bool {
				if len(chunks) != 2 {
					return false
				}
				return strings.HasPrefix(chunks[0], "x") && strings.HasSuffix(chunks[1], "y")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := s.Split(tt.text)
			if !tt.check(chunks) {
				t.Errorf("Split() result validation failed: %d chunks", len(chunks))
			}
		})
	}
}

func TestSplitter_Split_WindowBoundaries(t *testing.T) {
	// 2500 characters with no separators: raw windows with stride 800.
	s, err := NewSplitter(Config{ChunkSize: 1000, ChunkOverlap: 200})
	if err != nil {
		t.Fatalf("NewSplitter() error = %v", err)
	}

	text := strings.Repeat("abcde", 500) // 2500 runes, no whitespace
	chunks := s.Split(text)

	if len(chunks) != 4 {
		t.Fatalf("Split() returned %d chunks, want 4", len(chunks))
	}

	runes := []rune(text)
	wantStarts := []int{0, 800, 1600, 2400}
	for i, chunk := range chunks {
		start := wantStarts[i]
		end := start + 1000
		if end > len(runes) {
			end = len(runes)
		}
		if chunk != string(runes[start:end]) {
			t.Errorf("chunk %d does not span [%d, %d)", i, start, end)
		}
	}

	// Every chunk respects the size limit.
	for i, chunk := range chunks {
		if n := utf8.RuneCountInString(chunk); n > 1000 {
			t.Errorf("chunk %d has %d runes, want <= 1000", i, n)
		}
	}
}

func TestSplitter_Split_RoundTrip(t *testing.T) {
	// Dropping each chunk's leading overlap region must reconstruct the input.
	s, err := NewSplitter(Config{ChunkSize: 100, ChunkOverlap: 20})
	if err != nil {
		t.Fatalf("NewSplitter() error = %v", err)
	}

	text := strings.Repeat("0123456789", 103) // 1030 runes, windowed path
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("Split() returned %d chunks, want several", len(chunks))
	}

	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0])
	for _, chunk := range chunks[1:] {
		runes := []rune(chunk)
		if len(runes) < 20 {
			t.Fatalf("chunk shorter than overlap: %d runes", len(runes))
		}
		rebuilt.WriteString(string(runes[20:]))
	}

	if rebuilt.String() != text {
		t.Error("reconstructed text does not match input")
	}
}

func TestSplitter_Split_OverlapContent(t *testing.T) {
	s, err := NewSplitter(Config{ChunkSize: 1000, ChunkOverlap: 200})
	if err != nil {
		t.Fatalf("NewSplitter() error = %v", err)
	}

	text := strings.Repeat("abcde", 500)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("Split() returned %d chunks, want >= 2", len(chunks))
	}

	// The head of each chunk equals the tail of its predecessor.
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		cur := []rune(chunks[i])
		overlap := 200
		if len(cur) < overlap {
			overlap = len(cur)
		}
		if string(cur[:overlap]) != string(prev[len(prev)-overlap:]) {
			t.Errorf("chunk %d does not start with the tail of chunk %d", i, i-1)
		}
	}
}

func TestSplitter_Split_DescendsSeparators(t *testing.T) {
	// A single oversized paragraph forces descent to line, then space splits.
	s, err := NewSplitter(Config{ChunkSize: 50, ChunkOverlap: 10})
	if err != nil {
		t.Fatalf("NewSplitter() error = %v", err)
	}

	words := strings.Repeat("word ", 40) // 200 runes, spaces only
	chunks := s.Split(words)

	if len(chunks) < 2 {
		t.Fatalf("Split() returned %d chunks, want several", len(chunks))
	}
	for i, chunk := range chunks {
		if n := utf8.RuneCountInString(chunk); n > 50 {
			t.Errorf("chunk %d has %d runes, want <= 50", i, n)
		}
	}
	// All input words survive, in order.
	joined := strings.Join(chunks, "")
	if !strings.Contains(joined, "word word") {
		t.Error("chunks lost input content")
	}
}
