package chunker

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrBadConfig is returned when the splitter configuration is invalid.
var ErrBadConfig = errors.New("invalid chunker config")

// DefaultSeparators is the separator priority order used when none is configured:
// paragraph break, line break, space, then raw character splitting as the
// fallback that always terminates.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Config holds the splitting parameters.
type Config struct {
	ChunkSize    int      // target max runes per chunk
	ChunkOverlap int      // runes shared between consecutive chunks
	Separators   []string // preferred split separators, most preferred first
}

// Splitter splits raw document text into overlapping segments sized for
// embedding. It recursively attempts the most preferred separator first and
// descends to the next one for any piece still exceeding ChunkSize.
// Splitting is deterministic and has no side effects.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewSplitter creates a Splitter from cfg, applying defaults for zero values.
// It fails with ErrBadConfig when ChunkSize is not positive or ChunkOverlap
// is not strictly smaller than ChunkSize.
func NewSplitter(cfg Config) (*Splitter, error) {
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = DefaultChunkSize
		if cfg.ChunkOverlap == 0 {
			cfg.ChunkOverlap = DefaultChunkOverlap
		}
	}
	if len(cfg.Separators) == 0 {
		cfg.Separators = DefaultSeparators
	}
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be greater than 0, got %d", ErrBadConfig, cfg.ChunkSize)
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("%w: chunk overlap %d must be in [0, %d)", ErrBadConfig, cfg.ChunkOverlap, cfg.ChunkSize)
	}
	return &Splitter{
		chunkSize:  cfg.ChunkSize,
		overlap:    cfg.ChunkOverlap,
		separators: cfg.Separators,
	}, nil
}

// Split splits text into chunks of at most ChunkSize runes, consecutive
// chunks overlapping by up to ChunkOverlap runes drawn from the tail of the
// previous chunk. Empty input yields zero chunks; input that already fits
// yields exactly one chunk.
func (s *Splitter) Split(text string) []string {
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, seps []string) []string {
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= s.chunkSize {
		return []string{text}
	}

	sep, rest := firstSeparator(text, seps)
	if sep == "" {
		// No structural separator left: raw rune windows.
		return s.window([]rune(text))
	}

	parts := splitKeepingSeparator(text, sep)

	var chunks []string
	var pending []string // run of parts that each fit within chunkSize
	for _, part := range parts {
		if utf8.RuneCountInString(part) > s.chunkSize {
			chunks = append(chunks, s.merge(pending)...)
			pending = pending[:0]
			chunks = append(chunks, s.split(part, rest)...)
			continue
		}
		pending = append(pending, part)
	}
	chunks = append(chunks, s.merge(pending)...)
	return chunks
}

// merge greedily packs fitting parts into chunks, seeding each new chunk with
// the overlap tail of the one just emitted.
func (s *Splitter) merge(parts []string) []string {
	if len(parts) == 0 {
		return nil
	}

	var chunks []string
	var cur []rune
	emitted := 0 // runes of cur that belong to the previous chunk's tail
	for _, part := range parts {
		pr := []rune(part)
		if len(cur) > 0 && len(cur)+len(pr) > s.chunkSize && len(cur) > emitted {
			chunks = append(chunks, string(cur))
			cur = overlapTail(cur, s.overlap)
			// Shrink the carried tail if the incoming part would push the
			// next chunk past the size limit.
			if len(cur)+len(pr) > s.chunkSize {
				cur = overlapTail(cur, s.chunkSize-len(pr))
			}
			emitted = len(cur)
		}
		cur = append(cur, pr...)
	}
	// Trailing runes that are only the previous chunk's tail carry no new content.
	if len(cur) > emitted {
		chunks = append(chunks, string(cur))
	}
	return chunks
}

// window splits runes into fixed windows advancing by chunkSize-overlap.
func (s *Splitter) window(runes []rune) []string {
	stride := s.chunkSize - s.overlap
	var chunks []string
	for start := 0; start < len(runes); start += stride {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// firstSeparator returns the most preferred separator present in text and the
// separators after it. The empty-string fallback always matches.
func firstSeparator(text string, seps []string) (string, []string) {
	for i, sep := range seps {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, seps[i+1:]
		}
	}
	return "", nil
}

// splitKeepingSeparator splits text by sep, keeping sep attached to the end of
// each piece so concatenating the pieces reproduces text.
func splitKeepingSeparator(text, sep string) []string {
	pieces := strings.Split(text, sep)
	out := make([]string, 0, len(pieces))
	for i, p := range pieces {
		if i < len(pieces)-1 {
			p += sep
		}
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func overlapTail(runes []rune, overlap int) []rune {
	if overlap <= 0 || len(runes) == 0 {
		return nil
	}
	if overlap > len(runes) {
		overlap = len(runes)
	}
	tail := make([]rune, overlap)
	copy(tail, runes[len(runes)-overlap:])
	return tail
}
