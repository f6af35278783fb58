// Package chunker splits file contents into bounded-size chunks along
// structure-aware boundaries: markdown headers and paragraphs for docs,
// declaration boundaries for Solidity sources. Both splitters are
// deterministic: identical input always yields the same chunk sequence.
package chunker

import (
	"strings"

	"solagent/internal/domain"
)

// Markdown splits markdown text into chunks of at most maxLen bytes,
// preferring header and paragraph boundaries. Fenced code blocks are kept
// whole unless they alone exceed the limit.
type Markdown struct {
	maxLen int
}

func NewMarkdown(maxLen int) (*Markdown, error) {
	if maxLen <= 0 {
		return nil, &domain.ConfigError{Key: "chunker.max_chunk_size", Reason: "must be positive"}
	}
	return &Markdown{maxLen: maxLen}, nil
}

// Split returns the ordered, non-empty chunks of text.
func (m *Markdown) Split(text string) []string {
	return pack(markdownBlocks(text), m.maxLen)
}

// markdownBlocks cuts text into semantic blocks: ATX headers, fenced code
// blocks, and blank-line separated paragraphs (lists ride along as
// paragraphs since their items are not blank-line separated).
func markdownBlocks(text string) []string {
	var blocks []string
	var buf []string
	inFence := false

	flush := func() {
		block := strings.TrimSpace(strings.Join(buf, "\n"))
		if block != "" {
			blocks = append(blocks, block)
		}
		buf = buf[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				buf = append(buf, line)
				inFence = false
				flush()
			} else {
				flush()
				inFence = true
				buf = append(buf, line)
			}
			continue
		}
		if inFence {
			buf = append(buf, line)
			continue
		}
		if trimmed == "" {
			flush()
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			flush()
			buf = append(buf, line)
			flush()
			continue
		}
		buf = append(buf, line)
	}
	flush()
	return blocks
}
