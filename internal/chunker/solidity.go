package chunker

import (
	"strings"

	"solagent/internal/domain"
)

// Solidity splits Solidity source into chunks of at most maxLen bytes along
// declaration boundaries. The scanner tracks comments, string literals and
// brace depth; a cut is made after any statement or block that closes at
// file or contract level. Input the scanner cannot segment (unbalanced
// braces, unterminated comments or strings) falls back to raw length-based
// splitting.
type Solidity struct {
	maxLen int
}

func NewSolidity(maxLen int) (*Solidity, error) {
	if maxLen <= 0 {
		return nil, &domain.ConfigError{Key: "chunker.max_chunk_size", Reason: "must be positive"}
	}
	return &Solidity{maxLen: maxLen}, nil
}

// Split returns the ordered, non-empty chunks of src.
func (s *Solidity) Split(src string) []string {
	segments, ok := soliditySegments(src)
	if !ok {
		return forceSplit(src, s.maxLen)
	}
	return pack(segments, s.maxLen)
}

// soliditySegments cuts src after every ';' or '}' that sits at file level
// or directly inside a contract body (depth <= 1). This keeps pragma and
// import statements, contract-level declarations and whole function bodies
// as units. Returns ok=false when src is not well-formed.
func soliditySegments(src string) ([]string, bool) {
	var segments []string
	depth := 0
	start := 0

	appendSegment := func(end int) {
		if seg := strings.TrimSpace(src[start:end]); seg != "" {
			segments = append(segments, seg)
		}
		start = end
	}

	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return nil, false
			}
			i += 2 + end + 2
		case c == '"' || c == '\'':
			quote := c
			i++
			for i < len(src) && src[i] != quote {
				if src[i] == '\\' {
					i++
				}
				i++
			}
			if i >= len(src) {
				return nil, false
			}
			i++
		case c == '{':
			depth++
			i++
		case c == '}':
			depth--
			if depth < 0 {
				return nil, false
			}
			i++
			if depth <= 1 {
				appendSegment(i)
			}
		case c == ';':
			i++
			if depth <= 1 {
				appendSegment(i)
			}
		default:
			i++
		}
	}
	if depth != 0 {
		return nil, false
	}
	appendSegment(len(src))
	return segments, true
}
