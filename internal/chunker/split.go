package chunker

import "strings"

// blockJoiner separates blocks that are packed into the same chunk.
const blockJoiner = "\n\n"

// forceSplit cuts text into pieces of at most maxLen bytes, preferring to
// break at a space or newline within the last 100 bytes of the window.
// Used when a single construct exceeds the chunk size.
func forceSplit(text string, maxLen int) []string {
	var parts []string
	for len(text) > 0 {
		n := maxLen
		if len(text) < n {
			n = len(text)
		}
		if n < len(text) {
			for i := n; i > n-100 && i > 0; i-- {
				if text[i] == ' ' || text[i] == '\n' {
					n = i
					break
				}
			}
		}
		if part := strings.TrimSpace(text[:n]); part != "" {
			parts = append(parts, part)
		}
		text = text[n:]
	}
	return parts
}

// pack greedily accumulates blocks into chunks of at most maxLen bytes,
// in order. Blocks larger than maxLen are force-split on their own.
func pack(blocks []string, maxLen int) []string {
	var chunks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
	}
	for _, block := range blocks {
		if len(block) > maxLen {
			flush()
			chunks = append(chunks, forceSplit(block, maxLen)...)
			continue
		}
		need := len(block)
		if cur.Len() > 0 {
			need += len(blockJoiner)
		}
		if cur.Len()+need > maxLen {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteString(blockJoiner)
		}
		cur.WriteString(block)
	}
	flush()
	return chunks
}
