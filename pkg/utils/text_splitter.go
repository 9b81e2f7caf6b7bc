package utils

import "strings"

// SplitText splits a long string into chunks of approximately 'chunkSize'
// characters with an 'overlap' to preserve context at boundaries.
// This is a simple character-based splitter. Ideally, use a tokenizer-aware splitter.
func SplitText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	totalLen := len(runes)

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}

// SplitCode splits source code into chunks, preferring to cut at blank lines
// so functions and blocks stay whole where possible. Falls back to the plain
// character splitter when no blank line lands inside the window.
func SplitCode(code string, chunkSize int, overlap int) []string {
	if len(code) <= chunkSize {
		return []string{code}
	}

	var chunks []string
	remaining := code

	for len(remaining) > chunkSize {
		window := remaining[:chunkSize]

		// Cut at the last blank line inside the window, if any past the midpoint.
		cut := strings.LastIndex(window, "\n\n")
		if cut < chunkSize/2 {
			cut = strings.LastIndex(window, "\n")
		}
		if cut < chunkSize/2 {
			cut = chunkSize
		}

		chunks = append(chunks, remaining[:cut])

		next := cut - overlap
		if next <= 0 {
			next = cut
		}
		remaining = remaining[next:]
	}

	if strings.TrimSpace(remaining) != "" {
		chunks = append(chunks, remaining)
	}

	return chunks
}
