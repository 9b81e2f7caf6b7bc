package utils

import (
	"strings"
	"testing"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		chunkSize  int
		overlap    int
		wantChunks int
	}{
		{"short text single chunk", "hello world", 100, 10, 1},
		{"exact fit", strings.Repeat("a", 100), 100, 10, 1},
		{"two chunks", strings.Repeat("a", 150), 100, 10, 2},
		{"overlap larger than size falls back", strings.Repeat("a", 150), 50, 60, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.chunkSize, tt.overlap)
			if len(chunks) != tt.wantChunks {
				t.Errorf("SplitText produced %d chunks, want %d", len(chunks), tt.wantChunks)
			}
			for i, c := range chunks {
				if len(c) > tt.chunkSize {
					t.Errorf("chunk %d has %d chars, max is %d", i, len(c), tt.chunkSize)
				}
			}
		})
	}
}

func TestSplitCodePrefersBlankLines(t *testing.T) {
	block := "func a() {\n\tdoWork()\n}\n"
	code := strings.Repeat(block+"\n", 20)

	chunks := SplitCode(code, 200, 0)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 200 {
			t.Errorf("chunk %d has %d chars, max is 200", i, len(c))
		}
		// Cutting at blank lines keeps every block whole.
		if strings.Count(c, "{") != strings.Count(c, "}") {
			t.Errorf("chunk %d splits a block: %q", i, c)
		}
	}
}

func TestSplitCodeShortInput(t *testing.T) {
	code := "package main"
	chunks := SplitCode(code, 100, 10)
	if len(chunks) != 1 || chunks[0] != code {
		t.Errorf("SplitCode(%q) = %v, want single identical chunk", code, chunks)
	}
}
