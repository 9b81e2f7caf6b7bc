package agent

import (
	"strings"
	"testing"

	"bytebuddhi-be/pkg/retrieval"
)

func TestTruncateFragments(t *testing.T) {
	frag := func(source string, size int, score float32) retrieval.Fragment {
		return retrieval.Fragment{
			Source:  source,
			Content: strings.Repeat("x", size),
			Score:   score,
		}
	}

	tests := []struct {
		name        string
		fragments   []retrieval.Fragment
		budget      int
		wantSources []string
	}{
		{
			name:        "all fit",
			fragments:   []retrieval.Fragment{frag("a.go", 100, 0.9), frag("b.go", 100, 0.8)},
			budget:      300,
			wantSources: []string{"a.go", "b.go"},
		},
		{
			name:        "tail dropped first",
			fragments:   []retrieval.Fragment{frag("a.go", 100, 0.9), frag("b.go", 100, 0.8), frag("c.go", 100, 0.7)},
			budget:      250,
			wantSources: []string{"a.go", "b.go"},
		},
		{
			name:        "empty input",
			fragments:   nil,
			budget:      100,
			wantSources: nil,
		},
		{
			name:        "oversized top fragment is clipped not dropped",
			fragments:   []retrieval.Fragment{frag("big.go", 500, 0.9)},
			budget:      100,
			wantSources: []string{"big.go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept := truncateFragments(tt.fragments, tt.budget)

			if len(kept) != len(tt.wantSources) {
				t.Fatalf("kept %d fragments, want %d", len(kept), len(tt.wantSources))
			}
			total := 0
			for i, f := range kept {
				if f.Source != tt.wantSources[i] {
					t.Errorf("kept[%d].Source = %q, want %q", i, f.Source, tt.wantSources[i])
				}
				total += len(f.Content)
			}
			if total > tt.budget {
				t.Errorf("kept %d chars, budget is %d", total, tt.budget)
			}
		})
	}
}
