package service

import "testing"

func TestLanguageForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"cmd/rest/main.go", "go"},
		{"app/models/user.py", "python"},
		{"web/src/App.tsx", "typescript"},
		{"web/src/legacy.jsx", "javascript"},
		{"native/bridge.cc", "cpp"},
		{"schema/init.sql", "sql"},
		{"README.md", "markdown"},
		{"config/settings.toml", "toml"},
		{"Makefile", ""},
	}

	for _, tt := range tests {
		if got := languageForPath(tt.path); got != tt.want {
			t.Errorf("languageForPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
