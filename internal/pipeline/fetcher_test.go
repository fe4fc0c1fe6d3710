package pipeline

import "testing"

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"watch URL", "https://www.youtube.com/watch?v=BaW_jenozKc", "BaW_jenozKc"},
		{"watch URL with extra params", "https://www.youtube.com/watch?v=BaW_jenozKc&t=42s", "BaW_jenozKc"},
		{"short link", "https://youtu.be/BaW_jenozKc", "BaW_jenozKc"},
		{"shorts", "https://www.youtube.com/shorts/BaW_jenozKc", "BaW_jenozKc"},
		{"embed", "https://www.youtube.com/embed/BaW_jenozKc", "BaW_jenozKc"},
		{"mobile host", "https://m.youtube.com/watch?v=BaW_jenozKc", "BaW_jenozKc"},
		{"unrelated host", "https://vimeo.com/123456", ""},
		{"not a url", "not a url at all", ""},
		{"id too short", "https://youtu.be/short", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractVideoID(tc.url); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}
