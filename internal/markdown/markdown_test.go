package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "paragraph",
			source: "Just a paragraph.",
			want:   "<p>Just a paragraph.</p>",
		},
		{
			name:   "heading",
			source: "# Morning Walk",
			want:   "<h1 id=\"morning-walk\">Morning Walk</h1>",
		},
		{
			name:   "emphasis",
			source: "some *emphasis* here",
			want:   "<em>emphasis</em>",
		},
		{
			name:   "gfm strikethrough",
			source: "~~never mind~~",
			want:   "<del>never mind</del>",
		},
		{
			name:   "gfm autolink",
			source: "see https://example.com for more",
			want:   "<a href=\"https://example.com\">",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.source)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("ToHTML(%q) = %q, want it to contain %q", tt.source, got, tt.want)
			}
		})
	}
}

// Raw HTML in user content must be escaped, never rendered.
func TestToHTMLEscapesRawHTML(t *testing.T) {
	got, err := ToHTML("hello <script>alert(1)</script>")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw HTML was passed through: %q", got)
	}
}

func TestToHTMLHighlightsFencedCode(t *testing.T) {
	got, err := ToHTML("```go\npackage main\n```")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if !strings.Contains(got, "<pre") {
		t.Errorf("fenced code block not rendered: %q", got)
	}
}
