package email

import "testing"

func TestPlainText(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "strips tags",
			html:     "<p>Hello <strong>Ann</strong></p>",
			expected: "Hello Ann",
		},
		{
			name:     "paragraphs become separate lines",
			html:     "<p>First</p><p>Second</p>",
			expected: "First\nSecond",
		},
		{
			name:     "line breaks preserved",
			html:     "line one<br>line two<br/>line three",
			expected: "line one\nline two\nline three",
		},
		{
			name:     "headings separated from body",
			html:     "<h1>Welcome</h1><p>Thanks for joining.</p>",
			expected: "Welcome\nThanks for joining.",
		},
		{
			name:     "entities decoded",
			html:     "<p>Fish &amp; Chips &lt;daily&gt; &quot;special&quot;</p>",
			expected: "Fish & Chips <daily> \"special\"",
		},
		{
			name:     "blank lines collapsed",
			html:     "<div>  </div><div>content</div><div>   </div>",
			expected: "content",
		},
		{
			name:     "empty input",
			html:     "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.html); got != tt.expected {
				t.Errorf("PlainText() = %q, want %q", got, tt.expected)
			}
		})
	}
}
