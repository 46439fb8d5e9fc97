package fps

import "testing"

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "hello", "hello"},
		{"cdata wrapper", "<![CDATA[wrapped]]>", "wrapped"},
		{"cdata multiline", "<![CDATA[line one\nline two]]>", "line one\nline two"},
		{"entities", "a &amp; b &lt;= c", "a & b <= c"},
		{"numeric entity", "&#65;BC", "ABC"},
		{"surrounding whitespace", "  \n\tpadded\n  ", "padded"},
		{"cdata then entities", "<![CDATA[x &gt; y]]>", "x > y"},
		{"multiple cdata blocks", "<![CDATA[a]]> and <![CDATA[b]]>", "a and b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeText(tt.in); got != tt.want {
				t.Fatalf("SanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
