package html

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text is trimmed", "  장발장의 이야기 ", "장발장의 이야기"},
		{"keeps angle brackets in prose", "a < b and c > d", "a < b and c > d"},
		{"paragraphs", "<p>첫 문단</p><p>둘째 문단</p>", "첫 문단\n둘째 문단"},
		{"line breaks", "one<br>two<br/>three", "one\ntwo\nthree"},
		{"entities", "Tom &amp; Jerry&nbsp;&nbsp;show", "Tom & Jerry show"},
		{"drops scripts and styles", "<style>p{}</style><p>text</p><script>x()</script>", "text"},
		{"drops comments", "<!-- hidden -->shown", "shown"},
		{"inline tags", `<span class="a">Les <b>Mis</b></span>`, "Les Mis"},
		{"image only", `<img src="poster.jpg">`, ""},
		{"blank", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}
