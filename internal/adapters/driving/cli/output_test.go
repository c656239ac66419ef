package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"Source", "Created"},
		[][]string{{"kofic", "12"}, {"cgv"}},
		[]columnAlignment{alignLeft, alignRight},
	)

	lines := strings.Split(out, "\n")
	assert.Contains(t, out, "SOURCE")
	assert.Contains(t, out, "kofic")
	assert.Contains(t, out, "12")
	assert.Len(t, lines, 6, "border, header, separator, two rows, border")
	assert.Empty(t, renderTable(nil, nil, nil))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(new(bytes.Buffer)))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "파묘", truncate("파묘", 2))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
