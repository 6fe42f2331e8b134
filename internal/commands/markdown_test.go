package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	src := `# Title

Some *para* text.

1. one
2. two

- loose
- items

See [the site](https://example.com).

    code here
`
	out := RenderMarkdown(src)
	assert.Contains(t, out, "TITLE\n\n")
	assert.Contains(t, out, "Some para text.")
	assert.Contains(t, out, "1. one\n2. two\n")
	assert.Contains(t, out, "• loose\n• items\n")
	assert.Contains(t, out, "the site (https://example.com)")
	assert.Contains(t, out, "    code here\n")
	assert.NotContains(t, out, "*")
	assert.NotContains(t, out, "#")
}

func TestRenderMarkdownEmpty(t *testing.T) {
	assert.Empty(t, RenderMarkdown(""))
	assert.Empty(t, RenderMarkdown("  \n"))
}

func TestRenderMarkdownInlineCode(t *testing.T) {
	assert.Equal(t, "run x now\n", RenderMarkdown("run `x` now"))
}
