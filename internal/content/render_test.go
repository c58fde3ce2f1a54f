package content_test

import (
	"testing"

	"github.com/askstack/askstack/internal/content"
	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()
	r := content.NewRenderer()

	out := r.Render("**bold** and `code`")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<code>code</code>")
}

func TestRenderStripsScripts(t *testing.T) {
	t.Parallel()
	r := content.NewRenderer()

	out := r.Render("hello <script>alert(1)</script> world")
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "alert(1)")
}

func TestRenderGFMTable(t *testing.T) {
	t.Parallel()
	r := content.NewRenderer()

	out := r.Render("| a | b |\n|---|---|\n| 1 | 2 |")
	assert.Contains(t, out, "<table>")
}

func TestRenderLinkHardening(t *testing.T) {
	t.Parallel()
	r := content.NewRenderer()

	out := r.Render("[docs](https://example.com)")
	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, "noreferrer")
}
