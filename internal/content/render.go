// Package content converts user-authored markdown into sanitized HTML
// for assembled views. Raw markdown is what the store keeps; rendering
// happens on the read path.
package content

import (
	"bytes"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer is safe for concurrent use; goldmark parsers and bluemonday
// policies are stateless after construction.
type Renderer struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewRenderer builds the GFM markdown pipeline with a UGC sanitation
// policy.
func NewRenderer() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowImages()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)

	return &Renderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				ghtml.WithHardWraps(),
			),
		),
		policy: policy,
	}
}

// Render converts markdown to sanitized HTML. On a conversion failure
// the escaped source is returned so a view never carries raw input.
func (r *Renderer) Render(source string) string {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(source), &buf); err != nil {
		return html.EscapeString(source)
	}

	return string(r.policy.SanitizeBytes(buf.Bytes()))
}
