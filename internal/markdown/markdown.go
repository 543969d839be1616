// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markdown renders Markdown to standalone HTML documents and parses
// it into a block tree for structural export.
package markdown

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// DocumentTitle is the <title> of every rendered document.
const DocumentTitle = "Markdown Export"

//go:embed style.css
var stylesheet string

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}}</title>
  <style>{{.CSS}}</style>
</head>
<body>
  <div class="markdown-body">
{{.Body}}
  </div>
</body>
</html>
`))

type page struct {
	Title string
	CSS   template.CSS
	Body  template.HTML
}

// newMarkdown builds the goldmark pipeline shared by rendering and parsing:
// GitHub-flavoured tables, task lists, strikethrough and autolinks, plus
// footnotes and definition lists. Soft line breaks render as hard breaks
// and raw HTML is passed through.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.DefinitionList,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithUnsafe(),
		),
	)
}

// Renderer turns Markdown into a complete HTML document with embedded
// styling. It holds no per-call state and is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{md: newMarkdown()}
}

// Render converts markdownText into a standalone HTML document.
// Whitespace-only input yields a document with an empty body.
func (r *Renderer) Render(markdownText string) (string, error) {
	var body bytes.Buffer
	if strings.TrimSpace(markdownText) != "" {
		if err := r.md.Convert([]byte(markdownText), &body); err != nil {
			return "", fmt.Errorf("rendering markdown: %w", err)
		}
	}

	var out bytes.Buffer
	err := pageTemplate.Execute(&out, page{
		Title: DocumentTitle,
		CSS:   template.CSS(stylesheet),
		Body:  template.HTML(strings.TrimSpace(body.String())),
	})
	if err != nil {
		return "", fmt.Errorf("rendering page template: %w", err)
	}
	return out.String(), nil
}

// Document is a parsed Markdown block tree together with the source it
// indexes into. Text segments in the tree are only meaningful against
// Source.
type Document struct {
	Root   ast.Node
	Source []byte
}

// Parser turns Markdown into a Document.
type Parser struct {
	md goldmark.Markdown
}

// NewParser creates a Parser using the same extensions as the Renderer.
func NewParser() *Parser {
	return &Parser{md: newMarkdown()}
}

// Parse builds the block tree for markdownText.
func (p *Parser) Parse(markdownText string) *Document {
	src := []byte(markdownText)
	root := p.md.Parser().Parse(text.NewReader(src))
	return &Document{Root: root, Source: src}
}
