// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package spreadsheet

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

// BlockText returns the plain text of a block node. Paragraph-like blocks
// yield their inline text, fenced code yields its lines verbatim, and any
// other block with block children yields the children's text joined by
// single spaces. The result is trimmed.
func BlockText(n ast.Node, source []byte) string {
	var b strings.Builder

	switch node := n.(type) {
	case *ast.Paragraph, *ast.TextBlock, *ast.Heading, *east.TableCell:
		b.WriteString(InlineText(node.FirstChild(), source))
	case *ast.FencedCodeBlock:
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(source))
		}
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if c.Type() != ast.TypeBlock {
				continue
			}
			if text := BlockText(c, source); text != "" {
				b.WriteString(text)
				b.WriteByte(' ')
			}
		}
	}

	return strings.TrimSpace(b.String())
}

// InlineText walks first and its following siblings and returns their
// plain text.
func InlineText(first ast.Node, source []byte) string {
	var b strings.Builder
	for n := first; n != nil; n = n.NextSibling() {
		writeInline(&b, n, source)
	}
	return b.String()
}

func writeInline(b *strings.Builder, n ast.Node, source []byte) {
	switch node := n.(type) {
	case *ast.Text:
		b.Write(node.Segment.Value(source))
		if node.SoftLineBreak() || node.HardLineBreak() {
			b.WriteByte(' ')
		}
	case *ast.String:
		b.Write(node.Value)
	case *ast.CodeSpan:
		b.WriteString(codeSpanText(node, source))
	case *ast.Link:
		b.WriteString(linkText(node.Title, node.Destination, node.FirstChild(), source))
	case *ast.Image:
		b.WriteString(linkText(node.Title, node.Destination, node.FirstChild(), source))
	case *ast.AutoLink:
		b.Write(node.URL(source))
	case *ast.RawHTML:
		// Markup carries no cell text.
	default:
		if n.HasChildren() {
			b.WriteString(InlineText(n.FirstChild(), source))
		}
	}
}

// linkText picks the title, else the destination, else the text of the
// first child.
func linkText(title, destination []byte, first ast.Node, source []byte) string {
	switch {
	case len(title) > 0:
		return string(title)
	case len(destination) > 0:
		return string(destination)
	case first != nil:
		var b strings.Builder
		writeInline(&b, first, source)
		return b.String()
	}
	return ""
}

// codeSpanText returns the literal content of a code span. Line endings
// inside the span read as spaces.
func codeSpanText(n *ast.CodeSpan, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
		case *ast.String:
			b.Write(t.Value)
		}
	}
	return strings.ReplaceAll(b.String(), "\n", " ")
}
