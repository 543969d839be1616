// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docx exports Markdown as a Word document. The rendered HTML is
// stored inside a minimal WordprocessingML package as an alternative
// format chunk, which Word imports when the document is opened.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/pdiddy/md-converter/internal/markdown"
	"github.com/pdiddy/md-converter/pkg/types"
)

// Page setup in twentieths of a point: A4 with the PDF margins (18mm top
// and bottom, 16mm left and right).
const (
	pageWidthTwips    = 11906
	pageHeightTwips   = 16838
	marginTopTwips    = 1020
	marginSideTwips   = 907
	chunkRelationship = "htmlChunk"
	chunkPart         = "afchunk.htm"
)

// Exporter converts Markdown into a .docx file.
//
// The document body is a single w:altChunk holding the rendered HTML.
// Microsoft Word converts the chunk into native content when the file is
// opened; LibreOffice and Google Docs do not import altChunk parts and
// show an empty document.
type Exporter struct {
	renderer *markdown.Renderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewExporter creates an Exporter. A nil renderer uses the default one and
// a nil logger discards diagnostics.
func NewExporter(renderer *markdown.Renderer, logger *zap.Logger) *Exporter {
	if renderer == nil {
		renderer = markdown.NewRenderer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{renderer: renderer, logger: logger, now: time.Now}
}

// Export renders markdownText and writes the Word package to outputPath.
func (e *Exporter) Export(ctx context.Context, markdownText, outputPath string) (types.ExportSummary, error) {
	html, err := e.renderer.Render(markdownText)
	if err != nil {
		return types.ExportSummary{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.ExportSummary{}, err
	}

	title := DocumentTitle(html)
	f, err := os.Create(outputPath)
	if err != nil {
		return types.ExportSummary{}, fmt.Errorf("creating %s: %w", outputPath, err)
	}

	if err := Write(f, html, title, e.now().UTC()); err != nil {
		f.Close()
		if rmErr := os.Remove(outputPath); rmErr != nil {
			e.logger.Warn("removing partial document", zap.String("path", outputPath), zap.Error(rmErr))
		}
		return types.ExportSummary{}, fmt.Errorf("writing %s: %w", outputPath, err)
	}
	if err := f.Close(); err != nil {
		return types.ExportSummary{}, fmt.Errorf("closing %s: %w", outputPath, err)
	}

	e.logger.Info("word document written", zap.String("path", outputPath), zap.String("title", title))
	return types.ExportSummary{}, nil
}

// DocumentTitle returns the text of the first <h1> in html, else its
// <title>, else an empty string.
func DocumentTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// part is one file of the package.
type part struct {
	name    string
	content string
}

// Write streams a complete Word package embedding html to w.
func Write(w io.Writer, html, title string, created time.Time) error {
	core, err := coreXML(title, created)
	if err != nil {
		return fmt.Errorf("building core properties: %w", err)
	}

	zw := zip.NewWriter(w)
	parts := []part{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{"docProps/core.xml", core},
		{"word/document.xml", documentXML()},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/" + chunkPart, html},
	}
	for _, p := range parts {
		fw, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("adding %s: %w", p.name, err)
		}
		if _, err := io.WriteString(fw, p.content); err != nil {
			return fmt.Errorf("writing %s: %w", p.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing package: %w", err)
	}
	return nil
}

const contentTypesXML = xml.Header + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Default Extension="htm" ContentType="text/html"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
  <Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>
</Types>`

const packageRelsXML = xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>
</Relationships>`

const documentRelsXML = xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="` + chunkRelationship + `" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/aFChunk" Target="` + chunkPart + `"/>
</Relationships>`

func documentXML() string {
	return fmt.Sprintf(xml.Header+`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <w:body>
    <w:altChunk r:id="%s"/>
    <w:sectPr>
      <w:pgSz w:w="%d" w:h="%d"/>
      <w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="708" w:footer="708" w:gutter="0"/>
    </w:sectPr>
  </w:body>
</w:document>`,
		chunkRelationship,
		pageWidthTwips, pageHeightTwips,
		marginTopTwips, marginSideTwips, marginTopTwips, marginSideTwips)
}

func coreXML(title string, created time.Time) (string, error) {
	var escaped strings.Builder
	if err := xml.EscapeText(&escaped, []byte(title)); err != nil {
		return "", err
	}
	stamp := created.Format(time.RFC3339)
	return xml.Header + `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <dc:title>` + escaped.String() + `</dc:title>
  <dc:creator>md-converter</dc:creator>
  <dcterms:created xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:created>
  <dcterms:modified xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:modified>
</cp:coreProperties>`, nil
}
