// Package render implements the C8 template renderer (spec §4.8): it emits
// a valid OOXML (.docx) document from a TemplateJson + ContextJson pair,
// and separately supports a placeholder-substitution pass over an already
// rendered template document.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/brillob/dtce/internal/types"
	"github.com/brillob/dtce/internal/types/interfaces"
)

// Options mirrors spec §4.8's RenderOptions.
type Options struct {
	IncludeLogos                     bool
	IncludeTemplateLogosFromStorage  bool
	EmitPlaceholderForMissingContent bool
	ContentOverrides                 map[string]string
	LogoOverrides                    map[string][]byte
}

const (
	twipsPerMM  = 56.69
	emuPerPixel = 9525
)

// Render builds a complete .docx package from template + context under
// options, returning the raw file bytes.
func Render(ctx context.Context, store interfaces.ObjectStore, template types.TemplateJson, contextJson types.ContextJson, opts Options) ([]byte, error) {
	b := newBuilder()

	styleXML := buildStyles(template.VisualTheme.FontMap)

	var bodyBuf bytes.Buffer
	if opts.IncludeLogos {
		logoXML, err := renderLogos(ctx, store, b, template.LogoMap, opts)
		if err != nil {
			return nil, err
		}
		bodyBuf.WriteString(logoXML)
	}

	overrides := lowerKeys(opts.ContentOverrides)
	blocksByID := blocksByPlaceholderID(contextJson.ContentBlocks)

	for _, sec := range template.SectionHierarchy.Sections {
		emitSection(&bodyBuf, sec, 1, overrides, blocksByID, opts)
	}

	if bodyBuf.Len() == 0 {
		bodyBuf.WriteString(paragraphXML("Normal", false, " "))
	}

	sectPr := sectionPropertiesXML(template.VisualTheme.LayoutRules)
	bodyBuf.WriteString(sectPr)

	documentXML := wrapDocument(bodyBuf.String())
	b.addPart("word/document.xml", []byte(documentXML))
	b.addPart("word/styles.xml", []byte(styleXML))
	b.finalizeRelationships()

	return b.build()
}

// TemplateRender is the spec §4.8 "template document emission" mode: a
// placeholder-only render used for downstream fill-in-the-blanks.
func TemplateRender(ctx context.Context, store interfaces.ObjectStore, template types.TemplateJson) ([]byte, error) {
	return Render(ctx, store, template, types.ContextJson{}, Options{
		IncludeLogos:                     true,
		IncludeTemplateLogosFromStorage:  true,
		EmitPlaceholderForMissingContent: true,
	})
}

func lowerKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

func blocksByPlaceholderID(blocks []types.ContentBlock) map[string]types.ContentBlock {
	out := make(map[string]types.ContentBlock, len(blocks))
	for _, b := range blocks {
		out[strings.ToLower(b.PlaceholderId)] = b
	}
	return out
}

func emitSection(buf *bytes.Buffer, sec types.Section, level int, overrides map[string]string, blocks map[string]types.ContentBlock, opts Options) {
	if level > 6 {
		level = 6
	}
	buf.WriteString(paragraphXML(fmt.Sprintf("Heading%d", level), false, sanitizeText(sec.SectionTitle)))

	key := strings.ToLower(sec.PlaceholderId)
	var content string
	var found bool
	if override, ok := overrides[key]; ok {
		content, found = override, true
	} else if block, ok := blocks[key]; ok {
		content, found = block.SectionSampleText, true
	}

	if found {
		for _, line := range splitNonEmptyLines(content) {
			buf.WriteString(paragraphXML("Normal", false, formatBodyLine(line)))
		}
	} else if opts.EmitPlaceholderForMissingContent {
		buf.WriteString(paragraphXML("Normal", true, "{{"+sec.PlaceholderId+"}}"))
	}

	for _, sub := range sec.SubSections {
		emitSection(buf, sub, level+1, overrides, blocks, opts)
	}
}

var lineSplitRe = regexp.MustCompile(`\r?\n`)

func splitNonEmptyLines(s string) []string {
	var out []string
	for _, line := range lineSplitRe.Split(s, -1) {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

func formatBodyLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "•") {
		rest := strings.TrimSpace(trimmed[1:])
		return "• " + rest
	}
	return sanitizeText(line)
}

// sanitizeText strips control characters other than TAB/LF/CR (spec §4.8
// step 6).
func sanitizeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '\t' || r == '\n' || r == '\r' || r >= 0x20 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func paragraphXML(style string, italic bool, text string) string {
	var rPr strings.Builder
	rPr.WriteString(`<w:rPr>`)
	if italic {
		rPr.WriteString(`<w:i/>`)
	}
	rPr.WriteString(`</w:rPr>`)
	return fmt.Sprintf(
		`<w:p><w:pPr><w:pStyle w:val="%s"/></w:pPr><w:r>%s<w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
		style, rPr.String(), escapeXML(text),
	)
}

func escapeXML(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return replacer.Replace(s)
}

func sectionPropertiesXML(layout types.LayoutRules) string {
	width := int(layout.PageWidthMM * twipsPerMM)
	height := int(layout.PageHeightMM * twipsPerMM)
	orient := ""
	if layout.Orientation == types.OrientationLandscape {
		orient = ` w:orient="landscape"`
	}
	top := int(layout.Margins.Top * twipsPerMM)
	bottom := int(layout.Margins.Bottom * twipsPerMM)
	left := int(layout.Margins.Left * twipsPerMM)
	right := int(layout.Margins.Right * twipsPerMM)
	return fmt.Sprintf(
		`<w:sectPr><w:pgSz w:w="%d" w:h="%d"%s/><w:pgMar w:top="%d" w:bottom="%d" w:left="%d" w:right="%d"/></w:sectPr>`,
		width, height, orient, top, bottom, left, right,
	)
}

func wrapDocument(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
		`xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing" ` +
		`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">` +
		`<w:body>` + body + `</w:body></w:document>`
}

func sortedByAssetID(logos []types.LogoAsset) []types.LogoAsset {
	out := append([]types.LogoAsset(nil), logos...)
	sort.Slice(out, func(i, j int) bool { return out[i].AssetId < out[j].AssetId })
	return out
}
