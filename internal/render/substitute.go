package render

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	paragraphRe  = regexp.MustCompile(`(?s)<w:p\b[^>]*>.*?</w:p>`)
	textTagRe    = regexp.MustCompile(`(?s)<w:t[^>]*>(.*?)</w:t>`)
	placeholdRe  = regexp.MustCompile(`^\{\{([^}]+)\}\}$`)
	docPropsRe   = regexp.MustCompile(`<wp:docPr[^>]*\bname="([^"]*)"`)
	blipEmbedRe  = regexp.MustCompile(`<a:blip[^>]*\br:embed="([^"]*)"`)
	relTargetRe  = func(id string) *regexp.Regexp {
		return regexp.MustCompile(`<Relationship Id="` + regexp.QuoteMeta(id) + `"[^>]*Target="([^"]*)"`)
	}
)

// Substitute implements spec §4.8's placeholder-substitution pass: open an
// existing placeholder DOCX, replace every paragraph whose text is exactly
// "{{id}}" with content from contentOverrides (or drop it if absent), and
// rewrite any logo part whose Drawing name matches an id in logoOverrides.
func Substitute(docxBytes []byte, contentOverrides map[string]string, logoOverrides map[string][]byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(docxBytes), int64(len(docxBytes)))
	if err != nil {
		return nil, fmt.Errorf("render: open placeholder docx: %w", err)
	}

	parts := make(map[string][]byte, len(zr.File))
	var order []string
	for _, f := range zr.File {
		data, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		parts[f.Name] = data
		order = append(order, f.Name)
	}

	overrides := lowerKeys(contentOverrides)
	logos := lowerKeyBytes(logoOverrides)

	if doc, ok := parts["word/document.xml"]; ok {
		parts["word/document.xml"] = substituteParagraphs(doc, overrides)
	}
	if doc, ok := parts["word/document.xml"]; ok {
		if rels, ok2 := parts["word/_rels/document.xml.rels"]; ok2 {
			substituteLogos(doc, rels, parts, logos)
		}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(parts[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func substituteParagraphs(doc []byte, overrides map[string]string) []byte {
	return paragraphRe.ReplaceAllFunc(doc, func(para []byte) []byte {
		text := paragraphText(para)
		m := placeholdRe.FindStringSubmatch(strings.TrimSpace(text))
		if m == nil {
			return para
		}
		id := strings.ToLower(strings.TrimSpace(m[1]))
		content, ok := overrides[id]
		if !ok {
			return nil
		}
		var replacement strings.Builder
		for _, line := range splitNonEmptyLines(content) {
			replacement.WriteString(paragraphXML("Normal", false, formatBodyLine(line)))
		}
		return []byte(replacement.String())
	})
}

func paragraphText(para []byte) string {
	var b strings.Builder
	for _, m := range textTagRe.FindAllSubmatch(para, -1) {
		b.Write(m[1])
	}
	return b.String()
}

// substituteLogos rewrites media part bytes in place for every Drawing
// whose docPr name matches a key in logoOverrides.
func substituteLogos(doc, rels []byte, parts map[string][]byte, logoOverrides map[string][]byte) {
	names := docPropsRe.FindAllSubmatch(doc, -1)
	embeds := blipEmbedRe.FindAllSubmatch(doc, -1)
	if len(names) != len(embeds) {
		return // drawing/blip pairing is ambiguous without full XML parsing; skip
	}
	for i, nameMatch := range names {
		name := strings.ToLower(string(nameMatch[1]))
		data, ok := logoOverrides[name]
		if !ok {
			continue
		}
		rID := string(embeds[i][1])
		targetMatch := relTargetRe(rID).FindSubmatch(rels)
		if targetMatch == nil {
			continue
		}
		target := "word/" + string(targetMatch[1])
		parts[target] = data
	}
}
