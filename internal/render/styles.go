package render

import (
	"fmt"
	"strings"

	"github.com/brillob/dtce/internal/types"
)

var fallbackDefault = types.FontDefinition{Family: "Calibri", SizePt: 11, Weight: "normal", Color: "#000000"}

// buildStyles emits the Normal style and Heading1..Heading6, each BasedOn
// Normal, per spec §4.8 step 1.
func buildStyles(fontMap map[string]types.FontDefinition) string {
	normal := resolveFont(fontMap, "normal")
	if normal.Family == "" {
		normal = fallbackDefault
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`)
	b.WriteString(styleXML("Normal", "", normal, false))

	for level := 1; level <= 6; level++ {
		font := resolveHeadingFont(fontMap, level, normal)
		b.WriteString(styleXML(fmt.Sprintf("Heading%d", level), "Normal", font, true))
	}
	b.WriteString(`</w:styles>`)
	return b.String()
}

func resolveFont(fontMap map[string]types.FontDefinition, name string) types.FontDefinition {
	for k, v := range fontMap {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return types.FontDefinition{}
}

// resolveHeadingFont implements the fallback chain of spec §4.8 step 1:
// FontMap["heading N"] -> Title -> Normal -> a synthesized default.
func resolveHeadingFont(fontMap map[string]types.FontDefinition, level int, normal types.FontDefinition) types.FontDefinition {
	if f := resolveFont(fontMap, fmt.Sprintf("heading %d", level)); f.Family != "" {
		f.Weight = "bold"
		return f
	}
	if f := resolveFont(fontMap, "title"); f.Family != "" {
		f.Weight = "bold"
		return f
	}
	if normal.Family != "" {
		f := normal
		f.Weight = "bold"
		return f
	}
	size := 22 - 2*level
	if size < 14 {
		size = 14
	}
	return types.FontDefinition{Family: "Calibri", SizePt: float64(size), Weight: "bold", Color: "#000000"}
}

// styleXML emits one paragraph style. Run-properties element order is
// fixed per spec §4.8 step 1: RunFonts, Bold, FontSize, FontSizeComplexScript,
// Color.
func styleXML(id, basedOn string, font types.FontDefinition, forceBold bool) string {
	var rPr strings.Builder
	rPr.WriteString(fmt.Sprintf(`<w:rFonts w:ascii="%s" w:hAnsi="%s"/>`, font.Family, font.Family))
	if forceBold || font.Weight == "bold" {
		rPr.WriteString(`<w:b/>`)
	}
	halfPoints := int(font.SizePt * 2)
	rPr.WriteString(fmt.Sprintf(`<w:sz w:val="%d"/>`, halfPoints))
	rPr.WriteString(fmt.Sprintf(`<w:szCs w:val="%d"/>`, halfPoints))
	rPr.WriteString(fmt.Sprintf(`<w:color w:val="%s"/>`, normalizeColor(font.Color)))

	basedOnXML := ""
	if basedOn != "" {
		basedOnXML = fmt.Sprintf(`<w:basedOn w:val="%s"/>`, basedOn)
	}
	return fmt.Sprintf(`<w:style w:type="paragraph" w:styleId="%s">%s<w:rPr>%s</w:rPr></w:style>`, id, basedOnXML, rPr.String())
}

// normalizeColor implements spec §4.8 step 7. It applies the same rules as
// the parser-side normaliser in internal/parsing/docx/theme.go, but returns
// bare hex with no leading '#', as OOXML's w:color attribute requires.
func normalizeColor(raw string) string {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if !isHex6or3(s) {
		return "000000"
	}
	if len(s) == 3 {
		expanded := make([]byte, 0, 6)
		for _, c := range []byte(s) {
			expanded = append(expanded, c, c)
		}
		return strings.ToUpper(string(expanded))
	}
	return strings.ToUpper(s)
}

func isHex6or3(s string) bool {
	if len(s) != 3 && len(s) != 6 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
