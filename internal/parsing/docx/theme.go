package docx

import (
	"strconv"
	"strings"

	"github.com/brillob/dtce/internal/types"
)

var defaultFont = types.FontDefinition{Family: "Calibri", SizePt: 11, Weight: "normal", Color: "#000000"}

// extractTheme builds the VisualTheme from the styles part and the body's
// first SectionProperties (spec §4.5.1). order gives the styleId sequence
// from word/styles.xml so the "first three distinct non-default colors
// seen" palette (spec §4.5.1) is built in document order rather than Go's
// randomized map iteration order, keeping parses of the same input
// idempotent (spec §8).
func extractTheme(styles map[string]styleInfo, order []string, body *node) (types.VisualTheme, error) {
	fontMap := make(map[string]types.FontDefinition)
	var seenColors []string
	seen := map[string]bool{"#000000": true}

	for _, id := range order {
		info := styles[id]
		fontMap[info.DisplayName] = info.Font
		if info.Font.Color != "#000000" && !seen[info.Font.Color] {
			seen[info.Font.Color] = true
			seenColors = append(seenColors, info.Font.Color)
		}
	}

	palette := make([]types.ColorSwatch, 0, 3)
	labels := []string{"primary", "secondary", "accent"}
	for i := 0; i < len(seenColors) && i < 3; i++ {
		palette = append(palette, types.ColorSwatch{Name: labels[i], HexCode: seenColors[i]})
	}

	layout := extractLayoutRules(body)

	return types.VisualTheme{
		ColorPalette: palette,
		FontMap:      fontMap,
		LayoutRules:  layout,
	}, nil
}

// fontFromRunProps resolves a FontDefinition from a w:rPr node, falling
// back to defaultFont for any unresolved field.
func fontFromRunProps(rPr *node) types.FontDefinition {
	def := defaultFont
	if rPr == nil {
		return def
	}
	if fonts := rPr.find("rFonts"); fonts != nil {
		if ascii, ok := fonts.attr("ascii"); ok && ascii != "" {
			def.Family = ascii
		}
	}
	if sz := rPr.find("sz"); sz != nil {
		if val, ok := sz.attr("val"); ok {
			if halfPoints, err := strconv.Atoi(val); err == nil {
				def.SizePt = float64(halfPoints) / 2
			}
		}
	}
	if rPr.find("b") != nil {
		def.Weight = "bold"
	}
	if color := rPr.find("color"); color != nil {
		if val, ok := color.attr("val"); ok {
			def.Color = normalizeColor(val)
		}
	}
	return def
}

// normalizeColor is the parser-side color normaliser: strip '#', expand
// 3-digit hex, uppercase 6-digit hex, and map anything else (including
// OOXML's literal "auto") to black. The result always carries a leading '#'.
func normalizeColor(raw string) string {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if strings.EqualFold(s, "auto") {
		return "#000000"
	}
	if len(s) == 3 && isHex(s) {
		expanded := make([]byte, 0, 6)
		for _, c := range []byte(s) {
			expanded = append(expanded, c, c)
		}
		return "#" + strings.ToUpper(string(expanded))
	}
	if len(s) == 6 && isHex(s) {
		return "#" + strings.ToUpper(s)
	}
	return "#000000"
}

func isHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return len(s) > 0
}

const twipsToMM = 0.01764

// extractLayoutRules reads the first SectionProperties of the body (spec
// §4.5.1), defaulting to A4 portrait with 1-inch margins.
func extractLayoutRules(body *node) types.LayoutRules {
	layout := types.LayoutRules{
		PageWidthMM:  210,
		PageHeightMM: 297,
		Orientation:  types.OrientationPortrait,
		Margins:      types.Margins{Top: 25.4, Bottom: 25.4, Left: 25.4, Right: 25.4},
	}
	if body == nil {
		return layout
	}
	sectPr := body.find("sectPr")
	if sectPr == nil {
		return layout
	}
	width, height := layout.PageWidthMM, layout.PageHeightMM
	orientation := types.OrientationPortrait
	if pgSz := sectPr.find("pgSz"); pgSz != nil {
		if w, ok := twipsAttr(pgSz, "w"); ok {
			width = w * twipsToMM
		}
		if h, ok := twipsAttr(pgSz, "h"); ok {
			height = h * twipsToMM
		}
		if orient, ok := pgSz.attr("orient"); ok && strings.EqualFold(orient, "landscape") {
			orientation = types.OrientationLandscape
		}
	}
	if orientation == types.OrientationLandscape && width < height {
		width, height = height, width
	}
	layout.PageWidthMM = width
	layout.PageHeightMM = height
	layout.Orientation = orientation

	if pgMar := sectPr.find("pgMar"); pgMar != nil {
		if v, ok := twipsAttr(pgMar, "top"); ok {
			layout.Margins.Top = v * twipsToMM
		}
		if v, ok := twipsAttr(pgMar, "bottom"); ok {
			layout.Margins.Bottom = v * twipsToMM
		}
		if v, ok := twipsAttr(pgMar, "left"); ok {
			layout.Margins.Left = v * twipsToMM
		}
		if v, ok := twipsAttr(pgMar, "right"); ok {
			layout.Margins.Right = v * twipsToMM
		}
	}
	return layout
}

func twipsAttr(n *node, name string) (float64, bool) {
	val, ok := n.attr(name)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
