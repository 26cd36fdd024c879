package docx

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/brillob/dtce/internal/types"
)

var (
	numberedRe = regexp.MustCompile(`^(\d+(\.\d+)*|[A-Z]\)|[IVXLC]+\.)\s+`)
	bulletedRe = regexp.MustCompile(`^(-|\*|•)\s+\S+`)
	wordRe     = regexp.MustCompile(`\b\w+\b`)
)

// paragraphFeatures is the Pass 1 feature vector of spec §4.5.2.
type paragraphFeatures struct {
	text            string
	wordCount       int
	endsWithColon   bool
	isNumbered      bool
	isBulleted      bool
	uppercaseRatio  float64
	styleID         string
	isHeadingStyle  bool
	styleLevel      int // 0 = none, else clamped [1,6]
	bold            bool
	italic          bool
	underline       bool
	fontSizePt      float64
	fontFamily      string
	color           string
	leftIndentTwips float64
	spaceBefore     float64
	spaceAfter      float64
	documentIndex   int
}

// extractParagraphFeatures walks every non-empty body paragraph and
// computes its Pass 1 feature vector, in document order.
func extractParagraphFeatures(body *node, styles map[string]styleInfo) []paragraphFeatures {
	var out []paragraphFeatures
	idx := 0
	for _, p := range body.children("p") {
		text := normalizeWhitespace(paragraphText(p))
		if strings.TrimSpace(text) == "" {
			continue
		}
		f := paragraphFeatures{
			text:          text,
			wordCount:     len(wordRe.FindAllString(text, -1)),
			endsWithColon: strings.HasSuffix(strings.TrimSpace(text), ":"),
			isNumbered:    numberedRe.MatchString(text),
			isBulleted:    bulletedRe.MatchString(text),
			documentIndex: idx,
		}
		f.uppercaseRatio = uppercaseRatio(text)

		pPr := p.find("pPr")
		if pPr != nil {
			if pStyle := pPr.find("pStyle"); pStyle != nil {
				if id, ok := pStyle.attr("val"); ok {
					f.styleID = id
				}
			}
			if ind := pPr.find("ind"); ind != nil {
				if v, ok := twipsAttr(ind, "left"); ok {
					f.leftIndentTwips = v
				} else if v, ok := twipsAttr(ind, "start"); ok {
					f.leftIndentTwips = v
				}
			}
			if spacing := pPr.find("spacing"); spacing != nil {
				if v, ok := twipsAttr(spacing, "before"); ok {
					f.spaceBefore = v
				}
				if v, ok := twipsAttr(spacing, "after"); ok {
					f.spaceAfter = v
				}
			}
		}

		// Style-derived defaults, overridden by any direct run formatting.
		font := defaultFont
		if f.styleID != "" {
			if info, ok := styles[f.styleID]; ok {
				font = info.Font
				f.isHeadingStyle = isHeadingStyleID(f.styleID) || isHeadingStyleID(info.DisplayName)
				f.styleLevel = styleLevelFromID(f.styleID, info.DisplayName)
			}
		}
		if run := firstRunWithText(p); run != nil {
			if rPr := run.find("rPr"); rPr != nil {
				font = overlayRunFont(font, rPr)
				f.bold = rPr.find("b") != nil
				f.italic = rPr.find("i") != nil
				f.underline = rPr.find("u") != nil
			}
		}
		f.fontFamily = font.Family
		f.fontSizePt = font.SizePt
		f.color = font.Color
		if font.Weight == "bold" {
			f.bold = true
		}

		out = append(out, f)
		idx++
	}
	return out
}

// paragraphText concatenates every w:t run's text within a paragraph,
// inserting a tab for w:tab, a newline for w:br and w:cr, and nothing for
// other run children.
func paragraphText(p *node) string {
	var b strings.Builder
	for _, r := range p.children("r") {
		for _, c := range r.Children {
			switch c.Local {
			case "t":
				b.WriteString(c.Text)
			case "tab":
				b.WriteString("\t")
			case "br", "cr":
				b.WriteString("\n")
			}
		}
	}
	// Hyperlinks wrap runs one level deeper.
	for _, hl := range p.children("hyperlink") {
		for _, r := range hl.children("r") {
			for _, c := range r.Children {
				if c.Local == "t" {
					b.WriteString(c.Text)
				}
			}
		}
	}
	return b.String()
}

func firstRunWithText(p *node) *node {
	for _, r := range p.children("r") {
		if t := r.find("t"); t != nil && strings.TrimSpace(t.Text) != "" {
			return r
		}
	}
	return nil
}

func overlayRunFont(base types.FontDefinition, rPr *node) types.FontDefinition {
	if fonts := rPr.find("rFonts"); fonts != nil {
		if ascii, ok := fonts.attr("ascii"); ok && ascii != "" {
			base.Family = ascii
		}
	}
	if sz := rPr.find("sz"); sz != nil {
		if val, ok := sz.attr("val"); ok {
			if halfPoints, err := strconv.Atoi(val); err == nil {
				base.SizePt = float64(halfPoints) / 2
			}
		}
	}
	if color := rPr.find("color"); color != nil {
		if val, ok := color.attr("val"); ok {
			base.Color = normalizeColor(val)
		}
	}
	if rPr.find("b") != nil {
		base.Weight = "bold"
	}
	return base
}

// isHeadingStyleID reports whether s begins (case-insensitively) with
// "Heading" or "Title" (spec §4.5.2).
func isHeadingStyleID(s string) bool {
	low := strings.ToLower(s)
	return strings.HasPrefix(low, "heading") || strings.HasPrefix(low, "title")
}

// styleLevelFromID extracts the trailing digit of a heading style
// (Title -> 1), clamped to [1,6]; returns 0 if neither id nor name names a
// heading/title style.
func styleLevelFromID(id, displayName string) int {
	for _, s := range []string{id, displayName} {
		low := strings.ToLower(s)
		if strings.HasPrefix(low, "title") {
			return 1
		}
		if strings.HasPrefix(low, "heading") {
			rest := strings.TrimSpace(low[len("heading"):])
			n, err := strconv.Atoi(strings.TrimSpace(rest))
			if err == nil {
				if n < 1 {
					n = 1
				}
				if n > 6 {
					n = 6
				}
				return n
			}
		}
	}
	return 0
}

func uppercaseRatio(s string) float64 {
	var upper, letters int
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
