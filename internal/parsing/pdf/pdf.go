// Package pdf implements the C6 PDF document handler: a thin wrapper over
// github.com/ledongthuc/pdf that turns each page into one Section and each
// page with text into one ContentSection (spec §4.4.2).
package pdf

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/brillob/dtce/internal/apierrors"
	"github.com/brillob/dtce/internal/fetch"
	"github.com/brillob/dtce/internal/types"
	"github.com/brillob/dtce/internal/types/interfaces"
)

const maxSectionChars = 600

// Handler implements interfaces.DocumentHandler for DocumentTypePdf.
type Handler struct{}

func (Handler) Parse(ctx context.Context, jobReq types.JobRequest, store interfaces.ObjectStore) (*types.ParseResult, error) {
	data, err := fetch.Document(ctx, jobReq, store)
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apierrors.NewMalformedDocument("%v", err)
	}

	totalPages := reader.NumPage()
	sections := make([]types.Section, 0, totalPages)
	contentSections := make([]types.ContentSection, 0, totalPages)
	fontMap := make(map[string]types.FontDefinition)

	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text := pageText(page)
		text = strings.TrimSpace(text)
		title := "Page " + strconv.Itoa(i)
		placeholderId := "placeholder_section_" + strconv.Itoa(i)

		sections = append(sections, types.Section{SectionTitle: title, PlaceholderId: placeholderId})
		collectFonts(page, fontMap)

		if text == "" {
			continue
		}
		if len(text) > maxSectionChars {
			text = text[:maxSectionChars]
		}
		contentSections = append(contentSections, types.ContentSection{
			PlaceholderId: placeholderId,
			SectionTitle:  title,
			SampleText:    text,
			WordCount:     wordCount(text),
		})
	}

	return &types.ParseResult{
		TemplateJson: types.TemplateJson{
			VisualTheme: types.VisualTheme{
				FontMap: fontMap,
				LayoutRules: types.LayoutRules{
					PageWidthMM:  210,
					PageHeightMM: 297,
					Orientation:  types.OrientationPortrait,
					Margins:      types.Margins{Top: 25.4, Bottom: 25.4, Left: 25.4, Right: 25.4},
				},
			},
			SectionHierarchy: types.SectionHierarchy{Sections: sections},
		},
		ContentSections: contentSections,
	}, nil
}

func pageText(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err != nil {
		return ""
	}
	var b strings.Builder
	for _, row := range rows {
		for _, word := range row.Content {
			b.WriteString(word.S)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// collectFonts does a best-effort enumeration of the fonts referenced by
// page, falling back silently when the library exposes no font table for
// this page's resource dictionary.
func collectFonts(page pdf.Page, into map[string]types.FontDefinition) {
	defer func() { recover() }()
	for _, name := range page.Fonts() {
		if _, ok := into[name]; ok {
			continue
		}
		font := page.Font(name)
		family := font.BaseFont()
		if family == "" {
			family = name
		}
		into[name] = types.FontDefinition{Family: family, SizePt: 11, Weight: "normal", Color: "#000000"}
	}
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

