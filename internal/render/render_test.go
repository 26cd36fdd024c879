package render

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brillob/dtce/internal/types"
)

func TestRender_ProducesValidZipWithCorePartsAndOverrides(t *testing.T) {
	template := types.TemplateJson{
		VisualTheme: types.VisualTheme{
			FontMap: map[string]types.FontDefinition{"normal": {Family: "Calibri", SizePt: 11, Color: "#000000"}},
			LayoutRules: types.LayoutRules{
				PageWidthMM: 210, PageHeightMM: 297, Orientation: types.OrientationPortrait,
				Margins: types.Margins{Top: 25.4, Bottom: 25.4, Left: 25.4, Right: 25.4},
			},
		},
		SectionHierarchy: types.SectionHierarchy{
			Sections: []types.Section{
				{SectionTitle: "Intro", PlaceholderId: "p1"},
				{SectionTitle: "Missing", PlaceholderId: "p2"},
				{SectionTitle: "Overridden", PlaceholderId: "p3"},
			},
		},
	}
	contextJson := types.ContextJson{
		ContentBlocks: []types.ContentBlock{
			{PlaceholderId: "p1", SectionSampleText: "Hello world"},
		},
	}

	data, err := Render(context.Background(), nil, template, contextJson, Options{
		EmitPlaceholderForMissingContent: true,
		ContentOverrides:                 map[string]string{"P3": "Override body"},
	})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	names := map[string]bool{}
	var doc []byte
	for _, f := range zr.File {
		names[f.Name] = true
		if f.Name == "word/document.xml" {
			r, err := f.Open()
			require.NoError(t, err)
			doc, err = io.ReadAll(r)
			require.NoError(t, err)
			r.Close()
		}
	}
	assert.True(t, names["word/document.xml"])
	assert.True(t, names["word/styles.xml"])
	assert.True(t, names["[Content_Types].xml"])
	assert.True(t, names["_rels/.rels"])
	assert.True(t, names["word/_rels/document.xml.rels"])

	body := string(doc)
	assert.Contains(t, body, "Hello world")
	assert.Contains(t, body, "{{p2}}")
	assert.Contains(t, body, "Override body")
}

func TestRender_EmptyBodyEmitsPlaceholderParagraph(t *testing.T) {
	data, err := Render(context.Background(), nil, types.TemplateJson{}, types.ContextJson{}, Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	doc := extractPart(t, data, "word/document.xml")
	assert.Contains(t, string(doc), `<w:t xml:space="preserve"> </w:t>`)
}

func TestSanitizeText_StripsControlCharsKeepsWhitespace(t *testing.T) {
	assert.Equal(t, "hello\tworld\n", sanitizeText("hel\x00lo\tworld\n"))
}

func TestFormatBodyLine_BulletNormalization(t *testing.T) {
	assert.Equal(t, "• item one", formatBodyLine("- item one"))
	assert.Equal(t, "• item two", formatBodyLine("* item two"))
}

func TestEscapeXML(t *testing.T) {
	assert.Equal(t, "a &amp; b &lt;c&gt;", escapeXML("a & b <c>"))
}
