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

func TestSubstitute_ReplacesPlaceholderParagraph(t *testing.T) {
	template := types.TemplateJson{
		SectionHierarchy: types.SectionHierarchy{
			Sections: []types.Section{{SectionTitle: "Intro", PlaceholderId: "p1"}},
		},
	}
	placeholderDocx, err := TemplateRender(context.Background(), nil, template)
	require.NoError(t, err)

	out, err := Substitute(placeholderDocx, map[string]string{"p1": "Final content"}, nil)
	require.NoError(t, err)

	doc := extractPart(t, out, "word/document.xml")
	assert.Contains(t, string(doc), "Final content")
	assert.NotContains(t, string(doc), "{{p1}}")
}

func TestSubstitute_DropsParagraphWithNoOverride(t *testing.T) {
	template := types.TemplateJson{
		SectionHierarchy: types.SectionHierarchy{
			Sections: []types.Section{{SectionTitle: "Intro", PlaceholderId: "p1"}},
		},
	}
	placeholderDocx, err := TemplateRender(context.Background(), nil, template)
	require.NoError(t, err)

	out, err := Substitute(placeholderDocx, nil, nil)
	require.NoError(t, err)

	doc := extractPart(t, out, "word/document.xml")
	assert.NotContains(t, string(doc), "{{p1}}")
	assert.NotContains(t, string(doc), "Final content")
}

func extractPart(t *testing.T, docxBytes []byte, name string) []byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(docxBytes), int64(len(docxBytes)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == name {
			r, err := f.Open()
			require.NoError(t, err)
			defer r.Close()
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			return data
		}
	}
	t.Fatalf("part %q not found", name)
	return nil
}
