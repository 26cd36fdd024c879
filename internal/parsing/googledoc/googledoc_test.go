package googledoc

import (
	"bytes"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadingLevel(t *testing.T) {
	assert.Equal(t, 1, headingLevel("h1"))
	assert.Equal(t, 4, headingLevel("h4"))
	assert.Equal(t, 0, headingLevel("p"))
	assert.Equal(t, 0, headingLevel("h5"))
}

func TestExtractDocID(t *testing.T) {
	assert.Equal(t, "abc123", extractDocID("https://docs.google.com/document/d/abc123/edit"))
	assert.Equal(t, "abc123", extractDocID("https://docs.google.com/document/d/abc123"))
	assert.Empty(t, extractDocID("https://example.com/not-a-doc"))
}

func TestStripBoilerplate_FallsBackWhenArticleTooShort(t *testing.T) {
	html := []byte(`<html><body><p>hi</p></body></html>`)
	out := stripBoilerplate(html, "https://docs.google.com/document/d/abc/export?format=html")
	assert.Equal(t, html, out)
}

func TestBuildHierarchy_NestedHeadingsAndSiblingRoots(t *testing.T) {
	html := `<html><body>
		<h1>Chapter One</h1>
		<p>Intro paragraph with enough words to survive conversion.</p>
		<h2>Section 1.1</h2>
		<p>Nested content under section one one.</p>
		<h1>Chapter Two</h1>
		<p>Second chapter body text goes here.</p>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(html)))
	require.NoError(t, err)

	hierarchy, sections := buildHierarchy(doc, "https://docs.google.com/document/d/abc/export")

	require.Len(t, hierarchy.Sections, 2)
	assert.Equal(t, "Chapter One", hierarchy.Sections[0].SectionTitle)
	require.Len(t, hierarchy.Sections[0].SubSections, 1)
	assert.Equal(t, "Section 1.1", hierarchy.Sections[0].SubSections[0].SectionTitle)
	assert.Equal(t, "Chapter Two", hierarchy.Sections[1].SectionTitle)
	assert.Empty(t, hierarchy.Sections[1].SubSections)

	assert.Len(t, sections, 3)
	for _, s := range sections {
		assert.NotEmpty(t, s.SampleText)
		assert.Greater(t, s.WordCount, 0)
	}
}

func TestBuildHierarchy_EmptyBodyProducesNoSections(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(`<html><body></body></html>`)))
	require.NoError(t, err)

	hierarchy, sections := buildHierarchy(doc, "https://example.com")
	assert.Empty(t, hierarchy.Sections)
	assert.Empty(t, sections)
}
