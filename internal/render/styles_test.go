package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brillob/dtce/internal/types"
)

func TestNormalizeColor(t *testing.T) {
	assert.Equal(t, "FF0000", normalizeColor("#ff0000"))
	assert.Equal(t, "FF00AA", normalizeColor("f0a"))
	assert.Equal(t, "000000", normalizeColor("not-a-color"))
	assert.Equal(t, "000000", normalizeColor(""))
}

func TestResolveHeadingFont_PrefersExplicitHeadingLevel(t *testing.T) {
	fontMap := map[string]types.FontDefinition{
		"heading 1": {Family: "Georgia", SizePt: 28, Color: "#111111"},
		"normal":    {Family: "Calibri", SizePt: 11, Color: "#000000"},
	}
	font := resolveHeadingFont(fontMap, 1, fontMap["normal"])
	assert.Equal(t, "Georgia", font.Family)
	assert.Equal(t, "bold", font.Weight)
}

func TestResolveHeadingFont_FallsBackToTitle(t *testing.T) {
	fontMap := map[string]types.FontDefinition{
		"title": {Family: "Garamond", SizePt: 30},
	}
	font := resolveHeadingFont(fontMap, 2, types.FontDefinition{})
	assert.Equal(t, "Garamond", font.Family)
	assert.Equal(t, "bold", font.Weight)
}

func TestResolveHeadingFont_FallsBackToNormal(t *testing.T) {
	normal := types.FontDefinition{Family: "Calibri", SizePt: 11}
	font := resolveHeadingFont(map[string]types.FontDefinition{}, 3, normal)
	assert.Equal(t, "Calibri", font.Family)
	assert.Equal(t, "bold", font.Weight)
}

func TestResolveHeadingFont_SynthesizesDefaultWithMinimumSize(t *testing.T) {
	font := resolveHeadingFont(map[string]types.FontDefinition{}, 6, types.FontDefinition{})
	assert.Equal(t, "Calibri", font.Family)
	assert.GreaterOrEqual(t, font.SizePt, 14.0)
}

func TestBuildStyles_EmitsAllHeadingLevels(t *testing.T) {
	xml := buildStyles(map[string]types.FontDefinition{})
	assert.Contains(t, xml, `w:styleId="Normal"`)
	for level := 1; level <= 6; level++ {
		assert.True(t, strings.Contains(xml, `w:styleId="Heading`+string(rune('0'+level))+`"`))
	}
}
