package docx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feat(text string, fontSize float64, bold bool, styleID string, styleLevel int, isHeadingStyle bool) paragraphFeatures {
	f := paragraphFeatures{
		text:           text,
		wordCount:      len(wordRe.FindAllString(text, -1)),
		fontSizePt:     fontSize,
		bold:           bold,
		styleID:        styleID,
		styleLevel:     styleLevel,
		isHeadingStyle: isHeadingStyle,
	}
	f.uppercaseRatio = uppercaseRatio(text)
	return f
}

func TestDetectHeadings_FontSizeOnly(t *testing.T) {
	body := "This is an ordinary body paragraph describing the project context in plain, unremarkable prose."
	paras := []paragraphFeatures{
		feat(body, 11, false, "", 0, false),
		feat(body, 11, false, "", 0, false),
		feat("EXECUTIVE SUMMARY", 18, false, "", 0, false),
		feat(body, 11, false, "", 0, false),
		feat("BACKGROUND", 14, false, "", 0, false),
		feat(body, 11, false, "", 0, false),
		feat(body, 11, false, "", 0, false),
	}

	headings := detectHeadings(paras)
	require.NotNil(t, headings[2])
	require.NotNil(t, headings[4])
	assert.Nil(t, headings[0])
	assert.Nil(t, headings[3])
	assert.Nil(t, headings[5])
	assert.Equal(t, 1, headings[2].level)
	assert.Equal(t, 2, headings[4].level)
}

func TestDetectHeadings_StyleLevelTakesPrecedence(t *testing.T) {
	paras := []paragraphFeatures{
		feat("Body copy that stays unremarkable and long enough to avoid any score bonus at all.", 11, false, "", 0, false),
		feat("Methodology", 11, false, "Heading3", 3, true),
	}
	headings := detectHeadings(paras)
	require.NotNil(t, headings[1])
	assert.Equal(t, 3, headings[1].level)
}

func TestDetectHeadings_BulletedNeverHeading(t *testing.T) {
	paras := []paragraphFeatures{
		{text: "Key Point", wordCount: 2, fontSizePt: 20, bold: true, isBulleted: true, uppercaseRatio: 1},
	}
	headings := detectHeadings(paras)
	assert.Nil(t, headings[0])
}

func TestNormalizeColor(t *testing.T) {
	assert.Equal(t, "#FFFFFF", normalizeColor("#fff"))
	assert.Equal(t, "#AABBCC", normalizeColor("#aabbcc"))
	assert.Equal(t, "#000000", normalizeColor("bogus"))
	assert.Equal(t, "#000000", normalizeColor("auto"))
}
