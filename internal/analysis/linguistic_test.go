package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeFormality_Informal(t *testing.T) {
	f := analyzeFormality("yo what's up, gonna crush it lol, IT'S AWESOME")
	assert.Equal(t, "informal", f.Label)
	assert.Greater(t, f.Confidence, 0.0)
}

func TestAnalyzeFormality_Formal(t *testing.T) {
	f := analyzeFormality("The quarterly results demonstrate consistent growth across all regions.")
	assert.Equal(t, "formal", f.Label)
}

func TestAnalyzeTone_Boundaries(t *testing.T) {
	assert.Equal(t, "positive", analyzeTone("This is an amazing, wonderful, great success.").Label)
	assert.Equal(t, "negative", analyzeTone("This is a terrible, awful failure.").Label)
	assert.Equal(t, "neutral", analyzeTone("The meeting is scheduled for Tuesday.").Label)
}

func TestStyleVector_EmptyText(t *testing.T) {
	vec := styleVector("")
	assert.Len(t, vec, styleVectorDim)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestStyleVector_UnitNorm(t *testing.T) {
	vec := styleVector("the quick brown fox jumps over the lazy dog")
	var magnitude float64
	for _, v := range vec {
		magnitude += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(magnitude), 1e-9)
}

func TestStyleVector_Deterministic(t *testing.T) {
	a := styleVector("repeatable input text")
	b := styleVector("repeatable input text")
	assert.Equal(t, a, b)
}
