package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompoundSentiment_Positive(t *testing.T) {
	score := compoundSentiment("This is absolutely amazing and wonderful")
	assert.Greater(t, score, 0.25)
}

func TestCompoundSentiment_Negative(t *testing.T) {
	score := compoundSentiment("This is a terrible, broken failure")
	assert.Less(t, score, -0.25)
}

func TestCompoundSentiment_NeutralWhenNoLexiconHits(t *testing.T) {
	score := compoundSentiment("The quarterly report is attached")
	assert.Zero(t, score)
}

func TestCompoundSentiment_BoosterAmplifies(t *testing.T) {
	plain := compoundSentiment("good")
	boosted := compoundSentiment("really good")
	assert.Greater(t, boosted, plain)
}

func TestNormalizeScore_Bounds(t *testing.T) {
	assert.Zero(t, normalizeScore(0))
	assert.Greater(t, normalizeScore(10), 0.0)
	assert.Less(t, normalizeScore(10), 1.0)
	assert.Less(t, normalizeScore(-10), 0.0)
}
