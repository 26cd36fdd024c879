package analysis

import (
	"math"
	"strings"
)

// sentimentLexicon is a small valence-scored word list, sufficient for the
// positive/negative/neutral tone split spec §4.6 requires. No corpus repo
// ships a VADER-equivalent, so this stands in for one.
var sentimentLexicon = map[string]float64{
	"amazing": 3.0, "great": 2.7, "excellent": 3.0, "love": 2.8, "best": 2.6,
	"good": 1.8, "happy": 2.2, "wonderful": 2.9, "fantastic": 2.9, "crush": 1.5,
	"achieved": 1.2, "success": 1.8, "perfect": 2.5, "enjoy": 2.0, "nice": 1.5,
	"bad": -2.0, "terrible": -3.0, "awful": -2.8, "worst": -3.0, "hate": -2.9,
	"fail": -2.2, "failure": -2.4, "poor": -1.8, "disappointing": -2.0, "broken": -1.7,
	"sad": -1.8, "angry": -2.1, "problem": -1.0, "issue": -0.8, "concern": -0.7,
}

const boosterAmplifier = 0.293

var boosters = map[string]float64{
	"absolutely": boosterAmplifier, "very": boosterAmplifier, "really": boosterAmplifier,
	"extremely": boosterAmplifier, "totally": boosterAmplifier,
}

// compoundSentiment sums lexicon-scored tokens (with a simple booster-word
// amplifier on the following token) and normalises to [-1,1].
func compoundSentiment(text string) float64 {
	tokens := tokenRe.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return 0
	}
	var sum float64
	boost := 0.0
	for _, tok := range tokens {
		if b, ok := boosters[tok]; ok {
			boost = b
			continue
		}
		if v, ok := sentimentLexicon[tok]; ok {
			if v > 0 {
				v += boost
			} else {
				v -= boost
			}
			sum += v
		}
		boost = 0
	}
	return normalizeScore(sum)
}

// normalizeScore implements VADER's standard normalisation: sum / sqrt(sum^2 + alpha).
func normalizeScore(sum float64) float64 {
	const alpha = 15.0
	if sum == 0 {
		return 0
	}
	return sum / math.Sqrt(sum*sum+alpha)
}
