// Package analysis implements the C7 analysis stage: the linguistic style
// analyzer (spec §4.6) and the logo/image classifier (spec §4.7), run by
// the analysis worker.
package analysis

import (
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

var (
	tokenRe       = regexp.MustCompile(`[\p{L}\p{M}']+`)
	contractionRe = regexp.MustCompile(`(?i)\b(\w+)'(re|ve|ll|d|m|s|t)\b`)
)

var informalMarkers = map[string]bool{
	"gonna": true, "wanna": true, "kinda": true, "sorta": true,
	"lol": true, "btw": true, "fyi": true, "hey": true, "yo": true,
	"what's up": true, "dude": true,
}

// Formality holds the formality classification for a block of text.
type Formality struct {
	Label      string
	Confidence float64
}

// analyzeFormality implements spec §4.6's formality scoring formula.
func analyzeFormality(text string) Formality {
	tokens := tokenRe.FindAllString(text, -1)
	w := math.Max(1, float64(len(tokens)))

	contractionCount := len(contractionRe.FindAllString(text, -1))

	informalCount := 0
	uppercaseCount := 0
	for _, tok := range tokens {
		if informalMarkers[strings.ToLower(tok)] {
			informalCount++
		}
		if len(tok) > 1 && tok == strings.ToUpper(tok) {
			uppercaseCount++
		}
	}
	if strings.Contains(strings.ToLower(text), "what's up") {
		informalCount++
	}

	score := 1.0
	score -= (float64(contractionCount) / w) * 0.8
	score -= math.Min(0.8, (float64(informalCount)/w)*2.0)
	score -= math.Min(0.3, (float64(uppercaseCount)/w)*0.3)
	score = clamp(score, 0, 1)

	label := "informal"
	if score >= 0.55 {
		label = "formal"
	}
	confidence := clamp(math.Abs(score-0.5)*2, 0.1, 1.0)
	return Formality{Label: label, Confidence: round3(confidence)}
}

// Tone holds the tone classification for a block of text.
type Tone struct {
	Label      string
	Confidence float64
}

// analyzeTone delegates to a lexicon-based compound sentiment score in
// [-1,1] (spec §4.6); no corpus repo carries a sentiment-analysis library,
// so this is a small self-contained VADER-style scorer.
func analyzeTone(text string) Tone {
	compound := compoundSentiment(text)
	label := "neutral"
	switch {
	case compound > 0.25:
		label = "positive"
	case compound < -0.25:
		label = "negative"
	}
	confidence := clamp(math.Abs(compound), 0.05, 1.0)
	return Tone{Label: label, Confidence: round3(confidence)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// styleVectorDim is the fixed output length of the writing-style embedding.
const styleVectorDim = 128

// styleVector implements spec §4.6's 128-dim bag-of-tokens embedding.
func styleVector(text string) []float64 {
	vec := make([]float64, styleVectorDim)
	if strings.TrimSpace(text) == "" {
		return vec
	}
	tokens := tokenRe.FindAllString(strings.ToLower(text), -1)
	for _, tok := range tokens {
		vec[stableHash(tok)] += 1
		vec[(sumCharCodes(tok)+len(tok))%styleVectorDim] += 0.5
	}
	var magnitude float64
	for _, v := range vec {
		magnitude += v * v
	}
	magnitude = math.Sqrt(magnitude)
	if magnitude > 0 {
		for i := range vec {
			vec[i] /= magnitude
		}
	}
	return vec
}

func stableHash(s string) int {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int(h.Sum64() % styleVectorDim)
}

func sumCharCodes(s string) int {
	sum := 0
	for _, r := range s {
		sum += int(r)
	}
	return sum
}
