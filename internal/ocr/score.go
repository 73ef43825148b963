package ocr

import (
	"math"
	"strings"
	"unicode"
)

// Character weights used by IrregularScore.
const (
	weightAlnum       = 0.0
	weightSpace       = 0.1
	weightPunctuation = 3.0
	weightOther       = 5.0
)

// asciiPunctuation is the ASCII punctuation set (Python's string.punctuation).
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Scores holds the two sub-scores of a result and their combination.
type Scores struct {
	// Confidence is the mean token confidence, 0 to 100.
	Confidence float64 `json:"confidence"`

	// Irregular is the character-regularity score; 100 for clean text.
	Irregular float64 `json:"irregular"`

	// Total is the mean of Confidence and Irregular.
	Total float64 `json:"total"`
}

// ConfidenceScore returns the mean confidence of all tokens that carry text.
// With no such tokens the score is 0.
func ConfidenceScore(tokens []Token) float64 {
	var (
		sum float64
		n   int
	)
	for _, t := range tokens {
		if t.NoText {
			continue
		}
		sum += t.Confidence
		n++
	}
	if n == 0 {
		return 0
	}
	return finite(sum / float64(n))
}

// IrregularScore rates how much of text consists of plain alphanumerics.
//
// ASCII whitespace separates words and is not scored, so the text is scored as
// the concatenation of its words. Each remaining rune is weighted by
// charWeight and the score is 100 * (n - weighted) / n where n is the rune
// count. Empty text scores 0.
func IrregularScore(text string) float64 {
	var (
		n        int
		weighted float64
	)
	for _, word := range strings.FieldsFunc(text, isSeparator) {
		for _, r := range word {
			n++
			weighted += charWeight(r)
		}
	}
	if n == 0 {
		return 0
	}
	return finite(100 * (float64(n) - weighted) / float64(n))
}

func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// charWeight classifies a rune. Whitespace reaching it is non-ASCII (e.g., a
// no-break space inside a word).
func charWeight(r rune) float64 {
	switch {
	case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
		return weightAlnum
	case unicode.IsSpace(r):
		return weightSpace
	case strings.ContainsRune(asciiPunctuation, r):
		return weightPunctuation
	default:
		return weightOther
	}
}

// Score computes both sub-scores of r and their mean.
func Score(r *Result) Scores {
	if r == nil {
		return Scores{}
	}
	s := Scores{
		Confidence: ConfidenceScore(r.Tokens),
		Irregular:  IrregularScore(r.FullText),
	}
	s.Total = finite((s.Confidence + s.Irregular) / 2)
	return s
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
