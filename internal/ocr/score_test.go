package ocr

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func TestIrregularScore_CleanText(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"HELLO", 100},
		{"abc123", 100},
		{"  padded  ", 100},
		{"\nZ9\n", 100},
		{"Invoice 12345", 100},
		{"a b c", 100},
		{"TOTAL DUE\n42 00\n", 100},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := IrregularScore(tt.text); math.Abs(got-tt.want) > tolerance {
				t.Errorf("IrregularScore(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIrregularScore_AlphanumericOnlyIsExactly100(t *testing.T) {
	for _, text := range []string{"ABC", "abc123", "Z9"} {
		if got := IrregularScore(text); math.Abs(got-100) > tolerance {
			t.Errorf("IrregularScore(%q) = %v, want 100", text, got)
		}
	}
}

func TestIrregularScore_Weights(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"punctuation", "ab.", 100 * (3 - 3.0) / 3},
		{"two punctuation", "a,b;", 100 * (4 - 6.0) / 4},
		{"non-ascii letter", "café", 100 * (4 - 5.0) / 4},
		{"symbol", "a§", 100 * (2 - 5.0) / 2},
		{"separators not scored", "a. b", 100 * (3 - 3.0) / 3},
		{"no-break space", "a\u00a0b", 100 * (3 - 0.1) / 3},
		{"only punctuation", "!!", 100 * (2 - 6.0) / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IrregularScore(tt.text); math.Abs(got-tt.want) > tolerance {
				t.Errorf("IrregularScore(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIrregularScore_EmptyTextIsZero(t *testing.T) {
	for _, text := range []string{"", " ", "\n\t "} {
		got := IrregularScore(text)
		if got != 0 || math.IsNaN(got) {
			t.Errorf("IrregularScore(%q) = %v, want 0", text, got)
		}
	}
}

func TestConfidenceScore(t *testing.T) {
	tests := []struct {
		name   string
		tokens []Token
		want   float64
	}{
		{"none", nil, 0},
		{"single", []Token{{Text: "A", Confidence: 90}}, 90},
		{"mean", []Token{{Text: "A", Confidence: 90}, {Text: "B", Confidence: 70}}, 80},
		{
			"no-text tokens excluded",
			[]Token{{Text: "A", Confidence: 90}, {NoText: true, Confidence: -1}, {NoText: true, Confidence: 95}},
			90,
		},
		{
			"empty string text still counts",
			[]Token{{Text: "A", Confidence: 90}, {Text: "", Confidence: 30}},
			60,
		},
		{"only no-text tokens", []Token{{NoText: true, Confidence: -1}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConfidenceScore(tt.tokens); math.Abs(got-tt.want) > tolerance {
				t.Errorf("ConfidenceScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScore(t *testing.T) {
	r := &Result{
		Tokens:   []Token{{Text: "HELLO", Confidence: 80}},
		FullText: "HELLO\n",
	}
	s := Score(r)
	if s.Confidence != 80 || math.Abs(s.Irregular-100) > tolerance || math.Abs(s.Total-90) > tolerance {
		t.Errorf("Score = %+v, want {80 100 90}", s)
	}
}

func TestScore_EmptyResultIsFinite(t *testing.T) {
	for _, r := range []*Result{nil, {}, {Tokens: []Token{{NoText: true, Confidence: -1}}}} {
		s := Score(r)
		for _, v := range []float64{s.Confidence, s.Irregular, s.Total} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("Score(%+v) produced non-finite %v", r, v)
			}
		}
		if s.Total != 0 {
			t.Errorf("Score(%+v).Total = %v, want 0", r, s.Total)
		}
	}
}
