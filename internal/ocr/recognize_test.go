package ocr

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"
	"time"
)

// stubEngine returns a fixed result, or blocks until the context ends when
// block is set.
type stubEngine struct {
	result *Result
	err    error
	block  bool
	got    Options
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) Recognize(ctx context.Context, _ image.Image, opts Options) (*Result, error) {
	s.got = opts
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.result, s.err
}

func testImage() image.Image {
	return image.NewGray(image.Rect(0, 0, 4, 4))
}

func TestRecognize(t *testing.T) {
	engine := &stubEngine{result: &Result{
		Tokens:   []Token{{Text: "A1", Confidence: 70}, {NoText: true, Confidence: -1}},
		FullText: "A1\n",
	}}
	opts := Options{Language: "eng", Config: "--psm 7"}

	rec, err := Recognize(context.Background(), engine, testImage(), opts)
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if rec.FullText != "A1\n" || len(rec.Tokens) != 2 {
		t.Errorf("result not passed through: %+v", rec.Result)
	}
	if rec.Confidence != 70 || math.Abs(rec.Irregular-100) > tolerance || math.Abs(rec.Total-85) > tolerance {
		t.Errorf("scores: got %+v", rec.Scores)
	}
	if engine.got.Config != "--psm 7" {
		t.Errorf("options not passed through: %+v", engine.got)
	}
}

func TestRecognize_EmptyResult(t *testing.T) {
	rec, err := Recognize(context.Background(), &stubEngine{}, testImage(), Options{})
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if rec.Total != 0 || math.IsNaN(rec.Irregular) {
		t.Errorf("empty result should score 0, got %+v", rec.Scores)
	}
}

func TestRecognize_Timeout(t *testing.T) {
	engine := &stubEngine{block: true}

	_, err := Recognize(context.Background(), engine, testImage(), Options{Timeout: 10 * time.Millisecond})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	var ocrErr *Error
	if !errors.As(err, &ocrErr) || ocrErr.Op != "recognize" {
		t.Errorf("expected *Error with Op recognize, got %#v", err)
	}
}

func TestRecognize_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Recognize(ctx, &stubEngine{block: true}, testImage(), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("cancellation should not be reported as a timeout")
	}
}

func TestRecognize_EngineError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Recognize(context.Background(), &stubEngine{err: boom}, testImage(), Options{})
	if !errors.Is(err, boom) {
		t.Errorf("expected engine error to be wrapped, got %v", err)
	}
}

func TestRecognize_NoImageOrEngine(t *testing.T) {
	if _, err := Recognize(context.Background(), &stubEngine{}, nil, Options{}); !errors.Is(err, ErrNoImage) {
		t.Errorf("nil image: expected ErrNoImage, got %v", err)
	}
	if _, err := Recognize(context.Background(), nil, testImage(), Options{}); !errors.Is(err, ErrEngineUnavailable) {
		t.Errorf("nil engine: expected ErrEngineUnavailable, got %v", err)
	}
}

func TestOptions_Merge(t *testing.T) {
	base := Options{
		Language:  "eng",
		Timeout:   30 * time.Second,
		Command:   "tesseract",
		Variables: map[string]string{"a": "1", "b": "2"},
	}
	over := Options{
		Language:  "deu",
		Config:    "--psm 6",
		Variables: map[string]string{"b": "3"},
	}

	got := base.Merge(over)
	if got.Language != "deu" || got.Config != "--psm 6" || got.Timeout != 30*time.Second || got.Command != "tesseract" {
		t.Errorf("Merge: got %+v", got)
	}
	if got.Variables["a"] != "1" || got.Variables["b"] != "3" {
		t.Errorf("Merge variables: got %v", got.Variables)
	}
	if base.Variables["b"] != "2" {
		t.Error("Merge modified the receiver's variables")
	}
}

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		in      any
		want    time.Duration
		wantErr bool
	}{
		{nil, 0, false},
		{"10s", 10 * time.Second, false},
		{"1.5", 1500 * time.Millisecond, false},
		{10, 10 * time.Second, false},
		{float64(2), 2 * time.Second, false},
		{"250ms", 250 * time.Millisecond, false},
		{"soon", 0, true},
		{"-1s", 0, true},
		{float64(-3), 0, true},
		{math.NaN(), 0, true},
		{math.Inf(1), 0, true},
		{[]int{1}, 0, true},
	}

	for _, tt := range tests {
		got, err := ParseTimeout(tt.in)
		if tt.wantErr != (err != nil) {
			t.Errorf("ParseTimeout(%v): error %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimeout(%v): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOptions_Languages(t *testing.T) {
	tests := []struct {
		lang string
		want []string
	}{
		{"", []string{"eng"}},
		{"fra", []string{"fra"}},
		{"eng+fra", []string{"eng", "fra"}},
		{" eng + deu ", []string{"eng", "deu"}},
		{"+", []string{"eng"}},
	}

	for _, tt := range tests {
		got := Options{Language: tt.lang}.Languages()
		if len(got) != len(tt.want) {
			t.Errorf("Languages(%q) = %v, want %v", tt.lang, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Languages(%q) = %v, want %v", tt.lang, got, tt.want)
			}
		}
	}
}

func TestError(t *testing.T) {
	err := NewError("parse tsv", ErrUnsupportedOption, "line 3")
	if err.Error() != "ocr: parse tsv failed: line 3: unsupported OCR option" {
		t.Errorf("Error(): got %q", err.Error())
	}
	if WrapError("x", err, "") != error(err) {
		t.Error("WrapError should not double-wrap")
	}
	if WrapError("x", nil, "") != nil {
		t.Error("WrapError(nil) should be nil")
	}
}
