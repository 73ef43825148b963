package tesscmd

import (
	"context"
	"errors"
	"image"
	"os"
	"os/exec"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ironsheep/ocr-fields/internal/ocr"
)

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t200\t50\t-1\t\n" +
	"2\t1\t1\t0\t0\t0\t10\t10\t150\t20\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t10\t10\t60\t20\t91.5\tHELLO\n" +
	"5\t1\t1\t1\t1\t2\t80\t10\t40\t20\t88\t42\n"

// fakeRunner records the command and writes canned output files next to the
// output base argument.
type fakeRunner struct {
	tsv, txt string
	err      error
	stderr   string
	block    bool

	name string
	args []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.name, f.args = name, args
	if f.block {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	if f.err != nil {
		return nil, []byte(f.stderr), f.err
	}
	for i, a := range args {
		if strings.HasSuffix(a, "input.png") {
			if _, err := os.Stat(a); err != nil {
				return nil, nil, err
			}
			base := args[i+1]
			os.WriteFile(base+".tsv", []byte(f.tsv), 0o644)
			os.WriteFile(base+".txt", []byte(f.txt), 0o644)
			break
		}
	}
	return nil, nil, nil
}

func testImage() image.Image {
	return image.NewGray(image.Rect(0, 0, 8, 8))
}

func TestEngine_Recognize(t *testing.T) {
	runner := &fakeRunner{tsv: sampleTSV, txt: "HELLO 42\n"}
	dir := t.TempDir()
	engine := New(WithRunner(runner), WithTempDir(dir))

	res, err := engine.Recognize(context.Background(), testImage(), ocr.Options{Language: "eng+fra", Config: "--psm 7"})
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	if res.FullText != "HELLO 42\n" {
		t.Errorf("FullText: got %q", res.FullText)
	}
	if len(res.Tokens) != 4 {
		t.Fatalf("Tokens: got %d, want 4", len(res.Tokens))
	}
	if got := ocr.ConfidenceScore(res.Tokens); got != (91.5+88)/2 {
		t.Errorf("ConfidenceScore: got %v", got)
	}

	if runner.name != "tesseract" {
		t.Errorf("command: got %q, want tesseract", runner.name)
	}
	if !containsSeq(runner.args, "-l", "eng+fra") || !containsSeq(runner.args, "--psm", "7") {
		t.Errorf("args missing language or config: %v", runner.args)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("work directory not removed: %v", entries)
	}
}

func TestEngine_Recognize_Nice(t *testing.T) {
	runner := &fakeRunner{tsv: sampleTSV}
	engine := New(WithRunner(runner), WithTempDir(t.TempDir()))

	_, err := engine.Recognize(context.Background(), testImage(), ocr.Options{Nice: 10, Command: "/opt/tess"})
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if runner.name != "nice" || !reflect.DeepEqual(runner.args[:3], []string{"-n", "10", "/opt/tess"}) {
		t.Errorf("expected nice -n 10 /opt/tess, got %s %v", runner.name, runner.args)
	}
}

func TestEngine_Recognize_CommandFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1"), stderr: "Failed loading language 'xx'\n"}
	engine := New(WithRunner(runner), WithTempDir(t.TempDir()))

	_, err := engine.Recognize(context.Background(), testImage(), ocr.Options{Language: "xx"})
	var ocrErr *ocr.Error
	if !errors.As(err, &ocrErr) {
		t.Fatalf("expected *ocr.Error, got %v", err)
	}
	if ocrErr.Details != "Failed loading language 'xx'" {
		t.Errorf("Details: got %q", ocrErr.Details)
	}
}

func TestEngine_Recognize_NotInstalled(t *testing.T) {
	runner := &fakeRunner{err: &exec.Error{Name: "tesseract", Err: exec.ErrNotFound}}
	engine := New(WithRunner(runner), WithTempDir(t.TempDir()))

	_, err := engine.Recognize(context.Background(), testImage(), ocr.Options{})
	if !errors.Is(err, ocr.ErrEngineUnavailable) {
		t.Errorf("expected ErrEngineUnavailable, got %v", err)
	}
}

func TestEngine_Recognize_Timeout(t *testing.T) {
	engine := New(WithRunner(&fakeRunner{block: true}), WithTempDir(t.TempDir()))

	_, err := ocr.Recognize(context.Background(), engine, testImage(), ocr.Options{Timeout: 20 * time.Millisecond})
	if !errors.Is(err, ocr.ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestEngine_Recognize_MissingOutput(t *testing.T) {
	// Runner succeeds without writing anything.
	engine := New(WithRunner(runnerFunc(func(context.Context, string, ...string) ([]byte, []byte, error) {
		return nil, nil, nil
	})), WithTempDir(t.TempDir()))

	if _, err := engine.Recognize(context.Background(), testImage(), ocr.Options{}); err == nil {
		t.Error("Recognize should fail when tesseract produced no output")
	}
}

type runnerFunc func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)

func (f runnerFunc) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	return f(ctx, name, args...)
}

func TestCommand(t *testing.T) {
	tests := []struct {
		name     string
		opts     ocr.Options
		wantName string
		wantArgs []string
	}{
		{
			"defaults",
			ocr.Options{},
			"tesseract",
			[]string{"in.png", "out", "-l", "eng", "tsv", "txt"},
		},
		{
			"full",
			ocr.Options{
				Language:       "deu",
				Config:         "--psm 6  --oem 1",
				Command:        "/usr/local/bin/tesseract",
				TessdataPrefix: "/data",
				Variables:      map[string]string{"b": "2", "a": "1"},
			},
			"/usr/local/bin/tesseract",
			[]string{"in.png", "out", "-l", "deu", "--tessdata-dir", "/data", "--psm", "6", "--oem", "1", "-c", "a=1", "-c", "b=2", "tsv", "txt"},
		},
		{
			"nice",
			ocr.Options{Nice: 5},
			"nice",
			[]string{"-n", "5", "tesseract", "in.png", "out", "-l", "eng", "tsv", "txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, args := Command("in.png", "out", tt.opts)
			if name != tt.wantName {
				t.Errorf("name: got %q, want %q", name, tt.wantName)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args:\n got  %v\n want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestParseTSV(t *testing.T) {
	tokens, err := ParseTSV([]byte(sampleTSV))
	if err != nil {
		t.Fatalf("ParseTSV failed: %v", err)
	}

	want := []ocr.Token{
		{Text: "", Confidence: -1, NoText: true, Bounds: ocr.Bounds{X1: 0, Y1: 0, X2: 200, Y2: 50}},
		{Text: "", Confidence: -1, NoText: true, Bounds: ocr.Bounds{X1: 10, Y1: 10, X2: 160, Y2: 30}},
		{Text: "HELLO", Confidence: 91.5, Bounds: ocr.Bounds{X1: 10, Y1: 10, X2: 70, Y2: 30}},
		{Text: "42", Confidence: 88, Bounds: ocr.Bounds{X1: 80, Y1: 10, X2: 120, Y2: 30}},
	}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("tokens:\n got  %+v\n want %+v", tokens, want)
	}
}

func TestParseTSV_EdgeCases(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    int
		wantErr bool
	}{
		{"empty", "", 0, false},
		{"header only", "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n", 0, false},
		{"crlf", "5\t1\t1\t1\t1\t1\t0\t0\t1\t1\t90\tA\r\n", 1, false},
		{"missing text column", "5\t1\t1\t1\t1\t1\t0\t0\t1\t1\t90\n", 1, false},
		{"text with tab", "5\t1\t1\t1\t1\t1\t0\t0\t1\t1\t90\tA\tB\n", 1, false},
		{"too few columns", "5\t1\t1\n", 0, true},
		{"bad confidence", "5\t1\t1\t1\t1\t1\t0\t0\t1\t1\tx\tA\n", 0, true},
		{"bad box", "5\t1\t1\t1\t1\t1\tleft\t0\t1\t1\t90\tA\n", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := ParseTSV([]byte(tt.data))
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedTSV) {
					t.Errorf("expected ErrMalformedTSV, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTSV failed: %v", err)
			}
			if len(tokens) != tt.want {
				t.Errorf("tokens: got %d, want %d", len(tokens), tt.want)
			}
		})
	}
}

func TestEngine_RealTesseract(t *testing.T) {
	if _, err := exec.LookPath(DefaultCommand); err != nil {
		t.Skip("Tesseract not available")
	}

	img := image.NewGray(image.Rect(0, 0, 100, 40))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	res, err := New(WithTempDir(t.TempDir())).Recognize(context.Background(), img, ocr.Options{})
	if err != nil {
		if strings.Contains(err.Error(), "language") || strings.Contains(err.Error(), "tessdata") {
			t.Skipf("Tesseract language data not available: %v", err)
		}
		t.Fatalf("Recognize failed: %v", err)
	}
	if res == nil {
		t.Fatal("Recognize returned nil result")
	}
}

func containsSeq(args []string, a, b string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == a && args[i+1] == b {
			return true
		}
	}
	return false
}

