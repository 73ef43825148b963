package fields

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.yaml")
	if err := os.WriteFile(path, []byte("F:\n  p: [invert]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *FieldSet, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 50*time.Millisecond, func(set *FieldSet, err error) {
			if err == nil {
				reloaded <- set
			}
		})
	}()

	updated := []byte("F:\n  p: [invert]\nG:\n  q: [erode]\n")
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case set := <-reloaded:
			if len(set.Fields) != 2 {
				t.Errorf("reloaded set: got %d fields, want 2", len(set.Fields))
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("Watch returned %v", err)
			}
			return
		case <-tick.C:
			// Keep writing until the watcher has been set up and sees a change.
			os.WriteFile(path, updated, 0o644)
		case <-deadline:
			t.Fatal("no reload within 5s")
		}
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "fields.yaml"), 0, func(*FieldSet, error) {})
	if err == nil {
		t.Error("Watch should fail when the directory does not exist")
	}
}
