package soundfont

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("sf"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "first")
	second := filepath.Join(root, "second")
	touch(t, filepath.Join(first, "piano.sf3"))
	touch(t, filepath.Join(second, "piano.sf2"))
	touch(t, filepath.Join(second, "drums.sf3"))
	touch(t, filepath.Join(first, "organ.dat"))
	if err := os.MkdirAll(filepath.Join(first, "dir.sf2"), 0o755); err != nil {
		t.Fatal(err)
	}
	search := []string{first, second}

	tests := []struct {
		name string
		want string
	}{
		// .sf2 is preferred over .sf3 even when found in a later directory.
		{"piano", filepath.Join(second, "piano.sf2")},
		{"drums", filepath.Join(second, "drums.sf3")},
		{"piano.sf3", filepath.Join(first, "piano.sf3")},
		{"organ.dat", filepath.Join(first, "organ.dat")},
		{filepath.Join(second, "piano"), filepath.Join(second, "piano.sf2")},
		{filepath.Join(first, "organ.dat"), filepath.Join(first, "organ.dat")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.name, search)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveNotFound(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "organ.dat"))
	for _, name := range []string{"", "missing", "organ", "dir", "missing.sf2"} {
		if _, err := Resolve(name, []string{root}); !errors.Is(err, contracts.ErrResourceLoad) {
			t.Errorf("Resolve(%q) error = %v, want ErrResourceLoad", name, err)
		}
	}
}

func TestDelayRetrigger(t *testing.T) {
	var d delay
	d.trigger(10 * time.Millisecond)
	d.trigger(50 * time.Millisecond)
	<-d.channel
	if rem := d.remainingTime(); rem <= 0 {
		t.Errorf("remainingTime() = %v after retrigger, want > 0", rem)
	}
	d.stop()
	if d.channel != nil {
		t.Error("stop() left the channel armed")
	}
}

func TestWatcherReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.sf2")
	touch(t, path)

	w, err := NewWatcher(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan string, 4)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(p string) { reloads <- p }) }()

	// A burst of writes collapses into a single reload.
	for i := 0; i < 3; i++ {
		touch(t, path)
	}
	touch(t, filepath.Join(filepath.Dir(path), "other.sf2"))

	select {
	case got := <-reloads:
		if got != w.Path() {
			t.Errorf("reloaded %q, want %q", got, w.Path())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after writing the file")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}
