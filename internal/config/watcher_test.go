package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "camera.toml")
	if err := os.WriteFile(path, []byte("quality = 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := func(p string) (string, error) {
		data, err := os.ReadFile(p)
		return string(data), err
	}

	w := NewWatcher(path, loader, slog.Default(), WithDebounce[string](50*time.Millisecond))

	reloaded := make(chan string, 1)
	w.OnReload(func(content string) {
		select {
		case reloaded <- content:
		default:
		}
	})

	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = w.Stop() }()

	if err := os.WriteFile(path, []byte("quality = 12\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case content := <-reloaded:
		if content != "quality = 12\n" {
			t.Errorf("reloaded content = %q", content)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherUnsubscribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "camera.toml")
	if err := os.WriteFile(path, []byte("a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := func(p string) (string, error) { return "ok", nil }
	w := NewWatcher(path, loader, slog.Default(), WithDebounce[string](10*time.Millisecond))

	called := make(chan struct{}, 4)
	unsub := w.OnReload(func(string) { called <- struct{}{} })
	unsub()

	// Removed handlers must not run
	w.loadAndNotify()
	select {
	case <-called:
		t.Error("handler called after unsubscribe")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcherLoaderErrorGoesToHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "camera.toml")
	if err := os.WriteFile(path, []byte("a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := func(p string) (string, error) { return "", os.ErrInvalid }

	errs := make(chan error, 1)
	w := NewWatcher(path, loader, slog.Default(),
		WithErrorHandler[string](func(err error) { errs <- err }))

	w.loadAndNotify()
	select {
	case err := <-errs:
		if err != os.ErrInvalid {
			t.Errorf("err = %v", err)
		}
	default:
		t.Error("error handler not called")
	}
}
