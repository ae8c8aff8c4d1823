package camera

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestFileSourceCyclesFrames(t *testing.T) {
	dir := newTestDir(t, "a.jpg", "b.jpg")
	src, err := NewFileSource(dir)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}

	var seen []string
	for i := 0; i < 3; i++ {
		frame, acqErr := src.Acquire()
		if acqErr != nil {
			t.Fatalf("Acquire %d: %v", i, acqErr)
		}
		seen = append(seen, string(frame.Data))
		src.Release(frame)
	}

	want := []string{"a.jpg", "b.jpg", "a.jpg"}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("frame %d = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestFileSourcePoolExhaustion(t *testing.T) {
	dir := newTestDir(t, "a.jpg")
	src, err := NewFileSource(dir)
	if err != nil {
		t.Fatal(err)
	}

	var held []*Frame
	for i := 0; i < frameBufferCount; i++ {
		frame, acqErr := src.Acquire()
		if acqErr != nil {
			t.Fatalf("Acquire %d: %v", i, acqErr)
		}
		held = append(held, frame)
	}

	if _, err := src.Acquire(); err == nil {
		t.Error("expected ErrNoFrame with all buffers checked out")
	}

	src.Release(held[0])
	if _, err := src.Acquire(); err != nil {
		t.Errorf("Acquire after Release: %v", err)
	}
}

func TestFileSourceRejectsEmptyDir(t *testing.T) {
	if _, err := NewFileSource(t.TempDir()); err == nil {
		t.Error("expected error for directory without JPEGs")
	}
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[camera]
brightness = 1
contrast = -1
saturation = 0
quality = 12
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	params, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	want := Params{Brightness: 1, Contrast: -1, Saturation: 0, Quality: 12}
	if params != want {
		t.Errorf("params = %+v, want %+v", params, want)
	}
}
