package camera

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrNoFrame is returned when the source has no frame ready.
var ErrNoFrame = errors.New("no frame available")

// Frame is one opaque capture unit. Data must not be modified between
// Acquire and Release; the buffer is reused once released.
type Frame struct {
	Data      []byte
	Timestamp time.Time

	slot int
}

// FrameSource hands out capture units from a fixed pool. Acquire is
// best-effort and non-blocking; the caller must Release every acquired
// frame regardless of what it did with it.
type FrameSource interface {
	Acquire() (*Frame, error)
	Release(*Frame)
}

// frameBufferCount mirrors the fb_count the firmware allocates.
const frameBufferCount = 3

// FileSource cycles through JPEG files in a directory, the host-side
// stand-in for a camera driver. Frames come from a fixed pool of buffers;
// when all buffers are checked out Acquire fails instead of allocating.
type FileSource struct {
	files []string

	mu   sync.Mutex
	next int
	free []*Frame
}

// NewFileSource creates a FileSource over all .jpg/.jpeg files in dir.
func NewFileSource(dir string) (*FileSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".jpg" || ext == ".jpeg" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no JPEG files in %s", dir)
	}
	sort.Strings(files)

	s := &FileSource{files: files}
	for i := 0; i < frameBufferCount; i++ {
		s.free = append(s.free, &Frame{slot: i})
	}
	return s, nil
}

// Acquire returns the next frame, or ErrNoFrame when the pool is exhausted
// or the file read fails.
func (s *FileSource) Acquire() (*Frame, error) {
	s.mu.Lock()
	if len(s.free) == 0 {
		s.mu.Unlock()
		return nil, ErrNoFrame
	}
	frame := s.free[len(s.free)-1]
	s.free = s.free[:len(s.free)-1]
	path := s.files[s.next]
	s.next = (s.next + 1) % len(s.files)
	s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		s.Release(frame)
		return nil, fmt.Errorf("%w: %s", ErrNoFrame, err)
	}
	frame.Data = data
	frame.Timestamp = time.Now()
	return frame, nil
}

// Release returns a frame's buffer to the pool.
func (s *FileSource) Release(frame *Frame) {
	if frame == nil {
		return
	}
	frame.Data = nil
	s.mu.Lock()
	s.free = append(s.free, frame)
	s.mu.Unlock()
}
