package capture

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"
)

// FileCamera plays a fixed list of image files as camera frames
type FileCamera struct {
	paths []string
}

// NewFileCamera creates a camera over the given image files
func NewFileCamera(paths ...string) *FileCamera {
	return &FileCamera{paths: paths}
}

func (c *FileCamera) Open(ctx context.Context, facing Facing) (Stream, error) {
	if len(c.paths) == 0 {
		return nil, fmt.Errorf("%w: no image files given", ErrCameraUnavailable)
	}
	return &fileStream{paths: c.paths}, nil
}

type fileStream struct {
	mu     sync.Mutex
	paths  []string
	next   int
	closed bool
}

func (s *fileStream) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed || s.next >= len(s.paths) {
		s.mu.Unlock()
		return nil, ErrStreamEnded
	}
	path := s.paths[s.next]
	s.next++
	s.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadFrame, path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadFrame, path, err)
	}
	return img, nil
}

func (s *fileStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
