package assets

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
)

// LoadState is the progress of one asset load.
type LoadState int

const (
	StateLoading LoadState = iota
	StateLoaded
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("LoadState(%d)", int(s))
}

// Handle is a reference to an image that may still be decoding. Handles are shared: loading
// the same path twice returns the same Handle.
type Handle struct {
	path string

	mu    sync.RWMutex
	state LoadState
	img   *image.RGBA
	err   error
	done  chan struct{}
}

func newHandle(path string) *Handle {
	return &Handle{path: path, done: make(chan struct{})}
}

// Path returns the path the handle was loaded from.
func (h *Handle) Path() string {
	return h.path
}

// State returns the current load state.
func (h *Handle) State() LoadState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Image returns the decoded image.
//
// Returns:
//   - *image.RGBA: the image once loaded
//   - error: wraps gpu.ErrNotReady while loading, or gpu.ErrMissingResource if the load failed
func (h *Handle) Image() (*image.RGBA, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	switch h.state {
	case StateLoading:
		return nil, fmt.Errorf("asset %s: %w", h.path, gpu.ErrNotReady)
	case StateFailed:
		return nil, fmt.Errorf("asset %s: %w: %w", h.path, gpu.ErrMissingResource, h.err)
	}
	return h.img, nil
}

// Wait blocks until the load finishes or ctx is done.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	_, err := h.Image()
	return err
}

func (h *Handle) resolve(img *image.RGBA, err error) {
	h.mu.Lock()
	if err != nil {
		h.state = StateFailed
		h.err = err
	} else {
		h.state = StateLoaded
		h.img = img
	}
	h.mu.Unlock()
	close(h.done)
}
