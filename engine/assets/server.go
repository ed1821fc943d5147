// Package assets decodes images off the render goroutine and builds the unit sprite sheet
// from them.
//
// A Server hands out Handles immediately and resolves them on a worker pool. Consumers poll a
// Handle each frame; a Handle still loading reports gpu.ErrNotReady so render stages skip
// instead of failing.
package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-swarm/engine/logger"
)

// server is the implementation of the Server interface.
type server struct {
	mu sync.Mutex

	fsys    fs.FS
	size    uint32
	workers int

	pool    worker.DynamicWorkerPool
	handles map[string]*Handle
	nextID  int
	closed  bool
}

// Server loads images asynchronously and caches them by path.
type Server interface {
	// Load starts loading path unless it is already cached and returns its handle at once.
	//
	// Parameters:
	//   - path: the slash separated path of the image inside the server's file system
	//
	// Returns:
	//   - *Handle: the shared handle for path
	Load(path string) *Handle

	// Get returns the handle for path if it has been loaded before.
	Get(path string) (*Handle, bool)

	// Wait blocks until every given handle has finished loading or ctx is done.
	//
	// Parameters:
	//   - ctx: bounds the wait
	//   - handles: the handles to wait for
	//
	// Returns:
	//   - error: ctx's error, or the joined load errors of failed handles
	Wait(ctx context.Context, handles ...*Handle) error

	// Size returns the edge every decoded image is resampled to, or 0 when images keep their size.
	Size() uint32

	// Release stops the worker pool. Handles that are still loading stay in StateLoading.
	Release()
}

var _ Server = &server{}

// NewServer creates a new Server. Without WithFS it reads from the working directory.
//
// Parameters:
//   - options: variadic list of ServerBuilderOption functions to configure the Server
//
// Returns:
//   - Server: the asset server, already accepting loads
func NewServer(options ...ServerBuilderOption) Server {
	s := &server{
		workers: 2,
		handles: make(map[string]*Handle),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.fsys == nil {
		s.fsys = os.DirFS(".")
	}
	s.pool = worker.NewDynamicWorkerPool(max(s.workers, 1), 64, 30*time.Second)
	s.pool.Start()
	return s
}

func (s *server) Load(path string) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.handles[path]; ok {
		return h
	}
	h := newHandle(path)
	s.handles[path] = h
	if s.closed {
		h.resolve(nil, errors.New("asset server released"))
		return h
	}

	s.nextID++
	s.pool.SubmitTask(worker.Task{
		ID: s.nextID,
		Do: func() (any, error) {
			img, err := s.read(path)
			if err != nil {
				logger.Logger().Warn("asset load failed", "path", path, "error", err)
			} else {
				logger.Logger().Debug("asset loaded", "path", path, "width", img.Rect.Dx(), "height", img.Rect.Dy())
			}
			h.resolve(img, err)
			return nil, err
		},
	})
	return h
}

func (s *server) read(path string) (*image.RGBA, error) {
	if _, _, err := decoderFor(path); err != nil {
		return nil, err
	}
	f, err := s.fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoded, err := decode(path, f)
	if err != nil {
		return nil, err
	}
	return Resample(decoded, s.size), nil
}

func (s *server) Get(path string) (*Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handles[path]
	return h, ok
}

func (s *server) Wait(ctx context.Context, handles ...*Handle) error {
	var errs []error
	for _, h := range handles {
		if err := h.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("asset load: %w", errors.Join(errs...))
	}
	return nil
}

func (s *server) Size() uint32 {
	return s.size
}

func (s *server) Release() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.pool.Stop()
}
