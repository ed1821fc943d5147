package renderer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-swarm/engine/logger"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/pipeline"
)

// PipelineID is an opaque handle to a queued pipeline. The zero value never refers to a pipeline.
type PipelineID uint32

// PipelineState is the compilation status of a queued pipeline.
type PipelineState int

const (
	// PipelineStateQueued means compilation has not finished yet.
	PipelineStateQueued PipelineState = iota

	// PipelineStateOk means the pipeline compiled and can be bound.
	PipelineStateOk

	// PipelineStateErr means compilation failed. The pipeline will never become ready.
	PipelineStateErr
)

func (s PipelineState) String() string {
	switch s {
	case PipelineStateQueued:
		return "queued"
	case PipelineStateOk:
		return "ok"
	case PipelineStateErr:
		return "err"
	default:
		return fmt.Sprintf("PipelineState(%d)", int(s))
	}
}

// PipelineLookup is the read side of the pipeline cache that render stages use.
// Get never blocks: a pipeline that is still compiling reports false.
type PipelineLookup interface {
	Get(id PipelineID) (gpu.RenderPipeline, bool)
}

type cachedPipeline struct {
	desc     pipeline.Pipeline
	state    PipelineState
	compiled gpu.RenderPipeline
	err      error
}

// PipelineCache compiles pipeline descriptions on a worker pool and hands out ready pipelines
// without blocking. Queuing the same pipeline key twice returns the first id.
type PipelineCache struct {
	mu      sync.RWMutex
	device  gpu.Device
	pool    worker.DynamicWorkerPool
	entries []*cachedPipeline
	byKey   map[string]PipelineID
}

var _ PipelineLookup = &PipelineCache{}

// NewPipelineCache creates a cache compiling on device with up to workers concurrent compiles.
//
// Parameters:
//   - device: the device pipelines are compiled on
//   - workers: the maximum number of concurrent compiles, at least 1
//
// Returns:
//   - *PipelineCache: the cache
func NewPipelineCache(device gpu.Device, workers int) *PipelineCache {
	if workers < 1 {
		workers = 1
	}
	return &PipelineCache{
		device: device,
		pool:   worker.NewDynamicWorkerPool(workers, 256, time.Second),
		// index 0 is reserved so the zero PipelineID is never valid
		entries: []*cachedPipeline{nil},
		byKey:   make(map[string]PipelineID),
	}
}

// Queue schedules p for compilation and returns its id immediately.
//
// Parameters:
//   - p: the pipeline description
//
// Returns:
//   - PipelineID: the handle to look the compiled pipeline up with
func (c *PipelineCache) Queue(p pipeline.Pipeline) PipelineID {
	c.mu.Lock()
	if id, ok := c.byKey[p.PipelineKey()]; ok {
		c.mu.Unlock()
		return id
	}
	id := PipelineID(len(c.entries))
	entry := &cachedPipeline{desc: p, state: PipelineStateQueued}
	c.entries = append(c.entries, entry)
	c.byKey[p.PipelineKey()] = id
	c.mu.Unlock()

	c.pool.SubmitTask(worker.Task{
		ID: int(id),
		Do: func() (any, error) {
			compiled, err := c.device.CreateRenderPipeline(p.Descriptor())
			c.mu.Lock()
			defer c.mu.Unlock()
			if err != nil {
				entry.state = PipelineStateErr
				entry.err = err
				logger.Logger().Error("pipeline compile failed", "pipeline", p.PipelineKey(), "error", err)
				return nil, err
			}
			entry.state = PipelineStateOk
			entry.compiled = compiled
			logger.Logger().Debug("pipeline ready", "pipeline", p.PipelineKey())
			return nil, nil
		},
	})
	return id
}

func (c *PipelineCache) Get(id PipelineID) (gpu.RenderPipeline, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if int(id) <= 0 || int(id) >= len(c.entries) {
		return nil, false
	}
	e := c.entries[id]
	if e.state != PipelineStateOk {
		return nil, false
	}
	return e.compiled, true
}

// State returns the compilation state of id and, for PipelineStateErr, the compile error.
func (c *PipelineCache) State(id PipelineID) (PipelineState, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if int(id) <= 0 || int(id) >= len(c.entries) {
		return PipelineStateErr, fmt.Errorf("unknown pipeline id %d", id)
	}
	e := c.entries[id]
	return e.state, e.err
}

// Await polls until every id has left PipelineStateQueued. It is meant for headless warmup
// and tests; render stages must use Get.
//
// Parameters:
//   - ctx: bounds the wait
//   - ids: the pipelines to wait for
//
// Returns:
//   - error: the joined compile errors, or the context error on timeout
func (c *PipelineCache) Await(ctx context.Context, ids ...PipelineID) error {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		pending := false
		var errs []error
		for _, id := range ids {
			state, err := c.State(id)
			switch state {
			case PipelineStateQueued:
				pending = true
			case PipelineStateErr:
				errs = append(errs, err)
			}
		}
		if !pending {
			return errors.Join(errs...)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Release frees every compiled pipeline.
func (c *PipelineCache) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries[1:] {
		if e.compiled != nil {
			e.compiled.Release()
			e.compiled = nil
		}
		e.state = PipelineStateErr
		e.err = errors.New("pipeline cache released")
	}
}
