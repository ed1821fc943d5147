package renderer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/soft_backend"
)

func unitDesc() gpu.TextureDescriptor {
	return gpu.TextureDescriptor{
		Format: gpu.TextureFormatRGBA32Uint,
		Size:   gpu.Extent{Width: 8, Height: 8},
		Usage:  gpu.TextureUsageTextureBinding | gpu.TextureUsageRenderAttachment,
	}
}

func TestTextureCacheReuse(t *testing.T) {
	dev := soft_backend.NewDevice()
	cache := NewTextureCache(dev)
	desc := unitDesc()
	desc.Label = "unit_data_a_view0"

	first, err := cache.Get(desc)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	second, err := cache.Get(desc)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if first == second {
		t.Fatal("two requests in one frame returned the same texture")
	}
	cache.Update()

	again, _ := cache.Get(desc)
	if again != first {
		t.Error("next frame did not reuse the first allocation")
	}
	if n := dev.Allocations(desc.Label); n != 2 {
		t.Errorf("allocations = %d, want 2", n)
	}

	resized := desc
	resized.Size = gpu.Extent{Width: 16, Height: 16}
	other, _ := cache.Get(resized)
	if other == first {
		t.Error("a different size shared an allocation")
	}
}

func TestTextureCacheEviction(t *testing.T) {
	cache := NewTextureCache(soft_backend.NewDevice())
	desc := unitDesc()
	desc.Label = "scratch"
	tex, _ := cache.Get(desc)
	cache.Update()

	for i := 0; i < textureEvictAge-1; i++ {
		cache.Update()
		if cache.Len() != 1 {
			t.Fatalf("evicted after %d idle frames", i+1)
		}
	}
	cache.Update()
	if cache.Len() != 0 {
		t.Fatalf("Len() = %d after %d idle frames, want 0", cache.Len(), textureEvictAge)
	}
	if !tex.(*soft_backend.Texture).Released() {
		t.Error("evicted texture was not released")
	}
}

func TestTextureCacheRejectsBadFormat(t *testing.T) {
	cache := NewTextureCache(soft_backend.NewDevice())
	_, err := cache.Get(gpu.TextureDescriptor{Label: "bad", Size: gpu.Extent{Width: 1, Height: 1}})
	if err == nil {
		t.Fatal("Get() accepted an undefined format")
	}
}

// Over many frames the read texture of a pair must equal the previous frame's write texture
// and never the current write texture.
func TestDoubleBufferedParity(t *testing.T) {
	cache := NewTextureCache(soft_backend.NewDevice())
	view := NewViewContext(0, 64, 64)

	var prevWrite gpu.Texture
	for frame := 0; frame < 16; frame++ {
		pair, err := AcquireDoubleBuffered(cache, view, "unit_data", unitDesc())
		if err != nil {
			t.Fatalf("frame %d: AcquireDoubleBuffered() error = %v", frame, err)
		}
		if pair.Read == pair.Write {
			t.Fatalf("frame %d: read and write are the same texture", frame)
		}
		if prevWrite != nil && pair.Read != prevWrite {
			t.Fatalf("frame %d: read is not the previous frame's write", frame)
		}
		prevWrite = pair.Write

		view.MarkSimulated()
		view.EndFrame()
		cache.Update()
	}
	if view.Step() != 16 {
		t.Errorf("Step() = %d, want 16", view.Step())
	}
}

func TestSkippedFrameKeepsParity(t *testing.T) {
	view := NewViewContext(3, 1, 1)
	view.MarkSimulated()
	view.EndFrame()
	if view.Parity() != 1 {
		t.Fatalf("Parity() = %d, want 1", view.Parity())
	}
	view.EndFrame()
	if view.Parity() != 1 {
		t.Errorf("Parity() changed on a frame without simulation")
	}
	if got := view.Label("unit_data_a"); got != "unit_data_a_view3" {
		t.Errorf("Label() = %q", got)
	}
}

type marker struct{ n int }

func TestViewComponents(t *testing.T) {
	view := NewViewContext(0, 1, 1)
	if _, err := GetComponent[marker](view); !errors.Is(err, gpu.ErrMissingResource) {
		t.Fatalf("GetComponent() on empty view error = %v, want ErrMissingResource", err)
	}
	SetComponent(view, &marker{n: 7})
	m, err := GetComponent[marker](view)
	if err != nil || m.n != 7 {
		t.Fatalf("GetComponent() = %v, %v", m, err)
	}
	RemoveComponent[marker](view)
	if _, err := GetComponent[marker](view); err == nil {
		t.Error("component survived RemoveComponent")
	}
}

type uniformValue [20]byte

func (u uniformValue) Marshal() []byte { return u[:] }

func TestUniformArena(t *testing.T) {
	arena := NewUniformArena(soft_backend.NewDevice())
	first, err := arena.Upload("cmd", uniformValue{1})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if first.Size() != 32 {
		t.Errorf("Size() = %d, want 32", first.Size())
	}
	arena.Trim()
	second, _ := arena.Upload("cmd", uniformValue{2})
	if second != first {
		t.Error("upload under the same label allocated a new buffer")
	}
	if got := second.(*soft_backend.Buffer).Bytes()[0]; got != 2 {
		t.Errorf("buffer byte 0 = %d, want 2", got)
	}
	arena.Trim()
	arena.Trim()
	if arena.Len() != 0 {
		t.Errorf("Len() = %d after an idle frame, want 0", arena.Len())
	}
}

const cacheTestSource = `
@vertex
fn vertex(@builtin(vertex_index) index: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}

@fragment
fn fragment() -> @location(0) vec4<u32> {
    return vec4<u32>(1u);
}
`

func testPipeline(t *testing.T, key string) pipeline.Pipeline {
	t.Helper()
	s, err := shader.NewShader(key, cacheTestSource, shader.WithValidation(false))
	if err != nil {
		t.Fatalf("NewShader() error = %v", err)
	}
	p, err := pipeline.NewPipeline(key, pipeline.WithShader(s), pipeline.WithColorTarget(gpu.TextureFormatRGBA32Uint))
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	return p
}

func TestPipelineCache(t *testing.T) {
	dev := soft_backend.NewDevice()
	dev.FailPipeline("broken", errors.New("bad shader"))
	cache := NewPipelineCache(dev, 2)

	ok := cache.Queue(testPipeline(t, "good"))
	bad := cache.Queue(testPipeline(t, "broken"))
	if again := cache.Queue(testPipeline(t, "good")); again != ok {
		t.Errorf("requeue returned %d, want %d", again, ok)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cache.Await(ctx, ok, bad); err == nil {
		t.Fatal("Await() did not report the failed compile")
	}

	if p, ready := cache.Get(ok); !ready || p.Label() != "good" {
		t.Errorf("Get(good) = %v, %v", p, ready)
	}
	if _, ready := cache.Get(bad); ready {
		t.Error("failed pipeline reported ready")
	}
	if state, _ := cache.State(bad); state != PipelineStateErr {
		t.Errorf("State(bad) = %v, want err", state)
	}
	if _, ready := cache.Get(0); ready {
		t.Error("zero id reported ready")
	}
}

type neverReady struct{}

func (neverReady) Get(PipelineID) (gpu.RenderPipeline, bool) { return nil, false }

type recordingStage struct {
	label string
	err   error
	runs  *[]string
}

func (s recordingStage) Label() string { return s.label }

func (s recordingStage) Run(frame *FrameContext, view *ViewContext) error {
	*s.runs = append(*s.runs, fmt.Sprintf("%s/%d", s.label, view.ID()))
	if s.err == nil {
		view.MarkSimulated()
	}
	return s.err
}

func TestRenderFrameOrderAndSkips(t *testing.T) {
	backend := soft_backend.NewBackend(soft_backend.WithSurface(8, 8))
	var runs []string
	r := NewRenderer(backend,
		WithStage(recordingStage{label: "a", runs: &runs}),
		WithStage(recordingStage{label: "b", err: fmt.Errorf("pipeline 3: %w", gpu.ErrNotReady), runs: &runs}),
		WithStage(recordingStage{label: "c", err: fmt.Errorf("minimap: %w", gpu.ErrMissingResource), runs: &runs}),
	)
	v0 := NewViewContext(0, 8, 8)
	v1 := NewViewContext(1, 8, 8)

	if err := r.RenderFrame(GPUGlobals{}, v0, v1); err != nil {
		t.Fatalf("RenderFrame() error = %v", err)
	}
	want := []string{"a/0", "b/0", "c/0", "a/1", "b/1", "c/1"}
	if fmt.Sprint(runs) != fmt.Sprint(want) {
		t.Errorf("runs = %v, want %v", runs, want)
	}
	if backend.SoftSurface().Presents() != 1 {
		t.Errorf("Presents() = %d, want 1", backend.SoftSurface().Presents())
	}
	if v0.Step() != 1 || v1.Step() != 1 {
		t.Errorf("steps = %d/%d, want 1/1", v0.Step(), v1.Step())
	}
	if v0.UniformBuffer() == nil {
		t.Error("view uniform was not uploaded")
	}
	if r.FrameCount() != 1 {
		t.Errorf("FrameCount() = %d", r.FrameCount())
	}
	if n := backend.SoftDevice().OpenEncoders(); n != 0 {
		t.Errorf("OpenEncoders() = %d, want 0", n)
	}
}

func TestRenderFrameFatalError(t *testing.T) {
	var runs []string
	boom := errors.New("layout mismatch")
	backend := soft_backend.NewBackend()
	r := NewRenderer(backend,
		WithStage(recordingStage{label: "bad", err: boom, runs: &runs}),
		WithStage(recordingStage{label: "after", runs: &runs}),
	)
	view := NewViewContext(0, 4, 4)
	if err := r.RenderFrame(GPUGlobals{}, view); !errors.Is(err, boom) {
		t.Fatalf("RenderFrame() error = %v, want %v", err, boom)
	}
	if len(runs) != 1 {
		t.Errorf("stages after a fatal error ran: %v", runs)
	}
	if view.Step() != 0 {
		t.Errorf("Step() = %d after a failed frame", view.Step())
	}
	if n := backend.SoftDevice().OpenEncoders(); n != 0 {
		t.Errorf("OpenEncoders() = %d after a failed frame, want 0", n)
	}
}

func TestFramePipelineNotReady(t *testing.T) {
	frame := &FrameContext{Pipelines: neverReady{}}
	if _, err := frame.Pipeline(1); !errors.Is(err, gpu.ErrNotReady) {
		t.Errorf("Pipeline() error = %v, want ErrNotReady", err)
	}
}

func TestFrameGraphRejectsDuplicates(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("duplicate stage label did not panic")
		}
	}()
	noop := func(*FrameContext, *ViewContext) error { return nil }
	NewFrameGraph(StageFunc{Name: "x", Fn: noop}, StageFunc{Name: "x", Fn: noop})
}
