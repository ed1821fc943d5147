package post_process

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-swarm/common"
	"github.com/Carmen-Shannon/oxy-swarm/engine/camera"
	"github.com/Carmen-Shannon/oxy-swarm/engine/deferred"
	"github.com/Carmen-Shannon/oxy-swarm/engine/minimap"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/soft_backend"
	"github.com/Carmen-Shannon/oxy-swarm/engine/units"
)

var background = [3]float32{0.08, 0.11, 0.07}

type harness struct {
	r       renderer.Renderer
	backend *soft_backend.Backend
	mailbox *units.Mailbox
	view    *renderer.ViewContext
}

func newHarness(t *testing.T, withMinimap bool) *harness {
	t.Helper()
	backend := soft_backend.NewBackend()
	dev := backend.SoftDevice()
	r := renderer.NewRenderer(backend)
	t.Cleanup(r.Release)

	mailbox := &units.Mailbox{}
	deferredNode, err := deferred.NewNode(r, deferred.WithShaderValidation(false))
	if err != nil {
		t.Fatalf("deferred.NewNode() error = %v", err)
	}
	unitNode, err := units.NewNode(r, mailbox, units.WithShaderValidation(false))
	if err != nil {
		t.Fatalf("units.NewNode() error = %v", err)
	}
	minimapNode, err := minimap.NewNode(r, minimap.WithShaderValidation(false))
	if err != nil {
		t.Fatalf("minimap.NewNode() error = %v", err)
	}
	n, err := NewNode(r, WithShaderValidation(false))
	if err != nil {
		t.Fatalf("NewNode() error = %v", err)
	}
	for _, release := range []func(){deferredNode.Release, unitNode.Release, minimapNode.Release, n.Release} {
		t.Cleanup(release)
	}

	deferred.RegisterKernels(dev)
	units.RegisterKernels(dev, unitNode.LargeGrid())
	minimap.RegisterKernels(dev)
	RegisterKernels(dev)

	var ids []renderer.PipelineID
	ids = append(ids, deferredNode.PipelineIDs()...)
	ids = append(ids, unitNode.PipelineIDs()...)
	ids = append(ids, minimapNode.PipelineIDs()...)
	ids = append(ids, n.PipelineIDs()...)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Pipelines().Await(ctx, ids...); err != nil {
		t.Fatalf("Await() error = %v", err)
	}

	g := r.Graph()
	g.Add(deferredNode.PrepareStage())
	g.Add(unitNode.PrepareStage())
	if withMinimap {
		g.Add(minimapNode.PrepareStage())
	}
	g.Add(unitNode.SimulateStage())
	g.Add(minimapNode.GenerateStage())
	g.Add(unitNode.DrawStage())
	g.Add(deferredNode.LightingStage())
	g.Add(n.Stage())

	view := renderer.NewViewContext(0, 64, 64)
	uniform := &camera.GPUViewUniform{}
	common.Identity(uniform.ViewProj[:])
	view.SetUniform(uniform)
	return &harness{r: r, backend: backend, mailbox: mailbox, view: view}
}

func (h *harness) frame(t *testing.T, cmd units.Command) *deferred.ViewTargets {
	t.Helper()
	h.mailbox.Reset()
	h.mailbox.Update(func(c *units.Command) { *c = cmd })
	if err := h.r.RenderFrame(renderer.GPUGlobals{}, h.view); err != nil {
		t.Fatalf("RenderFrame() error = %v", err)
	}
	targets, err := renderer.GetComponent[deferred.ViewTargets](h.view)
	if err != nil {
		t.Fatalf("GetComponent() error = %v", err)
	}
	return targets
}

func pixel(t *testing.T, tex gpu.Texture, x, y uint32) [3]float32 {
	t.Helper()
	f := tex.(*soft_backend.Texture).LoadFloat(x, y, 0)
	return [3]float32{f[0], f[1], f[2]}
}

func near(a, b [3]float32) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-4 {
			return false
		}
	}
	return true
}

func TestCompositeOverEmptyWorld(t *testing.T) {
	h := newHarness(t, true)
	targets := h.frame(t, units.Command{})
	main := targets.Main()

	if got := pixel(t, main, 40, 10); !near(got, background) {
		t.Errorf("scene pixel = %v, want background %v", got, background)
	}
	// The overlay is 32 pixels on a 64 pixel view.
	want := mix(background, emptyCell, 0.85)
	if got := pixel(t, main, 0, 63); !near(got, want) {
		t.Errorf("overlay pixel = %v, want %v", got, want)
	}
	if got := pixel(t, main, 31, 32); !near(got, want) {
		t.Errorf("overlay top-right pixel = %v, want %v", got, want)
	}
	if got := pixel(t, main, 32, 63); near(got, want) {
		t.Errorf("pixel right of the overlay was overlaid")
	}
}

func TestOverlayShowsUnits(t *testing.T) {
	h := newHarness(t, true)
	// Slots 0..3 on both axes fill minimap cell (0, 0).
	targets := h.frame(t, units.Command{SelectRegion: [4]uint32{0, 0, 8, 8}, Command: units.CommandSpawn})

	want := mix(background, MinimapCell([4]uint32{16, 0, 0, 255}), 0.85)
	if got := pixel(t, targets.Main(), 0, 63); !near(got, want) {
		t.Errorf("overlay pixel = %v, want %v", got, want)
	}
}

func TestLargeUnitMarker(t *testing.T) {
	h := newHarness(t, true)
	h.frame(t, units.Command{Command: units.CommandSpawnLarge})
	targets := h.frame(t, units.Command{})

	// Identity projection puts world (0, 0) in the middle of the view.
	if got := pixel(t, targets.Main(), 32, 32); !near(got, teamTint(units.PlayerTeam)) {
		t.Errorf("marker pixel = %v, want %v", got, teamTint(units.PlayerTeam))
	}
	if got := pixel(t, targets.Main(), 40, 10); !near(got, background) {
		t.Errorf("pixel away from the marker = %v", got)
	}
}

func TestSkipsWithoutMinimap(t *testing.T) {
	h := newHarness(t, false)
	targets := h.frame(t, units.Command{})

	for _, p := range h.backend.SoftDevice().Passes() {
		if p.Label == "post_process_pass" {
			t.Fatalf("post process recorded without a minimap chain")
		}
	}
	if got := pixel(t, targets.Main(), 0, 63); !near(got, background) {
		t.Errorf("lit pixel = %v, want background", got)
	}
}

func TestThreat(t *testing.T) {
	dev := soft_backend.NewDevice()
	tex, err := dev.CreateTexture(&gpu.TextureDescriptor{
		Label:  "coarse",
		Format: units.MinimapFormat,
		Size:   gpu.Extent{Width: 2, Height: 2, Layers: 1},
	})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	coarse := tex.(*soft_backend.Texture)

	tests := []struct {
		name      string
		attacking [4]uint32
		want      float32
	}{
		{"calm", [4]uint32{}, 0},
		{"half", [4]uint32{16, 16, 0, 0}, 0.5},
		{"saturated", [4]uint32{255, 255, 0, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, b := range tt.attacking {
				coarse.Store(uint32(i%2), uint32(i/2), 0, [4]uint32{0, 0, b, 255})
			}
			if got := Threat(coarse, 64); got != tt.want {
				t.Errorf("Threat() = %v, want %v", got, tt.want)
			}
		})
	}
	if got := Threat(nil, 64); got != 0 {
		t.Errorf("Threat(nil) = %v", got)
	}
}

func TestOverlaySize(t *testing.T) {
	tests := []struct {
		limit, width, height, want uint32
	}{
		{128, 1280, 720, 128},
		{128, 64, 64, 32},
		{128, 200, 90, 45},
		{128, 1, 1, 0},
	}
	for _, tt := range tests {
		if got := OverlaySize(tt.limit, tt.width, tt.height); got != tt.want {
			t.Errorf("OverlaySize(%d, %d, %d) = %d, want %d", tt.limit, tt.width, tt.height, got, tt.want)
		}
	}
}

func TestMinimapCell(t *testing.T) {
	if got := MinimapCell([4]uint32{}); got != emptyCell {
		t.Errorf("empty cell = %v", got)
	}
	own := MinimapCell([4]uint32{16, 0, 0, 255})
	if !near(own, teamTint(units.PlayerTeam)) {
		t.Errorf("full player cell = %v", own)
	}
	contested := MinimapCell([4]uint32{4, 4, 2, 255})
	calm := MinimapCell([4]uint32{4, 4, 0, 255})
	if near(contested, calm) {
		t.Errorf("attacking units do not change the cell color")
	}
}
