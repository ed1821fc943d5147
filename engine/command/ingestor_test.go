package command

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-swarm/common"
	"github.com/Carmen-Shannon/oxy-swarm/engine/camera"
	"github.com/Carmen-Shannon/oxy-swarm/engine/input"
	"github.com/Carmen-Shannon/oxy-swarm/engine/units"
)

// newCamera looks along +z from (x+0.5, 10, z+0.5) at half a world unit per pixel. Looking down
// at 45 degrees the screen center hits the middle of cell (x, z+10).
func newCamera(x, z float32, pitch float32) camera.Camera {
	ctrl := camera.NewCameraController(
		camera.WithPosition(common.Vec3{x + 0.5, 10, z + 0.5}),
		camera.WithOrientation(0, pitch),
		camera.WithScale(0.5),
	)
	return camera.NewCamera(camera.WithViewport(1280, 720), camera.WithController(ctrl))
}

var downward = -float32(math.Pi / 4)

func click(s *input.State, x, y float32, button int, keys ...uint32) input.Snapshot {
	for _, k := range keys {
		s.KeyDown(k)
	}
	s.CursorMoved(x, y)
	s.ButtonDown(button)
	s.ButtonUp(button)
	snap := s.Snapshot()
	for _, k := range keys {
		s.KeyUp(k)
	}
	return snap
}

func TestClickToMoveEndToEnd(t *testing.T) {
	cam := newCamera(50, 70, downward)
	ingestor := NewIngestor()
	mailbox := &units.Mailbox{}
	state := input.NewState()

	mailbox.Reset()
	snap := click(state, 640, 360, common.MouseButtonLeft)
	mailbox.Update(func(c *units.Command) { ingestor.Ingest(snap, cam, c) })

	got := mailbox.Load()
	want := units.Command{Dest: [2]uint32{50, 80}, Command: units.CommandMove}
	if got != want {
		t.Fatalf("command = %+v, want %+v", got, want)
	}

	mailbox.Reset()
	if got := mailbox.Load(); !got.IsZero() {
		t.Errorf("command after reset = %+v, want zero", got)
	}
	mailbox.Update(func(c *units.Command) { ingestor.Ingest(state.Snapshot(), cam, c) })
	if got := mailbox.Load(); got.Command != units.CommandNone {
		t.Errorf("idle frame command = %d, want none", got.Command)
	}
}

func TestNoCommand(t *testing.T) {
	tests := []struct {
		name  string
		cam   camera.Camera
		setup func(s *input.State)
	}{
		{"ui captured", newCamera(50, 70, downward), func(s *input.State) { s.SetUICaptured(true) }},
		{"ray parallel to the ground", newCamera(50, 70, 0), nil},
		{"ground behind the ray", newCamera(50, 70, float32(math.Pi/4)), nil},
		{"hit at negative x", newCamera(-50, 70, downward), nil},
		{"hit past the grid", newCamera(50, 2000, downward), nil},
		{"cursor outside the window", newCamera(50, 70, downward), func(s *input.State) { s.CursorLeft() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := input.NewState()
			state.CursorMoved(640, 360)
			if tt.setup != nil {
				tt.setup(state)
			}
			state.ButtonDown(common.MouseButtonLeft)

			var cmd units.Command
			if NewIngestor().Ingest(state.Snapshot(), tt.cam, &cmd) {
				t.Errorf("Ingest() wrote %+v", cmd)
			}
			if cmd.Command != units.CommandNone {
				t.Errorf("command = %d, want none", cmd.Command)
			}
		})
	}
}

func TestGroupHotkeysPersist(t *testing.T) {
	cam := newCamera(50, 70, downward)
	ingestor := NewIngestor()
	state := input.NewState()

	state.KeyDown(common.Key2)
	var cmd units.Command
	ingestor.Ingest(state.Snapshot(), cam, &cmd)
	state.KeyUp(common.Key2)
	if ingestor.Group() != 1 {
		t.Fatalf("Group() = %d, want 1", ingestor.Group())
	}

	cmd = units.Command{}
	ingestor.Ingest(click(state, 640, 360, common.MouseButtonRight), cam, &cmd)
	if cmd.Command != units.CommandMove || cmd.UnitGroup != 1 {
		t.Errorf("command = %+v, want a group 1 move", cmd)
	}

	state.KeyDown(common.Key1)
	ingestor.Ingest(state.Snapshot(), cam, &units.Command{})
	if ingestor.Group() != 0 {
		t.Errorf("Group() = %d, want 0", ingestor.Group())
	}
}

func TestShiftDragLatchesSelection(t *testing.T) {
	cam := newCamera(50, 70, downward)
	ingestor := NewIngestor()
	state := input.NewState()

	hitAt := func(x, y float32) [2]uint32 {
		ray, _ := cam.ViewportToRay(x, y)
		p, ok := common.RayPlaneIntersection(ray, common.GroundPlane)
		if !ok {
			t.Fatalf("no ground under (%v, %v)", x, y)
		}
		g, ok := GroundPoint(p)
		if !ok {
			t.Fatalf("ground point %v out of bounds", p)
		}
		return g
	}

	state.KeyDown(common.KeyLeftShift)
	state.CursorMoved(640, 360)
	state.ButtonDown(common.MouseButtonLeft)
	var cmd units.Command
	if ingestor.Ingest(state.Snapshot(), cam, &cmd) {
		t.Fatal("starting a drag must not issue an order")
	}

	state.CursorMoved(600, 330)
	ingestor.Ingest(state.Snapshot(), cam, &units.Command{})
	state.ButtonUp(common.MouseButtonLeft)
	state.KeyUp(common.KeyLeftShift)
	ingestor.Ingest(state.Snapshot(), cam, &units.Command{})

	a, b := hitAt(640, 360), hitAt(600, 330)
	want := region(a, b)
	if got := ingestor.Selection(); got != want {
		t.Fatalf("Selection() = %v, want %v", got, want)
	}

	cmd = units.Command{}
	ingestor.Ingest(click(state, 640, 360, common.MouseButtonLeft), cam, &cmd)
	if cmd.Command != units.CommandMove || cmd.SelectRegion != want {
		t.Errorf("move after selection = %+v", cmd)
	}

	state.KeyDown(common.KeyEsc)
	ingestor.Ingest(state.Snapshot(), cam, &units.Command{})
	if got := ingestor.Selection(); got != [4]uint32{} {
		t.Errorf("Selection() after escape = %v", got)
	}
}

func TestModifierOrders(t *testing.T) {
	tests := []struct {
		name   string
		button int
		keys   []uint32
		want   units.Command
	}{
		{
			"ctrl left click spawns",
			common.MouseButtonLeft,
			[]uint32{common.KeyLeftControl},
			units.Command{SelectRegion: [4]uint32{40, 70, 60, 90}, Dest: [2]uint32{50, 80}, Command: units.CommandSpawn},
		},
		{
			"ctrl right click spawns a large unit",
			common.MouseButtonRight,
			[]uint32{common.KeyRightControl},
			units.Command{Dest: [2]uint32{50, 80}, Command: units.CommandSpawnLarge},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cmd units.Command
			if !NewIngestor().Ingest(click(input.NewState(), 640, 360, tt.button, tt.keys...), newCamera(50, 70, downward), &cmd) {
				t.Fatal("Ingest() wrote nothing")
			}
			if cmd != tt.want {
				t.Errorf("command = %+v, want %+v", cmd, tt.want)
			}
		})
	}
}

func TestUpgradeHotkey(t *testing.T) {
	state := input.NewState()
	state.KeyDown(common.KeyU)
	var cmd units.Command
	if !NewIngestor().Ingest(state.Snapshot(), newCamera(50, 70, downward), &cmd) {
		t.Fatal("Ingest() wrote nothing")
	}
	if cmd.Command != units.CommandUpgrade {
		t.Errorf("command = %d, want upgrade", cmd.Command)
	}
}

func TestScriptOnePerFrame(t *testing.T) {
	first := SpawnOrder(0, [2]uint32{100, 100}, 20)
	second := SpawnOrder(1, [2]uint32{100, 900}, 20)
	ingestor := NewIngestor(WithScript(first, second))
	cam := newCamera(50, 70, downward)
	state := input.NewState()

	for i, want := range []units.Command{first, second} {
		var cmd units.Command
		// A live click on the same frame loses to the script.
		if !ingestor.Ingest(click(state, 640, 360, common.MouseButtonLeft), cam, &cmd) {
			t.Fatalf("frame %d: no scripted order", i)
		}
		if cmd != want {
			t.Errorf("frame %d: command = %+v, want %+v", i, cmd, want)
		}
	}
	if ingestor.Pending() != 0 {
		t.Errorf("Pending() = %d", ingestor.Pending())
	}

	var cmd units.Command
	ingestor.Ingest(click(state, 640, 360, common.MouseButtonLeft), cam, &cmd)
	if cmd.Command != units.CommandMove {
		t.Errorf("live input after the script = %+v", cmd)
	}
}

func TestSpawnRegion(t *testing.T) {
	tests := []struct {
		center [2]uint32
		radius uint32
		want   [4]uint32
	}{
		{[2]uint32{50, 80}, 10, [4]uint32{40, 70, 60, 90}},
		{[2]uint32{5, 80}, 10, [4]uint32{0, 70, 15, 90}},
		{[2]uint32{5, 3}, 0, [4]uint32{5, 3, 5, 3}},
	}
	for _, tt := range tests {
		if got := SpawnRegion(tt.center, tt.radius); got != tt.want {
			t.Errorf("SpawnRegion(%v, %d) = %v, want %v", tt.center, tt.radius, got, tt.want)
		}
	}
}

func TestGroundPoint(t *testing.T) {
	tests := []struct {
		name string
		p    common.Vec3
		want [2]uint32
		ok   bool
	}{
		{"truncates", common.Vec3{49.6, 0, 80.4}, [2]uint32{49, 80}, true},
		{"cell origin", common.Vec3{50, 0, 80}, [2]uint32{50, 80}, true},
		{"just inside the grid", common.Vec3{1023.9, 0, 0.2}, [2]uint32{1023, 0}, true},
		{"zero x", common.Vec3{0, 0, 10}, [2]uint32{}, false},
		{"negative z", common.Vec3{10, 0, -1}, [2]uint32{}, false},
		{"past the grid", common.Vec3{10, 0, 1024}, [2]uint32{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GroundPoint(tt.p)
			if got != tt.want || ok != tt.ok {
				t.Errorf("GroundPoint(%v) = %v, %v, want %v, %v", tt.p, got, ok, tt.want, tt.ok)
			}
		})
	}
}
