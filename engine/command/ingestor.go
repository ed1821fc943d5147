// Package command turns player input into the per-frame unit command record.
package command

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/common"
	"github.com/Carmen-Shannon/oxy-swarm/engine/camera"
	"github.com/Carmen-Shannon/oxy-swarm/engine/input"
	"github.com/Carmen-Shannon/oxy-swarm/engine/logger"
	"github.com/Carmen-Shannon/oxy-swarm/engine/units"
)

// worldExtent is the edge of the square of ground the unit grid covers.
const worldExtent = float32(units.DataWidth) * units.SlotSpacing

// Ingestor reads one input snapshot per frame and writes at most one order into the command
// record. The group hotkeys and the selection rectangle persist across frames; everything else is
// written fresh into a record the caller has reset.
type Ingestor struct {
	mu sync.Mutex

	group       uint32
	selection   [4]uint32
	dragging    bool
	dragStart   [2]uint32
	spawnRadius uint32

	script []units.Command
}

// NewIngestor creates an Ingestor with group 0 selected and no selection rectangle.
//
// Parameters:
//   - opts: a variadic list of IngestorOption functions
//
// Returns:
//   - *Ingestor: the ingestor
func NewIngestor(opts ...IngestorOption) *Ingestor {
	i := &Ingestor{spawnRadius: 10}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Queue appends scripted orders. One is consumed per frame, ahead of live input.
func (i *Ingestor) Queue(cmds ...units.Command) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.script = append(i.script, cmds...)
}

// Pending returns the number of scripted orders not yet consumed.
func (i *Ingestor) Pending() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.script)
}

// Group returns the latched unit group.
func (i *Ingestor) Group() uint32 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.group
}

// Selection returns the latched selection rectangle (min x, min z, max x, max z). A zero
// rectangle selects every unit of the group.
func (i *Ingestor) Selection() [4]uint32 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.selection
}

// Ingest writes this frame's order into cmd, which must have been reset at the start of the frame.
//
// A pending scripted order takes the frame. Otherwise, unless the UI captures the input:
//   - 1 and 2 latch group 0 and 1, Escape clears the selection
//   - Shift and left drag latches the selection rectangle
//   - a click without modifiers on the ground orders a move to the clicked point
//   - Ctrl and left click spawns units around the clicked point, Ctrl and right click a large unit
//   - U upgrades the group
//
// Parameters:
//   - snap: the input snapshot of this frame
//   - cam: the camera the cursor is projected through
//   - cmd: the command record to fill
//
// Returns:
//   - bool: true if an order was written
func (i *Ingestor) Ingest(snap input.Snapshot, cam camera.Camera, cmd *units.Command) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if len(i.script) > 0 {
		*cmd = i.script[0]
		i.script = i.script[1:]
		logger.Logger().Debug("scripted command", "command", cmd.Command, "group", cmd.UnitGroup, "remaining", len(i.script))
		return true
	}
	if snap.UICaptured {
		i.dragging = false
		return false
	}

	switch {
	case snap.JustPressed(common.Key1):
		i.group = 0
	case snap.JustPressed(common.Key2):
		i.group = 1
	}
	if snap.JustPressed(common.KeyEsc) {
		i.selection = [4]uint32{}
	}

	shift := snap.AnyPressed(common.KeyLeftShift, common.KeyRightShift)
	ctrl := snap.AnyPressed(common.KeyLeftControl, common.KeyRightControl)
	hit, ok := groundHit(snap, cam)

	cmd.UnitGroup = i.group
	cmd.SelectRegion = i.selection

	if i.dragging {
		if ok {
			i.selection = region(i.dragStart, hit)
			cmd.SelectRegion = i.selection
		}
		if !snap.ButtonPressed(common.MouseButtonLeft) {
			i.dragging = false
		}
		return false
	}

	left := snap.ButtonJustPressed(common.MouseButtonLeft)
	right := snap.ButtonJustPressed(common.MouseButtonRight)
	switch {
	case shift && left && ok:
		i.dragging = true
		i.dragStart = hit
		i.selection = region(hit, hit)
		cmd.SelectRegion = i.selection
		return false
	case ctrl && left && ok:
		cmd.Command = units.CommandSpawn
		cmd.Dest = hit
		cmd.SelectRegion = SpawnRegion(hit, i.spawnRadius)
		return true
	case ctrl && right && ok:
		cmd.Command = units.CommandSpawnLarge
		cmd.Dest = hit
		return true
	case !shift && !ctrl && (left || right) && ok:
		cmd.Command = units.CommandMove
		cmd.Dest = hit
		return true
	case snap.JustPressed(common.KeyU):
		cmd.Command = units.CommandUpgrade
		return true
	}
	return false
}

// groundHit casts the cursor ray onto the ground and rounds the hit to whole world units. Hits
// outside the unit grid, including on the axes, do not count.
func groundHit(snap input.Snapshot, cam camera.Camera) ([2]uint32, bool) {
	if !snap.CursorValid || cam == nil {
		return [2]uint32{}, false
	}
	ray, ok := cam.ViewportToRay(snap.Cursor[0], snap.Cursor[1])
	if !ok {
		return [2]uint32{}, false
	}
	p, ok := common.RayPlaneIntersection(ray, common.GroundPlane)
	if !ok {
		return [2]uint32{}, false
	}
	return GroundPoint(p)
}

// GroundPoint converts a ground intersection to a command destination.
//
// Parameters:
//   - p: a point on the ground plane
//
// Returns:
//   - [2]uint32: x and z truncated to the world unit cell they fall in
//   - bool: false when x or z is not strictly positive or lies past the unit grid
func GroundPoint(p common.Vec3) ([2]uint32, bool) {
	x, z := p[0], p[2]
	if !(x > 0 && z > 0 && x < worldExtent && z < worldExtent) {
		return [2]uint32{}, false
	}
	return [2]uint32{uint32(x), uint32(z)}, true
}

// SpawnRegion returns the square of half edge radius around center, clamped at the origin.
func SpawnRegion(center [2]uint32, radius uint32) [4]uint32 {
	sub := func(v uint32) uint32 {
		if v < radius {
			return 0
		}
		return v - radius
	}
	return [4]uint32{sub(center[0]), sub(center[1]), center[0] + radius, center[1] + radius}
}

// SpawnOrder builds the scripted spawn order of a scenario entry.
//
// Parameters:
//   - group: the unit group of the spawned units
//   - center: the center of the spawn square in world units
//   - radius: the half edge of the spawn square
//
// Returns:
//   - units.Command: the spawn order
func SpawnOrder(group uint32, center [2]uint32, radius uint32) units.Command {
	return units.Command{
		SelectRegion: SpawnRegion(center, radius),
		Dest:         center,
		Command:      units.CommandSpawn,
		UnitGroup:    group,
	}
}

func region(a, b [2]uint32) [4]uint32 {
	return [4]uint32{min(a[0], b[0]), min(a[1], b[1]), max(a[0], b[0]), max(a[1], b[1])}
}
