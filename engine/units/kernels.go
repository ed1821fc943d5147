package units

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/soft_backend"
)

// RegisterKernels installs CPU versions of the Evaluate, Update and Large-Unit Update shaders on
// a software device, so the simulation runs headless and in tests.
//
// Parameters:
//   - dev: the software device
//   - large: the large unit grid the node was created with
func RegisterKernels(dev *soft_backend.Device, large LargeGrid) {
	dev.RegisterKernel(EvaluatePipelineLabel, soft_backend.Fullscreen(evaluateTexel))
	dev.RegisterKernel(UpdatePipelineLabel, soft_backend.Fullscreen(updateTexel))
	dev.RegisterKernel(LargeUpdatePipelineLabel, soft_backend.Fullscreen(func(inv *soft_backend.Invocation, x, y uint32, out [][4]uint32) {
		largeUpdateTexel(inv, large, x, y, out)
	}))
}

func deltaTime(inv *soft_backend.Invocation) float32 {
	g := inv.Uniform(9)
	if len(g) < 8 {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(g[4:]))
}

func inGrid(x, y int32) bool {
	return x >= 0 && y >= 0 && x < DataWidth && y < DataHeight
}

func distance(a, b [2]float32) float32 {
	dx, dz := a[0]-b[0], a[1]-b[1]
	return float32(math.Sqrt(float64(dx*dx + dz*dz)))
}

func stepToward(pos, dest [2]float32, step float32) [2]float32 {
	dist := distance(dest, pos)
	if dist <= step {
		return dest
	}
	return [2]float32{
		pos[0] + (dest[0]-pos[0])/dist*step,
		pos[1] + (dest[1]-pos[1])/dist*step,
	}
}

func applyCommand(u *Unit, cmd *Command, maxHealth uint32) {
	if u.Team != PlayerTeam || u.Group != cmd.UnitGroup {
		return
	}
	if cmd.Command == CommandMove && (cmd.RegionEmpty() || cmd.InRegion(u.Pos)) {
		u.Dest = cmd.Dest
		u.State = StateMoving
	}
	if cmd.Command == CommandUpgrade {
		u.Health = maxHealth
	}
}

func moveUnit(u *Unit, speed, dt float32) {
	if u.State != StateMoving {
		return
	}
	dest := [2]float32{float32(u.Dest[0]), float32(u.Dest[1])}
	u.Pos = stepToward(u.Pos, dest, speed*dt)
	if u.Pos == dest {
		u.State = StateIdle
	}
}

func evaluateTexel(inv *soft_backend.Invocation, x, y uint32, out [][4]uint32) {
	data := inv.Texture(101)
	attack := inv.Texture(103)
	minimap := inv.Texture(106)
	cmd := UnmarshalCommand(inv.Uniform(102))

	u := DecodeUnit(data.Load(x, y, 0))
	if !u.Alive() {
		if cmd.Command == CommandSpawn && cmd.InRegion(SlotHome(x, y)) {
			out[0] = Spawned(x, y, cmd.UnitGroup).Encode()
		}
		return
	}

	applyCommand(&u, &cmd, UnitMaxHealth)
	if u.Timer > 0 {
		u.Timer--
	}

	sx, sy := int32(x), int32(y)
	validTarget := func(tx, ty int32) bool {
		if !inGrid(tx, ty) {
			return false
		}
		other := DecodeUnit(data.Load(uint32(tx), uint32(ty), 0))
		return other.Alive() && other.Team != u.Team && distance(other.Pos, u.Pos) <= AttackRange
	}

	var (
		hasTarget bool
		target    [2]int32
	)
	if prev := DecodeAttack(attack.Load(x, y, 0)); prev.Active && validTarget(sx+prev.Offset[0], sy+prev.Offset[1]) {
		hasTarget = true
		target = prev.Offset
	}
	if !hasTarget {
		best := float32(AttackRange*AttackRange + 1)
		for dy := int32(-AttackRadius); dy <= AttackRadius; dy++ {
			for dx := int32(-AttackRadius); dx <= AttackRadius; dx++ {
				if (dx == 0 && dy == 0) || !validTarget(sx+dx, sy+dy) {
					continue
				}
				other := DecodeUnit(data.Load(uint32(sx+dx), uint32(sy+dy), 0))
				d := distance(other.Pos, u.Pos)
				if d*d < best {
					best = d * d
					target = [2]int32{dx, dy}
					hasTarget = true
				}
			}
		}
	}

	switch {
	case hasTarget && u.State != StateMoving:
		u.State = StateAttacking
		if u.Timer == 0 {
			out[1] = AttackTexel{Offset: target, Damage: UnitDamage, Active: true}.Encode()
			u.Timer = AttackCooldown
		}
	case !hasTarget && u.State == StateAttacking:
		u.State = StateIdle
	}

	if u.State == StateIdle && minimap != nil {
		cx, cy := x/RallyLevelCells, y/RallyLevelCells
		rally := SlotHome(cx*RallyLevelCells+RallyLevelCells/2, cy*RallyLevelCells+RallyLevelCells/2)
		if minimap.Load(cx, cy, 0)[2] > 0 && distance(u.Pos, rally) > RallyRadius {
			u.Dest = [2]uint32{uint32(rally[0] + 0.5), uint32(rally[1] + 0.5)}
			u.State = StateMoving
		}
	}

	moveUnit(&u, UnitSpeed, deltaTime(inv))
	out[0] = u.Encode()
}

func updateTexel(inv *soft_backend.Invocation, x, y uint32, out [][4]uint32) {
	data := inv.Texture(101)
	attack := inv.Texture(103)

	u := DecodeUnit(data.Load(x, y, 0))
	if !u.Alive() {
		return
	}
	damage := HarvestDamage(func(sx, sy uint32) [4]uint32 { return attack.Load(sx, sy, 0) }, x, y)
	if damage >= u.Health {
		return
	}
	u.Health -= damage
	out[0] = u.Encode()
}

// HarvestDamage sums the damage deposited on slot (x, y) by attackers within AttackRadius.
//
// Parameters:
//   - load: reads the attack map texel of a slot
//   - x, y: the target slot
//
// Returns:
//   - uint32: the total damage
func HarvestDamage(load func(x, y uint32) [4]uint32, x, y uint32) uint32 {
	var damage uint32
	for dy := int32(-AttackRadius); dy <= AttackRadius; dy++ {
		for dx := int32(-AttackRadius); dx <= AttackRadius; dx++ {
			sx, sy := int32(x)+dx, int32(y)+dy
			if !inGrid(sx, sy) {
				continue
			}
			a := DecodeAttack(load(uint32(sx), uint32(sy)))
			if a.Active && sx+a.Offset[0] == int32(x) && sy+a.Offset[1] == int32(y) {
				damage += a.Damage
			}
		}
	}
	return damage
}

func largeUpdateTexel(inv *soft_backend.Invocation, large LargeGrid, x, y uint32, out [][4]uint32) {
	prev := inv.Texture(101)
	data := inv.Texture(103)
	cmd := UnmarshalCommand(inv.Uniform(102))

	u := DecodeUnit(prev.Load(x, y, 0))
	if !u.Alive() {
		if cmd.Command != CommandSpawnLarge {
			return
		}
		index := y*large.Width + x
		for i := uint32(0); i < index; i++ {
			if !DecodeUnit(prev.Load(i%large.Width, i/large.Width, 0)).Alive() {
				return
			}
		}
		out[0] = Unit{
			Pos:    [2]float32{float32(cmd.Dest[0]), float32(cmd.Dest[1])},
			Health: LargeMaxHealth,
			Team:   PlayerTeam,
			Group:  cmd.UnitGroup,
			State:  StateIdle,
			Dest:   cmd.Dest,
		}.Encode()
		return
	}

	applyCommand(&u, &cmd, LargeMaxHealth)

	cx := int32(math.Floor(float64(u.Pos[0] / SlotSpacing)))
	cy := int32(math.Floor(float64(u.Pos[1] / SlotSpacing)))
	var damage uint32
	for dy := int32(-AttackRadius); dy <= AttackRadius; dy++ {
		for dx := int32(-AttackRadius); dx <= AttackRadius; dx++ {
			if !inGrid(cx+dx, cy+dy) {
				continue
			}
			other := DecodeUnit(data.Load(uint32(cx+dx), uint32(cy+dy), 0))
			if other.Alive() && other.Team != u.Team && other.State == StateAttacking && distance(other.Pos, u.Pos) <= LargeHitRange {
				damage++
			}
		}
	}
	if damage >= u.Health {
		return
	}
	u.Health -= damage

	moveUnit(&u, LargeSpeed, deltaTime(inv))
	out[0] = u.Encode()
}
