package units

import "math"

// Unit is the decoded form of one state texel. The zero Unit is a dead slot and encodes to the
// all-zero texel.
type Unit struct {
	// Pos is the world position on the ground plane: x and z.
	Pos    [2]float32
	Health uint32
	Team   uint32
	Group  uint32
	State  uint32
	// Timer counts the frames until the unit may attack again.
	Timer uint32
	// Dest is the movement target in whole world units.
	Dest [2]uint32
}

// Alive reports whether the slot holds a unit.
func (u Unit) Alive() bool {
	return u.Health > 0 && u.State != StateDead
}

// Encode packs the unit into an Rgba32Uint texel. Dead units encode to zero.
func (u Unit) Encode() [4]uint32 {
	if !u.Alive() {
		return [4]uint32{}
	}
	return [4]uint32{
		math.Float32bits(u.Pos[0]),
		math.Float32bits(u.Pos[1]),
		min(u.Health, 0xFF) | (u.Team&0xF)<<8 | (u.Group&0xF)<<12 | (u.State&0xF)<<16 | (u.Timer&0xFF)<<20,
		(u.Dest[0] & 0xFFFF) | (u.Dest[1]&0xFFFF)<<16,
	}
}

// DecodeUnit unpacks a state texel.
func DecodeUnit(t [4]uint32) Unit {
	return Unit{
		Pos:    [2]float32{math.Float32frombits(t[0]), math.Float32frombits(t[1])},
		Health: t[2] & 0xFF,
		Team:   (t[2] >> 8) & 0xF,
		Group:  (t[2] >> 12) & 0xF,
		State:  (t[2] >> 16) & 0xF,
		Timer:  (t[2] >> 20) & 0xFF,
		Dest:   [2]uint32{t[3] & 0xFFFF, t[3] >> 16},
	}
}

// SlotHome returns the world position a unit of slot (x, y) spawns at.
func SlotHome(x, y uint32) [2]float32 {
	return [2]float32{(float32(x) + 0.5) * SlotSpacing, (float32(y) + 0.5) * SlotSpacing}
}

// SlotTeam returns the team owning slot row y.
func SlotTeam(y uint32) uint32 {
	if y < TeamSplitRow {
		return 0
	}
	return 1
}

// SlotOf returns the slot whose home is nearest to a world position, clamped to the grid.
func SlotOf(pos [2]float32) (x, y uint32) {
	clampSlot := func(v float32, n uint32) uint32 {
		i := int(math.Floor(float64(v / SlotSpacing)))
		if i < 0 {
			return 0
		}
		if i >= int(n) {
			return n - 1
		}
		return uint32(i)
	}
	return clampSlot(pos[0], DataWidth), clampSlot(pos[1], DataHeight)
}

// Spawned returns the unit a spawn order places in slot (x, y).
func Spawned(x, y, group uint32) Unit {
	home := SlotHome(x, y)
	return Unit{
		Pos:    home,
		Health: UnitMaxHealth,
		Team:   SlotTeam(y),
		Group:  group,
		State:  StateIdle,
		Dest:   [2]uint32{uint32(home[0] + 0.5), uint32(home[1] + 0.5)},
	}
}

// AttackTexel is one decoded attack map texel.
type AttackTexel struct {
	// Offset is the slot delta from the attacker to its target.
	Offset [2]int32
	Damage uint32
	Active bool
}

// Encode packs the deposit into an Rgba8Uint texel.
func (a AttackTexel) Encode() [4]uint32 {
	if !a.Active {
		return [4]uint32{}
	}
	return [4]uint32{
		uint32(a.Offset[0]+AttackBias) & 0xFF,
		uint32(a.Offset[1]+AttackBias) & 0xFF,
		min(a.Damage, 0xFF),
		1,
	}
}

// DecodeAttack unpacks an attack map texel.
func DecodeAttack(t [4]uint32) AttackTexel {
	if t[3] != 1 {
		return AttackTexel{}
	}
	return AttackTexel{
		Offset: [2]int32{int32(t[0]) - AttackBias, int32(t[1]) - AttackBias},
		Damage: t[2],
		Active: true,
	}
}
