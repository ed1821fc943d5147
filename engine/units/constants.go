// Package units implements the unit simulation: the per-view double buffered state textures,
// the Evaluate, Update and Large-Unit Update passes, and the G-buffer draws of units and
// their projectiles.
//
// The numeric constants below are the single source of truth for both the host and the
// shaders; ShaderDefs hands them to the shader pre-processor as #{NAME} defines.
package units

import (
	"fmt"
	"strconv"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
)

const (
	// DataFormat is the format of every unit state texture.
	DataFormat = gpu.TextureFormatRGBA32Uint
	// AttackFormat is the format of the attack map.
	AttackFormat = gpu.TextureFormatRGBA8Uint

	// DataWidth and DataHeight are the small unit grid dimensions, one slot per texel.
	DataWidth  = 512
	DataHeight = 512
	// TeamSplitRow is the first slot row belonging to team 1.
	TeamSplitRow = DataHeight / 2
	// SlotSpacing is the world distance between the home positions of neighboring slots.
	SlotSpacing = 2.0

	// AttackRadius is how many slots away, in each axis, a unit looks for targets and
	// harvests deposited damage.
	AttackRadius = 5
	// AttackBias offsets signed slot deltas in the attack map channels.
	AttackBias = 128
	// AttackRange is the world distance within which a unit can hit a target.
	AttackRange = 6.0
	// AttackCooldown is the number of frames between two hits of one unit.
	AttackCooldown = 30
	// UnitDamage is the damage of one small unit hit.
	UnitDamage = 10
	// UnitMaxHealth is the health of a freshly spawned or upgraded small unit.
	UnitMaxHealth = 100
	// UnitSpeed is the small unit movement speed in world units per second.
	UnitSpeed = 20.0
	// RallyRadius is the distance from a fight's cell center beyond which idle units move in.
	RallyRadius = 8.0
	// RallyLevelCells is the cell size, in slots, of the minimap level idle units rally on.
	RallyLevelCells = MinimapScale * MinimapScale

	// DefaultLargeWidth and DefaultLargeHeight are the default large unit grid dimensions.
	DefaultLargeWidth  = 67
	DefaultLargeHeight = 2
	// LargeMaxHealth is the health of a freshly spawned large unit.
	LargeMaxHealth = 255
	// LargeSpeed is the large unit movement speed in world units per second.
	LargeSpeed = 10.0
	// LargeHitRange is the world distance within which attacking enemies wear a large unit down.
	LargeHitRange = 10.0

	// PlayerTeam is the team commands apply to.
	PlayerTeam = 0

	// MinimapScale is the reduction factor between the unit grid and minimap level 0, and
	// between consecutive minimap levels.
	MinimapScale = 4
	// MinimapLevels is the length of the minimap chain.
	MinimapLevels = 4
	// MinimapFormat is the format of every minimap level.
	MinimapFormat = gpu.TextureFormatRGBA8Uint
)

// Unit states stored in bits 16..19 of the B channel.
const (
	StateDead uint32 = iota
	StateIdle
	StateMoving
	StateAttacking
)

// LargeGrid is the size of the large unit texture. Its capacity is Width*Height large units.
type LargeGrid struct {
	Width  uint32
	Height uint32
}

// DefaultLargeGrid returns the default 67x2 large unit grid.
func DefaultLargeGrid() LargeGrid {
	return LargeGrid{Width: DefaultLargeWidth, Height: DefaultLargeHeight}
}

// Validate rejects grids that are empty or too large to address.
func (g LargeGrid) Validate() error {
	if g.Width == 0 || g.Height == 0 {
		return fmt.Errorf("large unit grid %dx%d is empty", g.Width, g.Height)
	}
	if g.Width*g.Height > 4096 {
		return fmt.Errorf("large unit grid %dx%d exceeds 4096 slots", g.Width, g.Height)
	}
	return nil
}

// MinimapSize returns the edge length of minimap level n.
func MinimapSize(level int) uint32 {
	size := uint32(DataWidth / MinimapScale)
	for i := 0; i < level; i++ {
		size /= MinimapScale
	}
	return size
}

func u32(v uint32) string {
	return strconv.FormatUint(uint64(v), 10) + "u"
}

func f32(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	for _, c := range s {
		if c == '.' {
			return s
		}
	}
	return s + ".0"
}

// ShaderDefs returns the defines every unit, minimap and post-process shader is compiled with.
func ShaderDefs(large LargeGrid) map[string]string {
	return map[string]string{
		"UNITS_DATA_WIDTH":        u32(DataWidth),
		"UNITS_DATA_HEIGHT":       u32(DataHeight),
		"TEAM_SPLIT_ROW":          u32(TeamSplitRow),
		"SLOT_SPACING":            f32(SlotSpacing),
		"ATTACK_RADIUS":           u32(AttackRadius),
		"ATTACK_BIAS":             u32(AttackBias),
		"ATTACK_RANGE":            f32(AttackRange),
		"ATTACK_COOLDOWN":         u32(AttackCooldown),
		"UNIT_DAMAGE":             u32(UnitDamage),
		"UNIT_MAX_HEALTH":         u32(UnitMaxHealth),
		"UNIT_SPEED":              f32(UnitSpeed),
		"RALLY_RADIUS":            f32(RallyRadius),
		"RALLY_LEVEL_CELLS":       u32(RallyLevelCells),
		"LARGE_UNITS_DATA_WIDTH":  u32(large.Width),
		"LARGE_UNITS_DATA_HEIGHT": u32(large.Height),
		"LARGE_MAX_HEALTH":        u32(LargeMaxHealth),
		"LARGE_SPEED":             f32(LargeSpeed),
		"LARGE_HIT_RANGE":         f32(LargeHitRange),
		"PLAYER_TEAM":             u32(PlayerTeam),
		"MINIMAP_SCALE":           u32(MinimapScale),
		"STATE_DEAD":              u32(StateDead),
		"STATE_IDLE":              u32(StateIdle),
		"STATE_MOVING":            u32(StateMoving),
		"STATE_ATTACKING":         u32(StateAttacking),
		"COMMAND_NONE":            u32(CommandNone),
		"COMMAND_MOVE":            u32(CommandMove),
		"COMMAND_SPAWN":           u32(CommandSpawn),
		"COMMAND_UPGRADE":         u32(CommandUpgrade),
		"COMMAND_SPAWN_LARGE":     u32(CommandSpawnLarge),
	}
}
