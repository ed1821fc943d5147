package units

import (
	"encoding/binary"
	"strings"
	"testing"
)

func TestDeadSlotIsZero(t *testing.T) {
	tests := []struct {
		name string
		unit Unit
	}{
		{name: "zero value", unit: Unit{}},
		{name: "no health", unit: Unit{Pos: [2]float32{3, 4}, Team: 1, State: StateIdle}},
		{name: "dead state", unit: Unit{Pos: [2]float32{3, 4}, Health: 20, State: StateDead}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.unit.Encode(); got != [4]uint32{} {
				t.Errorf("Encode() = %v, want zero texel", got)
			}
		})
	}
	if DecodeUnit([4]uint32{}).Alive() {
		t.Error("zero texel decodes as alive")
	}
}

func TestUnitBitLayout(t *testing.T) {
	u := Unit{Pos: [2]float32{0, 0}, Health: 7, Team: 1, Group: 3, State: StateAttacking, Timer: 200, Dest: [2]uint32{0x1234, 0xBEEF}}
	texel := u.Encode()
	if texel[2] != 7|1<<8|3<<12|3<<16|200<<20 {
		t.Errorf("B = %#x", texel[2])
	}
	if texel[3] != 0xBEEF1234 {
		t.Errorf("A = %#x", texel[3])
	}
	if got := DecodeUnit(texel); got != u {
		t.Errorf("DecodeUnit() = %+v, want %+v", got, u)
	}
}

func TestSlots(t *testing.T) {
	tests := []struct {
		x, y     uint32
		wantTeam uint32
	}{
		{0, 0, 0},
		{511, 255, 0},
		{7, 256, 1},
		{511, 511, 1},
	}
	for _, tt := range tests {
		home := SlotHome(tt.x, tt.y)
		if x, y := SlotOf(home); x != tt.x || y != tt.y {
			t.Errorf("SlotOf(SlotHome(%d,%d)) = (%d,%d)", tt.x, tt.y, x, y)
		}
		if got := SlotTeam(tt.y); got != tt.wantTeam {
			t.Errorf("SlotTeam(%d) = %d, want %d", tt.y, got, tt.wantTeam)
		}
	}
	if x, y := SlotOf([2]float32{-50, 5000}); x != 0 || y != DataHeight-1 {
		t.Errorf("SlotOf clamps to (%d,%d)", x, y)
	}
}

func TestAttackTexel(t *testing.T) {
	a := AttackTexel{Offset: [2]int32{-5, 3}, Damage: UnitDamage, Active: true}
	texel := a.Encode()
	if texel != [4]uint32{123, 131, UnitDamage, 1} {
		t.Errorf("Encode() = %v", texel)
	}
	if got := DecodeAttack(texel); got != a {
		t.Errorf("DecodeAttack() = %+v", got)
	}
	if DecodeAttack([4]uint32{123, 131, 10, 0}).Active {
		t.Error("texel with a=0 decodes as active")
	}
}

func TestHarvestDamage(t *testing.T) {
	deposits := map[[2]uint32]AttackTexel{
		{10, 10}: {Offset: [2]int32{2, 0}, Damage: 10, Active: true},
		{12, 14}: {Offset: [2]int32{0, -4}, Damage: 7, Active: true},
		{13, 10}: {Offset: [2]int32{1, 0}, Damage: 50, Active: true},
		{20, 10}: {Offset: [2]int32{-8, 0}, Damage: 99, Active: true},
	}
	load := func(x, y uint32) [4]uint32 {
		return deposits[[2]uint32{x, y}].Encode()
	}
	// (20,10) points at (12,10) but lies outside the radius.
	if got := HarvestDamage(load, 12, 10); got != 17 {
		t.Errorf("HarvestDamage() = %d, want 17", got)
	}
}

func TestCommandMarshal(t *testing.T) {
	c := Command{SelectRegion: [4]uint32{1, 2, 3, 4}, Dest: [2]uint32{50, 80}, Command: CommandMove, UnitGroup: 1}
	buf := c.Marshal()
	if len(buf) != CommandSize {
		t.Fatalf("len = %d", len(buf))
	}
	if binary.LittleEndian.Uint32(buf[16:]) != 50 || binary.LittleEndian.Uint32(buf[24:]) != CommandMove {
		t.Errorf("layout mismatch: %v", buf)
	}
	if got := UnmarshalCommand(buf); got != c {
		t.Errorf("UnmarshalCommand() = %+v", got)
	}
	c.Reset()
	if !c.IsZero() || !c.RegionEmpty() {
		t.Error("Reset() left a command behind")
	}
}

func TestMailboxPhases(t *testing.T) {
	var m Mailbox
	m.Update(func(c *Command) { c.Command = CommandUpgrade })
	if m.Load().Command != CommandUpgrade {
		t.Fatal("Update() not visible to Load()")
	}
	m.Reset()
	if got := m.Load(); !got.IsZero() {
		t.Errorf("Load() after Reset() = %+v", got)
	}
}

func TestShaderDefs(t *testing.T) {
	defs := ShaderDefs(LargeGrid{Width: 10, Height: 3})
	want := map[string]string{
		"UNITS_DATA_WIDTH":        "512u",
		"ATTACK_RADIUS":           "5u",
		"MINIMAP_SCALE":           "4u",
		"SLOT_SPACING":            "2.0",
		"ATTACK_RANGE":            "6.0",
		"LARGE_UNITS_DATA_WIDTH":  "10u",
		"LARGE_UNITS_DATA_HEIGHT": "3u",
		"COMMAND_SPAWN_LARGE":     "4u",
	}
	for k, v := range want {
		if defs[k] != v {
			t.Errorf("%s = %q, want %q", k, defs[k], v)
		}
	}
	for k := range defs {
		if !strings.Contains(UnitTypesSource, "#{"+k+"}") {
			t.Errorf("define %s is not declared in unit_types.wgsl", k)
		}
	}
}

func TestMinimapSizes(t *testing.T) {
	want := []uint32{128, 32, 8, 2}
	for level, size := range want {
		if got := MinimapSize(level); got != size {
			t.Errorf("MinimapSize(%d) = %d, want %d", level, got, size)
		}
	}
}
