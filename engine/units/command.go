package units

import (
	"encoding/binary"
	"sync"
)

// Command codes of Command.Command.
const (
	CommandNone uint32 = iota
	CommandMove
	CommandSpawn
	CommandUpgrade
	CommandSpawnLarge
)

// CommandSize is the byte size of the command uniform.
const CommandSize = 32

// Command is the per-frame order the simulation applies. It is reset at the start of every
// frame, filled by command ingestion, and read by the simulation passes of the same frame.
//
// SelectRegion is a world space box (min x, min z, max x, max z); an empty box selects the whole
// group. Dest is in whole world units.
type Command struct {
	SelectRegion [4]uint32
	Dest         [2]uint32
	Command      uint32
	UnitGroup    uint32
}

// Reset clears the command back to "no order".
func (c *Command) Reset() {
	*c = Command{}
}

// IsZero reports whether the command carries no order.
func (c *Command) IsZero() bool {
	return *c == Command{}
}

// RegionEmpty reports whether SelectRegion selects nothing in particular.
func (c *Command) RegionEmpty() bool {
	return c.SelectRegion[2] <= c.SelectRegion[0] || c.SelectRegion[3] <= c.SelectRegion[1]
}

// InRegion reports whether a world position lies inside SelectRegion, edges included.
func (c *Command) InRegion(pos [2]float32) bool {
	return pos[0] >= float32(c.SelectRegion[0]) && pos[0] <= float32(c.SelectRegion[2]) &&
		pos[1] >= float32(c.SelectRegion[1]) && pos[1] <= float32(c.SelectRegion[3])
}

// Size returns the uniform size in bytes.
func (c *Command) Size() int {
	return CommandSize
}

// Marshal serializes the command in the layout of the WGSL UnitCommand struct.
func (c *Command) Marshal() []byte {
	buf := make([]byte, CommandSize)
	for i, v := range c.SelectRegion {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	binary.LittleEndian.PutUint32(buf[16:], c.Dest[0])
	binary.LittleEndian.PutUint32(buf[20:], c.Dest[1])
	binary.LittleEndian.PutUint32(buf[24:], c.Command)
	binary.LittleEndian.PutUint32(buf[28:], c.UnitGroup)
	return buf
}

// UnmarshalCommand decodes the command uniform bytes.
func UnmarshalCommand(buf []byte) Command {
	var c Command
	if len(buf) < CommandSize {
		return c
	}
	for i := range c.SelectRegion {
		c.SelectRegion[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	c.Dest = [2]uint32{binary.LittleEndian.Uint32(buf[16:]), binary.LittleEndian.Uint32(buf[20:])}
	c.Command = binary.LittleEndian.Uint32(buf[24:])
	c.UnitGroup = binary.LittleEndian.Uint32(buf[28:])
	return c
}

// Mailbox hands the frame's command from the producer (input handling) to the consumer (the
// simulation node). Each frame runs Reset, then Update, then Load, in that order.
type Mailbox struct {
	mu  sync.Mutex
	cmd Command
}

// Reset clears the pending command. Called once at the start of every frame.
func (m *Mailbox) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cmd.Reset()
}

// Update lets fn edit the pending command in place.
func (m *Mailbox) Update(fn func(c *Command)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.cmd)
}

// Load returns a copy of the pending command.
func (m *Mailbox) Load() Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cmd
}
