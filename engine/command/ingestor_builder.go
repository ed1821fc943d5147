package command

import "github.com/Carmen-Shannon/oxy-swarm/engine/units"

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithSpawnRadius sets the half edge of the square Ctrl-click spawns fill, in world units.
func WithSpawnRadius(radius uint32) IngestorOption {
	return func(i *Ingestor) {
		i.spawnRadius = radius
	}
}

// WithScript queues scripted orders consumed one per frame before live input.
func WithScript(cmds ...units.Command) IngestorOption {
	return func(i *Ingestor) {
		i.script = append(i.script, cmds...)
	}
}
