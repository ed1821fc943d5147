package scene

import (
	"github.com/Carmen-Shannon/oxy-swarm/engine/deferred"
	"github.com/Carmen-Shannon/oxy-swarm/engine/minimap"
	"github.com/Carmen-Shannon/oxy-swarm/engine/post_process"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/soft_backend"
	"github.com/Carmen-Shannon/oxy-swarm/engine/units"
)

// RegisterKernels registers the CPU kernels of every node NewScene builds, configured the same
// way the options configure the nodes.
//
// Parameters:
//   - dev: the software device
//   - options: the options the scene is built with
func RegisterKernels(dev *soft_backend.Device, options ...SceneBuilderOption) {
	s := &scene{large: units.DefaultLargeGrid()}
	for _, opt := range options {
		opt(s)
	}
	deferred.RegisterKernels(dev, s.deferredOpts...)
	units.RegisterKernels(dev, s.large)
	minimap.RegisterKernels(dev)
	post_process.RegisterKernels(dev, append([]post_process.NodeBuilderOption{post_process.WithLargeGrid(s.large)}, s.postOpts...)...)
}
