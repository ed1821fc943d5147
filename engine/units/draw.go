package units

import (
	"github.com/Carmen-Shannon/oxy-swarm/engine/deferred"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/bind"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
)

// DrawVertexCount is the vertex count of the unit and projectile draws: one quad per texel.
const DrawVertexCount = DataWidth * DataHeight * 6

// drawUnits draws every slot of the newest state as a billboard and every attack deposit as a
// projectile, into the G-buffer with the reversed-Z depth test.
func (n *node) drawUnits(frame *renderer.FrameContext, view *renderer.ViewContext) error {
	pipelines, err := n.pipelinesReady(frame)
	if err != nil {
		return err
	}
	textures, err := renderer.GetComponent[Textures](view)
	if err != nil {
		return err
	}
	targets, err := renderer.GetComponent[deferred.ViewTargets](view)
	if err != nil {
		return err
	}
	minimap, err := renderer.GetComponent[MinimapChain](view)
	if err != nil {
		return err
	}
	sprites, err := n.spriteTexture(frame.Device)
	if err != nil {
		return err
	}

	cmd := Command{}
	commandBuffer, err := frame.Uniforms.Upload(view.Label("unit_draw_command"), &cmd)
	if err != nil {
		return err
	}

	data, attack, _ := textures.Current(view)
	group, err := bind.NewBindGroup(frame.Device, "unit_draw_bind_group", n.unitLayout,
		bind.Buffer(0, view.UniformBuffer()),
		bind.Buffer(9, frame.GlobalsBuffer),
		bind.Texture(101, data),
		bind.Buffer(102, commandBuffer),
		bind.Texture(103, attack),
		bind.Texture(104, sprites),
		bind.Sampler(105, n.sampler),
		bind.Texture(106, minimap.Levels[1]),
	)
	if err != nil {
		return err
	}
	frame.Defer(group)

	pass, err := frame.Encoder.BeginRenderPass(&gpu.RenderPassDescriptor{
		Label: "unit_draw_pass",
		ColorAttachments: []gpu.ColorAttachment{
			bind.LoadColor(targets.GBuffer),
			bind.LoadColor(targets.LightingID),
		},
		DepthAttachment: bind.LoadDepth(targets.Depth),
	})
	if err != nil {
		return err
	}
	pass.SetBindGroup(0, group)
	pass.SetPipeline(pipelines.draw)
	pass.Draw(DrawVertexCount, 1)
	pass.SetPipeline(pipelines.projectiles)
	pass.Draw(DrawVertexCount, 1)
	return pass.End()
}
