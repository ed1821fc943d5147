package units

import (
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/bind"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
)

// unitPipelines holds the node's compiled pipelines.
type unitPipelines struct {
	evaluate, update, large gpu.RenderPipeline
	draw, projectiles       gpu.RenderPipeline
}

// pipelinesReady resolves every pipeline the node records with. Simulation and drawing both
// require the full set, so a view is never advanced without being drawn or drawn without
// being advanced.
func (n *node) pipelinesReady(frame *renderer.FrameContext) (*unitPipelines, error) {
	var (
		p   unitPipelines
		err error
	)
	for _, slot := range []struct {
		id  renderer.PipelineID
		dst *gpu.RenderPipeline
	}{
		{n.evaluate, &p.evaluate},
		{n.update, &p.update},
		{n.largeUpdate, &p.large},
		{n.draw, &p.draw},
		{n.projectiles, &p.projectiles},
	} {
		if *slot.dst, err = frame.Pipeline(slot.id); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

// simulationInputs is everything the simulation passes bind, resolved before anything is recorded.
type simulationInputs struct {
	*unitPipelines

	textures *Textures
	minimap  *MinimapChain
	sprites  gpu.Texture
}

func (n *node) resolveSimulation(frame *renderer.FrameContext, view *renderer.ViewContext) (*simulationInputs, error) {
	var (
		in  simulationInputs
		err error
	)
	if in.unitPipelines, err = n.pipelinesReady(frame); err != nil {
		return nil, err
	}
	if in.textures, err = renderer.GetComponent[Textures](view); err != nil {
		return nil, err
	}
	if in.minimap, err = renderer.GetComponent[MinimapChain](view); err != nil {
		return nil, err
	}
	if in.sprites, err = n.spriteTexture(frame.Device); err != nil {
		return nil, err
	}
	return &in, nil
}

// simulate records Evaluate, Update and Large-Unit Update for one view.
//
// Evaluate reads the last state, the command and the previous attack map and writes the scratch
// state and this frame's attack map. Update applies the new attack map to the scratch state and
// writes the final state. Large-Unit Update advances the large units against the final state.
func (n *node) simulate(frame *renderer.FrameContext, view *renderer.ViewContext) error {
	in, err := n.resolveSimulation(frame, view)
	if err != nil {
		return err
	}
	t := in.textures
	rally := in.minimap.Levels[1]

	cmd := n.mailbox.Load()
	commandBuffer, err := frame.Uniforms.Upload(view.Label("unit_command"), &cmd)
	if err != nil {
		return err
	}

	common := func(data, attack gpu.Texture) []gpu.BindGroupEntry {
		return []gpu.BindGroupEntry{
			bind.Buffer(0, view.UniformBuffer()),
			bind.Buffer(9, frame.GlobalsBuffer),
			bind.Texture(101, data),
			bind.Buffer(102, commandBuffer),
			bind.Texture(103, attack),
			bind.Texture(104, in.sprites),
			bind.Sampler(105, n.sampler),
			bind.Texture(106, rally),
		}
	}
	evaluateGroup, err := bind.NewBindGroup(frame.Device, "unit_evaluate_bind_group", n.unitLayout, common(t.Data.Read, t.Attack.Read)...)
	if err != nil {
		return err
	}
	frame.Defer(evaluateGroup)
	updateGroup, err := bind.NewBindGroup(frame.Device, "unit_update_bind_group", n.unitLayout, common(t.Scratch, t.Attack.Write)...)
	if err != nil {
		return err
	}
	frame.Defer(updateGroup)
	largeGroup, err := bind.NewBindGroup(frame.Device, "large_unit_update_bind_group", n.largeLayout,
		bind.Buffer(0, view.UniformBuffer()),
		bind.Buffer(9, frame.GlobalsBuffer),
		bind.Texture(101, t.Large.Read),
		bind.Buffer(102, commandBuffer),
		bind.Texture(103, t.Data.Write),
	)
	if err != nil {
		return err
	}
	frame.Defer(largeGroup)

	if err := fullscreenPass(frame, "unit_evaluate_pass", in.evaluate, evaluateGroup, t.Scratch, t.Attack.Write); err != nil {
		return err
	}
	if err := fullscreenPass(frame, "unit_update_pass", in.update, updateGroup, t.Data.Write); err != nil {
		return err
	}
	if err := fullscreenPass(frame, "large_unit_update_pass", in.large, largeGroup, t.Large.Write); err != nil {
		return err
	}

	view.MarkSimulated()
	return nil
}

func fullscreenPass(frame *renderer.FrameContext, label string, p gpu.RenderPipeline, group gpu.BindGroup, targets ...gpu.Texture) error {
	attachments := make([]gpu.ColorAttachment, len(targets))
	for i, t := range targets {
		attachments[i] = bind.ClearColor(t)
	}
	pass, err := frame.Encoder.BeginRenderPass(&gpu.RenderPassDescriptor{Label: label, ColorAttachments: attachments})
	if err != nil {
		return err
	}
	pass.SetPipeline(p)
	pass.SetBindGroup(0, group)
	pass.Draw(3, 1)
	return pass.End()
}
