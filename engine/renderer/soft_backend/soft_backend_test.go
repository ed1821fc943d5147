package soft_backend

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
)

func mustTexture(t *testing.T, d *Device, label string, format gpu.TextureFormat, w, h uint32) *Texture {
	t.Helper()
	tex, err := d.CreateTexture(&gpu.TextureDescriptor{Label: label, Format: format, Size: gpu.Extent{Width: w, Height: h}})
	if err != nil {
		t.Fatalf("CreateTexture(%q) error = %v", label, err)
	}
	return tex.(*Texture)
}

func TestTextureStoreTruncatesToFormat(t *testing.T) {
	d := NewDevice()
	tests := []struct {
		name   string
		format gpu.TextureFormat
		in     [4]uint32
		want   [4]uint32
	}{
		{"rgba32uint keeps everything", gpu.TextureFormatRGBA32Uint, [4]uint32{1 << 30, 2, 3, 4}, [4]uint32{1 << 30, 2, 3, 4}},
		{"rgba8uint masks", gpu.TextureFormatRGBA8Uint, [4]uint32{0x1FF, 2, 3, 256}, [4]uint32{0xFF, 2, 3, 0}},
		{"r8uint single channel", gpu.TextureFormatR8Uint, [4]uint32{7, 8, 9, 10}, [4]uint32{7, 0, 0, 0}},
		{"unorm clamps", gpu.TextureFormatRGBA8Unorm, Float4(-1, 0.5, 2, 1), Float4(0, 0.5, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex := mustTexture(t, d, tt.name, tt.format, 2, 2)
			tex.Store(1, 1, 0, tt.in)
			if got := tex.Load(1, 1, 0); got != tt.want {
				t.Errorf("Load() = %v, want %v", got, tt.want)
			}
			if got := tex.Load(5, 5, 0); got != ([4]uint32{}) {
				t.Errorf("out of range Load() = %v, want zero", got)
			}
		})
	}
}

func TestWriteTextureDecodes(t *testing.T) {
	d := NewDevice()

	u := mustTexture(t, d, "u", gpu.TextureFormatRGBA32Uint, 1, 1)
	data := make([]byte, 16)
	for c := 0; c < 4; c++ {
		binary.LittleEndian.PutUint32(data[c*4:], uint32(c+1)*100)
	}
	if err := d.WriteTexture(u, 0, data); err != nil {
		t.Fatalf("WriteTexture() error = %v", err)
	}
	if got := u.Load(0, 0, 0); got != [4]uint32{100, 200, 300, 400} {
		t.Errorf("rgba32uint texel = %v", got)
	}

	bgra := mustTexture(t, d, "bgra", gpu.TextureFormatBGRA8Unorm, 1, 1)
	if err := d.WriteTexture(bgra, 0, []byte{0, 0, 255, 255}); err != nil {
		t.Fatalf("WriteTexture() error = %v", err)
	}
	if got := bgra.LoadFloat(0, 0, 0); got != [4]float32{1, 0, 0, 1} {
		t.Errorf("bgra texel = %v, want red", got)
	}

	half := mustTexture(t, d, "half", gpu.TextureFormatRGBA16Float, 1, 1)
	// 1.0, -2.0, 0.5, 0
	if err := d.WriteTexture(half, 0, []byte{0x00, 0x3C, 0x00, 0xC0, 0x00, 0x38, 0x00, 0x00}); err != nil {
		t.Fatalf("WriteTexture() error = %v", err)
	}
	if got := half.LoadFloat(0, 0, 0); got != [4]float32{1, -2, 0.5, 0} {
		t.Errorf("rgba16float texel = %v", got)
	}

	if err := d.WriteTexture(u, 0, []byte{1, 2, 3}); err == nil {
		t.Error("short write accepted")
	}
}

func TestCreateBindGroupChecksLayout(t *testing.T) {
	d := NewDevice()
	layout, err := d.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: "units",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 101, Texture: &gpu.TextureBindingLayout{SampleType: gpu.TextureSampleTypeUint}},
			{Binding: 102, Buffer: &gpu.BufferBindingLayout{MinBindingSize: 32}},
		},
	})
	if err != nil {
		t.Fatalf("CreateBindGroupLayout() error = %v", err)
	}
	uintTex := mustTexture(t, d, "data", gpu.TextureFormatRGBA32Uint, 4, 4)
	floatTex := mustTexture(t, d, "color", gpu.TextureFormatRGBA16Float, 4, 4)
	big, _ := d.CreateBuffer(&gpu.BufferDescriptor{Label: "cmd", Size: 32})
	small, _ := d.CreateBuffer(&gpu.BufferDescriptor{Label: "small", Size: 16})

	tests := []struct {
		name    string
		entries []gpu.BindGroupEntry
		wantErr string
	}{
		{"ok", []gpu.BindGroupEntry{{Binding: 101, Texture: uintTex}, {Binding: 102, Buffer: big}}, ""},
		{"missing", []gpu.BindGroupEntry{{Binding: 101, Texture: uintTex}}, "not provided"},
		{"sample type", []gpu.BindGroupEntry{{Binding: 101, Texture: floatTex}, {Binding: 102, Buffer: big}}, "sample type"},
		{"small buffer", []gpu.BindGroupEntry{{Binding: 101, Texture: uintTex}, {Binding: 102, Buffer: small}}, "below minimum"},
		{"extra", []gpu.BindGroupEntry{{Binding: 101, Texture: uintTex}, {Binding: 102, Buffer: big}, {Binding: 7, Buffer: big}}, "not in layout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.CreateBindGroup(&gpu.BindGroupDescriptor{Label: tt.name, Layout: layout, Entries: tt.entries})
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("CreateBindGroup() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("CreateBindGroup() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func fullscreenPipeline(t *testing.T, d *Device, label string, layout gpu.BindGroupLayout, formats ...gpu.TextureFormat) gpu.RenderPipeline {
	t.Helper()
	desc := &gpu.RenderPipelineDescriptor{Label: label}
	if layout != nil {
		desc.Layouts = []gpu.BindGroupLayout{layout}
	}
	for _, f := range formats {
		desc.Targets = append(desc.Targets, gpu.ColorTargetState{Format: f})
	}
	p, err := d.CreateRenderPipeline(desc)
	if err != nil {
		t.Fatalf("CreateRenderPipeline() error = %v", err)
	}
	return p
}

func TestSubmitRunsKernelsAndRecords(t *testing.T) {
	d := NewDevice(WithKernel("double", Fullscreen(func(inv *Invocation, x, y uint32, out [][4]uint32) {
		src := inv.Texture(1).Load(x, y, 0)
		out[0] = [4]uint32{src[0] * 2, y, 0, 1}
	})))

	layout, _ := d.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Entries: []gpu.BindGroupLayoutEntry{{Binding: 1, Texture: &gpu.TextureBindingLayout{SampleType: gpu.TextureSampleTypeUint}}},
	})
	src := mustTexture(t, d, "src", gpu.TextureFormatRGBA32Uint, 3, 2)
	dst := mustTexture(t, d, "dst", gpu.TextureFormatRGBA32Uint, 3, 2)
	src.Fill([4]uint32{21})

	group, err := d.CreateBindGroup(&gpu.BindGroupDescriptor{Layout: layout, Entries: []gpu.BindGroupEntry{{Binding: 1, Texture: src}}})
	if err != nil {
		t.Fatalf("CreateBindGroup() error = %v", err)
	}
	p := fullscreenPipeline(t, d, "double", layout, gpu.TextureFormatRGBA32Uint)
	unknown := fullscreenPipeline(t, d, "recorded_only", layout, gpu.TextureFormatRGBA32Uint)

	enc, _ := d.CreateCommandEncoder("test")
	pass, err := enc.BeginRenderPass(&gpu.RenderPassDescriptor{
		Label:            "double_pass",
		ColorAttachments: []gpu.ColorAttachment{{Texture: dst, LoadOp: gpu.LoadOpLoad}},
	})
	if err != nil {
		t.Fatalf("BeginRenderPass() error = %v", err)
	}
	pass.SetPipeline(p)
	pass.SetBindGroup(0, group)
	pass.Draw(3, 1)
	pass.SetPipeline(unknown)
	pass.Draw(36, 1)
	if err := pass.End(); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	cmd, err := enc.Finish()
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	d.Submit(cmd)

	if got := dst.Load(2, 1, 0); got != [4]uint32{42, 1, 0, 1} {
		t.Errorf("dst texel = %v, want [42 1 0 1]", got)
	}
	passes := d.Passes()
	if len(passes) != 1 || len(passes[0].Draws) != 2 {
		t.Fatalf("recorded passes = %+v", passes)
	}
	if !passes[0].Draws[0].Executed || passes[0].Draws[1].Executed {
		t.Errorf("executed flags = %v/%v, want true/false", passes[0].Draws[0].Executed, passes[0].Draws[1].Executed)
	}
	if passes[0].Draws[1].VertexCount != 36 {
		t.Errorf("VertexCount = %d", passes[0].Draws[1].VertexCount)
	}
}

func TestPassValidation(t *testing.T) {
	d := NewDevice()
	layout, _ := d.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Entries: []gpu.BindGroupLayoutEntry{{Binding: 1, Texture: &gpu.TextureBindingLayout{SampleType: gpu.TextureSampleTypeUint}}},
	})
	data := mustTexture(t, d, "data", gpu.TextureFormatRGBA32Uint, 2, 2)
	attack := mustTexture(t, d, "attack", gpu.TextureFormatRGBA8Uint, 2, 2)
	selfGroup, _ := d.CreateBindGroup(&gpu.BindGroupDescriptor{Layout: layout, Entries: []gpu.BindGroupEntry{{Binding: 1, Texture: data}}})
	p := fullscreenPipeline(t, d, "p", layout, gpu.TextureFormatRGBA32Uint)

	tests := []struct {
		name    string
		target  gpu.Texture
		group   gpu.BindGroup
		wantErr string
	}{
		{"format mismatch", attack, selfGroup, "target 0"},
		{"no bind group", data, nil, "bind group 0 not set"},
		{"read write hazard", data, selfGroup, "reads attachment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, _ := d.CreateCommandEncoder(tt.name)
			pass, err := enc.BeginRenderPass(&gpu.RenderPassDescriptor{
				Label:            tt.name,
				ColorAttachments: []gpu.ColorAttachment{{Texture: tt.target}},
			})
			if err != nil {
				t.Fatalf("BeginRenderPass() error = %v", err)
			}
			pass.SetPipeline(p)
			if tt.group != nil {
				pass.SetBindGroup(0, tt.group)
			}
			pass.Draw(3, 1)
			err = pass.End()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("End() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestClearOps(t *testing.T) {
	d := NewDevice()
	color := mustTexture(t, d, "color", gpu.TextureFormatRGBA16Float, 2, 2)
	depth := mustTexture(t, d, "depth", gpu.TextureFormatDepth32Float, 2, 2)
	depth.Fill([4]uint32{math.Float32bits(0.7)})

	enc, _ := d.CreateCommandEncoder("clear")
	pass, err := enc.BeginRenderPass(&gpu.RenderPassDescriptor{
		Label:            "clear",
		ColorAttachments: []gpu.ColorAttachment{{Texture: color, LoadOp: gpu.LoadOpClear, ClearValue: gpu.Color{R: 0.25, A: 1}}},
		DepthAttachment:  &gpu.DepthAttachment{Texture: depth, LoadOp: gpu.LoadOpClear},
	})
	if err != nil {
		t.Fatalf("BeginRenderPass() error = %v", err)
	}
	if err := pass.End(); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	cmd, _ := enc.Finish()
	d.Submit(cmd)

	if got := color.LoadFloat(1, 1, 0); got != [4]float32{0.25, 0, 0, 1} {
		t.Errorf("color = %v", got)
	}
	if got := depth.LoadFloat(0, 0, 0)[0]; got != 0 {
		t.Errorf("depth = %v, want 0", got)
	}
	if rec := d.Passes(); len(rec) != 1 || rec[0].Depth != "depth" {
		t.Errorf("records = %+v", rec)
	}
}

func TestEncoderRelease(t *testing.T) {
	d := NewDevice()
	color := mustTexture(t, d, "color", gpu.TextureFormatRGBA8Uint, 2, 2)

	finished, _ := d.CreateCommandEncoder("finished")
	abandoned, _ := d.CreateCommandEncoder("abandoned")
	if n := d.OpenEncoders(); n != 2 {
		t.Fatalf("OpenEncoders() = %d, want 2", n)
	}
	if _, err := finished.Finish(); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	finished.Release()
	abandoned.Release()
	abandoned.Release()
	if n := d.OpenEncoders(); n != 0 {
		t.Errorf("OpenEncoders() = %d, want 0", n)
	}
	if _, err := abandoned.BeginRenderPass(&gpu.RenderPassDescriptor{
		Label:            "late",
		ColorAttachments: []gpu.ColorAttachment{{Texture: color, LoadOp: gpu.LoadOpLoad}},
	}); err == nil {
		t.Error("BeginRenderPass() on a released encoder succeeded")
	}
	if _, err := abandoned.Finish(); err == nil {
		t.Error("Finish() on a released encoder succeeded")
	}
}

func TestFailPipeline(t *testing.T) {
	d := NewDevice()
	boom := errors.New("boom")
	d.FailPipeline("bad", boom)
	_, err := d.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{Label: "bad", Targets: []gpu.ColorTargetState{{Format: gpu.TextureFormatRGBA8Uint}}})
	if !errors.Is(err, boom) {
		t.Fatalf("CreateRenderPipeline() error = %v, want %v", err, boom)
	}
}

func TestSurface(t *testing.T) {
	b := NewBackend(WithSurface(4, 2))
	tex, err := b.Surface().Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	tex.(*Texture).Fill(Float4(1, 0, 0, 1))
	b.Surface().Present()
	img := b.SoftSurface().Image()
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 2 {
		t.Fatalf("image bounds = %v", img.Bounds())
	}
	if c := img.RGBAAt(3, 1); c.R != 255 || c.G != 0 || c.A != 255 {
		t.Errorf("pixel = %v, want opaque red", c)
	}

	b.Surface().Configure(0, 0)
	if _, err := b.Surface().Acquire(); !errors.Is(err, gpu.ErrNotReady) {
		t.Errorf("Acquire() on zero surface error = %v, want ErrNotReady", err)
	}

	if NewBackend().Surface() != nil {
		t.Error("backend without surface returned a non-nil Surface")
	}
}
