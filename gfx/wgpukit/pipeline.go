package wgpukit

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/pmfx-go/gfx"
	"github.com/cogentcore/webgpu/wgpu"
)

type shaderImpl struct {
	shaderType gfx.ShaderType
	entryPoint string
	module     *wgpu.ShaderModule
}

var _ gfx.Shader = &shaderImpl{}

type renderPipelineImpl struct {
	pipeline *wgpu.RenderPipeline
}

var _ gfx.RenderPipeline = &renderPipelineImpl{}

type computePipelineImpl struct {
	pipeline *wgpu.ComputePipeline
}

var _ gfx.ComputePipeline = &computePipelineImpl{}

func newRenderPipeline(device *wgpu.Device, info *gfx.RenderPipelineInfo) (gfx.RenderPipeline, error) {
	vs, ok := info.VS.(*shaderImpl)
	if !ok || vs == nil {
		return nil, fmt.Errorf("wgpukit: render pipeline requires a vertex shader")
	}
	pass, ok := info.Pass.(*renderPassImpl)
	if !ok || pass == nil {
		return nil, fmt.Errorf("wgpukit: render pipeline requires a target render pass")
	}

	layout, err := createPipelineLayout(device, &info.DescriptorLayout, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment)
	if err != nil {
		return nil, err
	}

	buffers, err := toVertexBufferLayouts(info.InputLayout)
	if err != nil {
		return nil, err
	}

	var fragment *wgpu.FragmentState
	if fs, fsOk := info.FS.(*shaderImpl); fsOk && fs != nil {
		targets := make([]wgpu.ColorTargetState, 0, len(pass.rtFormats))
		for _, f := range pass.rtFormats {
			wf, fErr := toWGPUTextureFormat(f)
			if fErr != nil {
				return nil, fErr
			}
			state := wgpu.ColorTargetState{
				Format:    wf,
				WriteMask: wgpu.ColorWriteMaskAll,
			}
			if info.BlendInfo.BlendEnabled {
				state.Blend = &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
				}
			}
			targets = append(targets, state)
		}
		fragment = &wgpu.FragmentState{
			Module:     fs.module,
			EntryPoint: fs.entryPoint,
			Targets:    targets,
		}
	}

	frontFace := wgpu.FrontFaceCW
	if info.RasterInfo.FrontCCW {
		frontFace = wgpu.FrontFaceCCW
	}

	var depthStencil *wgpu.DepthStencilState
	if pass.dsFormat != gfx.FormatUnknown {
		dsFormat, dErr := toWGPUTextureFormat(pass.dsFormat)
		if dErr != nil {
			return nil, dErr
		}
		depthCompare := wgpu.CompareFunctionAlways
		if info.DepthStencilInfo.DepthEnabled {
			depthCompare = toWGPUCompareFunction(info.DepthStencilInfo.DepthFunc)
		}
		depthStencil = &wgpu.DepthStencilState{
			Format:              dsFormat,
			DepthWriteEnabled:   info.DepthStencilInfo.DepthWriteEnabled,
			DepthCompare:        depthCompare,
			DepthBias:           info.RasterInfo.DepthBias,
			DepthBiasSlopeScale: info.RasterInfo.SlopeScaledDepthBias,
			DepthBiasClamp:      info.RasterInfo.DepthBiasClamp,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	created, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs.module,
			EntryPoint: vs.entryPoint,
			Buffers:    buffers,
		},
		Fragment: fragment,
		Primitive: wgpu.PrimitiveState{
			Topology:  toWGPUTopology(info.Topology),
			FrontFace: frontFace,
			CullMode:  toWGPUCullMode(info.RasterInfo.Cull),
		},
		Multisample: wgpu.MultisampleState{
			Count:                  pass.sampleCount,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: info.BlendInfo.AlphaToCoverageEnabled,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		return nil, err
	}
	return &renderPipelineImpl{pipeline: created}, nil
}

func newComputePipeline(device *wgpu.Device, info *gfx.ComputePipelineInfo) (gfx.ComputePipeline, error) {
	cs, ok := info.CS.(*shaderImpl)
	if !ok || cs == nil {
		return nil, fmt.Errorf("wgpukit: compute pipeline requires a compute shader")
	}

	layout, err := createPipelineLayout(device, &info.DescriptorLayout, wgpu.ShaderStageCompute)
	if err != nil {
		return nil, err
	}

	created, err := device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  "Compute Pipeline",
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     cs.module,
			EntryPoint: cs.entryPoint,
		},
	})
	if err != nil {
		return nil, err
	}
	return &computePipelineImpl{pipeline: created}, nil
}

// createPipelineLayout translates an abstract descriptor layout into a wgpu
// pipeline layout. Binding spaces map to bind groups; slots map to bindings.
func createPipelineLayout(device *wgpu.Device, layout *gfx.DescriptorLayout, visibility wgpu.ShaderStage) (*wgpu.PipelineLayout, error) {
	groups := make(map[uint32][]wgpu.BindGroupLayoutEntry)
	for _, binding := range layout.Bindings {
		entry, err := toBindGroupLayoutEntry(binding, visibility)
		if err != nil {
			return nil, err
		}
		groups[binding.Space] = append(groups[binding.Space], entry)
	}

	maxGroup := -1
	for g := range groups {
		if int(g) > maxGroup {
			maxGroup = int(g)
		}
	}

	bindGroupLayouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g, entries := range groups {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		bgl, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Entries: entries,
		})
		if err != nil {
			return nil, fmt.Errorf("wgpukit: failed to create bind group layout for space %d: %w", g, err)
		}
		bindGroupLayouts[g] = bgl
	}

	return device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: bindGroupLayouts,
	})
}

func toBindGroupLayoutEntry(binding gfx.DescriptorBinding, visibility wgpu.ShaderStage) (wgpu.BindGroupLayoutEntry, error) {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    binding.Slot,
		Visibility: visibility,
	}
	switch binding.BindType {
	case gfx.DescriptorTypeConstantBuffer, gfx.DescriptorTypePushConstants:
		entry.Buffer = wgpu.BufferBindingLayout{
			Type: wgpu.BufferBindingTypeUniform,
		}
	case gfx.DescriptorTypeShaderResource:
		entry.Texture = wgpu.TextureBindingLayout{
			SampleType:    wgpu.TextureSampleTypeFloat,
			ViewDimension: wgpu.TextureViewDimension2D,
		}
	case gfx.DescriptorTypeUnorderedAccess:
		entry.Buffer = wgpu.BufferBindingLayout{
			Type: wgpu.BufferBindingTypeStorage,
		}
	case gfx.DescriptorTypeSampler:
		entry.Sampler = wgpu.SamplerBindingLayout{
			Type: wgpu.SamplerBindingTypeFiltering,
		}
	default:
		return entry, fmt.Errorf("wgpukit: unsupported descriptor binding type %d at slot %d", binding.BindType, binding.Slot)
	}
	return entry, nil
}

// toVertexBufferLayouts groups input elements by input slot into wgpu vertex
// buffer layouts. Shader locations are assigned in element order.
func toVertexBufferLayouts(layout gfx.InputLayout) ([]wgpu.VertexBufferLayout, error) {
	if len(layout) == 0 {
		return nil, nil
	}

	type slotAttributes struct {
		attributes []wgpu.VertexAttribute
		stride     uint64
	}
	slots := make(map[uint32]*slotAttributes)
	slotOrder := []uint32{}

	for i, element := range layout {
		vf, err := toWGPUVertexFormat(element.Format)
		if err != nil {
			return nil, fmt.Errorf("wgpukit: input element %q: %w", element.Semantic, err)
		}

		sa, ok := slots[element.InputSlot]
		if !ok {
			sa = &slotAttributes{}
			slots[element.InputSlot] = sa
			slotOrder = append(slotOrder, element.InputSlot)
		}
		sa.attributes = append(sa.attributes, wgpu.VertexAttribute{
			Format:         vf,
			Offset:         uint64(element.AlignedByteOffset),
			ShaderLocation: uint32(i),
		})
		if end := uint64(element.AlignedByteOffset) + uint64(element.Format.BlockSizeBytes()); end > sa.stride {
			sa.stride = end
		}
	}

	sort.Slice(slotOrder, func(i, j int) bool { return slotOrder[i] < slotOrder[j] })

	buffers := make([]wgpu.VertexBufferLayout, 0, len(slotOrder))
	for _, slot := range slotOrder {
		sa := slots[slot]
		stepMode := wgpu.VertexStepModeVertex
		for _, element := range layout {
			if element.InputSlot == slot && element.InstanceStepRate > 0 {
				stepMode = wgpu.VertexStepModeInstance
				break
			}
		}
		buffers = append(buffers, wgpu.VertexBufferLayout{
			ArrayStride: sa.stride,
			StepMode:    stepMode,
			Attributes:  sa.attributes,
		})
	}
	return buffers, nil
}
