package gfx

import (
	"hash/fnv"
)

// Format enumerates the pixel and vertex element formats understood by the
// device layer. Backends translate these into their native format enums.
type Format int

const (
	FormatUnknown Format = iota
	FormatR16n
	FormatR16u
	FormatR16i
	FormatR16f
	FormatR32u
	FormatR32i
	FormatR32f
	FormatRG32f
	FormatRGB32f
	FormatRGBA8n
	FormatRGBA8nSRGB
	FormatBGRA8n
	FormatRGBA16f
	FormatRGBA32f
	FormatD32f
	FormatD32fS8x
	FormatD24nS8u
)

// BlockSizeBytes returns the per-pixel (or per-element) size of the format in
// bytes, used when validating initialisation data sizes.
//
// Returns:
//   - int: the size of a single element of this format in bytes, or 0 if unknown
func (f Format) BlockSizeBytes() int {
	switch f {
	case FormatR16n, FormatR16u, FormatR16i, FormatR16f:
		return 2
	case FormatR32u, FormatR32i, FormatR32f, FormatRGBA8n, FormatRGBA8nSRGB, FormatBGRA8n, FormatD32f, FormatD24nS8u:
		return 4
	case FormatRG32f, FormatRGBA16f, FormatD32fS8x:
		return 8
	case FormatRGB32f:
		return 12
	case FormatRGBA32f:
		return 16
	default:
		return 0
	}
}

// IsDepth returns true when the format is a depth or depth-stencil format.
//
// Returns:
//   - bool: true for depth/depth-stencil formats
func (f Format) IsDepth() bool {
	switch f {
	case FormatD32f, FormatD32fS8x, FormatD24nS8u:
		return true
	default:
		return false
	}
}

// ResourceState identifies the usage mode a GPU resource must be explicitly
// transitioned into before it can be used in that mode. Backends whose native
// API tracks hazards internally may treat transitions as hints.
type ResourceState int

const (
	// ResourceStateUnknown is the zero value; no tracking information.
	ResourceStateUnknown ResourceState = iota
	// ResourceStateShaderResource allows sampling / SRV reads in shaders.
	ResourceStateShaderResource
	// ResourceStateRenderTarget allows colour attachment writes.
	ResourceStateRenderTarget
	// ResourceStateDepthStencil allows depth-stencil attachment writes.
	ResourceStateDepthStencil
	// ResourceStateUnorderedAccess allows unordered (UAV) reads and writes.
	ResourceStateUnorderedAccess
	// ResourceStateResolveSrc marks a multisampled resource as the source of a resolve.
	ResourceStateResolveSrc
	// ResourceStateResolveDst marks a single-sample resource as the destination of a resolve.
	ResourceStateResolveDst
	// ResourceStatePresent readies a swap chain image for presentation.
	ResourceStatePresent
	// ResourceStateVideoDecode allows use as a video decode target.
	ResourceStateVideoDecode
)

// String returns a short lower-case name for the resource state, used in logs
// and barrier diagnostics.
func (s ResourceState) String() string {
	switch s {
	case ResourceStateShaderResource:
		return "shader_resource"
	case ResourceStateRenderTarget:
		return "render_target"
	case ResourceStateDepthStencil:
		return "depth_stencil"
	case ResourceStateUnorderedAccess:
		return "unordered_access"
	case ResourceStateResolveSrc:
		return "resolve_src"
	case ResourceStateResolveDst:
		return "resolve_dst"
	case ResourceStatePresent:
		return "present"
	case ResourceStateVideoDecode:
		return "video_decode"
	default:
		return "unknown"
	}
}

// TextureUsage is a bitmask of the ways a texture may be bound.
type TextureUsage uint32

const (
	TextureUsageNone           TextureUsage = 0
	TextureUsageShaderResource TextureUsage = 1 << iota
	TextureUsageRenderTarget
	TextureUsageDepthStencil
	TextureUsageUnorderedAccess
	TextureUsageVideoDecodeTarget
)

// TextureType identifies the dimensionality of a texture.
type TextureType int

const (
	TextureType1D TextureType = iota
	TextureType2D
	TextureType3D
)

// TextureInfo describes a texture to be created by a Device.
type TextureInfo struct {
	TexType      TextureType
	Width        uint64
	Height       uint64
	Depth        uint32
	MipLevels    uint32
	ArrayLevels  uint32
	Samples      uint32
	Format       Format
	InitialState ResourceState
	Usage        TextureUsage
}

// SizeBytes returns the expected byte size of tightly packed level-0
// initialisation data for the texture.
//
// Returns:
//   - int: width * height * depth * element size
func (t *TextureInfo) SizeBytes() int {
	depth := t.Depth
	if depth == 0 {
		depth = 1
	}
	return int(t.Width) * int(t.Height) * int(depth) * t.Format.BlockSizeBytes()
}

// ClearColor is an RGBA clear value for a render target.
type ClearColor struct {
	R float32
	G float32
	B float32
	A float32
}

// ClearDepthStencil carries optional clear values for a depth-stencil target.
// A nil field means the corresponding aspect is not cleared.
type ClearDepthStencil struct {
	Depth   *float32
	Stencil *uint8
}

// RenderPassInfo describes a render pass over a set of resolved textures.
// All render targets must share the same sample count.
type RenderPassInfo struct {
	RenderTargets []Texture
	RTClear       *ClearColor
	DepthStencil  Texture
	DSClear       *ClearDepthStencil
	Resolve       bool
	Discard       bool
}

// Viewport is a render viewport in pixels with a depth range.
type Viewport struct {
	X        float32
	Y        float32
	Width    float32
	Height   float32
	MinDepth float32
	MaxDepth float32
}

// ScissorRect is a scissor rectangle in pixels.
type ScissorRect struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

// TransitionBarrier describes a resource state transition recorded into a
// command buffer.
type TransitionBarrier struct {
	Texture     Texture
	StateBefore ResourceState
	StateAfter  ResourceState
}

// Subresource selects a texture subresource for barrier and resolve operations.
type Subresource int

const (
	// SubresourceNone targets the whole resource.
	SubresourceNone Subresource = iota
	// SubresourceResolve targets the paired single-sample resolve resource of
	// a multisampled texture.
	SubresourceResolve
)

// Topology enumerates primitive topologies for render pipelines.
type Topology int

const (
	TopologyTriangleList Topology = iota
	TopologyTriangleStrip
	TopologyLineList
	TopologyLineStrip
	TopologyPointList
)

// InputElement describes one element of a vertex input layout.
type InputElement struct {
	Semantic          string `json:"semantic"`
	Index             uint32 `json:"index"`
	Format            Format `json:"format"`
	InputSlot         uint32 `json:"input_slot"`
	AlignedByteOffset uint32 `json:"aligned_byte_offset"`
	InstanceStepRate  uint32 `json:"step_rate"`
}

// InputLayout is the ordered set of vertex input elements for a pipeline.
type InputLayout []InputElement

// DescriptorType enumerates the kinds of resource bindings in a descriptor layout.
type DescriptorType int

const (
	DescriptorTypeConstantBuffer DescriptorType = iota
	DescriptorTypeShaderResource
	DescriptorTypeUnorderedAccess
	DescriptorTypeSampler
	DescriptorTypePushConstants
)

// DescriptorBinding describes one binding slot in a descriptor layout.
type DescriptorBinding struct {
	Slot     uint32         `json:"slot"`
	Space    uint32         `json:"space"`
	Count    uint32         `json:"count"`
	BindType DescriptorType `json:"type"`
}

// DescriptorLayout is the full binding layout for a pipeline (root signature
// analogue). Backends reject layouts they cannot express.
type DescriptorLayout struct {
	Bindings []DescriptorBinding `json:"bindings,omitempty"`
}

// FillMode enumerates raster fill modes.
type FillMode int

const (
	FillModeSolid FillMode = iota
	FillModeWireframe
)

// CullMode enumerates raster cull modes.
type CullMode int

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

// RasterInfo is a named rasteriser state block referenced by pipelines.
type RasterInfo struct {
	Fill                 FillMode `json:"fill"`
	Cull                 CullMode `json:"cull"`
	FrontCCW             bool     `json:"front_ccw"`
	DepthBias            int32    `json:"depth_bias"`
	DepthBiasClamp       float32  `json:"depth_bias_clamp"`
	SlopeScaledDepthBias float32  `json:"slope_scaled_depth_bias"`
}

// ComparisonFunc enumerates depth/stencil comparison functions.
type ComparisonFunc int

const (
	ComparisonFuncNever ComparisonFunc = iota
	ComparisonFuncLess
	ComparisonFuncEqual
	ComparisonFuncLessEqual
	ComparisonFuncGreater
	ComparisonFuncNotEqual
	ComparisonFuncGreaterEqual
	ComparisonFuncAlways
)

// DepthStencilInfo is a named depth-stencil state block referenced by pipelines.
type DepthStencilInfo struct {
	DepthEnabled      bool           `json:"depth_enabled"`
	DepthWriteEnabled bool           `json:"depth_write_enabled"`
	DepthFunc         ComparisonFunc `json:"depth_func"`
	StencilEnabled    bool           `json:"stencil_enabled"`
	StencilReadMask   uint8          `json:"stencil_read_mask"`
	StencilWriteMask  uint8          `json:"stencil_write_mask"`
}

// BlendInfo is the blend state for a render pipeline. The zero value disables
// blending on all targets.
type BlendInfo struct {
	AlphaToCoverageEnabled  bool `json:"alpha_to_coverage_enabled"`
	IndependentBlendEnabled bool `json:"independent_blend_enabled"`
	BlendEnabled            bool `json:"blend_enabled"`
}

// ShaderType identifies a shader stage.
type ShaderType int

const (
	ShaderTypeVertex ShaderType = iota
	ShaderTypeFragment
	ShaderTypeCompute
)

// ShaderInfo describes a shader to be created from raw data.
type ShaderInfo struct {
	Type ShaderType
	// EntryPoint is the shader entry function name; backends default it to
	// "main" when empty.
	EntryPoint string
}

// RenderPipelineInfo describes a render pipeline built against a specific
// render pass attachment format combination.
type RenderPipelineInfo struct {
	VS               Shader
	FS               Shader
	InputLayout      InputLayout
	DescriptorLayout DescriptorLayout
	RasterInfo       RasterInfo
	DepthStencilInfo DepthStencilInfo
	BlendInfo        BlendInfo
	Topology         Topology
	Pass             RenderPass
}

// ComputePipelineInfo describes a compute pipeline.
type ComputePipelineInfo struct {
	CS               Shader
	DescriptorLayout DescriptorLayout
}

// FormatHash combines a sample count, depth-stencil format and the ordered
// list of colour attachment formats into a single hash. One logical pipeline
// may need a distinct backend object per attachment-format combination, so
// render pipelines are indexed by this value.
//
// Parameters:
//   - samples: MSAA sample count of the pass
//   - dsFormat: depth-stencil format (FormatUnknown when absent)
//   - rtFormats: ordered colour attachment formats
//
// Returns:
//   - uint64: the combined format hash
func FormatHash(samples uint32, dsFormat Format, rtFormats []Format) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	put := func(v uint64) {
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (8 * i))
		}
		h.Write(buf[:])
	}
	put(uint64(samples))
	put(uint64(dsFormat))
	for _, f := range rtFormats {
		put(uint64(f))
	}
	return h.Sum64()
}
