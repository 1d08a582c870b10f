// Package gfx defines the graphics-device capability layer: abstract
// interfaces for devices, swap chains, command buffers and GPU resources,
// plus the concrete descriptor heap and deferred reclamation helpers that
// backends share. Higher layers (engine/pmfx) consume only these interfaces
// and never touch a native graphics API directly.
package gfx

// Device is the capability set a graphics backend must provide. All object
// creation flows through the device; command recording flows through CmdBuf.
type Device interface {
	// CreateTexture creates a texture from the supplied info, optionally
	// uploading initialisation data for mip level 0.
	//
	// Parameters:
	//   - info: dimensions, format, sample count and usage of the texture
	//   - data: optional tightly packed level-0 data; length must match info.SizeBytes()
	//
	// Returns:
	//   - Texture: the created texture
	//   - error: ErrDataSize if data is present but mis-sized, or a backend error
	CreateTexture(info *TextureInfo, data []byte) (Texture, error)

	// DestroyTexture queues the texture for deferred destruction. The
	// texture's GPU memory and descriptor slots are not released until
	// CleanUpResources observes that all frames which may reference it have
	// retired.
	//
	// Parameters:
	//   - tex: the texture to retire
	DestroyTexture(tex Texture)

	// CleanUpResources advances the deferred-reclamation queue by one frame,
	// freeing any retired resources that have waited longer than the swap
	// chain's buffer count. Call once per frame boundary.
	//
	// Parameters:
	//   - sc: the swap chain whose buffer count bounds frames in flight
	CleanUpResources(sc SwapChain)

	// CreateRenderPass builds a render pass bound to the supplied resolved
	// textures. All render targets must share one sample count; a mismatch
	// is an error, not a fallback.
	//
	// Parameters:
	//   - info: targets, optional depth stencil and clear values
	//
	// Returns:
	//   - RenderPass: the created pass
	//   - error: a backend error, or a sample-count mismatch error
	CreateRenderPass(info *RenderPassInfo) (RenderPass, error)

	// CreateCmdBuf creates a command buffer with the given number of
	// per-frame backing buffers (typically the swap chain depth).
	//
	// Parameters:
	//   - numBuffers: backing buffer count for N-buffered recording
	//
	// Returns:
	//   - CmdBuf: an open command buffer ready for recording
	CreateCmdBuf(numBuffers int) CmdBuf

	// CreateShader creates a shader stage object from raw shader data
	// (backend-defined: WGSL source, DXIL, SPIR-V, ...).
	//
	// Parameters:
	//   - info: the shader stage
	//   - data: the shader binary or source bytes
	//
	// Returns:
	//   - Shader: the created shader
	//   - error: a backend compile/validation error
	CreateShader(info *ShaderInfo, data []byte) (Shader, error)

	// CreateRenderPipeline creates a render pipeline compatible with the
	// attachment formats of info.Pass.
	//
	// Parameters:
	//   - info: shaders, layouts, state blocks and the target pass
	//
	// Returns:
	//   - RenderPipeline: the created pipeline
	//   - error: a backend error (including malformed descriptor layouts)
	CreateRenderPipeline(info *RenderPipelineInfo) (RenderPipeline, error)

	// CreateComputePipeline creates a compute pipeline.
	//
	// Parameters:
	//   - info: the compute shader and descriptor layout
	//
	// Returns:
	//   - ComputePipeline: the created pipeline
	//   - error: a backend error
	CreateComputePipeline(info *ComputePipelineInfo) (ComputePipeline, error)

	// Execute submits a closed command buffer to the device's queue.
	// Submission order across Execute calls is the execution order.
	//
	// Parameters:
	//   - cb: the command buffer to submit; must be closed
	Execute(cb CmdBuf)
}

// SwapChain abstracts the presentation surface's frame pacing. The pmfx
// layer uses it only for frame synchronisation and buffer-count queries.
type SwapChain interface {
	// NumBuffers returns the swap chain depth (frames in flight bound).
	//
	// Returns:
	//   - int: the backbuffer count
	NumBuffers() int

	// WaitForLastFrame blocks the calling thread until the GPU has finished
	// the previously submitted frame. This is the only blocking operation in
	// the device layer and is invoked at frame boundaries and before
	// destructive reloads.
	WaitForLastFrame()
}

// CmdBuf is an N-buffered command buffer. It is recorded on the CPU, closed,
// and then submitted via Device.Execute.
type CmdBuf interface {
	// Reset re-opens the command buffer for a new frame, selecting the
	// backing buffer that matches the swap chain's current frame.
	//
	// Parameters:
	//   - sc: the swap chain the buffer is synchronised to
	Reset(sc SwapChain)

	// Close finalises recorded commands. A closed buffer may be submitted
	// but not recorded into until the next Reset.
	//
	// Returns:
	//   - error: a backend error if finalisation fails
	Close() error

	// TransitionBarrier records a whole-resource state transition.
	//
	// Parameters:
	//   - barrier: the texture and before/after states
	TransitionBarrier(barrier *TransitionBarrier)

	// TransitionBarrierSubresource records a state transition for a single
	// subresource, typically the resolve resource of an MSAA texture.
	//
	// Parameters:
	//   - barrier: the texture and before/after states
	//   - sub: the subresource selector
	TransitionBarrierSubresource(barrier *TransitionBarrier, sub Subresource)

	// ResolveTextureSubresource records a resolve of the multisampled
	// texture into its paired single-sample resolve resource.
	//
	// Parameters:
	//   - tex: the multisampled texture; must be resolvable
	//   - mip: the mip level to resolve
	//
	// Returns:
	//   - error: ErrResolveIncompatible if tex has no resolve resource
	ResolveTextureSubresource(tex Texture, mip int) error

	// BeginRenderPass begins recording draws into the supplied pass.
	//
	// Parameters:
	//   - pass: the render pass to record into
	BeginRenderPass(pass RenderPass)

	// EndRenderPass ends the current render pass.
	EndRenderPass()

	// SetViewport sets the viewport for subsequent draws.
	//
	// Parameters:
	//   - vp: the viewport in pixels
	SetViewport(vp *Viewport)

	// SetScissor sets the scissor rectangle for subsequent draws.
	//
	// Parameters:
	//   - rect: the scissor rectangle in pixels
	SetScissor(rect *ScissorRect)

	// SetRenderPipeline binds a render pipeline for subsequent draws.
	//
	// Parameters:
	//   - pipeline: the pipeline to bind
	SetRenderPipeline(pipeline RenderPipeline)

	// SetComputePipeline binds a compute pipeline for subsequent dispatches.
	//
	// Parameters:
	//   - pipeline: the pipeline to bind
	SetComputePipeline(pipeline ComputePipeline)

	// PushConstants records push-constant data for the bound pipeline.
	//
	// Parameters:
	//   - slot: the push-constant binding slot
	//   - data: the raw constant data
	PushConstants(slot uint32, data []byte)

	// Draw records a non-indexed draw.
	//
	// Parameters:
	//   - vertexCount: vertices per instance
	//   - instanceCount: instance count
	Draw(vertexCount, instanceCount uint32)

	// Dispatch records a compute dispatch.
	//
	// Parameters:
	//   - groupsX, groupsY, groupsZ: workgroup counts per dimension
	Dispatch(groupsX, groupsY, groupsZ uint32)
}

// Texture is a device texture handle. The pmfx layer owns textures it
// creates and correlates their descriptor slots by index, never by raw
// native handle.
type Texture interface {
	// IsResolvable reports whether the texture carries a paired
	// single-sample resolve resource (created for multisampled textures
	// with shader-resource usage).
	//
	// Returns:
	//   - bool: true if the texture can be resolved
	IsResolvable() bool
}

// RenderPass is a built render pass bound to resolved textures.
type RenderPass interface {
	// FormatHash returns the combined hash of the pass's sample count,
	// depth-stencil format and ordered colour attachment formats. Render
	// pipelines are indexed by this value.
	//
	// Returns:
	//   - uint64: the attachment-format combination hash
	FormatHash() uint64
}

// Shader is a created shader stage object.
type Shader interface{}

// RenderPipeline is a created render pipeline object.
type RenderPipeline interface{}

// ComputePipeline is a created compute pipeline object.
type ComputePipeline interface{}
