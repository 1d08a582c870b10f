// Package pmfx loads pmfx render configuration documents and turns them
// into live GPU state: tracked textures, instantiated views, compiled
// render graphs with automatic transition barriers and MSAA resolves, and
// pipelines indexed by render-pass format. It also coordinates hot reload
// of changed documents and window-ratio texture resizing against an
// abstract gfx.Device.
package pmfx

import (
	"sync"

	"github.com/Carmen-Shannon/pmfx-go/engine/profiler"
	"github.com/Carmen-Shannon/pmfx-go/engine/reloader"
	"github.com/Carmen-Shannon/pmfx-go/gfx"
)

// FunctionInfo pairs a graph node's registered render function name with
// the view it records into, in execute order.
type FunctionInfo struct {
	Function string
	View     string
}

// ExcludedNode records a graph node that compilation could not schedule,
// with the structural reason.
type ExcludedNode struct {
	Name   string
	Reason string
}

// CameraConstants are the per-camera matrices render functions push to
// shaders. Matrices are column-major, matching common's math helpers.
type CameraConstants struct {
	View           [16]float32
	Projection     [16]float32
	ViewProjection [16]float32
}

// Pmfx is the render configuration engine.
type Pmfx interface {
	// Load reads the pmfx document in folder and merges it into the active
	// configuration with last-loaded-wins semantics. The folder is
	// remembered for hot reload.
	//
	// Parameters:
	//   - folder: directory containing an info.json pmfx document
	//
	// Returns:
	//   - error: a read or parse error
	Load(folder string) error

	// CreateTexture instantiates the named texture declaration on the
	// device. Creating an already-created texture is a no-op.
	//
	// Parameters:
	//   - name: the declared texture name
	//
	// Returns:
	//   - error: gfx.ErrNotFound if undeclared, or a device error
	CreateTexture(name string) error

	// GetTexture returns the device texture instantiated for name.
	//
	// Parameters:
	//   - name: the declared texture name
	//
	// Returns:
	//   - gfx.Texture: the texture, or nil
	//   - bool: true when the texture exists
	GetTexture(name string) (gfx.Texture, bool)

	// GetTexture2DSize returns the current resolved size of a tracked
	// texture.
	//
	// Parameters:
	//   - name: the declared texture name
	//
	// Returns:
	//   - uint64: width in pixels
	//   - uint64: height in pixels
	//   - bool: true when the texture exists
	GetTexture2DSize(name string) (uint64, uint64, bool)

	// CreateRenderGraph compiles the named graph: instantiates textures and
	// views, orders nodes by dependency, and emits minimal transition
	// barriers, resolve sequences and end-of-frame transitions. Nodes that
	// cannot be scheduled (missing views, dependency cycles) are excluded
	// with a logged reason rather than failing the build.
	//
	// Parameters:
	//   - name: the declared render graph name
	//
	// Returns:
	//   - error: gfx.ErrNotFound if undeclared, or a device error
	CreateRenderGraph(name string) error

	// CreatePipeline builds every permutation of the named pipeline
	// against the attachment formats of pass. Compute permutations ignore
	// the pass and are stored once.
	//
	// Parameters:
	//   - name: the declared pipeline name
	//   - pass: the render pass supplying the target format combination
	//
	// Returns:
	//   - error: gfx.ErrNotFound if undeclared, or a device error
	CreatePipeline(name string, pass gfx.RenderPass) error

	// GetRenderPipeline returns permutation zero of a render pipeline for
	// an attachment format combination.
	//
	// Parameters:
	//   - name: the declared pipeline name
	//   - formatHash: the target pass's format hash
	//
	// Returns:
	//   - gfx.RenderPipeline: the pipeline, or nil
	//   - bool: true when present
	GetRenderPipeline(name string, formatHash uint64) (gfx.RenderPipeline, bool)

	// GetRenderPipelinePermutation returns a specific permutation of a
	// render pipeline for an attachment format combination.
	//
	// Parameters:
	//   - name: the declared pipeline name
	//   - mask: the permutation mask
	//   - formatHash: the target pass's format hash
	//
	// Returns:
	//   - gfx.RenderPipeline: the pipeline, or nil
	//   - bool: true when present
	GetRenderPipelinePermutation(name string, mask uint32, formatHash uint64) (gfx.RenderPipeline, bool)

	// GetComputePipeline returns the named compute pipeline.
	//
	// Parameters:
	//   - name: the declared pipeline name
	//
	// Returns:
	//   - gfx.ComputePipeline: the pipeline, or nil
	//   - bool: true when present
	GetComputePipeline(name string) (gfx.ComputePipeline, bool)

	// RecordView grants fn short-lived exclusive access to the named view
	// for command recording. The view must not be retained after fn
	// returns.
	//
	// Parameters:
	//   - name: the graph-node name of the view
	//   - fn: the recording callback
	//
	// Returns:
	//   - error: gfx.ErrNotFound if the view does not exist, else fn's error
	RecordView(name string, fn func(v *View) error) error

	// ExecuteOrder returns the compiled execution order of the active
	// graph: barrier names, view node names and the end-of-frame entry.
	//
	// Returns:
	//   - []string: the order, owned by the caller
	ExecuteOrder() []string

	// ExcludedNodes returns the nodes the last graph compilation could not
	// schedule, with reasons.
	//
	// Returns:
	//   - []ExcludedNode: the exclusions, owned by the caller
	ExcludedNodes() []ExcludedNode

	// GetRenderGraphFunctionInfo lists the render functions of the active
	// graph's scheduled view nodes in execute order, so callers can
	// dispatch them between Reset and Execute.
	//
	// Returns:
	//   - []FunctionInfo: function and view name pairs
	GetRenderGraphFunctionInfo() []FunctionInfo

	// GetRenderGraphHash returns a stable hash of the named graph's node
	// set, letting callers detect graph rebuilds across reloads.
	//
	// Parameters:
	//   - name: the declared render graph name
	//
	// Returns:
	//   - Version: the hash, 0 when the graph is undeclared
	GetRenderGraphHash(name string) Version

	// NewFrame begins a frame: if a reload is available it blocks on the
	// previous frame, applies the reload, and then re-opens the command
	// buffers of scheduled views.
	//
	// Parameters:
	//   - sc: the swap chain pacing the frame
	NewFrame(sc gfx.SwapChain)

	// Reset re-opens the command buffers of all views in the execute order
	// without reload handling.
	//
	// Parameters:
	//   - sc: the swap chain pacing the frame
	Reset(sc gfx.SwapChain)

	// Execute submits the compiled order strictly sequentially: barrier
	// command buffers directly, view command buffers closed then
	// submitted.
	Execute()

	// Reload re-reads every loaded document, diffs declarations by
	// version, recreates changed textures, drops stale views, shaders and
	// pipelines, rebuilds pipelines against live views and recompiles the
	// active graph when views were removed.
	//
	// Returns:
	//   - error: a read or parse error from any document
	Reload() error

	// UpdateWindow tracks a window's size and resizes window-ratio
	// textures that reference it, dropping dependent views and recompiling
	// the active graph when sizes change.
	//
	// Parameters:
	//   - name: the window name ratio declarations reference
	//   - width: window width in pixels
	//   - height: window height in pixels
	UpdateWindow(name string, width, height uint32)

	// GetWindowSize returns a tracked window's size.
	//
	// Parameters:
	//   - name: the tracked window name
	//
	// Returns:
	//   - uint32: width in pixels
	//   - uint32: height in pixels
	//   - bool: true when tracked
	GetWindowSize(name string) (uint32, uint32, bool)

	// GetWindowAspect returns a tracked window's width/height ratio, 0
	// when untracked or degenerate.
	//
	// Parameters:
	//   - name: the tracked window name
	//
	// Returns:
	//   - float32: the aspect ratio
	GetWindowAspect(name string) float32

	// UpdateCameraConstants publishes a camera's matrices for render
	// functions to fetch by name.
	//
	// Parameters:
	//   - name: the camera name
	//   - constants: the matrices to publish
	UpdateCameraConstants(name string, constants CameraConstants)

	// GetCameraConstants returns a camera's published matrices.
	//
	// Parameters:
	//   - name: the camera name
	//
	// Returns:
	//   - CameraConstants: the matrices
	//   - bool: true when the camera has been published
	GetCameraConstants(name string) (CameraConstants, bool)

	// LogError records an error message against a view for external
	// display. Messages accumulate until Errors drains them.
	//
	// Parameters:
	//   - view: the view name, or empty for engine-level errors
	//   - msg: the message
	LogError(view, msg string)

	// Errors drains and returns all accumulated error messages keyed by
	// view name.
	//
	// Returns:
	//   - map[string][]string: the drained messages
	Errors() map[string][]string
}

type renderPipelineEntry struct {
	hash     Version
	pipeline gfx.RenderPipeline
}

type computePipelineEntry struct {
	hash     Version
	pipeline gfx.ComputePipeline
}

type pmfxImpl struct {
	mu *sync.Mutex

	device   gfx.Device
	reloader reloader.Reloader
	prof     *profiler.Profiler

	merged        DocFile
	loadedFolders []string
	// pipeline name → folder its shader sources live in
	pmfxFolders map[string]string

	trackedTextures map[string]*trackedTexture
	windowSizes     map[string][2]uint32

	views map[string]*View
	// texture name → names of views rendering into it
	viewTextureRefs map[string]map[string]struct{}

	barriers     map[string]gfx.CmdBuf
	executeOrder []string
	activeGraph  string
	excluded     []ExcludedNode

	// format hash → pipeline name → permutation mask → entry
	renderPipelines  map[uint64]map[string]map[uint32]renderPipelineEntry
	computePipelines map[string]computePipelineEntry

	shaders        map[string]gfx.Shader
	shaderVersions map[string]Version

	cameras    map[string]CameraConstants
	viewErrors map[string][]string
}

var _ Pmfx = &pmfxImpl{}

func (p *pmfxImpl) GetTexture(name string) (gfx.Texture, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracked, ok := p.trackedTextures[name]
	if !ok {
		return nil, false
	}
	return tracked.texture, true
}

func (p *pmfxImpl) GetTexture2DSize(name string) (uint64, uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracked, ok := p.trackedTextures[name]
	if !ok {
		return 0, 0, false
	}
	return tracked.size[0], tracked.size[1], true
}

func (p *pmfxImpl) RecordView(name string, fn func(v *View) error) error {
	p.mu.Lock()
	view, ok := p.views[name]
	p.mu.Unlock()
	if !ok {
		return errNotFound("view", name)
	}
	return view.Record(fn)
}

func (p *pmfxImpl) ExecuteOrder() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	order := make([]string, len(p.executeOrder))
	copy(order, p.executeOrder)
	return order
}

func (p *pmfxImpl) ExcludedNodes() []ExcludedNode {
	p.mu.Lock()
	defer p.mu.Unlock()
	excluded := make([]ExcludedNode, len(p.excluded))
	copy(excluded, p.excluded)
	return excluded
}

func (p *pmfxImpl) GetWindowSize(name string) (uint32, uint32, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	size, ok := p.windowSizes[name]
	if !ok {
		return 0, 0, false
	}
	return size[0], size[1], true
}

func (p *pmfxImpl) GetWindowAspect(name string) float32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	size, ok := p.windowSizes[name]
	if !ok || size[1] == 0 {
		return 0
	}
	return float32(size[0]) / float32(size[1])
}
