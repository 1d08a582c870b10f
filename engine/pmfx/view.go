package pmfx

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/pmfx-go/gfx"
)

// View is an instantiated render-graph node: a render pass over resolved
// textures plus the command buffer and state a render function records with.
// Views are handed out only through Record, which grants short-lived
// exclusive access; callers never hold a view across frames.
type View struct {
	mu *sync.Mutex

	// Name is the graph-node name the view was instantiated for.
	Name string
	// GraphName is the render graph the view belongs to.
	GraphName string
	// Pass is the render pass bound to the view's target textures.
	Pass gfx.RenderPass
	// Viewport covers the first render target.
	Viewport gfx.Viewport
	// Scissor covers the first render target.
	Scissor gfx.ScissorRect
	// CmdBuf is the view's N-buffered command buffer.
	CmdBuf gfx.CmdBuf
	// Pipelines are the pipeline names requested by the graph node; the
	// first is the view's primary pipeline.
	Pipelines []string
	// Camera is the camera name whose constants the render function should
	// fetch, empty when the node declares none.
	Camera string
	// Function is the registered render function name for the node.
	Function string

	// source is the view declaration name the graph node referenced.
	source string
	// sourceHash is the version of the view declaration this instance was
	// built from, compared during reloads.
	sourceHash Version
	// textures are the target texture names, used for back-reference
	// bookkeeping when targets are recreated.
	textures []string
}

// Record grants fn exclusive access to the view for the duration of the
// call. All command recording against the view's CmdBuf must happen inside
// fn; retaining the view after Record returns is a misuse.
//
// Parameters:
//   - fn: the recording callback; its error is returned unchanged
//
// Returns:
//   - error: the callback's error
func (v *View) Record(fn func(v *View) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return fn(v)
}

// buildView instantiates a graph node's view declaration against created
// textures. Viewport and scissor cover the first target (or the depth
// target for depth-only views) unless the declaration overrides them.
func (p *pmfxImpl) buildView(nodeName, graphName string, node *GraphViewInfo, info *ViewInfo) (*View, error) {
	targets := make([]gfx.Texture, 0, len(info.RenderTarget))
	textureNames := make([]string, 0, len(info.RenderTarget)+len(info.DepthStencil))
	var size [2]uint64

	for _, name := range info.RenderTarget {
		tracked, err := p.createTextureLocked(name)
		if err != nil {
			return nil, err
		}
		targets = append(targets, tracked.texture)
		textureNames = append(textureNames, name)
		if size[0] == 0 {
			size = tracked.size
		}
	}

	var depthStencil gfx.Texture
	for _, name := range info.DepthStencil {
		tracked, err := p.createTextureLocked(name)
		if err != nil {
			return nil, err
		}
		depthStencil = tracked.texture
		textureNames = append(textureNames, name)
		if size[0] == 0 {
			size = tracked.size
		}
	}

	var dsClear *gfx.ClearDepthStencil
	if info.ClearDepth != nil || info.ClearStencil != nil {
		dsClear = &gfx.ClearDepthStencil{
			Depth:   info.ClearDepth,
			Stencil: info.ClearStencil,
		}
	}

	resolve := false
	for _, t := range targets {
		if t.IsResolvable() {
			resolve = true
		}
	}

	pass, err := p.device.CreateRenderPass(&gfx.RenderPassInfo{
		RenderTargets: targets,
		RTClear:       info.ClearColor,
		DepthStencil:  depthStencil,
		DSClear:       dsClear,
		Resolve:       resolve,
	})
	if err != nil {
		return nil, fmt.Errorf("pmfx: failed to create render pass for view %s: %w", nodeName, err)
	}

	viewport := gfx.Viewport{
		Width:    float32(size[0]),
		Height:   float32(size[1]),
		MaxDepth: 1,
	}
	if len(info.Viewport) == 6 {
		viewport = gfx.Viewport{
			X:        info.Viewport[0] * float32(size[0]),
			Y:        info.Viewport[1] * float32(size[1]),
			Width:    info.Viewport[2] * float32(size[0]),
			Height:   info.Viewport[3] * float32(size[1]),
			MinDepth: info.Viewport[4],
			MaxDepth: info.Viewport[5],
		}
	}
	scissor := gfx.ScissorRect{
		Right:  int32(size[0]),
		Bottom: int32(size[1]),
	}
	if len(info.Scissor) == 4 {
		scissor = gfx.ScissorRect{
			Left:   int32(info.Scissor[0] * float32(size[0])),
			Top:    int32(info.Scissor[1] * float32(size[1])),
			Right:  int32(info.Scissor[2] * float32(size[0])),
			Bottom: int32(info.Scissor[3] * float32(size[1])),
		}
	}

	view := &View{
		mu:         &sync.Mutex{},
		Name:       nodeName,
		GraphName:  graphName,
		Pass:       pass,
		Viewport:   viewport,
		Scissor:    scissor,
		CmdBuf:     p.device.CreateCmdBuf(viewCmdBufDepth),
		Pipelines:  node.Pipelines,
		Camera:     info.Camera,
		Function:   node.Function,
		source:     node.View,
		sourceHash: info.Hash,
		textures:   textureNames,
	}

	// Back-reference index so texture recreation can find and drop the
	// views that render into it.
	for _, name := range textureNames {
		if p.viewTextureRefs[name] == nil {
			p.viewTextureRefs[name] = map[string]struct{}{}
		}
		p.viewTextureRefs[name][nodeName] = struct{}{}
	}

	return view, nil
}

// viewCmdBufDepth is the backing-buffer count of per-view command buffers.
const viewCmdBufDepth = 2
