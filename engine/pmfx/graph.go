package pmfx

import (
	"hash/fnv"
	"log"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/pmfx-go/gfx"
)

// eofNodeName is the execute-order entry carrying the end-of-frame
// transitions that return every written texture to a sampleable state.
const eofNodeName = "eof"

func (p *pmfxImpl) CreateRenderGraph(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.createRenderGraphLocked(name)
}

// createRenderGraphLocked compiles a declared graph into an execute order
// of barrier command buffers and view nodes. Scheduling is dependency
// ordered over sorted node names, so the output is deterministic for a
// given document. Nodes that cannot be scheduled are excluded with a
// reason instead of failing the whole build.
func (p *pmfxImpl) createRenderGraphLocked(name string) error {
	graph, ok := p.merged.RenderGraphs[name]
	if !ok {
		return errNotFound("render graph", name)
	}

	p.barriers = map[string]gfx.CmdBuf{}
	p.executeOrder = nil
	p.excluded = nil

	nodeNames := make([]string, 0, len(graph))
	for nodeName := range graph {
		nodeNames = append(nodeNames, nodeName)
	}
	sort.Strings(nodeNames)

	// Per-texture resource states observed while walking the schedule.
	// Only textures that are both written by views and sampled by shaders
	// are tracked; write-only targets stay in their creation state.
	tracking := map[string]gfx.ResourceState{}

	scheduled := map[string]bool{}
	excluded := map[string]bool{}

	for {
		progress := false
		for _, nodeName := range nodeNames {
			if scheduled[nodeName] || excluded[nodeName] {
				continue
			}
			node := graph[nodeName]

			viewInfo, viewOk := p.merged.Views[node.View]
			if !viewOk {
				reason := "view not found: " + node.View
				log.Printf("[pmfx] render graph %s: excluding node %s: %s", name, nodeName, reason)
				p.excluded = append(p.excluded, ExcludedNode{Name: nodeName, Reason: reason})
				excluded[nodeName] = true
				progress = true
				continue
			}

			if !p.dependenciesSatisfied(name, nodeName, node.DependsOn, graph, scheduled, excluded) {
				continue
			}

			view, err := p.instantiateViewLocked(nodeName, name, &node, &viewInfo)
			if err != nil {
				reason := "failed to build view: " + err.Error()
				log.Printf("[pmfx] render graph %s: excluding node %s: %s", name, nodeName, reason)
				p.excluded = append(p.excluded, ExcludedNode{Name: nodeName, Reason: reason})
				excluded[nodeName] = true
				progress = true
				continue
			}

			for _, texName := range viewInfo.RenderTarget {
				p.emitTargetBarrierLocked(nodeName, texName, gfx.ResourceStateRenderTarget, tracking)
			}
			for _, texName := range viewInfo.DepthStencil {
				p.emitTargetBarrierLocked(nodeName, texName, gfx.ResourceStateDepthStencil, tracking)
			}

			p.executeOrder = append(p.executeOrder, nodeName)
			scheduled[nodeName] = true
			progress = true

			for _, pipelineName := range node.Pipelines {
				if pErr := p.createPipelineLocked(pipelineName, view.Pass); pErr != nil {
					log.Printf("[pmfx] render graph %s: node %s: %v", name, nodeName, pErr)
					p.logErrorLocked(nodeName, pErr.Error())
				}
			}

			for _, texName := range viewInfo.RenderTarget {
				p.emitResolveLocked(nodeName, texName, tracking)
			}
		}
		if !progress {
			break
		}
	}

	// Anything left unscheduled made zero progress on the last pass, which
	// can only mean a dependency cycle among the remaining nodes.
	for _, nodeName := range nodeNames {
		if scheduled[nodeName] || excluded[nodeName] {
			continue
		}
		reason := "unsatisfiable dependencies (cycle)"
		log.Printf("[pmfx] render graph %s: excluding node %s: %s", name, nodeName, reason)
		p.excluded = append(p.excluded, ExcludedNode{Name: nodeName, Reason: reason})
	}

	p.emitEndOfFrameLocked(tracking)
	p.activeGraph = name
	return nil
}

// dependenciesSatisfied reports whether every depends_on entry of a node is
// scheduled. Dependencies that are not part of the graph are warned about
// and treated as satisfied; excluded dependencies are treated as satisfied
// so one bad node does not wedge its dependents.
func (p *pmfxImpl) dependenciesSatisfied(graphName, nodeName string, dependsOn []string, graph map[string]GraphViewInfo, scheduled, excluded map[string]bool) bool {
	for _, dep := range dependsOn {
		if _, declared := graph[dep]; !declared {
			log.Printf("[pmfx] render graph %s: node %s depends on missing node %s, ignoring", graphName, nodeName, dep)
			continue
		}
		if excluded[dep] {
			continue
		}
		if !scheduled[dep] {
			return false
		}
	}
	return true
}

// instantiateViewLocked returns the live view for a graph node, rebuilding
// it only when absent or built from an older declaration version.
func (p *pmfxImpl) instantiateViewLocked(nodeName, graphName string, node *GraphViewInfo, info *ViewInfo) (*View, error) {
	if existing, ok := p.views[nodeName]; ok && existing.sourceHash == info.Hash {
		return existing, nil
	}
	view, err := p.buildView(nodeName, graphName, node, info)
	if err != nil {
		return nil, err
	}
	p.views[nodeName] = view
	return view, nil
}

// emitTargetBarrierLocked emits a transition barrier moving texName into
// the desired write state, if it is tracked and not already there.
func (p *pmfxImpl) emitTargetBarrierLocked(nodeName, texName string, desired gfx.ResourceState, tracking map[string]gfx.ResourceState) {
	tracked, ok := p.trackedTextures[texName]
	if !ok || !isTrackable(&tracked.info) {
		return
	}
	current := trackedState(tracking, texName)
	if current == desired {
		return
	}

	cb := p.device.CreateCmdBuf(1)
	cb.TransitionBarrier(&gfx.TransitionBarrier{
		Texture:     tracked.texture,
		StateBefore: current,
		StateAfter:  desired,
	})
	p.appendBarrierLocked("barrier_"+nodeName+"-"+texName, cb)
	tracking[texName] = desired
}

// emitResolveLocked emits the resolve sequence for a multisampled,
// sampleable render target right after the view that wrote it: source to
// resolve-src, resolve subresource to resolve-dst, the resolve itself, and
// the subresource back to shader-resource. A texture that should resolve
// but cannot gets a plain shader-resource transition and a logged error.
func (p *pmfxImpl) emitResolveLocked(nodeName, texName string, tracking map[string]gfx.ResourceState) {
	tracked, ok := p.trackedTextures[texName]
	if !ok || tracked.info.Samples <= 1 || tracked.info.Usage&gfx.TextureUsageShaderResource == 0 {
		return
	}

	current := trackedState(tracking, texName)
	cb := p.device.CreateCmdBuf(1)

	if !tracked.texture.IsResolvable() {
		cb.TransitionBarrier(&gfx.TransitionBarrier{
			Texture:     tracked.texture,
			StateBefore: current,
			StateAfter:  gfx.ResourceStateShaderResource,
		})
		tracking[texName] = gfx.ResourceStateShaderResource
		msg := "texture " + texName + " is multisampled but has no resolve resource"
		log.Printf("[pmfx] %s: %s", nodeName, msg)
		p.logErrorLocked(nodeName, msg)
	} else {
		cb.TransitionBarrier(&gfx.TransitionBarrier{
			Texture:     tracked.texture,
			StateBefore: current,
			StateAfter:  gfx.ResourceStateResolveSrc,
		})
		cb.TransitionBarrierSubresource(&gfx.TransitionBarrier{
			Texture:     tracked.texture,
			StateBefore: gfx.ResourceStateShaderResource,
			StateAfter:  gfx.ResourceStateResolveDst,
		}, gfx.SubresourceResolve)
		if err := cb.ResolveTextureSubresource(tracked.texture, 0); err != nil {
			log.Printf("[pmfx] %s: failed to resolve %s: %v", nodeName, texName, err)
			p.logErrorLocked(nodeName, err.Error())
		}
		cb.TransitionBarrierSubresource(&gfx.TransitionBarrier{
			Texture:     tracked.texture,
			StateBefore: gfx.ResourceStateResolveDst,
			StateAfter:  gfx.ResourceStateShaderResource,
		}, gfx.SubresourceResolve)
		tracking[texName] = gfx.ResourceStateResolveSrc
	}

	p.appendBarrierLocked("barrier_resolve-"+nodeName+"-"+texName, cb)
}

// emitEndOfFrameLocked returns every tracked texture left in a write or
// resolve state to shader-resource in one final command buffer, keeping the
// tracking map consistent frame over frame.
func (p *pmfxImpl) emitEndOfFrameLocked(tracking map[string]gfx.ResourceState) {
	names := make([]string, 0, len(tracking))
	for texName, state := range tracking {
		if state != gfx.ResourceStateShaderResource {
			names = append(names, texName)
		}
	}
	if len(names) == 0 {
		return
	}
	sort.Strings(names)

	cb := p.device.CreateCmdBuf(1)
	for _, texName := range names {
		cb.TransitionBarrier(&gfx.TransitionBarrier{
			Texture:     p.trackedTextures[texName].texture,
			StateBefore: tracking[texName],
			StateAfter:  gfx.ResourceStateShaderResource,
		})
		tracking[texName] = gfx.ResourceStateShaderResource
	}
	p.appendBarrierLocked(eofNodeName, cb)
}

func (p *pmfxImpl) appendBarrierLocked(name string, cb gfx.CmdBuf) {
	if err := cb.Close(); err != nil {
		log.Printf("[pmfx] failed to close barrier %s: %v", name, err)
	}
	p.barriers[name] = cb
	p.executeOrder = append(p.executeOrder, name)
}

// isTrackable reports whether a texture participates in barrier tracking:
// it must be written by views and read by shaders.
func isTrackable(info *TextureInfo) bool {
	writes := info.Usage&(gfx.TextureUsageRenderTarget|gfx.TextureUsageDepthStencil) != 0
	reads := info.Usage&gfx.TextureUsageShaderResource != 0
	return writes && reads
}

// trackedState returns the current tracked state of a texture, seeding the
// shader-resource creation state on first sight.
func trackedState(tracking map[string]gfx.ResourceState, texName string) gfx.ResourceState {
	if state, ok := tracking[texName]; ok {
		return state
	}
	tracking[texName] = gfx.ResourceStateShaderResource
	return gfx.ResourceStateShaderResource
}

func (p *pmfxImpl) GetRenderGraphFunctionInfo() []FunctionInfo {
	p.mu.Lock()
	defer p.mu.Unlock()

	infos := []FunctionInfo{}
	for _, name := range p.executeOrder {
		view, ok := p.views[name]
		if !ok || view.Function == "" {
			continue
		}
		infos = append(infos, FunctionInfo{Function: view.Function, View: name})
	}
	return infos
}

func (p *pmfxImpl) GetRenderGraphHash(name string) Version {
	p.mu.Lock()
	defer p.mu.Unlock()

	graph, ok := p.merged.RenderGraphs[name]
	if !ok {
		return 0
	}

	parts := make([]string, 0, len(graph))
	for nodeName, node := range graph {
		parts = append(parts, nodeName+":"+node.View)
	}
	sort.Strings(parts)

	h := fnv.New64a()
	h.Write([]byte(strings.Join(parts, ";")))
	return Version(h.Sum64())
}
