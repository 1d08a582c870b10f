package pmfx

import (
	"testing"

	"github.com/Carmen-Shannon/pmfx-go/gfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRenderGraphOrdersByDependency(t *testing.T) {
	p, _, _ := newTestPmfx(t, basicDoc())

	require.NoError(t, p.CreateRenderGraph("forward"))

	assert.Equal(t, []string{
		"barrier_geometry-gbuffer",
		"geometry",
		"barrier_resolve_post-output",
		"resolve_post",
		"eof",
	}, p.ExecuteOrder())
	assert.Empty(t, p.ExcludedNodes())

	assert.Equal(t, []FunctionInfo{
		{Function: "render_meshes", View: "geometry"},
		{Function: "render_post", View: "resolve_post"},
	}, p.GetRenderGraphFunctionInfo())
}

func TestCreateRenderGraphUnknownGraph(t *testing.T) {
	p, _, _ := newTestPmfx(t, basicDoc())
	assert.ErrorIs(t, p.CreateRenderGraph("nope"), gfx.ErrNotFound)
}

func TestCreateRenderGraphMinimalBarriers(t *testing.T) {
	// Two consecutive nodes render through the same view declaration into
	// the same target; only the first needs a transition into render-target
	// state.
	doc := basicDoc()
	doc.RenderGraphs["forward"] = map[string]GraphViewInfo{
		"first":  {View: "main_view"},
		"second": {View: "main_view", DependsOn: []string{"first"}},
	}
	p, _, _ := newTestPmfx(t, doc)

	require.NoError(t, p.CreateRenderGraph("forward"))
	assert.Equal(t, []string{
		"barrier_first-gbuffer",
		"first",
		"second",
		"eof",
	}, p.ExecuteOrder())
}

func TestCreateRenderGraphMissingViewExcludesNode(t *testing.T) {
	doc := basicDoc()
	doc.RenderGraphs["forward"]["broken"] = GraphViewInfo{View: "no_such_view"}
	p, _, _ := newTestPmfx(t, doc)

	require.NoError(t, p.CreateRenderGraph("forward"))

	excluded := p.ExcludedNodes()
	require.Len(t, excluded, 1)
	assert.Equal(t, "broken", excluded[0].Name)
	assert.Contains(t, excluded[0].Reason, "view not found")

	// Remaining nodes still schedule.
	assert.Contains(t, p.ExecuteOrder(), "geometry")
	assert.Contains(t, p.ExecuteOrder(), "resolve_post")
}

func TestCreateRenderGraphCycleExcludesNodes(t *testing.T) {
	doc := basicDoc()
	doc.RenderGraphs["forward"] = map[string]GraphViewInfo{
		"a": {View: "main_view", DependsOn: []string{"b"}},
		"b": {View: "post_view", DependsOn: []string{"a"}},
	}
	p, _, _ := newTestPmfx(t, doc)

	require.NoError(t, p.CreateRenderGraph("forward"))

	assert.Empty(t, p.ExecuteOrder())
	excluded := p.ExcludedNodes()
	require.Len(t, excluded, 2)
	for _, node := range excluded {
		assert.Contains(t, node.Reason, "cycle")
	}
}

func TestCreateRenderGraphMissingDependencyIgnored(t *testing.T) {
	doc := basicDoc()
	node := doc.RenderGraphs["forward"]["geometry"]
	node.DependsOn = []string{"ghost"}
	doc.RenderGraphs["forward"]["geometry"] = node
	p, _, _ := newTestPmfx(t, doc)

	require.NoError(t, p.CreateRenderGraph("forward"))
	assert.Contains(t, p.ExecuteOrder(), "geometry")
	assert.Empty(t, p.ExcludedNodes())
}

func TestCreateRenderGraphEmitsResolveSequence(t *testing.T) {
	doc := basicDoc()
	doc.Textures["gbuffer"] = TextureInfo{
		Width:   128,
		Height:  128,
		Samples: 4,
		Format:  gfx.FormatRGBA8n,
		Usage:   gfx.TextureUsageShaderResource | gfx.TextureUsageRenderTarget,
	}
	p, _, _ := newTestPmfx(t, doc)

	require.NoError(t, p.CreateRenderGraph("forward"))

	order := p.ExecuteOrder()
	assert.Equal(t, []string{
		"barrier_geometry-gbuffer",
		"geometry",
		"barrier_resolve-geometry-gbuffer",
		"barrier_resolve_post-output",
		"resolve_post",
		"eof",
	}, order)

	impl := p.(*pmfxImpl)
	resolve := impl.barriers["barrier_resolve-geometry-gbuffer"].(*mockCmdBuf)
	assert.Equal(t, []string{
		"transition render_target->resolve_src",
		"transition_sub shader_resource->resolve_dst",
		"resolve mip0",
		"transition_sub resolve_dst->shader_resource",
	}, resolve.ops)

	// End of frame returns the multisampled source and the post target to
	// sampleable state.
	eof := impl.barriers["eof"].(*mockCmdBuf)
	assert.Equal(t, []string{
		"transition resolve_src->shader_resource",
		"transition render_target->shader_resource",
	}, eof.ops)
}

func TestCreateRenderGraphResolveUnsupported(t *testing.T) {
	doc := basicDoc()
	doc.Textures["gbuffer"] = TextureInfo{
		Width:   128,
		Height:  128,
		Samples: 4,
		Format:  gfx.FormatRGBA8n,
		Usage:   gfx.TextureUsageShaderResource | gfx.TextureUsageRenderTarget,
	}

	folder := t.TempDir()
	writeDoc(t, folder, doc)
	writeShader(t, folder, "mesh_vs.wgsl")
	writeShader(t, folder, "mesh_ps.wgsl")

	device := newMockDevice()
	device.resolvable = false
	p := NewPmfx(device)
	require.NoError(t, p.Load(folder))

	require.NoError(t, p.CreateRenderGraph("forward"))

	// The resolve barrier falls back to a plain transition and the failure
	// is logged against the node.
	impl := p.(*pmfxImpl)
	resolve := impl.barriers["barrier_resolve-geometry-gbuffer"].(*mockCmdBuf)
	assert.Equal(t, []string{"transition render_target->shader_resource"}, resolve.ops)

	errs := p.Errors()
	require.NotEmpty(t, errs["geometry"])
	assert.Contains(t, errs["geometry"][0], "no resolve resource")
}

func TestCreateRenderGraphDepthStencilBarriers(t *testing.T) {
	doc := basicDoc()
	doc.Textures["main_depth"] = TextureInfo{
		Width:  128,
		Height: 128,
		Format: gfx.FormatD32f,
		Usage:  gfx.TextureUsageShaderResource | gfx.TextureUsageDepthStencil,
	}
	view := doc.Views["main_view"]
	view.DepthStencil = []string{"main_depth"}
	view.ClearDepth = f32Ptr(1)
	doc.Views["main_view"] = view
	p, _, _ := newTestPmfx(t, doc)

	require.NoError(t, p.CreateRenderGraph("forward"))

	assert.Equal(t, []string{
		"barrier_geometry-gbuffer",
		"barrier_geometry-main_depth",
		"geometry",
		"barrier_resolve_post-output",
		"resolve_post",
		"eof",
	}, p.ExecuteOrder())

	impl := p.(*pmfxImpl)
	depth := impl.barriers["barrier_geometry-main_depth"].(*mockCmdBuf)
	assert.Equal(t, []string{"transition shader_resource->depth_stencil"}, depth.ops)

	pass := impl.views["geometry"].Pass.(*mockPass)
	require.NotNil(t, pass.info.DepthStencil)

	// End of frame returns the depth texture to sampleable state alongside
	// the colour targets.
	eof := impl.barriers["eof"].(*mockCmdBuf)
	assert.Equal(t, []string{
		"transition render_target->shader_resource",
		"transition depth_stencil->shader_resource",
		"transition render_target->shader_resource",
	}, eof.ops)
}

func TestCreateRenderGraphDepthOnlyView(t *testing.T) {
	doc := basicDoc()
	doc.Textures["shadow_map"] = TextureInfo{
		Width:  256,
		Height: 256,
		Format: gfx.FormatD32f,
		Usage:  gfx.TextureUsageShaderResource | gfx.TextureUsageDepthStencil,
	}
	doc.Views["shadow_view"] = ViewInfo{
		DepthStencil: []string{"shadow_map"},
		ClearDepth:   f32Ptr(1),
	}
	doc.RenderGraphs["forward"]["shadow"] = GraphViewInfo{
		View:     "shadow_view",
		Function: "render_shadows",
	}
	p, _, _ := newTestPmfx(t, doc)

	require.NoError(t, p.CreateRenderGraph("forward"))

	order := p.ExecuteOrder()
	assert.Contains(t, order, "barrier_shadow-shadow_map")
	assert.Contains(t, order, "shadow")

	// Viewport and scissor size from the depth target when the view has no
	// colour targets.
	impl := p.(*pmfxImpl)
	view := impl.views["shadow"]
	assert.Equal(t, float32(256), view.Viewport.Width)
	assert.Equal(t, float32(256), view.Viewport.Height)
	assert.Equal(t, int32(256), view.Scissor.Right)
	assert.Equal(t, int32(256), view.Scissor.Bottom)

	pass := view.Pass.(*mockPass)
	assert.Empty(t, pass.info.RenderTargets)
	require.NotNil(t, pass.info.DepthStencil)
}

func TestExecuteSubmitsCompiledOrder(t *testing.T) {
	p, device, _ := newTestPmfx(t, basicDoc())
	require.NoError(t, p.CreateRenderGraph("forward"))

	sc := &mockSwapChain{numBuffers: 2}
	p.Reset(sc)
	p.Execute()

	order := p.ExecuteOrder()
	require.Len(t, device.executed, len(order))

	impl := p.(*pmfxImpl)
	for i, name := range order {
		if cb, ok := impl.barriers[name]; ok {
			assert.Same(t, cb, device.executed[i], "entry %d (%s)", i, name)
			continue
		}
		view := impl.views[name]
		require.NotNil(t, view, "entry %d (%s)", i, name)
		assert.Same(t, view.CmdBuf, device.executed[i], "entry %d (%s)", i, name)
		assert.True(t, view.CmdBuf.(*mockCmdBuf).closed, "view %s must be closed before submit", name)
	}
}

func TestExecuteResubmitsBarriersEachFrame(t *testing.T) {
	doc := basicDoc()
	doc.Textures["gbuffer"] = TextureInfo{
		Width:   128,
		Height:  128,
		Samples: 4,
		Format:  gfx.FormatRGBA8n,
		Usage:   gfx.TextureUsageShaderResource | gfx.TextureUsageRenderTarget,
	}
	p, device, _ := newTestPmfx(t, doc)
	require.NoError(t, p.CreateRenderGraph("forward"))

	sc := &mockSwapChain{numBuffers: 2}
	p.Reset(sc)
	p.Execute()
	p.Reset(sc)
	p.Execute()

	// Transition and resolve buffers are closed once at compile time and
	// must reach the device closed on every subsequent frame.
	impl := p.(*pmfxImpl)
	for name, cb := range impl.barriers {
		assert.Equalf(t, 2, cb.(*mockCmdBuf).submits, "barrier %s", name)
	}
	assert.Zero(t, device.openSubmits)
	assert.Empty(t, p.Errors())
}

func TestResetReopensViewCmdBufs(t *testing.T) {
	p, _, _ := newTestPmfx(t, basicDoc())
	require.NoError(t, p.CreateRenderGraph("forward"))

	sc := &mockSwapChain{numBuffers: 2}
	p.Reset(sc)

	impl := p.(*pmfxImpl)
	assert.Equal(t, 1, impl.views["geometry"].CmdBuf.(*mockCmdBuf).resets)
	assert.Equal(t, 1, impl.views["resolve_post"].CmdBuf.(*mockCmdBuf).resets)
}

func TestRecordViewGrantsExclusiveAccess(t *testing.T) {
	p, _, _ := newTestPmfx(t, basicDoc())
	require.NoError(t, p.CreateRenderGraph("forward"))

	recorded := false
	err := p.RecordView("geometry", func(v *View) error {
		recorded = true
		assert.Equal(t, "main", v.Camera)
		assert.Equal(t, []string{"mesh"}, v.Pipelines)
		assert.Equal(t, float32(128), v.Viewport.Width)
		v.CmdBuf.BeginRenderPass(v.Pass)
		v.CmdBuf.EndRenderPass()
		return nil
	})
	require.NoError(t, err)
	assert.True(t, recorded)

	assert.ErrorIs(t, p.RecordView("nope", func(v *View) error { return nil }), gfx.ErrNotFound)
}

func TestGetRenderGraphHash(t *testing.T) {
	p, _, _ := newTestPmfx(t, basicDoc())

	hash := p.GetRenderGraphHash("forward")
	assert.NotZero(t, hash)
	assert.Equal(t, hash, p.GetRenderGraphHash("forward"))
	assert.Zero(t, p.GetRenderGraphHash("nope"))
}
