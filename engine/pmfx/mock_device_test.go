package pmfx

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/pmfx-go/gfx"
)

// mockDevice implements gfx.Device entirely on the CPU, recording enough of
// what flows through it for graph and reload tests to assert on.
type mockDevice struct {
	mu sync.Mutex

	// resolvable controls whether multisampled shader-resource textures get
	// a resolve resource.
	resolvable bool
	// failPipelines makes pipeline creation fail, for error-path tests.
	failPipelines bool

	created   []*mockTexture
	destroyed int
	cleanUps  int

	shadersCreated   int
	renderPipelines  int
	computePipelines int

	executed []gfx.CmdBuf
	// openSubmits counts command buffers handed to Execute without a prior
	// successful Close, which real backends reject.
	openSubmits int
}

func newMockDevice() *mockDevice {
	return &mockDevice{resolvable: true}
}

type mockTexture struct {
	info       gfx.TextureInfo
	resolvable bool
}

func (t *mockTexture) IsResolvable() bool { return t.resolvable }

type mockPass struct {
	formatHash uint64
	info       gfx.RenderPassInfo
}

func (p *mockPass) FormatHash() uint64 { return p.formatHash }

type mockShader struct{ info gfx.ShaderInfo }

type mockRenderPipeline struct{}

type mockComputePipeline struct{}

// mockCmdBuf records readable operation strings in recording order.
type mockCmdBuf struct {
	ops     []string
	closed  bool
	resets  int
	submits int
}

func (c *mockCmdBuf) Reset(sc gfx.SwapChain) {
	c.resets++
	c.closed = false
	c.ops = nil
}

func (c *mockCmdBuf) Close() error {
	if c.closed {
		return errors.New("already closed")
	}
	c.closed = true
	return nil
}

func (c *mockCmdBuf) TransitionBarrier(barrier *gfx.TransitionBarrier) {
	c.ops = append(c.ops, fmt.Sprintf("transition %s->%s", barrier.StateBefore, barrier.StateAfter))
}

func (c *mockCmdBuf) TransitionBarrierSubresource(barrier *gfx.TransitionBarrier, sub gfx.Subresource) {
	c.ops = append(c.ops, fmt.Sprintf("transition_sub %s->%s", barrier.StateBefore, barrier.StateAfter))
}

func (c *mockCmdBuf) ResolveTextureSubresource(tex gfx.Texture, mip int) error {
	if t, ok := tex.(*mockTexture); !ok || !t.resolvable {
		return gfx.ErrResolveIncompatible
	}
	c.ops = append(c.ops, fmt.Sprintf("resolve mip%d", mip))
	return nil
}

func (c *mockCmdBuf) BeginRenderPass(pass gfx.RenderPass)            { c.ops = append(c.ops, "begin_pass") }
func (c *mockCmdBuf) EndRenderPass()                                 { c.ops = append(c.ops, "end_pass") }
func (c *mockCmdBuf) SetViewport(vp *gfx.Viewport)                   { c.ops = append(c.ops, "viewport") }
func (c *mockCmdBuf) SetScissor(rect *gfx.ScissorRect)               { c.ops = append(c.ops, "scissor") }
func (c *mockCmdBuf) SetRenderPipeline(p gfx.RenderPipeline)         { c.ops = append(c.ops, "pipeline") }
func (c *mockCmdBuf) SetComputePipeline(p gfx.ComputePipeline)       { c.ops = append(c.ops, "compute_pipeline") }
func (c *mockCmdBuf) PushConstants(slot uint32, data []byte)         { c.ops = append(c.ops, "push") }
func (c *mockCmdBuf) Draw(vertexCount, instanceCount uint32)         { c.ops = append(c.ops, "draw") }
func (c *mockCmdBuf) Dispatch(groupsX, groupsY, groupsZ uint32)      { c.ops = append(c.ops, "dispatch") }

var _ gfx.Device = &mockDevice{}

func (d *mockDevice) CreateTexture(info *gfx.TextureInfo, data []byte) (gfx.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := gfx.ValidateDataSize(info.SizeBytes(), data); err != nil {
		return nil, err
	}
	tex := &mockTexture{
		info: *info,
		resolvable: d.resolvable && info.Samples > 1 &&
			info.Usage&gfx.TextureUsageShaderResource != 0,
	}
	d.created = append(d.created, tex)
	return tex, nil
}

func (d *mockDevice) DestroyTexture(tex gfx.Texture) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyed++
}

func (d *mockDevice) CleanUpResources(sc gfx.SwapChain) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cleanUps++
}

func (d *mockDevice) CreateRenderPass(info *gfx.RenderPassInfo) (gfx.RenderPass, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	samples := uint32(1)
	rtFormats := []gfx.Format{}
	for i, rt := range info.RenderTargets {
		t := rt.(*mockTexture)
		ts := t.info.Samples
		if ts == 0 {
			ts = 1
		}
		if i == 0 {
			samples = ts
		} else if ts != samples {
			return nil, fmt.Errorf("sample count mismatch")
		}
		rtFormats = append(rtFormats, t.info.Format)
	}
	dsFormat := gfx.FormatUnknown
	if info.DepthStencil != nil {
		dsFormat = info.DepthStencil.(*mockTexture).info.Format
	}
	return &mockPass{
		formatHash: gfx.FormatHash(samples, dsFormat, rtFormats),
		info:       *info,
	}, nil
}

func (d *mockDevice) CreateCmdBuf(numBuffers int) gfx.CmdBuf {
	return &mockCmdBuf{}
}

func (d *mockDevice) CreateShader(info *gfx.ShaderInfo, data []byte) (gfx.Shader, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shadersCreated++
	return &mockShader{info: *info}, nil
}

func (d *mockDevice) CreateRenderPipeline(info *gfx.RenderPipelineInfo) (gfx.RenderPipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failPipelines {
		return nil, errors.New("bad descriptor layout")
	}
	d.renderPipelines++
	return &mockRenderPipeline{}, nil
}

func (d *mockDevice) CreateComputePipeline(info *gfx.ComputePipelineInfo) (gfx.ComputePipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failPipelines {
		return nil, errors.New("bad descriptor layout")
	}
	d.computePipelines++
	return &mockComputePipeline{}, nil
}

func (d *mockDevice) Execute(cb gfx.CmdBuf) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if mc, ok := cb.(*mockCmdBuf); ok {
		if !mc.closed {
			d.openSubmits++
		}
		mc.submits++
	}
	d.executed = append(d.executed, cb)
}

type mockSwapChain struct {
	numBuffers int
	waits      int
}

func (s *mockSwapChain) NumBuffers() int    { return s.numBuffers }
func (s *mockSwapChain) WaitForLastFrame()  { s.waits++ }

var _ gfx.SwapChain = &mockSwapChain{}
