package wgpukit

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/pmfx-go/gfx"
	"github.com/cogentcore/webgpu/wgpu"
)

type cmdBufImpl struct {
	mu *sync.Mutex

	device *wgpu.Device
	queue  *wgpu.Queue

	numBuffers int
	frame      int

	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder
	closed  *wgpu.CommandBuffer

	// resolves remembers recorded resolve passes so submit can re-encode
	// them; native command buffers are single-use while transition and
	// resolve buffers are re-submitted every frame.
	resolves []resolveOp

	currentCompute *wgpu.ComputePipeline

	// Push constants are emulated with small per-slot uniform buffers,
	// written through the queue at record time.
	pushBuffers map[uint32]*wgpu.Buffer
}

var _ gfx.CmdBuf = &cmdBufImpl{}

type resolveOp struct {
	view        *wgpu.TextureView
	resolveView *wgpu.TextureView
}

// encodeResolve records an attachment-only pass that loads the MSAA image
// and writes the resolved result to the paired single-sample resource.
func encodeResolve(encoder *wgpu.CommandEncoder, op resolveOp) {
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:          op.view,
				ResolveTarget: op.resolveView,
				LoadOp:        wgpu.LoadOpLoad,
				StoreOp:       wgpu.StoreOpDiscard,
			},
		},
	})
	pass.End()
}

func (c *cmdBufImpl) Reset(sc gfx.SwapChain) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.frame = (c.frame + 1) % c.numBuffers

	if c.closed != nil {
		c.closed.Release()
		c.closed = nil
	}
	if c.encoder != nil {
		c.encoder.Release()
	}

	encoder, err := c.device.CreateCommandEncoder(nil)
	if err != nil {
		panic(err)
	}
	c.encoder = encoder
	c.pass = nil
	c.resolves = nil
	c.currentCompute = nil
}

func (c *cmdBufImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.encoder == nil {
		return fmt.Errorf("wgpukit: command buffer closed without an open encoder")
	}
	if c.pass != nil {
		c.pass.End()
		c.pass = nil
	}

	commandBuffer, err := c.encoder.Finish(nil)
	c.encoder.Release()
	c.encoder = nil
	if err != nil {
		return err
	}
	c.closed = commandBuffer
	return nil
}

// submit hands the closed command buffer to the queue. Called from
// Device.Execute; submission order across command buffers is execution order.
func (c *cmdBufImpl) submit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed == nil {
		return
	}
	c.queue.Submit(c.closed)
	c.closed.Release()
	c.closed = nil

	// Submission consumes the native buffer, but the engine re-submits
	// transition and resolve buffers every frame. Rebuild a closed buffer
	// replaying the recorded resolves so the next submission is not a no-op.
	encoder, err := c.device.CreateCommandEncoder(nil)
	if err != nil {
		panic(err)
	}
	for _, op := range c.resolves {
		encodeResolve(encoder, op)
	}
	rebuilt, err := encoder.Finish(nil)
	encoder.Release()
	if err != nil {
		panic(err)
	}
	c.closed = rebuilt
}

func (c *cmdBufImpl) TransitionBarrier(barrier *gfx.TransitionBarrier) {
	// WebGPU synchronises resource access internally; recorded transitions
	// carry scheduling intent only and need no native encoding.
}

func (c *cmdBufImpl) TransitionBarrierSubresource(barrier *gfx.TransitionBarrier, sub gfx.Subresource) {
}

func (c *cmdBufImpl) ResolveTextureSubresource(tex gfx.Texture, mip int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := tex.(*textureImpl)
	if !ok || !t.IsResolvable() {
		return fmt.Errorf("wgpukit: texture has no resolve resource: %w", gfx.ErrResolveIncompatible)
	}
	if c.encoder == nil {
		return fmt.Errorf("wgpukit: resolve recorded without an open encoder")
	}

	op := resolveOp{view: t.view, resolveView: t.resolveView}
	encodeResolve(c.encoder, op)
	c.resolves = append(c.resolves, op)
	return nil
}

func (c *cmdBufImpl) BeginRenderPass(pass gfx.RenderPass) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rp, ok := pass.(*renderPassImpl)
	if !ok || c.encoder == nil {
		return
	}
	c.pass = c.encoder.BeginRenderPass(rp.desc)
}

func (c *cmdBufImpl) EndRenderPass() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pass == nil {
		return
	}
	c.pass.End()
	c.pass = nil
}

func (c *cmdBufImpl) SetViewport(vp *gfx.Viewport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pass == nil {
		return
	}
	c.pass.SetViewport(vp.X, vp.Y, vp.Width, vp.Height, vp.MinDepth, vp.MaxDepth)
}

func (c *cmdBufImpl) SetScissor(rect *gfx.ScissorRect) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pass == nil {
		return
	}
	c.pass.SetScissorRect(
		uint32(rect.Left),
		uint32(rect.Top),
		uint32(rect.Right-rect.Left),
		uint32(rect.Bottom-rect.Top),
	)
}

func (c *cmdBufImpl) SetRenderPipeline(pipeline gfx.RenderPipeline) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := pipeline.(*renderPipelineImpl)
	if !ok || c.pass == nil {
		return
	}
	c.pass.SetPipeline(p.pipeline)
}

func (c *cmdBufImpl) SetComputePipeline(pipeline gfx.ComputePipeline) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := pipeline.(*computePipelineImpl)
	if !ok {
		return
	}
	c.currentCompute = p.pipeline
}

func (c *cmdBufImpl) PushConstants(slot uint32, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pushBuffers == nil {
		c.pushBuffers = make(map[uint32]*wgpu.Buffer)
	}
	buf, ok := c.pushBuffers[slot]
	if !ok {
		var err error
		buf, err = c.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Push Constants",
			Size:  256,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return
		}
		c.pushBuffers[slot] = buf
	}
	c.queue.WriteBuffer(buf, 0, data)
}

func (c *cmdBufImpl) Draw(vertexCount, instanceCount uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pass == nil {
		return
	}
	c.pass.Draw(vertexCount, instanceCount, 0, 0)
}

func (c *cmdBufImpl) Dispatch(groupsX, groupsY, groupsZ uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.encoder == nil || c.currentCompute == nil {
		return
	}

	pass := c.encoder.BeginComputePass(nil)
	pass.SetPipeline(c.currentCompute)
	pass.DispatchWorkgroups(groupsX, groupsY, groupsZ)
	pass.End()
}
