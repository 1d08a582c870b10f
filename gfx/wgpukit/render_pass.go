package wgpukit

import (
	"fmt"

	"github.com/Carmen-Shannon/pmfx-go/gfx"
	"github.com/cogentcore/webgpu/wgpu"
)

type renderPassImpl struct {
	desc        *wgpu.RenderPassDescriptor
	formatHash  uint64
	sampleCount uint32
	rtFormats   []gfx.Format
	dsFormat    gfx.Format
}

var _ gfx.RenderPass = &renderPassImpl{}

func (p *renderPassImpl) FormatHash() uint64 {
	return p.formatHash
}

func newRenderPass(info *gfx.RenderPassInfo) (*renderPassImpl, error) {
	samples := uint32(1)
	rtFormats := make([]gfx.Format, 0, len(info.RenderTargets))
	colorAttachments := make([]wgpu.RenderPassColorAttachment, 0, len(info.RenderTargets))

	for i, rt := range info.RenderTargets {
		t, ok := rt.(*textureImpl)
		if !ok {
			return nil, fmt.Errorf("wgpukit: render target %d is not a wgpukit texture", i)
		}

		ts := t.info.Samples
		if ts == 0 {
			ts = 1
		}
		if i == 0 {
			samples = ts
		} else if ts != samples {
			return nil, fmt.Errorf("wgpukit: render target sample count mismatch: target %d has %d samples, expected %d", i, ts, samples)
		}
		rtFormats = append(rtFormats, t.info.Format)

		attachment := wgpu.RenderPassColorAttachment{
			View:    t.view,
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}
		if info.RTClear != nil {
			attachment.LoadOp = wgpu.LoadOpClear
			attachment.ClearValue = wgpu.Color{
				R: float64(info.RTClear.R),
				G: float64(info.RTClear.G),
				B: float64(info.RTClear.B),
				A: float64(info.RTClear.A),
			}
		}
		if info.Resolve && t.resolveView != nil {
			attachment.ResolveTarget = t.resolveView
		}
		if info.Discard || attachment.ResolveTarget != nil {
			attachment.StoreOp = wgpu.StoreOpDiscard
		}
		colorAttachments = append(colorAttachments, attachment)
	}

	dsFormat := gfx.FormatUnknown
	var depthStencil *wgpu.RenderPassDepthStencilAttachment
	if info.DepthStencil != nil {
		t, ok := info.DepthStencil.(*textureImpl)
		if !ok {
			return nil, fmt.Errorf("wgpukit: depth stencil target is not a wgpukit texture")
		}
		ts := t.info.Samples
		if ts == 0 {
			ts = 1
		}
		if len(colorAttachments) > 0 && ts != samples {
			return nil, fmt.Errorf("wgpukit: depth stencil sample count mismatch: has %d samples, expected %d", ts, samples)
		}
		if len(colorAttachments) == 0 {
			samples = ts
		}
		dsFormat = t.info.Format

		depthStencil = &wgpu.RenderPassDepthStencilAttachment{
			View:         t.view,
			DepthLoadOp:  wgpu.LoadOpLoad,
			DepthStoreOp: wgpu.StoreOpStore,
		}
		if info.DSClear != nil && info.DSClear.Depth != nil {
			depthStencil.DepthLoadOp = wgpu.LoadOpClear
			depthStencil.DepthClearValue = *info.DSClear.Depth
		}
		if info.DSClear != nil && info.DSClear.Stencil != nil {
			depthStencil.StencilLoadOp = wgpu.LoadOpClear
			depthStencil.StencilStoreOp = wgpu.StoreOpStore
			depthStencil.StencilClearValue = uint32(*info.DSClear.Stencil)
		}
	}

	return &renderPassImpl{
		desc: &wgpu.RenderPassDescriptor{
			ColorAttachments:       colorAttachments,
			DepthStencilAttachment: depthStencil,
		},
		formatHash:  gfx.FormatHash(samples, dsFormat, rtFormats),
		sampleCount: samples,
		rtFormats:   rtFormats,
		dsFormat:    dsFormat,
	}, nil
}
