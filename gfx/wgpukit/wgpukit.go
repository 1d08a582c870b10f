// Package wgpukit implements the gfx device capability layer on top of
// WebGPU via github.com/cogentcore/webgpu. WebGPU tracks resource hazards
// internally, so transition barriers recorded through this backend are
// validated but not translated; resolves are encoded as resolve-target
// render passes.
package wgpukit

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/pmfx-go/common"
	"github.com/Carmen-Shannon/pmfx-go/gfx"
	"github.com/cogentcore/webgpu/wgpu"
)

// Device extends the abstract gfx.Device with the surface-bound operations
// only a concrete backend can provide.
type Device interface {
	gfx.Device

	// CreateSwapChain configures the device's surface for presentation and
	// returns a swap chain over it. The device must have been built with
	// WithSurfaceDescriptor.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	//   - numBuffers: logical backbuffer count bounding frames in flight
	//
	// Returns:
	//   - SwapChain: the configured swap chain
	//   - error: an error if the device is headless or configuration fails
	CreateSwapChain(width, height, numBuffers int) (SwapChain, error)

	// Native returns the underlying wgpu device for interop with code that
	// records against WebGPU directly.
	//
	// Returns:
	//   - *wgpu.Device: the wrapped device
	Native() *wgpu.Device

	// Queue returns the device's submission queue.
	//
	// Returns:
	//   - *wgpu.Queue: the wrapped queue
	Queue() *wgpu.Queue
}

type deviceImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	shaderHeap *gfx.DescriptorHeap
	targetHeap *gfx.DescriptorHeap
	depthHeap  *gfx.DescriptorHeap
	reclaim    gfx.ReclaimQueue
}

var _ Device = &deviceImpl{}

// NewDevice creates a WebGPU-backed device. Like the surface it may later
// present to, the device is bound to the calling OS thread.
//
// Parameters:
//   - optionBuilders: optional configuration, see DeviceBuilderOption
//
// Returns:
//   - Device: the created device; panics if no suitable adapter exists
func NewDevice(optionBuilders ...DeviceBuilderOption) Device {
	runtime.LockOSThread()
	options := defaultDeviceBuilderOptions()
	for _, ob := range optionBuilders {
		ob(options)
	}

	d := &deviceImpl{
		mu:         &sync.Mutex{},
		instance:   wgpu.CreateInstance(nil),
		shaderHeap: gfx.NewDescriptorHeap(shaderHeapBase, heapIncrement, options.numShaderDescriptors),
		targetHeap: gfx.NewDescriptorHeap(targetHeapBase, heapIncrement, options.numTargetDescriptors),
		depthHeap:  gfx.NewDescriptorHeap(depthHeapBase, heapIncrement, options.numDepthDescriptors),
	}

	if options.surfaceDescriptor != nil {
		d.surface = d.instance.CreateSurface(options.surfaceDescriptor)
	}

	adapter, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: options.forceFallbackAdapter,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		panic(err)
	}
	d.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		panic(err)
	}
	d.device = device
	d.queue = device.GetQueue()

	return d
}

func (d *deviceImpl) Native() *wgpu.Device {
	return d.device
}

func (d *deviceImpl) Queue() *wgpu.Queue {
	return d.queue
}

func (d *deviceImpl) CreateSwapChain(width, height, numBuffers int) (SwapChain, error) {
	if d.surface == nil {
		return nil, fmt.Errorf("wgpukit: device was created without a surface descriptor")
	}
	// Backbuffers get render-target descriptor slots for the swap chain's
	// lifetime, one per logical buffer.
	rtvIndices := make([]int, numBuffers)
	for i := range rtvIndices {
		rtvIndices[i] = d.targetHeap.HandleIndex(d.targetHeap.Allocate())
	}

	sc := &swapChainImpl{
		mu:         &sync.Mutex{},
		surface:    d.surface,
		adapter:    d.adapter,
		device:     d.device,
		numBuffers: numBuffers,
		rtvIndices: rtvIndices,
	}
	sc.Configure(width, height)
	return sc, nil
}

func (d *deviceImpl) CreateTexture(info *gfx.TextureInfo, data []byte) (gfx.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := gfx.ValidateDataSize(info.SizeBytes(), data); err != nil {
		return nil, err
	}

	format, err := toWGPUTextureFormat(info.Format)
	if err != nil {
		return nil, err
	}

	samples := common.Coalesce(info.Samples, 1)
	mips := common.Coalesce(info.MipLevels, 1)
	depth := common.Coalesce(info.Depth, 1)

	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(info.Width),
			Height:             uint32(info.Height),
			DepthOrArrayLayers: depth,
		},
		MipLevelCount: mips,
		SampleCount:   samples,
		Dimension:     toWGPUTextureDimension(info.TexType),
		Format:        format,
		Usage:         toWGPUTextureUsage(info.Usage),
	})
	if err != nil {
		return nil, err
	}

	if data != nil {
		d.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			data,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(info.Width) * uint32(info.Format.BlockSizeBytes()),
				RowsPerImage: uint32(info.Height),
			},
			&wgpu.Extent3D{
				Width:              uint32(info.Width),
				Height:             uint32(info.Height),
				DepthOrArrayLayers: depth,
			},
		)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}

	t := &textureImpl{
		info:            *info,
		tex:             tex,
		view:            view,
		srvIndex:        -1,
		resolveSRVIndex: -1,
		rtvIndex:        -1,
		dsvIndex:        -1,
	}

	if info.Usage&gfx.TextureUsageShaderResource != 0 {
		t.srvIndex = d.shaderHeap.HandleIndex(d.shaderHeap.Allocate())
	}
	if info.Usage&gfx.TextureUsageRenderTarget != 0 {
		t.rtvIndex = d.targetHeap.HandleIndex(d.targetHeap.Allocate())
	}
	if info.Usage&gfx.TextureUsageDepthStencil != 0 {
		t.dsvIndex = d.depthHeap.HandleIndex(d.depthHeap.Allocate())
	}

	// Multisampled textures that will be sampled get a paired single-sample
	// resolve resource; shader reads go through the resolved copy.
	if samples > 1 && info.Usage&gfx.TextureUsageShaderResource != 0 {
		resolveTex, rErr := d.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "Resolve Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(info.Width),
				Height:             uint32(info.Height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: mips,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        format,
			Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
		})
		if rErr != nil {
			view.Release()
			tex.Release()
			return nil, rErr
		}
		resolveView, rvErr := resolveTex.CreateView(nil)
		if rvErr != nil {
			resolveTex.Release()
			view.Release()
			tex.Release()
			return nil, rvErr
		}
		t.resolveTex = resolveTex
		t.resolveView = resolveView
		t.resolveSRVIndex = d.shaderHeap.HandleIndex(d.shaderHeap.Allocate())
	}

	return t, nil
}

func (d *deviceImpl) DestroyTexture(tex gfx.Texture) {
	t, ok := tex.(*textureImpl)
	if !ok || t == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	srv := t.srvIndex
	resolveSRV := t.resolveSRVIndex
	rtv := t.rtvIndex
	dsv := t.dsvIndex
	view := t.view
	native := t.tex
	resolveView := t.resolveView
	resolveNative := t.resolveTex

	d.reclaim.Retire(func() {
		if view != nil {
			view.Release()
		}
		if native != nil {
			native.Release()
		}
		if resolveView != nil {
			resolveView.Release()
		}
		if resolveNative != nil {
			resolveNative.Release()
		}
		if srv >= 0 {
			d.shaderHeap.Deallocate(srv)
		}
		if resolveSRV >= 0 {
			d.shaderHeap.Deallocate(resolveSRV)
		}
		if rtv >= 0 {
			d.targetHeap.Deallocate(rtv)
		}
		if dsv >= 0 {
			d.depthHeap.Deallocate(dsv)
		}
	})
}

func (d *deviceImpl) CleanUpResources(sc gfx.SwapChain) {
	d.reclaim.CleanUp(sc.NumBuffers())
}

func (d *deviceImpl) CreateRenderPass(info *gfx.RenderPassInfo) (gfx.RenderPass, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return newRenderPass(info)
}

func (d *deviceImpl) CreateCmdBuf(numBuffers int) gfx.CmdBuf {
	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		panic(err)
	}
	return &cmdBufImpl{
		mu:         &sync.Mutex{},
		device:     d.device,
		queue:      d.queue,
		numBuffers: numBuffers,
		encoder:    encoder,
	}
}

func (d *deviceImpl) CreateShader(info *gfx.ShaderInfo, data []byte) (gfx.Shader, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entryPoint := info.EntryPoint
	if entryPoint == "" {
		entryPoint = "main"
	}
	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: entryPoint,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: string(data),
		},
	})
	if err != nil {
		return nil, err
	}
	return &shaderImpl{
		shaderType: info.Type,
		entryPoint: entryPoint,
		module:     module,
	}, nil
}

func (d *deviceImpl) CreateRenderPipeline(info *gfx.RenderPipelineInfo) (gfx.RenderPipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return newRenderPipeline(d.device, info)
}

func (d *deviceImpl) CreateComputePipeline(info *gfx.ComputePipelineInfo) (gfx.ComputePipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return newComputePipeline(d.device, info)
}

func (d *deviceImpl) Execute(cb gfx.CmdBuf) {
	c, ok := cb.(*cmdBufImpl)
	if !ok || c == nil {
		return
	}
	c.submit()
}
