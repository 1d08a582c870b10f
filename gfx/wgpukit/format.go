package wgpukit

import (
	"fmt"

	"github.com/Carmen-Shannon/pmfx-go/gfx"
	"github.com/cogentcore/webgpu/wgpu"
)

func toWGPUTextureFormat(f gfx.Format) (wgpu.TextureFormat, error) {
	switch f {
	case gfx.FormatR16u:
		return wgpu.TextureFormatR16Uint, nil
	case gfx.FormatR16i:
		return wgpu.TextureFormatR16Sint, nil
	case gfx.FormatR16f:
		return wgpu.TextureFormatR16Float, nil
	case gfx.FormatR32u:
		return wgpu.TextureFormatR32Uint, nil
	case gfx.FormatR32i:
		return wgpu.TextureFormatR32Sint, nil
	case gfx.FormatR32f:
		return wgpu.TextureFormatR32Float, nil
	case gfx.FormatRG32f:
		return wgpu.TextureFormatRG32Float, nil
	case gfx.FormatRGBA8n:
		return wgpu.TextureFormatRGBA8Unorm, nil
	case gfx.FormatRGBA8nSRGB:
		return wgpu.TextureFormatRGBA8UnormSrgb, nil
	case gfx.FormatBGRA8n:
		return wgpu.TextureFormatBGRA8Unorm, nil
	case gfx.FormatRGBA16f:
		return wgpu.TextureFormatRGBA16Float, nil
	case gfx.FormatRGBA32f:
		return wgpu.TextureFormatRGBA32Float, nil
	case gfx.FormatD32f:
		return wgpu.TextureFormatDepth32Float, nil
	case gfx.FormatD32fS8x:
		return wgpu.TextureFormatDepth32FloatStencil8, nil
	case gfx.FormatD24nS8u:
		return wgpu.TextureFormatDepth24PlusStencil8, nil
	default:
		return wgpu.TextureFormatUndefined, fmt.Errorf("wgpukit: no texture format for %d", f)
	}
}

func toWGPUVertexFormat(f gfx.Format) (wgpu.VertexFormat, error) {
	switch f {
	case gfx.FormatR32u:
		return wgpu.VertexFormatUint32, nil
	case gfx.FormatR32i:
		return wgpu.VertexFormatSint32, nil
	case gfx.FormatR32f:
		return wgpu.VertexFormatFloat32, nil
	case gfx.FormatRG32f:
		return wgpu.VertexFormatFloat32x2, nil
	case gfx.FormatRGB32f:
		return wgpu.VertexFormatFloat32x3, nil
	case gfx.FormatRGBA32f:
		return wgpu.VertexFormatFloat32x4, nil
	case gfx.FormatRGBA16f:
		return wgpu.VertexFormatFloat16x4, nil
	case gfx.FormatRGBA8n:
		return wgpu.VertexFormatUnorm8x4, nil
	default:
		return wgpu.VertexFormat(0), fmt.Errorf("wgpukit: no vertex format for %d", f)
	}
}

func toWGPUTextureUsage(u gfx.TextureUsage) wgpu.TextureUsage {
	usage := wgpu.TextureUsageCopyDst
	if u&gfx.TextureUsageShaderResource != 0 {
		usage |= wgpu.TextureUsageTextureBinding
	}
	if u&gfx.TextureUsageRenderTarget != 0 || u&gfx.TextureUsageDepthStencil != 0 {
		usage |= wgpu.TextureUsageRenderAttachment
	}
	if u&gfx.TextureUsageUnorderedAccess != 0 {
		usage |= wgpu.TextureUsageStorageBinding
	}
	return usage
}

func toWGPUTextureDimension(t gfx.TextureType) wgpu.TextureDimension {
	switch t {
	case gfx.TextureType1D:
		return wgpu.TextureDimension1D
	case gfx.TextureType3D:
		return wgpu.TextureDimension3D
	default:
		return wgpu.TextureDimension2D
	}
}

func toWGPUTopology(t gfx.Topology) wgpu.PrimitiveTopology {
	switch t {
	case gfx.TopologyTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	case gfx.TopologyLineList:
		return wgpu.PrimitiveTopologyLineList
	case gfx.TopologyLineStrip:
		return wgpu.PrimitiveTopologyLineStrip
	case gfx.TopologyPointList:
		return wgpu.PrimitiveTopologyPointList
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

func toWGPUCullMode(c gfx.CullMode) wgpu.CullMode {
	switch c {
	case gfx.CullModeFront:
		return wgpu.CullModeFront
	case gfx.CullModeBack:
		return wgpu.CullModeBack
	default:
		return wgpu.CullModeNone
	}
}

func toWGPUCompareFunction(c gfx.ComparisonFunc) wgpu.CompareFunction {
	switch c {
	case gfx.ComparisonFuncNever:
		return wgpu.CompareFunctionNever
	case gfx.ComparisonFuncLess:
		return wgpu.CompareFunctionLess
	case gfx.ComparisonFuncEqual:
		return wgpu.CompareFunctionEqual
	case gfx.ComparisonFuncLessEqual:
		return wgpu.CompareFunctionLessEqual
	case gfx.ComparisonFuncGreater:
		return wgpu.CompareFunctionGreater
	case gfx.ComparisonFuncNotEqual:
		return wgpu.CompareFunctionNotEqual
	case gfx.ComparisonFuncGreaterEqual:
		return wgpu.CompareFunctionGreaterEqual
	default:
		return wgpu.CompareFunctionAlways
	}
}
