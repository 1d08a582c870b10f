package wgpukit

import (
	"github.com/Carmen-Shannon/pmfx-go/gfx"
	"github.com/cogentcore/webgpu/wgpu"
)

type textureImpl struct {
	info gfx.TextureInfo

	tex  *wgpu.Texture
	view *wgpu.TextureView

	// Present only for multisampled shader-resource textures.
	resolveTex  *wgpu.Texture
	resolveView *wgpu.TextureView

	// Descriptor heap slot indices, -1 when the texture has no view of
	// that class.
	srvIndex        int
	resolveSRVIndex int
	rtvIndex        int
	dsvIndex        int
}

var _ gfx.Texture = &textureImpl{}

func (t *textureImpl) IsResolvable() bool {
	return t.resolveTex != nil
}

// ShaderResourceIndex returns the shader-visible descriptor slot of the
// texture: the resolve resource's slot for multisampled textures, since
// shader reads go through the resolved copy.
//
// Returns:
//   - int: the slot index, or -1 when the texture is not shader visible
func (t *textureImpl) ShaderResourceIndex() int {
	if t.resolveSRVIndex >= 0 {
		return t.resolveSRVIndex
	}
	return t.srvIndex
}

// ShaderView returns the texture view shaders should sample, preferring the
// resolved copy of a multisampled texture.
//
// Returns:
//   - *wgpu.TextureView: the shader-facing view
func (t *textureImpl) ShaderView() *wgpu.TextureView {
	if t.resolveView != nil {
		return t.resolveView
	}
	return t.view
}
