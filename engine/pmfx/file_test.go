package pmfx

import (
	"testing"

	"github.com/Carmen-Shannon/pmfx-go/gfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMergeLastWins(t *testing.T) {
	p, _, _ := newTestPmfx(t, basicDoc())

	second := t.TempDir()
	writeDoc(t, second, &DocFile{
		Textures: map[string]TextureInfo{
			"gbuffer": {
				Width:  512,
				Height: 512,
				Format: gfx.FormatRGBA8n,
				Usage:  gfx.TextureUsageShaderResource | gfx.TextureUsageRenderTarget,
			},
		},
		Dependencies: []string{"shared.pmfx"},
	})
	require.NoError(t, p.Load(second))

	require.NoError(t, p.CreateTexture("gbuffer"))
	w, h, ok := p.GetTexture2DSize("gbuffer")
	require.True(t, ok)
	assert.Equal(t, uint64(512), w)
	assert.Equal(t, uint64(512), h)

	impl := p.(*pmfxImpl)
	assert.Equal(t, []string{"shared.pmfx"}, impl.merged.Dependencies)
	// Declarations only the first document carries survive the merge.
	assert.Contains(t, impl.merged.Views, "main_view")
}

func TestLoadSameFolderTwiceTracksItOnce(t *testing.T) {
	p, _, folder := newTestPmfx(t, basicDoc())
	require.NoError(t, p.Load(folder))

	// Reload re-reads every loaded folder; a repeated Load must not make it
	// re-merge the same document twice.
	impl := p.(*pmfxImpl)
	assert.Equal(t, []string{folder}, impl.loadedFolders)
}

func TestLoadMissingDocument(t *testing.T) {
	p := NewPmfx(newMockDevice())
	assert.Error(t, p.Load(t.TempDir()))
}

func TestFillHashesContentAddressed(t *testing.T) {
	a := &DocFile{Textures: map[string]TextureInfo{
		"t": {Width: 128, Height: 128, Format: gfx.FormatRGBA8n},
	}}
	b := &DocFile{Textures: map[string]TextureInfo{
		"t": {Width: 128, Height: 128, Format: gfx.FormatRGBA8n},
	}}
	c := &DocFile{Textures: map[string]TextureInfo{
		"t": {Width: 256, Height: 128, Format: gfx.FormatRGBA8n},
	}}
	a.fillHashes()
	b.fillHashes()
	c.fillHashes()

	assert.NotZero(t, a.Textures["t"].Hash)
	assert.Equal(t, a.Textures["t"].Hash, b.Textures["t"].Hash)
	assert.NotEqual(t, a.Textures["t"].Hash, c.Textures["t"].Hash)

	// Explicit hashes are left alone.
	d := &DocFile{Textures: map[string]TextureInfo{
		"t": {Width: 128, Hash: 42},
	}}
	d.fillHashes()
	assert.Equal(t, Version(42), d.Textures["t"].Hash)
}

func TestDeviceTextureInfoVolume(t *testing.T) {
	info := TextureInfo{Width: 64, Height: 64, Depth: 8, Format: gfx.FormatRGBA8n}
	device := info.deviceTextureInfo(nil)
	assert.Equal(t, gfx.TextureType3D, device.TexType)
	assert.Equal(t, gfx.ResourceStateShaderResource, device.InitialState)
}
