package pmfx

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/pmfx-go/gfx"
)

// Version is a content hash identifying one revision of a declared artifact
// (texture, view, shader or pipeline). Reloads compare versions, never
// pointers, to decide what must be rebuilt.
type Version uint64

// TextureSizeRatio sizes a texture relative to a named window. Scale is
// applied per dimension; results are clamped so each dimension is at least
// the sample count.
type TextureSizeRatio struct {
	Window string  `json:"window"`
	Scale  float32 `json:"scale"`
}

// TextureInfo is a pmfx texture declaration. Fixed-size textures carry
// explicit dimensions; ratio textures derive them from a tracked window.
type TextureInfo struct {
	Ratio       *TextureSizeRatio `json:"ratio,omitempty"`
	Width       uint64            `json:"width,omitempty"`
	Height      uint64            `json:"height,omitempty"`
	Depth       uint32            `json:"depth,omitempty"`
	MipLevels   uint32            `json:"mip_levels,omitempty"`
	ArrayLevels uint32            `json:"array_levels,omitempty"`
	Samples     uint32            `json:"samples,omitempty"`
	Format      gfx.Format        `json:"format"`
	Usage       gfx.TextureUsage  `json:"usage,omitempty"`
	Hash        Version           `json:"hash,omitempty"`
}

// ViewInfo is a pmfx view declaration: the render targets, clears and camera
// a graph node renders with.
type ViewInfo struct {
	RenderTarget []string        `json:"render_target,omitempty"`
	DepthStencil []string        `json:"depth_stencil,omitempty"`
	Viewport     []float32       `json:"viewport,omitempty"`
	Scissor      []float32       `json:"scissor,omitempty"`
	ClearColor   *gfx.ClearColor `json:"clear_colour,omitempty"`
	ClearDepth   *float32        `json:"clear_depth,omitempty"`
	ClearStencil *uint8          `json:"clear_stencil,omitempty"`
	Camera       string          `json:"camera,omitempty"`
	Hash         Version         `json:"hash,omitempty"`
}

// GraphViewInfo is one node of a render graph: the view it renders through,
// the pipelines it needs, the registered render function that records its
// draws, and the nodes it must run after.
type GraphViewInfo struct {
	View      string   `json:"view"`
	Pipelines []string `json:"pipelines,omitempty"`
	Function  string   `json:"function,omitempty"`
	DependsOn []string `json:"depends_on,omitempty"`
}

// Pipeline is a pmfx pipeline declaration for a single permutation. VS/PS
// describe a render pipeline; CS describes a compute pipeline and excludes
// the others.
type Pipeline struct {
	VS                *string              `json:"vs,omitempty"`
	PS                *string              `json:"ps,omitempty"`
	CS                *string              `json:"cs,omitempty"`
	VertexLayout      gfx.InputLayout      `json:"vertex_layout,omitempty"`
	DescriptorLayout  gfx.DescriptorLayout `json:"descriptor_layout"`
	DepthStencilState *string              `json:"depth_stencil_state,omitempty"`
	RasterState       *string              `json:"raster_state,omitempty"`
	Topology          gfx.Topology         `json:"topology,omitempty"`
	Hash              Version              `json:"hash,omitempty"`
}

// DocFile is one deserialized pmfx document. Documents from multiple loads
// are merged key-by-key with last-loaded-wins semantics.
type DocFile struct {
	Shaders            map[string]Version              `json:"shaders,omitempty"`
	Pipelines          map[string]map[string]Pipeline  `json:"pipelines,omitempty"`
	DepthStencilStates map[string]gfx.DepthStencilInfo `json:"depth_stencil_states,omitempty"`
	RasterStates       map[string]gfx.RasterInfo       `json:"raster_states,omitempty"`
	Textures           map[string]TextureInfo          `json:"textures,omitempty"`
	Views              map[string]ViewInfo             `json:"views,omitempty"`
	RenderGraphs       map[string]map[string]GraphViewInfo `json:"render_graphs,omitempty"`
	Dependencies       []string                        `json:"dependencies,omitempty"`
}

const docFileName = "info.json"

// loadDocFile reads and deserializes the pmfx document inside folder,
// filling in any declaration hashes the build tool left at zero.
func loadDocFile(folder string) (*DocFile, error) {
	raw, err := os.ReadFile(filepath.Join(folder, docFileName))
	if err != nil {
		return nil, fmt.Errorf("pmfx: failed to read document in %s: %w", folder, err)
	}
	var doc DocFile
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("pmfx: failed to parse document in %s: %w", folder, err)
	}
	doc.fillHashes()
	return &doc, nil
}

// fillHashes assigns content-hash versions to declarations that do not carry
// an explicit hash, so reload diffing always has a version to compare.
func (d *DocFile) fillHashes() {
	for name, tex := range d.Textures {
		if tex.Hash == 0 {
			tex.Hash = hashOf(tex)
			d.Textures[name] = tex
		}
	}
	for name, view := range d.Views {
		if view.Hash == 0 {
			view.Hash = hashOf(view)
			d.Views[name] = view
		}
	}
	for name, permutations := range d.Pipelines {
		for mask, pipeline := range permutations {
			if pipeline.Hash == 0 {
				pipeline.Hash = hashOf(pipeline)
				d.Pipelines[name][mask] = pipeline
			}
		}
	}
}

// merge folds src into d with last-loaded-wins per key.
func (d *DocFile) merge(src *DocFile) {
	if d.Shaders == nil {
		d.Shaders = map[string]Version{}
	}
	for k, v := range src.Shaders {
		d.Shaders[k] = v
	}
	if d.Pipelines == nil {
		d.Pipelines = map[string]map[string]Pipeline{}
	}
	for k, v := range src.Pipelines {
		d.Pipelines[k] = v
	}
	if d.DepthStencilStates == nil {
		d.DepthStencilStates = map[string]gfx.DepthStencilInfo{}
	}
	for k, v := range src.DepthStencilStates {
		d.DepthStencilStates[k] = v
	}
	if d.RasterStates == nil {
		d.RasterStates = map[string]gfx.RasterInfo{}
	}
	for k, v := range src.RasterStates {
		d.RasterStates[k] = v
	}
	if d.Textures == nil {
		d.Textures = map[string]TextureInfo{}
	}
	for k, v := range src.Textures {
		d.Textures[k] = v
	}
	if d.Views == nil {
		d.Views = map[string]ViewInfo{}
	}
	for k, v := range src.Views {
		d.Views[k] = v
	}
	if d.RenderGraphs == nil {
		d.RenderGraphs = map[string]map[string]GraphViewInfo{}
	}
	for k, v := range src.RenderGraphs {
		d.RenderGraphs[k] = v
	}
	d.Dependencies = append(d.Dependencies, src.Dependencies...)
}

// deviceTextureInfo resolves a declaration into a concrete device texture
// description, deriving ratio-sized dimensions from the named window.
// Each derived dimension is clamped to at least the sample count so
// multisampled ratio targets stay valid at tiny window sizes.
func (t *TextureInfo) deviceTextureInfo(windowSizes map[string][2]uint32) gfx.TextureInfo {
	width, height := t.Width, t.Height
	if t.Ratio != nil {
		if size, ok := windowSizes[t.Ratio.Window]; ok {
			width = uint64(float32(size[0]) * t.Ratio.Scale)
			height = uint64(float32(size[1]) * t.Ratio.Scale)
		}
		samples := uint64(t.Samples)
		if samples == 0 {
			samples = 1
		}
		if width < samples {
			width = samples
		}
		if height < samples {
			height = samples
		}
	}

	texType := gfx.TextureType2D
	if t.Depth > 1 {
		texType = gfx.TextureType3D
	}

	return gfx.TextureInfo{
		TexType:      texType,
		Width:        width,
		Height:       height,
		Depth:        t.Depth,
		MipLevels:    t.MipLevels,
		ArrayLevels:  t.ArrayLevels,
		Samples:      t.Samples,
		Format:       t.Format,
		InitialState: gfx.ResourceStateShaderResource,
		Usage:        t.Usage,
	}
}

// hashOf derives a stable content hash from a declaration's serialized form.
func hashOf(v any) Version {
	raw, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	h := fnv.New64a()
	h.Write(raw)
	return Version(h.Sum64())
}
