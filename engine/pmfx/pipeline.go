package pmfx

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Carmen-Shannon/pmfx-go/gfx"
)

func (p *pmfxImpl) CreatePipeline(name string, pass gfx.RenderPass) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.createPipelineLocked(name, pass)
}

// createPipelineLocked builds every permutation of a declared pipeline.
// Render permutations are keyed under the pass's format hash; compute
// permutations are pass-independent and stored once per name. Permutations
// already built from the current declaration version are skipped.
func (p *pmfxImpl) createPipelineLocked(name string, pass gfx.RenderPass) error {
	permutations, ok := p.merged.Pipelines[name]
	if !ok {
		return errNotFound("pipeline", name)
	}

	for maskKey, pipeline := range permutations {
		mask, err := parsePermutationMask(maskKey)
		if err != nil {
			log.Printf("[pmfx] pipeline %s: bad permutation mask %q, skipping", name, maskKey)
			continue
		}

		if pipeline.CS != nil {
			if existing, built := p.computePipelines[name]; built && existing.hash == pipeline.Hash {
				continue
			}
			cs, sErr := p.shaderLocked(name, *pipeline.CS, gfx.ShaderTypeCompute)
			if sErr != nil {
				return sErr
			}
			pso, cErr := p.device.CreateComputePipeline(&gfx.ComputePipelineInfo{
				CS:               cs,
				DescriptorLayout: pipeline.DescriptorLayout,
			})
			if cErr != nil {
				return fmt.Errorf("pmfx: failed to create compute pipeline %s: %w", name, cErr)
			}
			p.computePipelines[name] = computePipelineEntry{hash: pipeline.Hash, pipeline: pso}
			continue
		}

		if pass == nil {
			return fmt.Errorf("pmfx: render pipeline %s requires a target pass", name)
		}
		formatHash := pass.FormatHash()
		if existing, built := p.renderPipelineEntryLocked(formatHash, name, mask); built && existing.hash == pipeline.Hash {
			continue
		}

		if pipeline.VS == nil {
			return fmt.Errorf("pmfx: render pipeline %s has no vertex shader", name)
		}
		vs, sErr := p.shaderLocked(name, *pipeline.VS, gfx.ShaderTypeVertex)
		if sErr != nil {
			return sErr
		}
		var fs gfx.Shader
		if pipeline.PS != nil {
			fs, sErr = p.shaderLocked(name, *pipeline.PS, gfx.ShaderTypeFragment)
			if sErr != nil {
				return sErr
			}
		}

		pso, cErr := p.device.CreateRenderPipeline(&gfx.RenderPipelineInfo{
			VS:               vs,
			FS:               fs,
			InputLayout:      pipeline.VertexLayout,
			DescriptorLayout: pipeline.DescriptorLayout,
			RasterInfo:       p.rasterStateLocked(pipeline.RasterState),
			DepthStencilInfo: p.depthStencilStateLocked(pipeline.DepthStencilState),
			Topology:         pipeline.Topology,
			Pass:             pass,
		})
		if cErr != nil {
			return fmt.Errorf("pmfx: failed to create render pipeline %s: %w", name, cErr)
		}

		if p.renderPipelines[formatHash] == nil {
			p.renderPipelines[formatHash] = map[string]map[uint32]renderPipelineEntry{}
		}
		if p.renderPipelines[formatHash][name] == nil {
			p.renderPipelines[formatHash][name] = map[uint32]renderPipelineEntry{}
		}
		p.renderPipelines[formatHash][name][mask] = renderPipelineEntry{hash: pipeline.Hash, pipeline: pso}
	}
	return nil
}

// shaderLocked returns a cached shader object, loading and creating it from
// the pipeline's source folder on first use.
func (p *pmfxImpl) shaderLocked(pipelineName, filename string, shaderType gfx.ShaderType) (gfx.Shader, error) {
	if shader, ok := p.shaders[filename]; ok {
		return shader, nil
	}

	folder, ok := p.pmfxFolders[pipelineName]
	if !ok {
		return nil, fmt.Errorf("pmfx: pipeline %s has no source folder", pipelineName)
	}
	data, err := os.ReadFile(filepath.Join(folder, filename))
	if err != nil {
		return nil, fmt.Errorf("pmfx: failed to read shader %s: %w", filename, err)
	}

	shader, err := p.device.CreateShader(&gfx.ShaderInfo{Type: shaderType}, data)
	if err != nil {
		return nil, fmt.Errorf("pmfx: failed to create shader %s: %w", filename, err)
	}
	p.shaders[filename] = shader
	p.shaderVersions[filename] = p.merged.Shaders[filename]
	return shader, nil
}

func (p *pmfxImpl) rasterStateLocked(name *string) gfx.RasterInfo {
	if name == nil {
		return gfx.RasterInfo{}
	}
	state, ok := p.merged.RasterStates[*name]
	if !ok {
		log.Printf("[pmfx] raster state %s not found, using defaults", *name)
		return gfx.RasterInfo{}
	}
	return state
}

func (p *pmfxImpl) depthStencilStateLocked(name *string) gfx.DepthStencilInfo {
	if name == nil {
		return gfx.DepthStencilInfo{}
	}
	state, ok := p.merged.DepthStencilStates[*name]
	if !ok {
		log.Printf("[pmfx] depth stencil state %s not found, using defaults", *name)
		return gfx.DepthStencilInfo{}
	}
	return state
}

func (p *pmfxImpl) renderPipelineEntryLocked(formatHash uint64, name string, mask uint32) (renderPipelineEntry, bool) {
	byName, ok := p.renderPipelines[formatHash]
	if !ok {
		return renderPipelineEntry{}, false
	}
	byMask, ok := byName[name]
	if !ok {
		return renderPipelineEntry{}, false
	}
	entry, ok := byMask[mask]
	return entry, ok
}

func (p *pmfxImpl) GetRenderPipeline(name string, formatHash uint64) (gfx.RenderPipeline, bool) {
	return p.GetRenderPipelinePermutation(name, 0, formatHash)
}

func (p *pmfxImpl) GetRenderPipelinePermutation(name string, mask uint32, formatHash uint64) (gfx.RenderPipeline, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.renderPipelineEntryLocked(formatHash, name, mask)
	if !ok {
		return nil, false
	}
	return entry.pipeline, true
}

func (p *pmfxImpl) GetComputePipeline(name string) (gfx.ComputePipeline, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.computePipelines[name]
	if !ok {
		return nil, false
	}
	return entry.pipeline, true
}

// parsePermutationMask interprets a pipeline permutation map key. The
// default permutation may be declared with an empty key.
func parsePermutationMask(key string) (uint32, error) {
	if key == "" {
		return 0, nil
	}
	mask, err := strconv.ParseUint(key, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(mask), nil
}
