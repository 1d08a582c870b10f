package pmfx

import (
	"log"
	"time"

	"github.com/Carmen-Shannon/pmfx-go/engine/reloader"
	"github.com/Carmen-Shannon/pmfx-go/gfx"
)

func (p *pmfxImpl) NewFrame(sc gfx.SwapChain) {
	if p.prof != nil {
		p.prof.Tick()
	}

	if p.reloader != nil && p.reloader.State() == reloader.StateAvailable {
		// Destructive rebuild ahead: the GPU must be idle before textures,
		// views or pipelines are replaced under it.
		sc.WaitForLastFrame()
		if p.reloader.Begin() {
			start := time.Now()
			if err := p.Reload(); err != nil {
				log.Printf("[pmfx] reload failed: %v", err)
				p.LogError("", "reload failed: "+err.Error())
			}
			p.reloader.Complete()
			if p.prof != nil {
				p.prof.ReloadCompleted(time.Since(start))
			}
		}
	}

	p.Reset(sc)
	p.device.CleanUpResources(sc)
}

func (p *pmfxImpl) Reset(sc gfx.SwapChain) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, name := range p.executeOrder {
		view, ok := p.views[name]
		if !ok {
			continue
		}
		view.mu.Lock()
		view.CmdBuf.Reset(sc)
		view.mu.Unlock()
	}
}

func (p *pmfxImpl) Execute() {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Strictly sequential: the compiled order already encodes every
	// ordering dependency, so submission order is execution order.
	for _, name := range p.executeOrder {
		if cb, ok := p.barriers[name]; ok {
			p.device.Execute(cb)
			continue
		}
		view, ok := p.views[name]
		if !ok {
			continue
		}
		view.mu.Lock()
		if err := view.CmdBuf.Close(); err != nil {
			log.Printf("[pmfx] failed to close command buffer for view %s: %v", name, err)
			p.logErrorLocked(name, err.Error())
			view.mu.Unlock()
			continue
		}
		p.device.Execute(view.CmdBuf)
		view.mu.Unlock()
	}
}
