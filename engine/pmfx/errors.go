package pmfx

import (
	"fmt"

	"github.com/Carmen-Shannon/pmfx-go/gfx"
)

func errNotFound(kind, name string) error {
	return fmt.Errorf("pmfx: %s %q: %w", kind, name, gfx.ErrNotFound)
}

func (p *pmfxImpl) LogError(view, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logErrorLocked(view, msg)
}

func (p *pmfxImpl) logErrorLocked(view, msg string) {
	for _, existing := range p.viewErrors[view] {
		if existing == msg {
			return
		}
	}
	p.viewErrors[view] = append(p.viewErrors[view], msg)
}

func (p *pmfxImpl) Errors() map[string][]string {
	p.mu.Lock()
	defer p.mu.Unlock()

	drained := p.viewErrors
	p.viewErrors = map[string][]string{}
	return drained
}
