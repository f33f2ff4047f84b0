package lifecycle

import "NeighborGuard/internal/models"

// Engine decides the status a reaction moves an event to. It holds no state
// beyond the read-only catalog and is safe for concurrent use.
type Engine struct {
	catalog *Catalog
}

func NewEngine(catalog *Catalog) *Engine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Engine{catalog: catalog}
}

// Catalog 返回引擎使用的配置
func (e *Engine) Catalog() *Catalog { return e.catalog }

// Resolve returns the new status for (current, code), or ok=false when the
// reaction causes no change. Non-terminal candidates must strictly outrank
// current; terminal resolutions always apply.
func (e *Engine) Resolve(current models.EventStatus, code ReactionCode) (next models.EventStatus, ok bool) {
	candidate, found := e.catalog.Resolution(code)
	if !found {
		return "", false
	}
	if candidate.IsTerminalResolution() {
		return candidate, true
	}
	if e.catalog.Rank(candidate) > e.catalog.Rank(current) {
		return candidate, true
	}
	return "", false
}
