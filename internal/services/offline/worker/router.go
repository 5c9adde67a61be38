package worker

import (
	"github.com/louisbranch/pwa.edit/internal/services/offline/strategy"
)

// Router picks the strategy for a request. Rules are evaluated in order:
// navigations go to the page strategy, style/script/worker destinations to
// the asset strategy, and everything else passes through.
type Router struct {
	Page        strategy.Strategy
	Asset       strategy.Strategy
	Passthrough strategy.Strategy
}

// Route returns the strategy for req.
func (r Router) Route(req strategy.Request) strategy.Strategy {
	if !req.Cacheable() {
		return r.Passthrough
	}
	if req.IsNavigation() {
		return r.Page
	}
	switch req.Destination {
	case strategy.DestinationStyle, strategy.DestinationScript, strategy.DestinationWorker:
		return r.Asset
	}
	return r.Passthrough
}

// Wait blocks until background work in every routed strategy has finished.
func (r Router) Wait() {
	for _, s := range []strategy.Strategy{r.Page, r.Asset, r.Passthrough} {
		if s != nil {
			s.Wait()
		}
	}
}
