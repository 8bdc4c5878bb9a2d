package render

import (
	"slices"
	"sync"
)

// gate holds unit updates back until the pass that produced the units has
// been returned to the caller. Updates published earlier are queued (latest
// wins per unit) and delivered once released. Delivery runs on a separate
// goroutine, one update at a time and in publish order, so a caller can
// store the pass under the same lock its update handler takes.
type gate struct {
	mu         sync.Mutex
	onUpdate   UpdateFunc
	open       bool
	failed     map[int]struct{}
	queued     map[int]UnitUpdate
	pending    []UnitUpdate
	delivering bool
}

func newGate(onUpdate UpdateFunc) *gate {
	return &gate{
		onUpdate: onUpdate,
		failed:   make(map[int]struct{}),
		queued:   make(map[int]UnitUpdate),
	}
}

func (g *gate) publish(update UnitUpdate) {
	if g.onUpdate == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, failed := g.failed[update.Unit.Index]; failed {
		return
	}
	if !g.open {
		g.queued[update.Unit.Index] = update
		return
	}
	g.enqueue(update)
}

func (g *gate) fail(index int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failed[index] = struct{}{}
	delete(g.queued, index)
}

func (g *gate) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = true
	if len(g.queued) == 0 || g.onUpdate == nil {
		return
	}
	indexes := make([]int, 0, len(g.queued))
	for idx := range g.queued {
		indexes = append(indexes, idx)
	}
	slices.Sort(indexes)
	updates := make([]UnitUpdate, 0, len(indexes))
	for _, idx := range indexes {
		updates = append(updates, g.queued[idx])
	}
	g.queued = make(map[int]UnitUpdate)
	g.enqueue(updates...)
}

// enqueue appends to the delivery queue and starts the delivery goroutine
// when none is running. Callers hold g.mu.
func (g *gate) enqueue(updates ...UnitUpdate) {
	g.pending = append(g.pending, updates...)
	if g.delivering {
		return
	}
	g.delivering = true
	go g.deliver()
}

func (g *gate) deliver() {
	for {
		g.mu.Lock()
		if len(g.pending) == 0 {
			g.delivering = false
			g.mu.Unlock()
			return
		}
		update := g.pending[0]
		g.pending = g.pending[1:]
		g.mu.Unlock()

		g.onUpdate(update)
	}
}
