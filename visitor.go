package storefront

import (
	"sync"
	"time"

	"goflare.io/storefront/cart"
	"goflare.io/storefront/session"
)

// visitor owns the cart and session of one browser. mu serialises every
// mutation so events for a visitor are applied in the order they arrive.
type visitor struct {
	mu       sync.Mutex
	cart     *cart.State
	session  *session.State
	email    string
	lastSeen time.Time
	// seeded is set once the cart has been loaded from the mirror.
	seeded bool
}

type visitors struct {
	mu  sync.Mutex
	m   map[string]*visitor
	now func() time.Time
}

func newVisitors() *visitors {
	return &visitors{m: make(map[string]*visitor), now: time.Now}
}

// acquire returns the visitor for id, creating it when unknown. created reports
// whether the entry is new.
func (v *visitors) acquire(id string) (vis *visitor, created bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	vis, ok := v.m[id]
	if !ok {
		vis = &visitor{cart: cart.NewState(), session: session.NewState()}
		v.m[id] = vis
		created = true
	}
	vis.lastSeen = v.now()
	return vis, created
}

// sweep drops visitors not seen for longer than idle.
func (v *visitors) sweep(idle time.Duration) int {
	v.mu.Lock()
	defer v.mu.Unlock()

	cutoff := v.now().Add(-idle)
	removed := 0
	for id, vis := range v.m {
		if vis.lastSeen.Before(cutoff) {
			delete(v.m, id)
			removed++
		}
	}
	return removed
}

func (v *visitors) len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.m)
}
