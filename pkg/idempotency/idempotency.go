package idempotency

import (
	"net/http"
	"strings"
	"sync"
)

const Header = "Idempotency-Key"

func Key(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(Header))
}

// Replays remembers which order id a key produced, so a repeated checkout
// with the same key returns the existing order instead of charging again.
type Replays struct {
	mu    sync.RWMutex
	byKey map[string]string
}

func NewReplays() *Replays {
	return &Replays{byKey: make(map[string]string)}
}

func (r *Replays) Lookup(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	orderID, ok := r.byKey[key]
	return orderID, ok
}

func (r *Replays) Remember(key, orderID string) {
	if key == "" {
		return
	}
	r.mu.Lock()
	r.byKey[key] = orderID
	r.mu.Unlock()
}
