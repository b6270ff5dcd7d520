package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"terroir/internal/validator"
)

// memo is a bounded FIFO of finished previews. Stored entries are never
// handed out directly; callers always receive a clone.
type memo struct {
	mu      sync.Mutex
	size    int
	entries map[string]*Preview
	order   []string
}

func newMemo(size int) *memo {
	return &memo{size: size, entries: make(map[string]*Preview, size)}
}

func (m *memo) get(key string) (*Preview, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pv, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	return pv.Clone(), true
}

func (m *memo) put(key string, pv *Preview) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; ok {
		return
	}
	if len(m.order) >= m.size {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.entries, oldest)
	}
	m.entries[key] = pv
	m.order = append(m.order, key)
}

func (m *memo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func cacheKey(raw string, opts validator.Options) string {
	h := sha256.New()
	h.Write([]byte(raw))
	h.Write([]byte{0})
	if opts.Targets != nil {
		h.Write([]byte(opts.Targets.TerritoryID))
		h.Write([]byte{0})
		h.Write([]byte(opts.Targets.DossierID))
	}
	h.Write([]byte{0})
	if opts.Strict {
		h.Write([]byte{1})
	}
	return hex.EncodeToString(h.Sum(nil))
}
