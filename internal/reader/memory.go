// Package reader holds the in-process bridge between the physical card
// reader and the settlement core: the bridge pushes observations in, the
// core only ever asks for the most recent one.
package reader

import (
	"context"
	"sync"

	"github.com/Charvyearl/cashless/internal/domain"
)

// Memory keeps the single most recent scan. Older observations are
// overwritten; the freshness cutoff is applied by the caller.
type Memory struct {
	mu   sync.RWMutex
	scan domain.CardScan
	seen bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Record(scan domain.CardScan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scan = scan
	m.seen = true
}

func (m *Memory) LatestScan(_ context.Context) (domain.CardScan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.seen {
		return domain.CardScan{}, domain.ErrNoScan
	}
	return m.scan, nil
}
