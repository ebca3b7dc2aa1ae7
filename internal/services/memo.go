package services

import (
	"fmt"
	"sync"

	"github.com/MisterMushn/bilanzieren/pkg/contracts/domain"
)

// keywordMemo caches keyword-frequency results keyed on the table
// content fingerprint plus the analysis arguments. MostCommon is pure,
// so a hit is always exact. FIFO eviction keeps the cache bounded.
type keywordMemo struct {
	mu      sync.Mutex
	entries map[string][]domain.FrequencyRow
	order   []string
	cap     int
}

func newKeywordMemo(capacity int) *keywordMemo {
	if capacity <= 0 {
		capacity = 128
	}
	return &keywordMemo{
		entries: make(map[string][]domain.FrequencyRow),
		cap:     capacity,
	}
}

func memoKey(fingerprint, column string, k, minLen int) string {
	return fmt.Sprintf("%s|%s|%d|%d", fingerprint, column, k, minLen)
}

func (m *keywordMemo) get(key string) ([]domain.FrequencyRow, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.entries[key]
	return rows, ok
}

func (m *keywordMemo) put(key string, rows []domain.FrequencyRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[key]; exists {
		return
	}
	for len(m.entries) >= m.cap {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.entries, oldest)
	}
	m.entries[key] = rows
	m.order = append(m.order, key)
}
