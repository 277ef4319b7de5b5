package utils

import (
	"sync"

	"token-pulse/src/models"
)

// -----------------------------------------------------------------------------
// HistoryManager keeps a bounded price history per token id.
// -----------------------------------------------------------------------------

type HistoryManager struct {
	streams   map[string]*RingBuffer
	maxPoints int
	mu        sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewHistoryManager(maxPoints int) *HistoryManager {
	if maxPoints <= 0 {
		maxPoints = DefaultHistoryPoints
	}
	return &HistoryManager{
		streams:   make(map[string]*RingBuffer),
		maxPoints: maxPoints,
	}
}

// -----------------------------------------------------------------------------

// Record appends a point to the token's history, creating it if needed
func (hm *HistoryManager) Record(tokenID string, point models.PricePoint) {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	buffer, ok := hm.streams[tokenID]
	if !ok {
		buffer = NewRingBuffer(hm.maxPoints)
		hm.streams[tokenID] = buffer
	}
	buffer.Append(point)
}

// -----------------------------------------------------------------------------

// Seed records a first point only if the token has no history yet
func (hm *HistoryManager) Seed(tokenID string, point models.PricePoint) {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	if _, ok := hm.streams[tokenID]; ok {
		return
	}
	buffer := NewRingBuffer(hm.maxPoints)
	buffer.Append(point)
	hm.streams[tokenID] = buffer
}

// -----------------------------------------------------------------------------

// History returns the full history for a token, oldest first
func (hm *HistoryManager) History(tokenID string) ([]models.PricePoint, bool) {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	buffer, ok := hm.streams[tokenID]
	if !ok {
		return nil, false
	}
	return buffer.GetAll(), true
}

// -----------------------------------------------------------------------------

// Latest returns the most recent point for a token
func (hm *HistoryManager) Latest(tokenID string) (models.PricePoint, bool) {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	buffer, ok := hm.streams[tokenID]
	if !ok || buffer.Size() == 0 {
		return models.PricePoint{}, false
	}
	return buffer.GetLatest(1)[0], true
}

// -----------------------------------------------------------------------------

func (hm *HistoryManager) Drop(tokenIDs ...string) {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	for _, id := range tokenIDs {
		delete(hm.streams, id)
	}
}

// -----------------------------------------------------------------------------

// Cleanup clears all histories
func (hm *HistoryManager) Cleanup() {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	hm.streams = make(map[string]*RingBuffer)
}

// -----------------------------------------------------------------------------

// TokenCount returns number of tokens with history
func (hm *HistoryManager) TokenCount() int {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	return len(hm.streams)
}
