package utils

import (
	"token-pulse/src/models"
)

// -----------------------------------------------------------------------------
// RingBuffer is a fixed-size circular buffer of price points.
// -----------------------------------------------------------------------------

type RingBuffer struct {
	// Data storage as rows x features
	data     [][models.RB_NUM_FEATURES]float64
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewRingBuffer creates a new buffer with fixed capacity
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = DefaultHistoryPoints
	}

	return &RingBuffer{
		data:     make([][models.RB_NUM_FEATURES]float64, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Append adds a point, overwriting the oldest when full
func (rb *RingBuffer) Append(point models.PricePoint) {
	rb.data[rb.index] = [models.RB_NUM_FEATURES]float64{
		float64(point.Timestamp),
		point.Price,
	}

	rb.index = (rb.index + 1) % rb.capacity

	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// GetLatest returns up to n latest points, oldest first
func (rb *RingBuffer) GetLatest(n int) []models.PricePoint {
	if rb.size == 0 || n <= 0 {
		return []models.PricePoint{}
	}

	count := n
	if n > rb.size {
		count = rb.size
	}

	// Latest data is at index-1
	startIdx := (rb.index - count + rb.capacity) % rb.capacity
	return rb.read(startIdx, count)
}

// -----------------------------------------------------------------------------

// GetAll returns all data in insertion order (oldest to newest)
func (rb *RingBuffer) GetAll() []models.PricePoint {
	if rb.size == 0 {
		return []models.PricePoint{}
	}

	startIdx := 0
	if rb.size == rb.capacity {
		// Buffer is full, oldest is at current index
		startIdx = rb.index
	}
	return rb.read(startIdx, rb.size)
}

// -----------------------------------------------------------------------------

func (rb *RingBuffer) read(startIdx, count int) []models.PricePoint {
	result := make([]models.PricePoint, count)
	for i := 0; i < count; i++ {
		row := rb.data[(startIdx+i)%rb.capacity]
		result[i] = models.PricePoint{
			Timestamp: int64(row[models.RB_IDX_TIMESTAMP]),
			Price:     row[models.RB_IDX_PRICE],
		}
	}
	return result
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (rb *RingBuffer) Size() int {
	return rb.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity (fixed)
func (rb *RingBuffer) Capacity() int {
	return rb.capacity
}

// -----------------------------------------------------------------------------

// IsFull returns whether buffer is full
func (rb *RingBuffer) IsFull() bool {
	return rb.size == rb.capacity
}

// -----------------------------------------------------------------------------

// Clear resets the buffer
func (rb *RingBuffer) Clear() {
	rb.index = 0
	rb.size = 0
}
