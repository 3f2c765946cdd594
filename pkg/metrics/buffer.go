package metrics

import (
	"sync/atomic"
	"time"

	"github.com/mfreeman451/zserve/pkg/models"
)

// requestPoint is the compact in-buffer form of models.RequestPoint.
type requestPoint struct {
	timestamp int64
	duration  int64
	bytes     int64
	status    int32
}

// LockFreeRingBuffer keeps the last size points. Writers reserve slots with
// an atomic counter; readers must not run concurrently with writers to the
// same slots, which Manager guarantees with a per-class lock.
type LockFreeRingBuffer struct {
	points []requestPoint
	pos    int64 // Atomic position counter
	size   int64
}

// NewBuffer creates a new RequestStore.
func NewBuffer(size int) RequestStore {
	return NewLockFreeBuffer(size)
}

// NewLockFreeBuffer creates a new LockFreeRingBuffer with the specified size.
func NewLockFreeBuffer(size int) *LockFreeRingBuffer {
	if size < 1 {
		size = 1
	}

	return &LockFreeRingBuffer{
		points: make([]requestPoint, size),
		size:   int64(size),
	}
}

// Add adds a new point to the buffer, overwriting the oldest when full.
func (b *LockFreeRingBuffer) Add(p models.RequestPoint) {
	pos := atomic.AddInt64(&b.pos, 1) - 1
	idx := pos % b.size

	b.points[idx] = requestPoint{
		timestamp: p.Timestamp.UnixNano(),
		duration:  int64(p.Duration),
		bytes:     p.Bytes,
		status:    int32(p.Status),
	}
}

// GetPoints returns the stored points, newest first.
func (b *LockFreeRingBuffer) GetPoints() []models.RequestPoint {
	pos := atomic.LoadInt64(&b.pos)

	n := pos
	if n > b.size {
		n = b.size
	}

	points := make([]models.RequestPoint, n)

	for i := int64(0); i < n; i++ {
		idx := (pos - i - 1 + b.size) % b.size
		points[i] = b.points[idx].toModel()
	}

	return points
}

// GetLastPoint returns the newest point, or nil when empty.
func (b *LockFreeRingBuffer) GetLastPoint() *models.RequestPoint {
	pos := atomic.LoadInt64(&b.pos)
	if pos == 0 {
		return nil
	}

	p := b.points[(pos-1)%b.size].toModel()

	return &p
}

func (p requestPoint) toModel() models.RequestPoint {
	return models.RequestPoint{
		Timestamp: time.Unix(0, p.timestamp),
		Duration:  time.Duration(p.duration),
		Status:    int(p.status),
		Bytes:     p.bytes,
	}
}
