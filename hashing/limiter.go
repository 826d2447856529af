package hashing

import (
	"fmt"

	"golang.org/x/sync/semaphore"
)

// MemoryLimiter caps the working memory in flight across concurrent hash
// and verify calls of every [Hasher] that shares it. A call whose memory cost
// cannot be admitted immediately fails with [ErrMemoryAllocation], which is a
// resource error rather than a validation error: the same parameters may
// succeed once other calls finish.
//
// A nil *MemoryLimiter admits everything.
type MemoryLimiter struct {
	sem      *semaphore.Weighted
	capacity uint64
}

// NewMemoryLimiter returns a limiter admitting at most capacityKiB of working
// memory at a time.
func NewMemoryLimiter(capacityKiB uint64) *MemoryLimiter {
	return &MemoryLimiter{
		sem:      semaphore.NewWeighted(int64(min(capacityKiB, 1<<62))),
		capacity: capacityKiB,
	}
}

// Capacity returns the configured budget in KiB.
func (l *MemoryLimiter) Capacity() uint64 {
	if l == nil {
		return 0
	}
	return l.capacity
}

// acquire reserves memoryKiB and returns the matching release function.
func (l *MemoryLimiter) acquire(memoryKiB uint32) (func(), error) {
	if l == nil {
		return func() {}, nil
	}
	n := int64(memoryKiB)
	if uint64(memoryKiB) > l.capacity {
		return nil, fmt.Errorf("%w: %d KiB exceeds the %d KiB budget", ErrMemoryAllocation, memoryKiB, l.capacity)
	}
	if !l.sem.TryAcquire(n) {
		return nil, fmt.Errorf("%w: %d KiB not available within the %d KiB budget", ErrMemoryAllocation, memoryKiB, l.capacity)
	}
	return func() { l.sem.Release(n) }, nil
}
