package hashing

import (
	"errors"
	"testing"
)

func TestMemoryLimiter_Acquire(t *testing.T) {
	l := NewMemoryLimiter(32)
	if l.Capacity() != 32 {
		t.Fatalf("Capacity() = %d", l.Capacity())
	}

	release, err := l.acquire(24)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.acquire(16); !errors.Is(err, ErrMemoryAllocation) {
		t.Errorf("expected ErrMemoryAllocation while 24 of 32 KiB are held, got %v", err)
	}
	release()

	release, err = l.acquire(32)
	if err != nil {
		t.Fatalf("full budget after release: %v", err)
	}
	release()
}

func TestMemoryLimiter_OverCapacity(t *testing.T) {
	l := NewMemoryLimiter(8)
	if _, err := l.acquire(9); !errors.Is(err, ErrMemoryAllocation) {
		t.Errorf("expected ErrMemoryAllocation, got %v", err)
	}
}

func TestMemoryLimiter_Nil(t *testing.T) {
	var l *MemoryLimiter
	if l.Capacity() != 0 {
		t.Errorf("nil Capacity() = %d", l.Capacity())
	}
	release, err := l.acquire(MaxMemoryCost)
	if err != nil {
		t.Fatal(err)
	}
	release()
}

func TestWipe(t *testing.T) {
	b := []byte("sensitive")
	wipe(b)
	for i, c := range b {
		if c != 0 {
			t.Fatalf("byte %d not wiped: %#x", i, c)
		}
	}
}
