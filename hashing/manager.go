package hashing

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrHasherNotFound is returned when a Manager has no Hasher for a
	// variant.
	ErrHasherNotFound = errors.New("hashing: no hasher registered for variant")

	// ErrNilHasher is returned by [Manager.RegisterHasher] for a nil Hasher.
	ErrNilHasher = errors.New("hashing: hasher must not be nil")
)

// Manager is a thread-safe registry of [Hasher] values keyed by [Variant],
// with one variant nominated as the default.
//
// New hashes are produced by the default variant. Verification detects the
// variant from the hash tag, so hashes of every registered variant stay
// verifiable while the default changes:
//
//	m, _ := hashing.NewDefaultManager(hashing.DefaultOptions())
//	ok, _ := m.Verify(stored, password)
//	if ok {
//	    if needs, _ := m.NeedsRehash(stored); needs {
//	        stored, _ = m.Make(password)
//	    }
//	}
//
// # Thread safety
//
// All Manager methods are safe for concurrent use. A [sync.RWMutex]
// serialises RegisterHasher and SetDefaultVariant while allowing concurrent
// hashing.
type Manager struct {
	mu      sync.RWMutex
	hashers map[Variant]*Hasher
	def     Variant
}

// NewManager creates an empty Manager whose default variant is def. Hashers
// must be registered with [Manager.RegisterHasher] before use.
func NewManager(def Variant) *Manager {
	return &Manager{
		hashers: make(map[Variant]*Hasher, len(Variants)),
		def:     def,
	}
}

// NewDefaultManager creates a Manager with a Hasher for each of the three
// variants, all configured with opts. The default variant is [Argon2id].
func NewDefaultManager(opts Options) (*Manager, error) {
	m := NewManager(Argon2id)
	for _, v := range Variants {
		h, err := NewHasher(v, opts)
		if err != nil {
			return nil, fmt.Errorf("hashing: failed to create default %s hasher: %w", v, err)
		}
		m.hashers[v] = h
	}
	return m, nil
}

// RegisterHasher adds or replaces the Hasher for h's variant.
func (m *Manager) RegisterHasher(h *Hasher) error {
	if h == nil {
		return ErrNilHasher
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hashers[h.Variant()] = h
	return nil
}

// Hasher returns the Hasher registered for v.
func (m *Manager) Hasher(v Variant) (*Hasher, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.hashers[v]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHasherNotFound, v)
	}
	return h, nil
}

// SetDefaultVariant changes the variant used by [Manager.Make]. A Hasher
// for v must already be registered.
func (m *Manager) SetDefaultVariant(v Variant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hashers[v]; !ok {
		return fmt.Errorf("%w: %s; call RegisterHasher first", ErrHasherNotFound, v)
	}
	m.def = v
	return nil
}

// DefaultVariant returns the current default variant.
func (m *Manager) DefaultVariant() Variant {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.def
}

// HasHasher reports whether a Hasher is registered for v.
func (m *Manager) HasHasher(v Variant) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.hashers[v]
	return ok
}

// Make hashes password with the default variant and a random salt.
func (m *Manager) Make(password []byte) (string, error) {
	h, err := m.resolveDefault()
	if err != nil {
		return "", err
	}
	return h.Make(password)
}

// Verify checks password against encoded using the Hasher registered for
// the variant named in encoded.
func (m *Manager) Verify(encoded string, password []byte) (bool, error) {
	h, err := m.resolveByHash(encoded)
	if err != nil {
		return false, err
	}
	return h.Verify(encoded, password)
}

// NeedsRehash reports whether encoded should be replaced: it was produced by
// a variant other than the default, by an older version, or with parameters
// that differ from the default Hasher's.
func (m *Manager) NeedsRehash(encoded string) (bool, error) {
	detected, ok := DetectVariant(encoded)
	if !ok {
		return false, fmt.Errorf("%w: unrecognised hash tag", ErrIncorrectType)
	}
	h, err := m.resolveDefault()
	if err != nil {
		return false, err
	}
	if detected != h.Variant() {
		return true, nil
	}
	return h.NeedsRehash(encoded)
}

// Info extracts metadata from encoded using the Hasher for its variant.
func (m *Manager) Info(encoded string) (HashInfo, error) {
	h, err := m.resolveByHash(encoded)
	if err != nil {
		return HashInfo{}, err
	}
	return h.Info(encoded)
}

func (m *Manager) resolveDefault() (*Hasher, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.hashers[m.def]
	if !ok {
		return nil, fmt.Errorf("%w: default variant %s", ErrHasherNotFound, m.def)
	}
	return h, nil
}

func (m *Manager) resolveByHash(encoded string) (*Hasher, error) {
	v, ok := DetectVariant(encoded)
	if !ok {
		return nil, fmt.Errorf("%w: unrecognised hash tag", ErrIncorrectType)
	}
	return m.Hasher(v)
}
