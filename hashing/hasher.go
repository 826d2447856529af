package hashing

import (
	"bytes"
	"cmp"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ──────────────────────────────────────────────────────────────────────────────
// Options
// ──────────────────────────────────────────────────────────────────────────────

// Options configures a [Hasher].
//
// The cost parameters are written into every hash the Hasher produces, so
// changing them only affects new hashes; existing hashes remain verifiable.
type Options struct {
	// Params are the cost parameters for new hashes.
	// Default: [DefaultParams].
	Params

	// SaltLength is the length of the random salt generated by
	// [Hasher.Make]. Minimum 8. Default: [DefaultSaltLength].
	SaltLength uint32

	// Secret is an optional pepper mixed into every derivation. It is not
	// stored in the encoded hash, so the same Secret is required to verify.
	// Not supported by [XCryptoPrimitive].
	Secret []byte

	// Primitive computes raw hashes. Nil selects [CorePrimitive].
	Primitive Primitive

	// MemoryCeiling is the largest memory cost in KiB a single call may use,
	// whether configured in Params or decoded from a hash being verified.
	// Zero means [DefaultMemoryCeiling].
	MemoryCeiling uint32

	// Limiter bounds the working memory in flight across calls. Nil means
	// no aggregate bound.
	Limiter *MemoryLimiter

	// Logger receives debug and warning records. Passwords, salts, secrets
	// and hashes are never logged. Nil discards all records.
	Logger *slog.Logger

	// MeterProvider receives the argon2.operations and argon2.duration
	// instruments. Nil disables metrics.
	MeterProvider metric.MeterProvider
}

func validateOptions(opts Options) error {
	if err := opts.Params.Validate(); err != nil {
		return err
	}
	if err := validateSaltLength(uint64(opts.SaltLength)); err != nil {
		return err
	}
	if uint64(len(opts.Secret)) > MaxSecretLength {
		return fmt.Errorf("%w: %d bytes", ErrSecretTooLong, len(opts.Secret))
	}
	if ceiling := cmp.Or(opts.MemoryCeiling, DefaultMemoryCeiling); opts.MemoryCost > ceiling {
		return fmt.Errorf("%w: %d KiB exceeds the %d KiB ceiling", ErrMemoryAllocation, opts.MemoryCost, ceiling)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Hasher
// ──────────────────────────────────────────────────────────────────────────────

// Hasher hashes and verifies passwords with one Argon2 variant.
//
// All three variants share this implementation; the variant is carried
// through validation, the primitive call and encoding.
//
// # Thread safety
//
// Hasher is immutable after construction and safe for concurrent use.
type Hasher struct {
	variant Variant
	opts    Options
	prim    Primitive
	ceiling uint32
	limiter *MemoryLimiter
	log     *slog.Logger
	metrics *instruments
}

// NewHasher constructs a Hasher for variant v. Invalid options are rejected
// with the matching [ErrorCode]. Use [DefaultOptions] for recommended
// defaults.
func NewHasher(v Variant, opts Options) (*Hasher, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrIncorrectType, v)
	}
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	m, err := newInstruments(opts.MeterProvider)
	if err != nil {
		return nil, fmt.Errorf("hashing: %w", err)
	}

	h := newBareHasher(v)
	h.opts = opts
	h.opts.Secret = bytes.Clone(opts.Secret)
	if opts.MemoryCeiling != 0 {
		h.ceiling = opts.MemoryCeiling
	}
	h.limiter = opts.Limiter
	h.metrics = m
	if opts.Primitive != nil {
		h.prim = opts.Primitive
	}
	if opts.Logger != nil {
		h.log = opts.Logger
	}
	return h, nil
}

// NewArgon2dHasher constructs an Argon2d [Hasher].
func NewArgon2dHasher(opts Options) (*Hasher, error) { return NewHasher(Argon2d, opts) }

// NewArgon2iHasher constructs an Argon2i [Hasher].
func NewArgon2iHasher(opts Options) (*Hasher, error) { return NewHasher(Argon2i, opts) }

// NewArgon2idHasher constructs an Argon2id [Hasher].
func NewArgon2idHasher(opts Options) (*Hasher, error) { return NewHasher(Argon2id, opts) }

var (
	discardLogger  = slog.New(slog.DiscardHandler)
	noopMetrics, _ = newInstruments(nil)
)

// newBareHasher returns a Hasher with the built-in primitive and no logging,
// metrics, limiter or secret, and the default memory ceiling. The
// package-level functions use it.
func newBareHasher(v Variant) *Hasher {
	return &Hasher{
		variant: v,
		prim:    CorePrimitive{},
		ceiling: DefaultMemoryCeiling,
		log:     discardLogger,
		metrics: noopMetrics,
	}
}

// Variant returns the Argon2 variant of h.
func (h *Hasher) Variant() Variant { return h.variant }

// Options returns the configuration of h. The Secret is a copy.
func (h *Hasher) Options() Options {
	opts := h.opts
	opts.Secret = bytes.Clone(h.opts.Secret)
	return opts
}

// ──────────────────────────────────────────────────────────────────────────────
// Hash
// ──────────────────────────────────────────────────────────────────────────────

// Hash derives an encoded hash of password with the given salt and the
// configured parameters. The same password, salt and options always produce
// the same string.
func (h *Hasher) Hash(password, salt []byte) (encoded string, err error) {
	start := time.Now()
	defer func() { h.metrics.record("hash", h.variant, start, err) }()
	return h.hash(h.opts.Params, password, salt)
}

// Make hashes password with a fresh random salt of the configured length,
// so two calls with the same password produce different strings.
func (h *Hasher) Make(password []byte) (string, error) {
	salt, err := randomSalt(h.opts.SaltLength)
	if err != nil {
		return "", err
	}
	return h.Hash(password, salt)
}

func (h *Hasher) hash(p Params, password, salt []byte) (string, error) {
	if err := validateInputs(h.variant, p, password, salt, h.opts.Secret); err != nil {
		h.log.Debug("argon2 hash rejected", slog.String("variant", h.variant.String()), slog.Any("error", err))
		return "", err
	}

	key, err := h.derive(CurrentVersion, p, password, salt)
	if err != nil {
		return "", err
	}
	defer wipe(key)

	phc := PHC{Variant: h.variant, Version: CurrentVersion, Params: p, Salt: salt, Key: key}
	return phc.Encode()
}

// derive runs the primitive under the memory ceiling and budget. The caller
// owns (and must wipe) the returned key.
func (h *Hasher) derive(version Version, p Params, password, salt []byte) ([]byte, error) {
	if p.MemoryCost > h.ceiling {
		h.log.Warn("argon2 memory cost above ceiling",
			slog.String("variant", h.variant.String()),
			slog.Uint64("memory_kib", uint64(p.MemoryCost)),
			slog.Uint64("ceiling_kib", uint64(h.ceiling)))
		return nil, fmt.Errorf("%w: %d KiB exceeds the %d KiB ceiling", ErrMemoryAllocation, p.MemoryCost, h.ceiling)
	}
	release, err := h.limiter.acquire(p.MemoryCost)
	if err != nil {
		h.log.Warn("argon2 memory budget exhausted",
			slog.String("variant", h.variant.String()),
			slog.Uint64("memory_kib", uint64(p.MemoryCost)),
			slog.Uint64("budget_kib", h.limiter.Capacity()))
		return nil, err
	}
	defer release()

	start := time.Now()
	key, err := h.prim.Key(h.variant, version, p, password, salt, h.opts.Secret)
	if err != nil {
		h.log.Warn("argon2 primitive failed", slog.String("variant", h.variant.String()), slog.Any("error", err))
		return nil, primitiveError(err)
	}
	if uint64(len(key)) != uint64(p.OutputLength) {
		wipe(key)
		return nil, fmt.Errorf("%w: primitive returned %d bytes, want %d", ErrIncorrectParameter, len(key), p.OutputLength)
	}
	h.log.Debug("argon2 key derived",
		slog.String("variant", h.variant.String()),
		slog.Int("version", int(version)),
		slog.Uint64("t", uint64(p.TimeCost)),
		slog.Uint64("m", uint64(p.MemoryCost)),
		slog.Uint64("p", uint64(p.Parallelism)),
		slog.Duration("elapsed", time.Since(start)))
	return key, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Verify
// ──────────────────────────────────────────────────────────────────────────────

// Verify reports whether password matches encoded. The parameters, salt and
// version are read from encoded itself, so verification works after the
// Hasher's options have changed.
//
// A wrong password returns (false, nil). A hash that cannot be decoded, or
// that was produced by another variant, returns (false, err) with
// errors.Is(err, [ErrDecoding]); it is never reported as a mismatch.
// The comparison runs in constant time.
func (h *Hasher) Verify(encoded string, password []byte) (ok bool, err error) {
	start := time.Now()
	defer func() {
		outcome := err
		if err == nil && !ok {
			outcome = ErrVerifyMismatch
		}
		h.metrics.record("verify", h.variant, start, outcome)
	}()

	phc, err := h.decode(encoded)
	if err != nil {
		return false, err
	}
	defer phc.wipe()
	return h.verifyDecoded(phc, password)
}

func (h *Hasher) verifyDecoded(phc *PHC, password []byte) (bool, error) {
	if uint64(len(password)) > MaxPasswordLength {
		return false, fmt.Errorf("%w: %d bytes", ErrPwdTooLong, len(password))
	}
	computed, err := h.derive(phc.Version, phc.Params, password, phc.Salt)
	if err != nil {
		return false, err
	}
	defer wipe(computed)
	return equalKeys(computed, phc.Key), nil
}

// decode parses encoded and checks that it belongs to h's variant.
func (h *Hasher) decode(encoded string) (*PHC, error) {
	phc, err := ParsePHC(encoded)
	if err != nil {
		h.log.Warn("argon2 hash not decodable", slog.String("variant", h.variant.String()), slog.Any("error", err))
		return nil, err
	}
	if phc.Variant != h.variant {
		phc.wipe()
		return nil, fmt.Errorf("%w: hash is %s, not %s", ErrIncorrectType, phc.Variant, h.variant)
	}
	return phc, nil
}

// NeedsRehash reports whether encoded was produced with a different version
// or different parameters than h is configured with. Callers should re-hash
// the password on the next successful login when it returns true.
func (h *Hasher) NeedsRehash(encoded string) (bool, error) {
	phc, err := h.decode(encoded)
	if err != nil {
		return false, err
	}
	defer phc.wipe()
	return phc.Version != CurrentVersion || phc.Params != h.opts.Params, nil
}

// Info parses encoded and returns its metadata without verifying it.
func (h *Hasher) Info(encoded string) (HashInfo, error) {
	phc, err := h.decode(encoded)
	if err != nil {
		return HashInfo{}, err
	}
	defer phc.wipe()
	return phc.Info(), nil
}

// randomSalt returns n cryptographically random bytes.
func randomSalt(n uint32) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("hashing: argon2: failed to generate salt: %w", err)
	}
	return b, nil
}
