package hashing

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"math"

	"golang.org/x/crypto/argon2"

	"github.com/hasbyte1/go-argon2/internal/argon2core"
)

// Primitive computes raw Argon2 output. The façade validates every input
// before calling Key, so implementations only report their own limitations
// and internal failures.
//
// Implementations must be deterministic and safe for concurrent use. Errors
// should be [ErrorCode] values (wrapped or not); anything else is reported to
// callers as [ErrThreadFail].
type Primitive interface {
	Key(v Variant, version Version, p Params, password, salt, secret []byte) ([]byte, error)
}

// CorePrimitive is the built-in primitive. It supports all three variants,
// both versions, a secret, and up to 2^24-1 lanes, and wipes its working
// memory before returning.
type CorePrimitive struct{}

// Key implements [Primitive].
func (CorePrimitive) Key(v Variant, version Version, p Params, password, salt, secret []byte) ([]byte, error) {
	key, err := argon2core.Key(&argon2core.Input{
		Mode:     argon2core.Mode(v),
		Version:  uint32(version),
		Password: password,
		Salt:     salt,
		Secret:   secret,
		Time:     p.TimeCost,
		Memory:   p.MemoryCost,
		Lanes:    p.Parallelism,
		KeyLen:   p.OutputLength,
	})
	switch {
	case err == nil:
		return key, nil
	case errors.Is(err, argon2core.ErrUnsupportedMode), errors.Is(err, argon2core.ErrUnsupportedVersion):
		return nil, fmt.Errorf("%w: %v", ErrIncorrectType, err)
	case errors.Is(err, argon2core.ErrInvalidInput):
		return nil, fmt.Errorf("%w: %v", ErrIncorrectParameter, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrThreadFail, err)
	}
}

// XCryptoPrimitive computes hashes with golang.org/x/crypto/argon2. That
// package implements Argon2i and Argon2id at version 0x13 with at most 255
// lanes and no secret; other requests fail with [ErrIncorrectType],
// [ErrThreadsTooMany] or [ErrIncorrectParameter]. Its working memory is not
// wiped.
type XCryptoPrimitive struct{}

// Key implements [Primitive].
func (XCryptoPrimitive) Key(v Variant, version Version, p Params, password, salt, secret []byte) ([]byte, error) {
	if version != Version13 {
		return nil, fmt.Errorf("%w: x/crypto supports only version 0x13", ErrIncorrectType)
	}
	if p.Parallelism > math.MaxUint8 {
		return nil, fmt.Errorf("%w: x/crypto supports at most %d lanes", ErrThreadsTooMany, math.MaxUint8)
	}
	if len(secret) > 0 {
		return nil, fmt.Errorf("%w: x/crypto does not accept a secret", ErrIncorrectParameter)
	}
	threads := uint8(p.Parallelism)
	switch v {
	case Argon2i:
		return argon2.Key(password, salt, p.TimeCost, p.MemoryCost, threads, p.OutputLength), nil
	case Argon2id:
		return argon2.IDKey(password, salt, p.TimeCost, p.MemoryCost, threads, p.OutputLength), nil
	default:
		return nil, fmt.Errorf("%w: x/crypto does not implement %s", ErrIncorrectType, v)
	}
}

// primitiveError brings a primitive failure into the ErrorCode space.
func primitiveError(err error) error {
	var code ErrorCode
	if errors.As(err, &code) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrThreadFail, err)
}

// equalKeys compares two raw hashes in constant time with respect to their
// contents.
func equalKeys(computed, stored []byte) bool {
	return subtle.ConstantTimeCompare(computed, stored) == 1
}
