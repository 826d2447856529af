package hashing

import (
	"fmt"
	"math"
	"strconv"
)

// Algorithm bounds. Memory is expressed in KiB, lengths in bytes.
const (
	MinOutputLength uint32 = 4
	MaxOutputLength uint32 = math.MaxUint32

	MinSaltLength = 8
	MaxSaltLength = math.MaxUint32

	MaxPasswordLength = math.MaxUint32
	MaxSecretLength   = math.MaxUint32

	MinTimeCost uint32 = 1
	MaxTimeCost uint32 = math.MaxUint32

	MinParallelism uint32 = 1
	MaxParallelism uint32 = 1<<24 - 1

	// blocksPerLane is the minimum number of 1 KiB blocks each lane needs
	// (two per sync point).
	blocksPerLane = 8
)

// maxMemoryBits limits the memory matrix to what the host can address.
const maxMemoryBits = min(32, strconv.IntSize-10-1)

// MaxMemoryCost is the largest memory cost in KiB: 2^32-1 on 64-bit
// platforms, 2^21 on 32-bit ones.
const MaxMemoryCost uint32 = min(math.MaxUint32, 1<<maxMemoryBits)

// Params are the Argon2 cost parameters and output length. They are embedded
// in every encoded hash, so verification never needs them from the caller.
type Params struct {
	// TimeCost is the number of passes over memory. Minimum 1.
	TimeCost uint32

	// MemoryCost is the working memory in KiB. Minimum 8 x Parallelism.
	MemoryCost uint32

	// Parallelism is the number of lanes. Between 1 and 2^24-1.
	Parallelism uint32

	// OutputLength is the raw hash length in bytes. Minimum 4.
	OutputLength uint32
}

// Validate checks p against the algorithm bounds and returns the first
// violated constraint as a wrapped [ErrorCode]. The checks are ordered:
// output length, memory, time, parallelism.
func (p Params) Validate() error {
	if p.OutputLength < MinOutputLength {
		return fmt.Errorf("%w: %d bytes, minimum is %d", ErrOutputTooShort, p.OutputLength, MinOutputLength)
	}
	return p.validateCosts()
}

func (p Params) validateCosts() error {
	if uint64(p.MemoryCost) < blocksPerLane*uint64(p.Parallelism) {
		return fmt.Errorf("%w: %d KiB, must be at least 8 x parallelism (%d KiB)",
			ErrMemoryTooLittle, p.MemoryCost, blocksPerLane*uint64(p.Parallelism))
	}
	if p.MemoryCost > MaxMemoryCost {
		return fmt.Errorf("%w: %d KiB, maximum is %d", ErrMemoryTooMuch, p.MemoryCost, MaxMemoryCost)
	}
	if p.TimeCost < MinTimeCost {
		return fmt.Errorf("%w: %d, minimum is %d", ErrTimeTooSmall, p.TimeCost, MinTimeCost)
	}
	if p.Parallelism < MinParallelism {
		return fmt.Errorf("%w: %d, minimum is %d", ErrThreadsTooFew, p.Parallelism, MinParallelism)
	}
	if p.Parallelism > MaxParallelism {
		return fmt.Errorf("%w: %d, maximum is %d", ErrThreadsTooMany, p.Parallelism, MaxParallelism)
	}
	return nil
}

// validateInputs runs every check that must pass before memory is
// allocated for a derivation.
func validateInputs(v Variant, p Params, password, salt, secret []byte) error {
	if !v.Valid() {
		return fmt.Errorf("%w: %s", ErrIncorrectType, v)
	}
	if p.OutputLength < MinOutputLength {
		return fmt.Errorf("%w: %d bytes, minimum is %d", ErrOutputTooShort, p.OutputLength, MinOutputLength)
	}
	if uint64(len(password)) > MaxPasswordLength {
		return fmt.Errorf("%w: %d bytes", ErrPwdTooLong, len(password))
	}
	if err := validateSaltLength(uint64(len(salt))); err != nil {
		return err
	}
	if uint64(len(secret)) > MaxSecretLength {
		return fmt.Errorf("%w: %d bytes", ErrSecretTooLong, len(secret))
	}
	return p.validateCosts()
}

func validateSaltLength(n uint64) error {
	if n < MinSaltLength {
		return fmt.Errorf("%w: %d bytes, minimum is %d", ErrSaltTooShort, n, MinSaltLength)
	}
	if n > MaxSaltLength {
		return fmt.Errorf("%w: %d bytes", ErrSaltTooLong, n)
	}
	return nil
}
