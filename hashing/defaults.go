package hashing

// Default parameter policy.
//
// These values follow the OWASP password storage recommendation for Argon2id
// (m=19 MiB, t=2..3, p=1) and are what the reference binding exposes. They
// apply to all three variants. Existing hashes carry their own parameters,
// so changing a value here only affects hashes produced afterwards.
const (
	// DefaultTimeCost is the default number of passes over memory.
	DefaultTimeCost uint32 = 3

	// DefaultMemoryCost is the default memory cost in KiB (19 MiB).
	DefaultMemoryCost uint32 = 19456

	// DefaultParallelism is the default number of lanes.
	DefaultParallelism uint32 = 1

	// DefaultOutputLength is the default raw hash length in bytes.
	DefaultOutputLength uint32 = 32

	// DefaultSaltLength is the default random salt length in bytes.
	DefaultSaltLength uint32 = 16

	// CurrentVersion is the Argon2 version used for new hashes.
	CurrentVersion = Version13
)

// DefaultMemoryCeiling is the largest memory cost, in KiB, one call may
// allocate (4 GiB) unless [Options.MemoryCeiling] says otherwise. It also
// applies to the package-level functions, so a stored hash cannot request
// more memory than the process can provide. Larger costs fail with
// [ErrMemoryAllocation].
const DefaultMemoryCeiling uint32 = 4 << 20

// DefaultParams returns the default cost parameters.
func DefaultParams() Params {
	return Params{
		TimeCost:     DefaultTimeCost,
		MemoryCost:   DefaultMemoryCost,
		Parallelism:  DefaultParallelism,
		OutputLength: DefaultOutputLength,
	}
}

// DefaultOptions returns Options with the default parameters and salt length
// and the built-in primitive.
func DefaultOptions() Options {
	return Options{
		Params:     DefaultParams(),
		SaltLength: DefaultSaltLength,
	}
}
