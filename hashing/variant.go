package hashing

import (
	"fmt"
	"strings"
)

// Variant identifies a member of the Argon2 family.
//
// The numeric values are the type identifiers mixed into every Argon2
// computation and are stable across processes; see [Variant.ID].
type Variant uint32

const (
	// Argon2d uses data-dependent memory access. It is the fastest variant and
	// the most resistant to GPU cracking, but leaks timing information about
	// the password through its access pattern.
	Argon2d Variant = 0

	// Argon2i uses data-independent memory access, making it resistant to
	// side-channel attacks at the cost of weaker time-memory trade-off
	// resistance.
	Argon2i Variant = 1

	// Argon2id runs the first half of the first pass like Argon2i and the rest
	// like Argon2d. Recommended for password hashing by RFC 9106 and OWASP.
	Argon2id Variant = 2
)

// Variants lists every supported variant in identifier order.
var Variants = []Variant{Argon2d, Argon2i, Argon2id}

// ParseVariant maps an encoded-hash tag ("argon2d", "argon2i", "argon2id")
// to its Variant. Unknown tags return [ErrIncorrectType].
func ParseVariant(tag string) (Variant, error) {
	switch tag {
	case "argon2d":
		return Argon2d, nil
	case "argon2i":
		return Argon2i, nil
	case "argon2id":
		return Argon2id, nil
	default:
		return 0, fmt.Errorf("%w: unknown variant %q", ErrIncorrectType, tag)
	}
}

// String returns the lower-case tag used in encoded hashes.
func (v Variant) String() string {
	switch v {
	case Argon2d:
		return "argon2d"
	case Argon2i:
		return "argon2i"
	case Argon2id:
		return "argon2id"
	default:
		return fmt.Sprintf("Variant(%d)", uint32(v))
	}
}

// ID returns the numeric type identifier of v.
func (v Variant) ID() int { return int(v) }

// Valid reports whether v is one of the three Argon2 variants.
func (v Variant) Valid() bool { return v <= Argon2id }

// Version is the Argon2 algorithm version recorded in encoded hashes.
type Version uint32

const (
	// Version10 is the original 1.0 algorithm. Hashes without a "v=" section
	// were produced by it.
	Version10 Version = 0x10

	// Version13 is the current 1.3 algorithm (RFC 9106).
	Version13 Version = 0x13
)

// Valid reports whether v is a published Argon2 version.
func (v Version) Valid() bool { return v == Version10 || v == Version13 }

// PrimitiveVersion returns the version number written into new hashes.
func PrimitiveVersion() int { return int(CurrentVersion) }

// DetectVariant inspects the tag of an encoded hash and returns the Variant
// that produced it. It does not validate the rest of the string.
//
// The second return value is false when the tag is not recognised.
func DetectVariant(encoded string) (Variant, bool) {
	if !strings.HasPrefix(encoded, "$") {
		return 0, false
	}
	tag, _, _ := strings.Cut(encoded[1:], "$")
	v, err := ParseVariant(tag)
	if err != nil {
		return 0, false
	}
	return v, true
}

// HashInfo carries metadata parsed from an encoded hash string.
type HashInfo struct {
	// Variant is the Argon2 variant that produced the hash.
	Variant Variant

	// Version is the Argon2 version recorded in the hash.
	Version Version

	// Params are the cost parameters recorded in the hash. OutputLength is
	// the decoded length of the hash section.
	Params Params

	// SaltLength is the decoded length of the salt section in bytes.
	SaltLength int
}
