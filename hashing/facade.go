package hashing

import "fmt"

// bare holds one unconfigured Hasher per variant for the package-level
// functions: built-in primitive, no secret, no limiter, no logging.
var bare = [...]*Hasher{
	Argon2d:  newBareHasher(Argon2d),
	Argon2i:  newBareHasher(Argon2i),
	Argon2id: newBareHasher(Argon2id),
}

func bareHasher(v Variant) (*Hasher, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrIncorrectType, v)
	}
	return bare[v], nil
}

// HashEncoded hashes password with salt and p using variant v and returns the
// encoded hash string. It is deterministic: no randomness is introduced.
func HashEncoded(v Variant, password, salt []byte, p Params) (string, error) {
	h, err := bareHasher(v)
	if err != nil {
		return "", err
	}
	return h.hash(p, password, salt)
}

// VerifyEncoded reports whether password matches encoded, which must have
// been produced by variant v. See [Hasher.Verify] for the error contract.
func VerifyEncoded(v Variant, encoded string, password []byte) (bool, error) {
	h, err := bareHasher(v)
	if err != nil {
		return false, err
	}
	return h.Verify(encoded, password)
}

// HashArgon2d hashes password with Argon2d. Memory is in KiB.
func HashArgon2d(password, salt []byte, timeCost, memoryCost, parallelism, outputLength uint32) (string, error) {
	return HashEncoded(Argon2d, password, salt, Params{timeCost, memoryCost, parallelism, outputLength})
}

// HashArgon2i hashes password with Argon2i. Memory is in KiB.
func HashArgon2i(password, salt []byte, timeCost, memoryCost, parallelism, outputLength uint32) (string, error) {
	return HashEncoded(Argon2i, password, salt, Params{timeCost, memoryCost, parallelism, outputLength})
}

// HashArgon2id hashes password with Argon2id. Memory is in KiB.
//
//	encoded, err := hashing.HashArgon2id([]byte("password"), salt, 3, 19456, 1, 32)
func HashArgon2id(password, salt []byte, timeCost, memoryCost, parallelism, outputLength uint32) (string, error) {
	return HashEncoded(Argon2id, password, salt, Params{timeCost, memoryCost, parallelism, outputLength})
}

// VerifyArgon2d verifies password against an Argon2d encoded hash.
func VerifyArgon2d(encoded string, password []byte) (bool, error) {
	return VerifyEncoded(Argon2d, encoded, password)
}

// VerifyArgon2i verifies password against an Argon2i encoded hash.
func VerifyArgon2i(encoded string, password []byte) (bool, error) {
	return VerifyEncoded(Argon2i, encoded, password)
}

// VerifyArgon2id verifies password against an Argon2id encoded hash.
func VerifyArgon2id(encoded string, password []byte) (bool, error) {
	return VerifyEncoded(Argon2id, encoded, password)
}

// Verify reports whether password matches encoded, taking the variant from
// the hash's tag.
func Verify(encoded string, password []byte) (bool, error) {
	phc, err := ParsePHC(encoded)
	if err != nil {
		return false, err
	}
	defer phc.wipe()
	h := bare[phc.Variant]
	return h.verifyDecoded(phc, password)
}

// Compare is [Verify] with the result folded into the error: nil on a match,
// [ErrVerifyMismatch] on a mismatch, and the decoding or computation error
// otherwise.
func Compare(encoded string, password []byte) error {
	ok, err := Verify(encoded, password)
	if err != nil {
		return err
	}
	if !ok {
		return ErrVerifyMismatch
	}
	return nil
}
