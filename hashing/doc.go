// Package hashing hashes and verifies passwords with the Argon2 family of
// memory-hard functions (RFC 9106).
//
// # Architecture
//
// All three variants ([Argon2d], [Argon2i], [Argon2id]) share one
// implementation parameterised by [Variant]:
//
//   - package-level functions ([HashArgon2id], [VerifyArgon2id], [Verify], ...)
//     hash with explicit parameters and no further configuration;
//   - a [Hasher] carries [Options]: default parameters, salt length, an
//     optional secret, a memory budget, a logger and a meter provider;
//   - a [Manager] keeps one Hasher per variant and verifies hashes of any
//     variant while producing new hashes with the default one.
//
// Raw hashes are computed by a [Primitive]. The built-in [CorePrimitive]
// supports every variant, both versions (0x10 and 0x13), a secret and up to
// 2^24-1 lanes. [XCryptoPrimitive] delegates to golang.org/x/crypto/argon2.
//
// # Quick start
//
//	h, err := hashing.NewArgon2idHasher(hashing.DefaultOptions())
//	if err != nil { log.Fatal(err) }
//
//	encoded, _ := h.Make([]byte("my-secret-password"))
//	ok, _ := h.Verify(encoded, []byte("my-secret-password")) // true
//
// # Hash format
//
// Hashes are stored in the PHC string format used by the reference Argon2
// library:
//
//	$argon2id$v=19$m=19456,t=3,p=1$<base64-salt>$<base64-hash>
//
// Every parameter is recorded in the string, so verification needs no
// external configuration. Hashes without a "v=" section are version 0x10.
//
// # Errors
//
// Every failure wraps an [ErrorCode] whose numeric value matches the
// reference library. Codes are grouped into a [Kind]; test with errors.Is:
//
//	_, err := hashing.VerifyArgon2id(stored, pw)
//	if errors.Is(err, hashing.ErrDecoding) {
//	    // stored hash is corrupt
//	}
//
// A wrong password is not an error: Verify returns (false, nil). [Compare]
// reports it as [ErrVerifyMismatch] instead.
//
// # Security defaults
//
// m=19 MiB, t=3, p=1, a 32-byte hash and a 16-byte salt: the OWASP
// recommendation for Argon2id.
package hashing
