package hashing

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// b64 is unpadded standard base64 (RFC 4648 without "="), the convention of
// the reference implementation. Strict decoding rejects non-zero trailing
// bits, so each byte string has exactly one accepted encoding.
var b64 = base64.RawStdEncoding.Strict()

// ──────────────────────────────────────────────────────────────────────────────
// Encoding
// ──────────────────────────────────────────────────────────────────────────────

// PHC is the decoded form of an encoded Argon2 hash:
//
//	$argon2id$v=19$m=65536,t=3,p=1$<salt>$<hash>
//
// Salt and hash are unpadded standard base64. Params.OutputLength always
// equals len(Key) after a successful [ParsePHC].
type PHC struct {
	Variant Variant
	Version Version
	Params  Params
	Salt    []byte
	Key     []byte
}

// Encode serialises h in PHC string format. It fails with [ErrEncodingFail]
// when the variant or version is not one that [ParsePHC] would accept.
func (h *PHC) Encode() (string, error) {
	if !h.Variant.Valid() {
		return "", fmt.Errorf("%w: unknown variant %s", ErrEncodingFail, h.Variant)
	}
	if !h.Version.Valid() {
		return "", fmt.Errorf("%w: unknown version %d", ErrEncodingFail, h.Version)
	}

	var sb strings.Builder
	sb.Grow(48 + b64.EncodedLen(len(h.Salt)) + b64.EncodedLen(len(h.Key)))
	sb.WriteByte('$')
	sb.WriteString(h.Variant.String())
	sb.WriteString("$v=")
	sb.WriteString(strconv.FormatUint(uint64(h.Version), 10))
	sb.WriteString("$m=")
	sb.WriteString(strconv.FormatUint(uint64(h.Params.MemoryCost), 10))
	sb.WriteString(",t=")
	sb.WriteString(strconv.FormatUint(uint64(h.Params.TimeCost), 10))
	sb.WriteString(",p=")
	sb.WriteString(strconv.FormatUint(uint64(h.Params.Parallelism), 10))
	sb.WriteByte('$')
	sb.WriteString(b64.EncodeToString(h.Salt))
	sb.WriteByte('$')
	sb.WriteString(b64.EncodeToString(h.Key))
	return sb.String(), nil
}

// Info returns the metadata of h without the salt and key bytes.
func (h *PHC) Info() HashInfo {
	return HashInfo{
		Variant:    h.Variant,
		Version:    h.Version,
		Params:     h.Params,
		SaltLength: len(h.Salt),
	}
}

// wipe zeroes the salt and key buffers of h.
func (h *PHC) wipe() {
	wipe(h.Salt)
	wipe(h.Key)
}

// ──────────────────────────────────────────────────────────────────────────────
// Decoding
// ──────────────────────────────────────────────────────────────────────────────

// ParsePHC decodes an encoded Argon2 hash. Decoding never partially
// succeeds: either every field is recovered or the result is nil.
//
// Expected layout (the "v=" section is optional; without it the hash is
// version 0x10):
//
//	$<variant>$v=<version>$m=<memory>,t=<time>,p=<parallelism>$<salt>$<hash>
//
// Errors:
//   - [ErrIncorrectType] for an unknown variant tag or version;
//   - [ErrDecodingLengthFail] when the salt or hash has an invalid length;
//   - [ErrDecodingFail] for any other malformation, including parameters that
//     are out of range (the specific code is wrapped as well).
//
// Only canonical encodings are accepted: decimal integers without sign or
// leading zeros, and base64 without padding or stray trailing bits. The one
// exception is version 0x10, which has two accepted forms: "v=16", as
// written by [PHC.Encode] and by libargon2 since 1.3, and no "v=" section at
// all, as written by earlier libargon2 releases. Both decode to [Version10];
// re-encoding always yields the "v=16" form.
func ParsePHC(encoded string) (*PHC, error) {
	parts := strings.Split(encoded, "$")
	if parts[0] != "" {
		return nil, fmt.Errorf("%w: missing leading '$'", ErrDecodingFail)
	}
	parts = parts[1:]

	var h PHC
	switch len(parts) {
	case 5:
		version, err := parseKV(parts[1], "v")
		if err != nil {
			return nil, fmt.Errorf("%w: version section: %v", ErrDecodingFail, err)
		}
		h.Version = Version(version)
		if !h.Version.Valid() {
			return nil, fmt.Errorf("%w: unsupported version %d", ErrIncorrectType, version)
		}
		parts = append(parts[:1], parts[2:]...)
	case 4:
		h.Version = Version10
	default:
		return nil, fmt.Errorf("%w: expected 5 '$'-separated sections, got %d", ErrDecodingFail, len(parts))
	}

	variant, err := ParseVariant(parts[0])
	if err != nil {
		return nil, err
	}
	h.Variant = variant

	if err := parseParams(parts[1], &h.Params); err != nil {
		return nil, fmt.Errorf("%w: parameter section: %v", ErrDecodingFail, err)
	}

	salt, err := decodeB64(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: salt: %v", ErrDecodingFail, err)
	}
	key, err := decodeB64(parts[3])
	if err != nil {
		wipe(salt)
		return nil, fmt.Errorf("%w: hash: %v", ErrDecodingFail, err)
	}
	h.Salt, h.Key = salt, key
	h.Params.OutputLength = uint32(min(uint64(len(key)), uint64(MaxOutputLength)))

	if err := validateSaltLength(uint64(len(salt))); err != nil {
		h.wipe()
		return nil, fmt.Errorf("%w: %w", ErrDecodingLengthFail, err)
	}
	if uint64(len(key)) > uint64(MaxOutputLength) {
		h.wipe()
		return nil, fmt.Errorf("%w: %w", ErrDecodingLengthFail, ErrOutputTooLong)
	}
	if h.Params.OutputLength < MinOutputLength {
		h.wipe()
		return nil, fmt.Errorf("%w: %w: %d bytes", ErrDecodingLengthFail, ErrOutputTooShort, len(key))
	}
	if err := h.Params.validateCosts(); err != nil {
		h.wipe()
		return nil, fmt.Errorf("%w: %w", ErrDecodingFail, err)
	}
	return &h, nil
}

// decodeB64 decodes an unpadded base64 section. The standard decoder skips
// CR and LF, which would give a byte string a second textual form.
func decodeB64(s string) ([]byte, error) {
	if strings.ContainsAny(s, "\r\n") {
		return nil, fmt.Errorf("line break in base64 section")
	}
	return b64.DecodeString(s)
}

// parseKV parses a "key=value" section whose value is a canonical decimal
// uint32.
func parseKV(s, key string) (uint32, error) {
	v, ok := strings.CutPrefix(s, key+"=")
	if !ok {
		return 0, fmt.Errorf("expected %q prefix in %q", key+"=", s)
	}
	return parseDecimal(v)
}

// parseParams parses "m=<memory>,t=<time>,p=<parallelism>". The keys must
// appear exactly once and in that order.
func parseParams(s string, p *Params) error {
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return fmt.Errorf("expected m,t,p in %q", s)
	}
	var err error
	if p.MemoryCost, err = parseKV(fields[0], "m"); err != nil {
		return err
	}
	if p.TimeCost, err = parseKV(fields[1], "t"); err != nil {
		return err
	}
	if p.Parallelism, err = parseKV(fields[2], "p"); err != nil {
		return err
	}
	return nil
}

// parseDecimal accepts only ASCII digits without a leading zero (except "0"
// itself), so that every value has a single textual form.
func parseDecimal(s string) (uint32, error) {
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, fmt.Errorf("non-canonical number %q", s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("invalid number %q", s)
		}
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("number %q out of range", s)
	}
	return uint32(v), nil
}
