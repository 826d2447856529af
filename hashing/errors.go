package hashing

import (
	"errors"
	"strconv"
)

// ErrorCode is a closed enumeration of failure conditions. Zero ([OK]) means
// success; every other value has exactly one catalog entry.
//
// The numeric values match the reference Argon2 library, so a code can be
// passed across a process or language boundary and turned back into text
// with [ErrorMessage].
//
// ErrorCode implements error, and the named codes double as sentinel errors:
//
//	_, err := hashing.HashArgon2id(pw, salt, 1, 4, 1, 32)
//	if errors.Is(err, hashing.ErrMemoryTooLittle) {
//	    // raise the memory cost
//	}
type ErrorCode int

const (
	OK ErrorCode = 0

	ErrOutputTooShort     ErrorCode = -2
	ErrOutputTooLong      ErrorCode = -3
	ErrPwdTooLong         ErrorCode = -5
	ErrSaltTooShort       ErrorCode = -6
	ErrSaltTooLong        ErrorCode = -7
	ErrSecretTooLong      ErrorCode = -11
	ErrTimeTooSmall       ErrorCode = -12
	ErrTimeTooLarge       ErrorCode = -13
	ErrMemoryTooLittle    ErrorCode = -14
	ErrMemoryTooMuch      ErrorCode = -15
	ErrMemoryAllocation   ErrorCode = -22
	ErrIncorrectParameter ErrorCode = -25
	ErrIncorrectType      ErrorCode = -26
	ErrThreadsTooFew      ErrorCode = -28
	ErrThreadsTooMany     ErrorCode = -29
	ErrEncodingFail       ErrorCode = -31
	ErrDecodingFail       ErrorCode = -32
	ErrThreadFail         ErrorCode = -33
	ErrDecodingLengthFail ErrorCode = -34
	ErrVerifyMismatch     ErrorCode = -35
)

var catalog = map[ErrorCode]struct {
	msg  string
	kind Kind
}{
	OK:                    {"OK", 0},
	ErrOutputTooShort:     {"output is too short", ErrValidation},
	ErrOutputTooLong:      {"output is too long", ErrValidation},
	ErrPwdTooLong:         {"password is too long", ErrValidation},
	ErrSaltTooShort:       {"salt is too short", ErrValidation},
	ErrSaltTooLong:        {"salt is too long", ErrValidation},
	ErrSecretTooLong:      {"secret is too long", ErrValidation},
	ErrTimeTooSmall:       {"time cost is too small", ErrValidation},
	ErrTimeTooLarge:       {"time cost is too large", ErrValidation},
	ErrMemoryTooLittle:    {"memory cost is too small", ErrValidation},
	ErrMemoryTooMuch:      {"memory cost is too large", ErrValidation},
	ErrMemoryAllocation:   {"memory allocation failed", ErrResource},
	ErrIncorrectParameter: {"primitive received an incorrect parameter", ErrInternal},
	ErrIncorrectType:      {"there is no such type or version of Argon2", ErrDecoding},
	ErrThreadsTooFew:      {"not enough threads", ErrValidation},
	ErrThreadsTooMany:     {"too many threads", ErrValidation},
	ErrEncodingFail:       {"encoding failed", ErrInternal},
	ErrDecodingFail:       {"decoding failed", ErrDecoding},
	ErrThreadFail:         {"threading failure", ErrInternal},
	ErrDecodingLengthFail: {"some of the encoded parameters are too long or too short", ErrDecoding},
	ErrVerifyMismatch:     {"the password does not match the supplied hash", ErrMismatch},
}

const unknownErrorCode = "unknown error code"

// ErrorMessage returns the catalog text for code, or "unknown error code"
// when code is not in the catalog.
func ErrorMessage(code int) string {
	return ErrorCode(code).Message()
}

// Message returns the catalog text for c.
func (c ErrorCode) Message() string {
	if e, ok := catalog[c]; ok {
		return e.msg
	}
	return unknownErrorCode
}

// Error implements error.
func (c ErrorCode) Error() string {
	if _, ok := catalog[c]; !ok {
		return "argon2: " + unknownErrorCode + " " + strconv.Itoa(int(c))
	}
	return "argon2: " + c.Message()
}

// Kind returns the failure class of c. OK has no class (0); codes outside
// the catalog are [ErrInternal].
func (c ErrorCode) Kind() Kind {
	if e, ok := catalog[c]; ok {
		return e.kind
	}
	return ErrInternal
}

// Is lets errors.Is match a code against its Kind.
func (c ErrorCode) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k != 0 && c.Kind() == k
}

// CodeOf returns the first ErrorCode in err's chain. It returns OK for a nil
// error and [ErrThreadFail] for an error that carries no code.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return OK
	}
	var code ErrorCode
	if errors.As(err, &code) {
		return code
	}
	return ErrThreadFail
}

// Kind classifies error codes into the failure taxonomy callers act on.
//
//	ok, err := hashing.VerifyArgon2id(stored, pw)
//	switch {
//	case errors.Is(err, hashing.ErrDecoding):
//	    // stored hash is corrupt; verification is not possible
//	case err != nil:
//	    // other failure
//	case !ok:
//	    // wrong password
//	}
type Kind int

const (
	// ErrValidation: caller-supplied parameters violate algorithm
	// constraints. Nothing was computed.
	ErrValidation Kind = iota + 1

	// ErrResource: the parameters are valid but the working memory could
	// not be obtained.
	ErrResource

	// ErrDecoding: an encoded hash is malformed or names an unsupported
	// variant or version.
	ErrDecoding

	// ErrMismatch: the candidate password does not match. An expected
	// outcome, not a fault.
	ErrMismatch

	// ErrInternal: any other failure of the underlying computation.
	ErrInternal
)

// Error implements error.
func (k Kind) Error() string {
	switch k {
	case ErrValidation:
		return "argon2: invalid parameters"
	case ErrResource:
		return "argon2: insufficient resources"
	case ErrDecoding:
		return "argon2: invalid encoded hash"
	case ErrMismatch:
		return "argon2: verification mismatch"
	case ErrInternal:
		return "argon2: internal failure"
	default:
		return "argon2: unknown error kind"
	}
}
