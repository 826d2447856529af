package hashing_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/hasbyte1/go-argon2/hashing"
)

func TestHashArgon2id_CorrectHorse(t *testing.T) {
	salt := make([]byte, 16)
	encoded, err := hashing.HashArgon2id([]byte("correct horse"), salt, 2, 65536, 1, 32)
	if err != nil {
		t.Fatalf("HashArgon2id: %v", err)
	}
	phc, err := hashing.ParsePHC(encoded)
	if err != nil {
		t.Fatalf("ParsePHC(%q): %v", encoded, err)
	}
	if phc.Variant != hashing.Argon2id {
		t.Errorf("variant = %s, want argon2id", phc.Variant)
	}
	if !bytes.Equal(phc.Salt, salt) || len(phc.Key) != 32 {
		t.Errorf("decoded salt=%x key length=%d", phc.Salt, len(phc.Key))
	}

	ok, err := hashing.VerifyArgon2id(encoded, []byte("correct horse"))
	if err != nil || !ok {
		t.Errorf("correct password: ok=%v err=%v", ok, err)
	}
	ok, err = hashing.VerifyArgon2id(encoded, []byte("wrong password"))
	if err != nil || ok {
		t.Errorf("wrong password: ok=%v err=%v", ok, err)
	}
}

func TestHashArgon2i_MemoryBelowFloor(t *testing.T) {
	encoded, err := hashing.HashArgon2i([]byte("pw"), []byte("saltsalt"), 2, 4, 1, 32)
	if encoded != "" {
		t.Errorf("expected no output, got %q", encoded)
	}
	if !errors.Is(err, hashing.ErrMemoryTooLittle) {
		t.Errorf("expected ErrMemoryTooLittle, got %v", err)
	}
	if !errors.Is(err, hashing.ErrValidation) {
		t.Errorf("expected a validation error, got %v", err)
	}
}

func TestHashEncoded_RoundTripAllVariants(t *testing.T) {
	hashFns := map[hashing.Variant]func(pw, salt []byte, t, m, p, l uint32) (string, error){
		hashing.Argon2d:  hashing.HashArgon2d,
		hashing.Argon2i:  hashing.HashArgon2i,
		hashing.Argon2id: hashing.HashArgon2id,
	}
	verifyFns := map[hashing.Variant]func(string, []byte) (bool, error){
		hashing.Argon2d:  hashing.VerifyArgon2d,
		hashing.Argon2i:  hashing.VerifyArgon2i,
		hashing.Argon2id: hashing.VerifyArgon2id,
	}
	passwords := [][]byte{nil, []byte("a"), []byte("päßwörd"), bytes.Repeat([]byte{0xff}, 200)}

	for _, v := range hashing.Variants {
		t.Run(v.String(), func(t *testing.T) {
			for _, pw := range passwords {
				encoded, err := hashFns[v](pw, []byte("saltsalt"), 1, 16, 2, 16)
				if err != nil {
					t.Fatal(err)
				}
				if !strings.HasPrefix(encoded, "$"+v.String()+"$") {
					t.Errorf("tag mismatch: %q", encoded)
				}
				if ok, err := verifyFns[v](encoded, pw); err != nil || !ok {
					t.Errorf("password %q: ok=%v err=%v", pw, ok, err)
				}
				if ok, err := hashing.Verify(encoded, pw); err != nil || !ok {
					t.Errorf("Verify with detection, password %q: ok=%v err=%v", pw, ok, err)
				}
				wrong := append(bytes.Clone(pw), 'x')
				if ok, err := verifyFns[v](encoded, wrong); err != nil || ok {
					t.Errorf("candidate %q: ok=%v err=%v", wrong, ok, err)
				}
			}
		})
	}
}

func TestHashEncoded_Determinism(t *testing.T) {
	p := hashing.Params{TimeCost: 1, MemoryCost: 32, Parallelism: 4, OutputLength: 24}
	a, err := hashing.HashEncoded(hashing.Argon2id, []byte("pw"), []byte("saltsalt"), p)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := hashing.HashEncoded(hashing.Argon2id, []byte("pw"), []byte("saltsalt"), p)
	if a != b {
		t.Errorf("identical inputs, different output:\n%s\n%s", a, b)
	}

	c, _ := hashing.HashEncoded(hashing.Argon2id, []byte("pw"), []byte("saltsalT"), p)
	pa, _ := hashing.ParsePHC(a)
	pc, _ := hashing.ParsePHC(c)
	if bytes.Equal(pa.Key, pc.Key) {
		t.Error("different salts produced the same raw hash")
	}
}

func TestHashEncoded_UnknownVariant(t *testing.T) {
	_, err := hashing.HashEncoded(hashing.Variant(3), []byte("pw"), []byte("saltsalt"), hashing.DefaultParams())
	if !errors.Is(err, hashing.ErrIncorrectType) {
		t.Errorf("expected ErrIncorrectType, got %v", err)
	}
	_, err = hashing.VerifyEncoded(hashing.Variant(3), "$argon2id$v=19$m=16,t=1,p=1$c2FsdHNhbHQ$AAAAAA", []byte("pw"))
	if !errors.Is(err, hashing.ErrIncorrectType) {
		t.Errorf("expected ErrIncorrectType, got %v", err)
	}
}

func TestHashEncoded_ValidationCodes(t *testing.T) {
	tests := []struct {
		name string
		salt []byte
		p    hashing.Params
		want hashing.ErrorCode
	}{
		{"memory < 8p", []byte("saltsalt"), hashing.Params{TimeCost: 1, MemoryCost: 15, Parallelism: 2, OutputLength: 32}, hashing.ErrMemoryTooLittle},
		{"time < 1", []byte("saltsalt"), hashing.Params{TimeCost: 0, MemoryCost: 16, Parallelism: 1, OutputLength: 32}, hashing.ErrTimeTooSmall},
		{"parallelism < 1", []byte("saltsalt"), hashing.Params{TimeCost: 1, MemoryCost: 16, Parallelism: 0, OutputLength: 32}, hashing.ErrThreadsTooFew},
		{"salt < 8", []byte("salt"), hashing.Params{TimeCost: 1, MemoryCost: 16, Parallelism: 1, OutputLength: 32}, hashing.ErrSaltTooShort},
		{"output < 4", []byte("saltsalt"), hashing.Params{TimeCost: 1, MemoryCost: 16, Parallelism: 1, OutputLength: 3}, hashing.ErrOutputTooShort},
	}
	seen := make(map[hashing.ErrorCode]bool)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := hashing.HashEncoded(hashing.Argon2id, []byte("pw"), tt.salt, tt.p)
			if got := hashing.CodeOf(err); got != tt.want {
				t.Errorf("code = %d (%v), want %d", got, err, tt.want)
			}
			if seen[tt.want] {
				t.Errorf("code %d is not distinct", tt.want)
			}
			seen[tt.want] = true
		})
	}
}

func TestVerify_MalformedNeverTrue(t *testing.T) {
	encoded, _ := hashing.HashArgon2id([]byte("pw"), []byte("saltsalt"), 1, 16, 1, 16)
	inputs := []string{
		"",
		"$",
		encoded[:len(encoded)/2],
		strings.Replace(encoded, "$", "#", 1),
		strings.Replace(encoded, "argon2id", "argon2x", 1),
		encoded + "$extra",
		strings.ReplaceAll(encoded, "$", "$$"),
	}
	for _, in := range inputs {
		ok, err := hashing.Verify(in, []byte("pw"))
		if ok {
			t.Errorf("Verify(%q) = true", in)
		}
		if !errors.Is(err, hashing.ErrDecoding) {
			t.Errorf("Verify(%q): expected a decoding error, got %v", in, err)
		}
	}
}

func TestCompare(t *testing.T) {
	encoded, _ := hashing.HashArgon2i([]byte("pw"), []byte("saltsalt"), 1, 8, 1, 16)
	if err := hashing.Compare(encoded, []byte("pw")); err != nil {
		t.Errorf("match: %v", err)
	}
	err := hashing.Compare(encoded, []byte("nope"))
	if !errors.Is(err, hashing.ErrVerifyMismatch) || !errors.Is(err, hashing.ErrMismatch) {
		t.Errorf("mismatch: got %v", err)
	}
	if err := hashing.Compare("garbage", []byte("pw")); !errors.Is(err, hashing.ErrDecodingFail) {
		t.Errorf("malformed: got %v", err)
	}
}

// A stored hash decodes with any memory cost up to 2^32-1 KiB; verifying it
// must fail with a resource error instead of attempting the allocation.
func TestVerify_MemoryAboveCeiling(t *testing.T) {
	const encoded = "$argon2id$v=19$m=4294967295,t=1,p=1$c29tZXNhbHQ$YWJjZA"
	if _, err := hashing.ParsePHC(encoded); err != nil {
		t.Fatalf("ParsePHC: %v", err)
	}

	verifiers := map[string]func() error{
		"Verify": func() error { _, err := hashing.Verify(encoded, []byte("x")); return err },
		"VerifyArgon2id": func() error {
			_, err := hashing.VerifyArgon2id(encoded, []byte("x"))
			return err
		},
		"VerifyEncoded": func() error {
			_, err := hashing.VerifyEncoded(hashing.Argon2id, encoded, []byte("x"))
			return err
		},
		"Compare": func() error { return hashing.Compare(encoded, []byte("x")) },
	}
	for name, fn := range verifiers {
		t.Run(name, func(t *testing.T) {
			err := fn()
			if !errors.Is(err, hashing.ErrMemoryAllocation) || !errors.Is(err, hashing.ErrResource) {
				t.Errorf("expected ErrMemoryAllocation, got %v", err)
			}
			if errors.Is(err, hashing.ErrVerifyMismatch) {
				t.Errorf("must not be reported as a mismatch: %v", err)
			}
		})
	}
}

func TestHashArgon2d_MemoryAboveCeiling(t *testing.T) {
	_, err := hashing.HashArgon2d([]byte("pw"), []byte("saltsalt"), 1, hashing.DefaultMemoryCeiling+1, 1, 16)
	if !errors.Is(err, hashing.ErrMemoryAllocation) {
		t.Fatalf("expected ErrMemoryAllocation, got %v", err)
	}
}

// Hashes produced by the reference command-line utility:
//
//	echo -n password | argon2 somesalt -t 2 -m 16 -p 1 [-v 10]
func TestVerify_ReferenceHashes(t *testing.T) {
	if testing.Short() {
		t.Skip("64 MiB reference hashes")
	}
	tests := []struct {
		name    string
		encoded string
	}{
		{"version 0x10", "$argon2i$m=65536,t=2,p=1$c29tZXNhbHQ$9sTbSlTio3Biev89thdrlKKiCaYsjjYVJxGAL3swxpQ"},
		{"version 0x13", "$argon2i$v=19$m=65536,t=2,p=1$c29tZXNhbHQ$wWKIMhR9lyDFvRz9YTZweHKfbftvj+qf+YFY4NeBbtA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := hashing.VerifyArgon2i(tt.encoded, []byte("password"))
			if err != nil || !ok {
				t.Errorf("ok=%v err=%v", ok, err)
			}
			ok, err = hashing.VerifyArgon2i(tt.encoded, []byte("passwore"))
			if err != nil || ok {
				t.Errorf("wrong password: ok=%v err=%v", ok, err)
			}
		})
	}

	encoded, err := hashing.HashArgon2i([]byte("password"), []byte("somesalt"), 2, 65536, 1, 32)
	if err != nil {
		t.Fatal(err)
	}
	if encoded != tests[1].encoded {
		t.Errorf("HashArgon2i = %q, want %q", encoded, tests[1].encoded)
	}
}

func TestPrimitiveVersionAndIDs(t *testing.T) {
	if got := hashing.PrimitiveVersion(); got != 0x13 {
		t.Errorf("PrimitiveVersion() = %#x, want 0x13", got)
	}
	for v, id := range map[hashing.Variant]int{hashing.Argon2d: 0, hashing.Argon2i: 1, hashing.Argon2id: 2} {
		if v.ID() != id {
			t.Errorf("%s.ID() = %d, want %d", v, v.ID(), id)
		}
	}
}

func TestDefaults(t *testing.T) {
	opts := hashing.DefaultOptions()
	want := hashing.Params{TimeCost: 3, MemoryCost: 19456, Parallelism: 1, OutputLength: 32}
	if opts.Params != want {
		t.Errorf("DefaultOptions().Params = %+v, want %+v", opts.Params, want)
	}
	if opts.SaltLength != hashing.DefaultSaltLength || hashing.DefaultSaltLength != 16 {
		t.Errorf("SaltLength = %d", opts.SaltLength)
	}
	if err := opts.Params.Validate(); err != nil {
		t.Errorf("default params invalid: %v", err)
	}
}
