package argon2core

import "math/bits"

// processBlock computes the compression function G over in1 and in2 and
// stores (or, with xor set, folds) the result into out. out may alias in1.
func processBlock(out, in1, in2 *block, xor bool) {
	var t block
	for i := range t {
		t[i] = in1[i] ^ in2[i]
	}
	applyRounds(&t)
	if xor {
		for i := range t {
			out[i] ^= in1[i] ^ in2[i] ^ t[i]
		}
	} else {
		for i := range t {
			out[i] = in1[i] ^ in2[i] ^ t[i]
		}
	}
	clear(t[:])
}

// applyRounds runs the BLAKE2b-based permutation P over the eight rows and
// then the eight columns of a block viewed as an 8x8 matrix of 16-byte
// registers.
func applyRounds(t *block) {
	var v [16]uint64
	for r := 0; r < 8; r++ {
		base := 16 * r
		copy(v[:], t[base:base+16])
		permute(&v)
		copy(t[base:base+16], v[:])
	}
	for c := 0; c < 8; c++ {
		i := 2 * c
		for j := 0; j < 8; j++ {
			v[2*j] = t[16*j+i]
			v[2*j+1] = t[16*j+i+1]
		}
		permute(&v)
		for j := 0; j < 8; j++ {
			t[16*j+i] = v[2*j]
			t[16*j+i+1] = v[2*j+1]
		}
	}
}

func permute(v *[16]uint64) {
	gb(&v[0], &v[4], &v[8], &v[12])
	gb(&v[1], &v[5], &v[9], &v[13])
	gb(&v[2], &v[6], &v[10], &v[14])
	gb(&v[3], &v[7], &v[11], &v[15])

	gb(&v[0], &v[5], &v[10], &v[15])
	gb(&v[1], &v[6], &v[11], &v[12])
	gb(&v[2], &v[7], &v[8], &v[13])
	gb(&v[3], &v[4], &v[9], &v[14])
}

// gb is the BlaMka variant of the BLAKE2b G function: each addition also adds
// twice the product of the low 32 bits of its operands.
func gb(a, b, c, d *uint64) {
	*a += *b + 2*uint64(uint32(*a))*uint64(uint32(*b))
	*d = bits.RotateLeft64(*d^*a, -32)
	*c += *d + 2*uint64(uint32(*c))*uint64(uint32(*d))
	*b = bits.RotateLeft64(*b^*c, -24)

	*a += *b + 2*uint64(uint32(*a))*uint64(uint32(*b))
	*d = bits.RotateLeft64(*d^*a, -16)
	*c += *d + 2*uint64(uint32(*c))*uint64(uint32(*d))
	*b = bits.RotateLeft64(*b^*c, -63)
}
