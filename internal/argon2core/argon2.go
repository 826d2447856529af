// Package argon2core computes raw Argon2 tags as described in RFC 9106.
//
// golang.org/x/crypto/argon2 exposes only Argon2i and Argon2id at version
// 0x13 with at most 255 lanes. This package follows the same lane-filling
// structure but covers all three types, both published versions, the
// optional secret and associated-data inputs, and up to 2^24-1 lanes. The
// memory matrix and every intermediate buffer are wiped before Key returns.
//
// Callers are expected to validate their inputs first; Key only rejects what
// would make the computation itself ill-defined.
package argon2core

import (
	"encoding/binary"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"
)

// Mode is the Argon2 type identifier as mixed into H0.
type Mode uint32

const (
	Argon2d  Mode = 0
	Argon2i  Mode = 1
	Argon2id Mode = 2
)

const (
	Version10 uint32 = 0x10
	Version13 uint32 = 0x13
)

const (
	// SyncPoints is the number of slices each lane is split into.
	SyncPoints = 4

	// MaxLanes is the largest lane count allowed by RFC 9106.
	MaxLanes = 1<<24 - 1

	blockLength = 128
	blockBytes  = blockLength * 8
)

var (
	ErrUnsupportedMode    = errors.New("argon2core: unsupported mode")
	ErrUnsupportedVersion = errors.New("argon2core: unsupported version")
	ErrInvalidInput       = errors.New("argon2core: invalid input")
)

type block [blockLength]uint64

// Input groups the arguments of a single derivation.
type Input struct {
	Mode           Mode
	Version        uint32
	Password       []byte
	Salt           []byte
	Secret         []byte
	AssociatedData []byte
	Time           uint32 // passes over memory
	Memory         uint32 // KiB
	Lanes          uint32
	KeyLen         uint32
}

func (in *Input) check() error {
	switch in.Mode {
	case Argon2d, Argon2i, Argon2id:
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedMode, in.Mode)
	}
	if in.Version != Version10 && in.Version != Version13 {
		return fmt.Errorf("%w: %#x", ErrUnsupportedVersion, in.Version)
	}
	switch {
	case in.Time < 1:
		return fmt.Errorf("%w: time must be >= 1", ErrInvalidInput)
	case in.Lanes < 1 || in.Lanes > MaxLanes:
		return fmt.Errorf("%w: lanes %d out of range", ErrInvalidInput, in.Lanes)
	case uint64(in.Memory) < 2*SyncPoints*uint64(in.Lanes):
		return fmt.Errorf("%w: memory %d KiB below 8 x lanes", ErrInvalidInput, in.Memory)
	case in.KeyLen < 1:
		return fmt.Errorf("%w: key length must be >= 1", ErrInvalidInput)
	}
	return nil
}

// Key derives KeyLen bytes from in.
func Key(in *Input) ([]byte, error) {
	if err := in.check(); err != nil {
		return nil, err
	}

	h0 := initHash(in)
	defer clear(h0[:])

	memory := in.Memory / (SyncPoints * in.Lanes) * (SyncPoints * in.Lanes)
	B := initBlocks(&h0, memory, in.Lanes)
	defer clear(B)

	processBlocks(B, in.Time, memory, in.Lanes, in.Mode, in.Version)
	return extractKey(B, memory, in.Lanes, in.KeyLen), nil
}

func initHash(in *Input) [blake2b.Size + 8]byte {
	var (
		h0     [blake2b.Size + 8]byte
		params [24]byte
		tmp    [4]byte
	)

	b2, _ := blake2b.New512(nil)
	binary.LittleEndian.PutUint32(params[0:4], in.Lanes)
	binary.LittleEndian.PutUint32(params[4:8], in.KeyLen)
	binary.LittleEndian.PutUint32(params[8:12], in.Memory)
	binary.LittleEndian.PutUint32(params[12:16], in.Time)
	binary.LittleEndian.PutUint32(params[16:20], in.Version)
	binary.LittleEndian.PutUint32(params[20:24], uint32(in.Mode))
	b2.Write(params[:])
	for _, field := range [][]byte{in.Password, in.Salt, in.Secret, in.AssociatedData} {
		binary.LittleEndian.PutUint32(tmp[:], uint32(len(field)))
		b2.Write(tmp[:])
		b2.Write(field)
	}
	b2.Sum(h0[:0])
	return h0
}

func initBlocks(h0 *[blake2b.Size + 8]byte, memory, lanes uint32) []block {
	var block0 [blockBytes]byte
	defer clear(block0[:])

	B := make([]block, memory)
	laneLen := memory / lanes
	for lane := uint32(0); lane < lanes; lane++ {
		j := lane * laneLen
		binary.LittleEndian.PutUint32(h0[blake2b.Size+4:], lane)
		for i := uint32(0); i < 2; i++ {
			binary.LittleEndian.PutUint32(h0[blake2b.Size:], i)
			blake2bHash(block0[:], h0[:])
			for k := range B[j+i] {
				B[j+i][k] = binary.LittleEndian.Uint64(block0[k*8:])
			}
		}
	}
	return B
}

func processBlocks(B []block, time, memory, lanes uint32, mode Mode, version uint32) {
	laneLen := memory / lanes
	segLen := laneLen / SyncPoints

	processSegment := func(pass, slice, lane uint32) {
		var addresses, in, zero block
		dataIndependent := mode == Argon2i || (mode == Argon2id && pass == 0 && slice < SyncPoints/2)
		if dataIndependent {
			in[0] = uint64(pass)
			in[1] = uint64(lane)
			in[2] = uint64(slice)
			in[3] = uint64(memory)
			in[4] = uint64(time)
			in[5] = uint64(mode)
		}

		index := uint32(0)
		if pass == 0 && slice == 0 {
			// The first two blocks of every lane come from initBlocks.
			index = 2
			if dataIndependent {
				in[6]++
				processBlock(&addresses, &in, &zero, false)
				processBlock(&addresses, &addresses, &zero, false)
			}
		}

		xor := version == Version13 && pass > 0
		offset := lane*laneLen + slice*segLen + index
		var random uint64
		for index < segLen {
			prev := offset - 1
			if index == 0 && slice == 0 {
				prev += laneLen
			}
			if dataIndependent {
				if index%blockLength == 0 {
					in[6]++
					processBlock(&addresses, &in, &zero, false)
					processBlock(&addresses, &addresses, &zero, false)
				}
				random = addresses[index%blockLength]
			} else {
				random = B[prev][0]
			}
			ref := indexAlpha(random, laneLen, segLen, lanes, pass, slice, lane, index)
			processBlock(&B[offset], &B[prev], &B[ref], xor)
			index, offset = index+1, offset+1
		}
		clear(addresses[:])
	}

	workers := min(int(lanes), runtime.GOMAXPROCS(0))
	for pass := uint32(0); pass < time; pass++ {
		for slice := uint32(0); slice < SyncPoints; slice++ {
			if workers == 1 {
				for lane := uint32(0); lane < lanes; lane++ {
					processSegment(pass, slice, lane)
				}
				continue
			}
			var g errgroup.Group
			g.SetLimit(workers)
			for lane := uint32(0); lane < lanes; lane++ {
				g.Go(func() error {
					processSegment(pass, slice, lane)
					return nil
				})
			}
			_ = g.Wait()
		}
	}
}

func extractKey(B []block, memory, lanes, keyLen uint32) []byte {
	laneLen := memory / lanes
	final := B[memory-1]
	defer clear(final[:])
	for lane := uint32(0); lane < lanes-1; lane++ {
		for i, v := range B[lane*laneLen+laneLen-1] {
			final[i] ^= v
		}
	}

	var buf [blockBytes]byte
	defer clear(buf[:])
	for i, v := range final {
		binary.LittleEndian.PutUint64(buf[i*8:], v)
	}
	key := make([]byte, keyLen)
	blake2bHash(key, buf[:])
	return key
}

func indexAlpha(rand uint64, laneLen, segLen, lanes, pass, slice, lane, index uint32) uint32 {
	refLane := uint32(rand>>32) % lanes
	if pass == 0 && slice == 0 {
		refLane = lane
	}
	m, s := 3*segLen, ((slice+1)%SyncPoints)*segLen
	if lane == refLane {
		m += index
	}
	if pass == 0 {
		m, s = slice*segLen, 0
		if slice == 0 || lane == refLane {
			m += index
		}
	}
	if index == 0 || lane == refLane {
		m--
	}
	return phi(rand, uint64(m), uint64(s), refLane, laneLen)
}

func phi(rand, m, s uint64, lane, laneLen uint32) uint32 {
	p := rand & 0xFFFFFFFF
	p = (p * p) >> 32
	p = (p * m) >> 32
	return lane*laneLen + uint32((s+m-(p+1))%uint64(laneLen))
}
