// Package rng implements the deterministic random streams used to place instances.
//
// Two independent 32-bit linear-congruential generators are kept:
// the sequencing stream (NextSeed) hands out per-class seeds, the instance
// stream (Float) drives every per-instance decision. Both wrap on int32
// overflow so that a given root value always reproduces the same sequence.
package rng

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

const (
	seqMul = 1103515245
	seqInc = 12345

	floatMul = 1664525
	floatInc = 1013904223

	// SeedMask limits seeds handed out by NextSeed.
	SeedMask = 0x7FFFFFF
)

// Random holds both generator states and the root seed of the sequencing stream.
type Random struct {
	seed  int32 // instance stream
	seed2 int32 // sequencing stream
	root  int32 // value seed2 is rewound to on redistribution
}

// New returns a generator with the default initial state.
func New() *Random {
	return &Random{seed: 3, seed2: 7, root: 7}
}

// NextSeed advances the sequencing stream and returns a 27-bit seed.
func (r *Random) NextSeed() int32 {
	r.seed2 = seqMul*r.seed2 + seqInc
	return r.seed2 & SeedMask
}

// Float advances the instance stream and returns a value in [0,1).
func (r *Random) Float() float32 {
	r.seed = floatMul*r.seed + floatInc
	bits := uint32(0x3f800000) | (uint32(r.seed) & 0x007fffff)
	return math.Float32frombits(bits) - 1.0
}

// Seed returns the instance stream state.
func (r *Random) Seed() int32 { return r.seed }

// SetSeed positions the instance stream.
func (r *Random) SetSeed(s int32) { r.seed = s }

// Sequence returns the sequencing stream state.
func (r *Random) Sequence() int32 { return r.seed2 }

// SetSequence positions the sequencing stream without touching the root.
func (r *Random) SetSequence(s int32) { r.seed2 = s }

// Root returns the root seed.
func (r *Random) Root() int32 { return r.root }

// SetRoot sets both the root and the working sequencing state.
func (r *Random) SetRoot(s int32) {
	r.root = s
	r.seed2 = s
}

// Rewind resets the sequencing stream to the root seed.
func (r *Random) Rewind() {
	r.seed2 = r.root
}

// Derive computes a root seed from wall-clock seconds, salted with a name so that
// several distributions created in the same second still differ.
func Derive(unixSeconds int64, salt string) int32 {
	v := int32(unixSeconds) + int32(xxhash.Sum64String(salt))
	return (floatMul*v + floatInc) & 0x7FFFFFFF
}
