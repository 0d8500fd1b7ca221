// Package rand implements the deterministic random sources used by the noise
// based world generator. Every source produces the same stream for the same seed
// on every platform, and positional factories derive independent sources for
// block positions and named salts without consuming from a parent stream.
package rand

import (
	"crypto/md5"
	"encoding/binary"
	"unicode/utf16"
)

// Source is a stateful pseudo-random generator. A Source is mutated on every
// draw and must not be shared between goroutines.
type Source interface {
	// NextLong returns the next 64 random bits.
	NextLong() int64
	// NextInt returns the next 32 random bits.
	NextInt() int32
	// NextIntn returns a uniformly distributed value in [0, bound). NextIntn
	// panics if bound <= 0.
	NextIntn(bound int32) int32
	// NextDouble returns a value in [0, 1) with 53 bits of precision.
	NextDouble() float64
	// NextFloat returns a value in [0, 1) with 24 bits of precision.
	NextFloat() float32
	// NextBoolean returns a random bool.
	NextBoolean() bool
	// Consume discards the next n draws.
	Consume(n int)
	// Fork returns a new Source seeded from this one.
	Fork() Source
	// ForkPositional returns a PositionalFactory seeded from this Source.
	ForkPositional() PositionalFactory
}

// PositionalFactory derives independent Sources from positions or names. A
// factory is immutable and safe for concurrent use.
type PositionalFactory interface {
	// At returns a Source for the block position passed.
	At(x, y, z int) Source
	// FromHashOf returns a Source for the salt passed.
	FromHashOf(name string) Source
	// FromSeed returns a Source for an explicit seed.
	FromSeed(seed int64) Source
}

// Seed128 is a 128-bit seed split into a low and a high half.
type Seed128 struct {
	Lo, Hi uint64
}

// Xor returns the seed with both halves XORed with those of other.
func (s Seed128) Xor(other Seed128) Seed128 {
	return Seed128{Lo: s.Lo ^ other.Lo, Hi: s.Hi ^ other.Hi}
}

const (
	goldenRatio64 uint64 = 0x9e3779b97f4a7c15
	silverRatio64 uint64 = 0x6a09e667f3bcc909
)

// UpgradeSeed expands a 64-bit seed into a well mixed 128-bit seed.
func UpgradeSeed(seed int64) Seed128 {
	lo := uint64(seed) ^ silverRatio64
	hi := lo + goldenRatio64
	return Seed128{Lo: mixStafford13(lo), Hi: mixStafford13(hi)}
}

// HashOf returns the MD5 based 128-bit seed of the salt passed.
func HashOf(name string) Seed128 {
	sum := md5.Sum([]byte(name))
	return Seed128{
		Lo: binary.BigEndian.Uint64(sum[:8]),
		Hi: binary.BigEndian.Uint64(sum[8:]),
	}
}

// DeriveSeed combines a base seed with a salt. The result only depends on the
// two inputs.
func DeriveSeed(base Seed128, salt string) Seed128 {
	return HashOf(salt).Xor(base)
}

// PositionSeed hashes a block position into a seed.
func PositionSeed(x, y, z int) int64 {
	l := int64(int32(x)*3129871) ^ int64(int32(z))*116129781 ^ int64(int32(y))
	l = l*l*42317861 + l*11
	return l >> 16
}

func mixStafford13(z uint64) uint64 {
	z = (z ^ z>>30) * 0xbf58476d1ce4e5b9
	z = (z ^ z>>27) * 0x94d049bb133111eb
	return z ^ z>>31
}

// javaStringHash returns the hash code Java computes for a string: a
// polynomial over its UTF-16 code units.
func javaStringHash(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(c)
	}
	return h
}
