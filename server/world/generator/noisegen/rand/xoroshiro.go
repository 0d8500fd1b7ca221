package rand

import "math/bits"

// Xoroshiro is a Xoroshiro128++ Source. It is the default random source of the
// generator.
type Xoroshiro struct {
	lo, hi uint64
}

// NewXoroshiro creates a Xoroshiro source from a 64-bit seed. The seed is
// upgraded to 128 bits first.
func NewXoroshiro(seed int64) *Xoroshiro {
	s := UpgradeSeed(seed)
	return NewXoroshiro128(s.Lo, s.Hi)
}

// NewXoroshiro128 creates a Xoroshiro source from an explicit 128-bit state. An
// all-zero state is replaced with a fixed non-zero one.
func NewXoroshiro128(lo, hi uint64) *Xoroshiro {
	if lo|hi == 0 {
		lo, hi = goldenRatio64, silverRatio64
	}
	return &Xoroshiro{lo: lo, hi: hi}
}

// NextLong ...
func (x *Xoroshiro) NextLong() int64 {
	lo, hi := x.lo, x.hi
	n := bits.RotateLeft64(lo+hi, 17) + lo
	hi ^= lo
	x.lo = bits.RotateLeft64(lo, 49) ^ hi ^ (hi << 21)
	x.hi = bits.RotateLeft64(hi, 28)
	return int64(n)
}

// NextInt ...
func (x *Xoroshiro) NextInt() int32 {
	return int32(x.NextLong())
}

// NextIntn uses Lemire's multiply-and-reject method on 32-bit draws.
func (x *Xoroshiro) NextIntn(bound int32) int32 {
	if bound <= 0 {
		panic("rand: invalid argument to NextIntn")
	}
	b := uint64(bound)
	l := uint64(uint32(x.NextInt()))
	m := l * b
	low := m & 0xffffffff
	if low < b {
		threshold := uint64(uint32(-bound) % uint32(bound))
		for low < threshold {
			l = uint64(uint32(x.NextInt()))
			m = l * b
			low = m & 0xffffffff
		}
	}
	return int32(m >> 32)
}

// NextDouble ...
func (x *Xoroshiro) NextDouble() float64 {
	return float64(uint64(x.NextLong())>>11) * 0x1.0p-53
}

// NextFloat ...
func (x *Xoroshiro) NextFloat() float32 {
	return float32(uint64(x.NextLong())>>40) * 0x1.0p-24
}

// NextBoolean ...
func (x *Xoroshiro) NextBoolean() bool {
	return x.NextLong()&1 != 0
}

// Consume ...
func (x *Xoroshiro) Consume(n int) {
	for i := 0; i < n; i++ {
		x.NextLong()
	}
}

// Fork ...
func (x *Xoroshiro) Fork() Source {
	lo := uint64(x.NextLong())
	return NewXoroshiro128(lo, uint64(x.NextLong()))
}

// ForkPositional ...
func (x *Xoroshiro) ForkPositional() PositionalFactory {
	lo := uint64(x.NextLong())
	return XoroshiroFactory{lo: lo, hi: uint64(x.NextLong())}
}

// XoroshiroFactory is the PositionalFactory of Xoroshiro sources.
type XoroshiroFactory struct {
	lo, hi uint64
}

// At ...
func (f XoroshiroFactory) At(x, y, z int) Source {
	return NewXoroshiro128(uint64(PositionSeed(x, y, z))^f.lo, f.hi)
}

// FromHashOf ...
func (f XoroshiroFactory) FromHashOf(name string) Source {
	s := DeriveSeed(Seed128{Lo: f.lo, Hi: f.hi}, name)
	return NewXoroshiro128(s.Lo, s.Hi)
}

// FromSeed ...
func (f XoroshiroFactory) FromSeed(seed int64) Source {
	return NewXoroshiro128(uint64(seed)^f.lo, uint64(seed)^f.hi)
}
