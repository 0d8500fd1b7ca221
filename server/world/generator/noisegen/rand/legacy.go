package rand

const (
	legacyMultiplier int64 = 0x5deece66d
	legacyAddend     int64 = 0xb
	legacyMask       int64 = 1<<48 - 1
)

// Legacy is a 48-bit linear congruential Source producing the same streams as
// java.util.Random. It backs settings that enable the legacy random source.
type Legacy struct {
	seed int64
}

// NewLegacy creates a Legacy source from the seed passed.
func NewLegacy(seed int64) *Legacy {
	return &Legacy{seed: (seed ^ legacyMultiplier) & legacyMask}
}

func (r *Legacy) next(n uint) int32 {
	r.seed = (r.seed*legacyMultiplier + legacyAddend) & legacyMask
	return int32(r.seed >> (48 - n))
}

// NextLong ...
func (r *Legacy) NextLong() int64 {
	hi := int64(r.next(32))
	return hi<<32 + int64(r.next(32))
}

// NextInt ...
func (r *Legacy) NextInt() int32 {
	return r.next(32)
}

// NextIntn ...
func (r *Legacy) NextIntn(bound int32) int32 {
	if bound <= 0 {
		panic("rand: invalid argument to NextIntn")
	}
	if bound&-bound == bound {
		return int32(int64(bound) * int64(r.next(31)) >> 31)
	}
	for {
		bits := r.next(31)
		val := bits % bound
		if bits-val+(bound-1) >= 0 {
			return val
		}
	}
}

// NextDouble ...
func (r *Legacy) NextDouble() float64 {
	hi := int64(r.next(26))
	return float64(hi<<27+int64(r.next(27))) * 0x1.0p-53
}

// NextFloat ...
func (r *Legacy) NextFloat() float32 {
	return float32(r.next(24)) * 0x1.0p-24
}

// NextBoolean ...
func (r *Legacy) NextBoolean() bool {
	return r.next(1) != 0
}

// Consume ...
func (r *Legacy) Consume(n int) {
	for i := 0; i < n; i++ {
		r.next(32)
	}
}

// Fork ...
func (r *Legacy) Fork() Source {
	return NewLegacy(r.NextLong())
}

// ForkPositional ...
func (r *Legacy) ForkPositional() PositionalFactory {
	return LegacyFactory{seed: r.NextLong()}
}

// LegacyFactory is the PositionalFactory of Legacy sources. Names are hashed
// with the Java string hash rather than MD5.
type LegacyFactory struct {
	seed int64
}

// At ...
func (f LegacyFactory) At(x, y, z int) Source {
	return NewLegacy(PositionSeed(x, y, z) ^ f.seed)
}

// FromHashOf ...
func (f LegacyFactory) FromHashOf(name string) Source {
	return NewLegacy(int64(javaStringHash(name)) ^ f.seed)
}

// FromSeed ...
func (f LegacyFactory) FromSeed(seed int64) Source {
	return NewLegacy(seed)
}
