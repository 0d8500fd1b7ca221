package noise

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/rand"
)

// ErrPositiveOctave is returned when legacy construction is asked for octaves
// with a positive index.
var ErrPositiveOctave = errors.New("positive octaves are not supported by legacy construction")

// legacySkippedDraws is the number of legacy draws one octave consumes while
// being built: three origin offsets of two draws each and 256 permutation swaps.
const legacySkippedDraws = 262

// Perlin is multi-octave Perlin noise. Octave i is sampled at frequency
// 2^(firstOctave+i) and weighted by amplitudes[i], with lower frequencies
// weighted more heavily.
type Perlin struct {
	levels      []*Improved
	amplitudes  []float64
	firstOctave int
	inputFactor float64
	valueFactor float64
}

// NewPerlin builds Perlin noise using positional seeding: the Source is forked
// into a positional factory and octave i is seeded with the salt
// "octave_<firstOctave+i>". Octaves with a zero amplitude are not built.
func NewPerlin(r rand.Source, firstOctave int, amplitudes []float64) *Perlin {
	p := newPerlin(firstOctave, amplitudes)
	f := r.ForkPositional()
	for i, a := range p.amplitudes {
		if a != 0 {
			p.levels[i] = NewImproved(f.FromHashOf("octave_" + strconv.Itoa(firstOctave+i)))
		}
	}
	return p
}

// NewLegacyPerlin builds Perlin noise by drawing octaves straight from the
// Source: octave 0 first, then every lower octave in descending order. Octaves
// with a zero amplitude still consume their draws. The order of construction is
// part of the seed contract.
func NewLegacyPerlin(r rand.Source, firstOctave int, amplitudes []float64) (*Perlin, error) {
	p := newPerlin(firstOctave, amplitudes)
	n, zero := len(p.amplitudes), -firstOctave
	if zero < n-1 {
		return nil, fmt.Errorf("first octave %d with %d amplitudes: %w", firstOctave, n, ErrPositiveOctave)
	}
	first := NewImproved(r)
	if zero >= 0 && zero < n && p.amplitudes[zero] != 0 {
		p.levels[zero] = first
	}
	for i := zero - 1; i >= 0; i-- {
		if i < n && p.amplitudes[i] != 0 {
			p.levels[i] = NewImproved(r)
			continue
		}
		r.Consume(legacySkippedDraws)
	}
	return p, nil
}

func newPerlin(firstOctave int, amplitudes []float64) *Perlin {
	n := len(amplitudes)
	return &Perlin{
		levels:      make([]*Improved, n),
		amplitudes:  append([]float64(nil), amplitudes...),
		firstOctave: firstOctave,
		inputFactor: math.Pow(2, float64(firstOctave)),
		valueFactor: math.Pow(2, float64(n-1)) / (math.Pow(2, float64(n)) - 1),
	}
}

// Sample sums every octave at the position passed.
func (p *Perlin) Sample(x, y, z float64) float64 {
	var v float64
	in, val := p.inputFactor, p.valueFactor
	for i, level := range p.levels {
		if level != nil {
			v += float64(p.amplitudes[i] * level.Sample(wrap(x*in), wrap(y*in), wrap(z*in)) * val)
		}
		in *= 2
		val /= 2
	}
	return v
}

// Octave returns the octave at index i, or nil if the octave has a zero
// amplitude.
func (p *Perlin) Octave(i int) *Improved {
	if i < 0 || i >= len(p.levels) {
		return nil
	}
	return p.levels[i]
}

// FirstOctave returns the octave index of the lowest frequency.
func (p *Perlin) FirstOctave() int {
	return p.firstOctave
}

const wrapPeriod = 33554432.0

// wrap keeps sampled coordinates within a range where float64 keeps enough
// fractional precision.
func wrap(v float64) float64 {
	return v - float64(math.Floor(v/wrapPeriod+0.5)*wrapPeriod)
}
