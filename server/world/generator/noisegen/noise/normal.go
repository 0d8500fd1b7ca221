package noise

import (
	"errors"
	"fmt"

	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/rand"
)

// ErrInvalidParameters is returned for noise parameters that cannot produce a
// noise field.
var ErrInvalidParameters = errors.New("invalid noise parameters")

// Parameters configure a named noise.
type Parameters struct {
	FirstOctave int       `json:"firstOctave"`
	Amplitudes  []float64 `json:"amplitudes"`
}

// Validate checks that at least one octave has a non-zero amplitude.
func (p Parameters) Validate() error {
	for _, a := range p.Amplitudes {
		if a != 0 {
			return nil
		}
	}
	return fmt.Errorf("%w: no octave with a non-zero amplitude", ErrInvalidParameters)
}

// inputScale is the scale at which the second field is sampled so that the two
// lattices never line up.
const inputScale = 1.0181268882175227

// Normal is the sum of two Perlin fields built from the same Source, normalised
// so that its values have a roughly constant deviation regardless of the number
// of octaves.
type Normal struct {
	params      Parameters
	first       *Perlin
	second      *Perlin
	valueFactor float64
}

// NewNormal builds a Normal noise. The first field is built before the second.
func NewNormal(r rand.Source, params Parameters) (*Normal, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	n := &Normal{params: params}
	n.first = NewPerlin(r, params.FirstOctave, params.Amplitudes)
	n.second = NewPerlin(r, params.FirstOctave, params.Amplitudes)

	lowest, highest := len(params.Amplitudes), -1
	for i, a := range params.Amplitudes {
		if a != 0 {
			lowest = min(lowest, i)
			highest = max(highest, i)
		}
	}
	n.valueFactor = 0.16666666666666666 / expectedDeviation(highest-lowest)
	return n, nil
}

func expectedDeviation(octaves int) float64 {
	return 0.1 * (1 + 1/float64(octaves+1))
}

// Sample returns the noise value at the position passed.
func (n *Normal) Sample(x, y, z float64) float64 {
	return (n.first.Sample(x, y, z) + n.second.Sample(x*inputScale, y*inputScale, z*inputScale)) * n.valueFactor
}

// Parameters returns the parameters the noise was built from.
func (n *Normal) Parameters() Parameters {
	return n.params
}
