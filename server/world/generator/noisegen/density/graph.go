package density

import (
	"errors"
	"fmt"

	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/spline"
)

var (
	// ErrConfiguration is wrapped by every error that describes a defect in the
	// configuration of a generator.
	ErrConfiguration = errors.New("configuration error")

	ErrUnresolvedReference = fmt.Errorf("%w: unresolved reference", ErrConfiguration)
	ErrCyclicReference     = fmt.Errorf("%w: cyclic reference", ErrConfiguration)
	ErrCyclicSpline        = fmt.Errorf("%w: cyclic spline", ErrConfiguration)
	ErrUnsupported         = fmt.Errorf("%w: unsupported density function", ErrConfiguration)
)

// NodeID identifies a node of a Graph.
type NodeID uint32

// maxNodes is the number of nodes that fit in the node bits of a cache key.
const maxNodes = 1<<16 - 1

type node struct {
	kind   Kind
	args   [3]NodeID
	params [4]float64
	noise  int
	spline *spline.Spline
	rarity RarityMapper
	fn     func(Pos) float64
}

// Graph is a compiled set of density functions. A Graph is immutable and may be
// shared between goroutines.
type Graph struct {
	nodes        []node
	noises       []string
	interpolated []NodeID
	names        map[string]NodeID
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// Kind returns the kind of the node passed.
func (g *Graph) Kind(id NodeID) Kind { return g.nodes[id].kind }

// Noises returns the names of the noises sampled by the graph.
func (g *Graph) Noises() []string { return g.noises }

// Interpolated returns every interpolated node of the graph.
func (g *Graph) Interpolated() []NodeID { return g.interpolated }

// Named returns the node a named function was compiled to, if it was used.
func (g *Graph) Named(name string) (NodeID, bool) {
	id, ok := g.names[name]
	return id, ok
}

// Builder compiles Defs into a single Graph. Named functions and splines are
// compiled once, the first time they are referenced, and shared by every Def
// that references them. A Builder is not safe for concurrent use.
type Builder struct {
	functions map[string]*Def
	splines   map[string]*SplineDef

	g           *Graph
	noiseIndex  map[string]int
	compiled    map[*Def]NodeID
	visiting    map[*Def]bool
	visitingRef map[string]bool

	namedSplines   map[string]*spline.Spline
	visitingSpline map[string]bool
}

// Compile returns a Builder that resolves references through the named
// functions and splines passed.
func Compile(functions map[string]*Def, splines map[string]*SplineDef) *Builder {
	return &Builder{
		functions:      functions,
		splines:        splines,
		g:              &Graph{names: make(map[string]NodeID)},
		noiseIndex:     make(map[string]int),
		compiled:       make(map[*Def]NodeID),
		visiting:       make(map[*Def]bool),
		visitingRef:    make(map[string]bool),
		namedSplines:   make(map[string]*spline.Spline),
		visitingSpline: make(map[string]bool),
	}
}

// Build compiles def into the graph and returns its root node.
func (b *Builder) Build(def *Def) (NodeID, error) {
	if def == nil {
		return 0, fmt.Errorf("%w: missing density function", ErrConfiguration)
	}
	if id, ok := b.compiled[def]; ok {
		return id, nil
	}
	if b.visiting[def] {
		return 0, fmt.Errorf("%w through %v", ErrCyclicReference, def.Kind)
	}
	b.visiting[def] = true
	defer delete(b.visiting, def)

	if def.Kind == KindReference {
		id, err := b.reference(def.Ref)
		if err != nil {
			return 0, err
		}
		b.compiled[def] = id
		return id, nil
	}

	n := node{kind: def.Kind, noise: -1}
	var err error
	switch def.Kind {
	case KindConstant:
		n.params[0] = def.Value
	case KindNoise:
		n.params[0], n.params[1] = def.XZScale, def.YScale
		n.noise, err = b.noise(def)
	case KindShiftedNoise:
		n.params[0], n.params[1] = def.XZScale, def.YScale
		if n.noise, err = b.noise(def); err == nil {
			err = b.children(def, &n, def.ShiftX, def.ShiftY, def.ShiftZ)
		}
	case KindShiftA, KindShiftB, KindShift:
		n.noise, err = b.noise(def)
	case KindAdd, KindMul, KindMin, KindMax:
		err = b.children(def, &n, def.Argument, def.Argument2)
	case KindClamp:
		n.params[0], n.params[1] = def.Min, def.Max
		err = b.children(def, &n, def.Argument)
	case KindAbs, KindSquare, KindCube, KindHalfNegative, KindQuarterNegative, KindSqueeze,
		KindInterpolated, KindFlatCache, KindCache2D, KindCacheOnce, KindCacheAllInCell, KindBlendDensity:
		err = b.children(def, &n, def.Argument)
	case KindYClampedGradient:
		n.params = [4]float64{float64(def.FromY), float64(def.ToY), def.FromValue, def.ToValue}
	case KindRangeChoice:
		n.params[0], n.params[1] = def.Min, def.Max
		err = b.children(def, &n, def.Argument, def.WhenInRange, def.WhenOutOfRange)
	case KindSpline:
		n.spline, err = b.spline(def.Spline, nil)
	case KindBlendAlpha, KindBlendOffset, KindBeardifier:
	case KindWeirdScaledSampler:
		if def.Rarity != RarityType1 && def.Rarity != RarityType2 {
			return 0, fmt.Errorf("%w: unknown rarity mapper %d", ErrConfiguration, def.Rarity)
		}
		n.rarity = def.Rarity
		if n.noise, err = b.noise(def); err == nil {
			err = b.children(def, &n, def.Argument)
		}
	case KindFunc:
		if def.Func == nil {
			return 0, fmt.Errorf("%w: func without a function", ErrConfiguration)
		}
		n.fn = def.Func
	default:
		return 0, fmt.Errorf("%w: %v", ErrUnsupported, def.Kind)
	}
	if err != nil {
		return 0, err
	}
	id, err := b.add(n)
	if err != nil {
		return 0, err
	}
	b.compiled[def] = id
	return id, nil
}

// Graph returns the graph built so far. The Builder must not be used after
// calling Graph.
func (b *Builder) Graph() *Graph {
	g := b.g
	b.g = nil
	return g
}

func (b *Builder) add(n node) (NodeID, error) {
	if len(b.g.nodes) >= maxNodes {
		return 0, fmt.Errorf("%w: more than %d density function nodes", ErrConfiguration, maxNodes)
	}
	id := NodeID(len(b.g.nodes))
	b.g.nodes = append(b.g.nodes, n)
	if n.kind == KindInterpolated {
		b.g.interpolated = append(b.g.interpolated, id)
	}
	return id, nil
}

func (b *Builder) children(def *Def, n *node, children ...*Def) error {
	for i, c := range children {
		if c == nil {
			return fmt.Errorf("%w: %v is missing argument %d", ErrConfiguration, def.Kind, i+1)
		}
		id, err := b.Build(c)
		if err != nil {
			return fmt.Errorf("%v: %w", def.Kind, err)
		}
		n.args[i] = id
	}
	return nil
}

func (b *Builder) reference(name string) (NodeID, error) {
	if id, ok := b.g.names[name]; ok {
		return id, nil
	}
	if b.visitingRef[name] {
		return 0, fmt.Errorf("%w: %q", ErrCyclicReference, name)
	}
	def, ok := b.functions[name]
	if !ok {
		return 0, fmt.Errorf("%w: density function %q", ErrUnresolvedReference, name)
	}
	b.visitingRef[name] = true
	defer delete(b.visitingRef, name)

	id, err := b.Build(def)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", name, err)
	}
	b.g.names[name] = id
	return id, nil
}

func (b *Builder) noise(def *Def) (int, error) {
	if def.Noise == "" {
		return -1, fmt.Errorf("%w: %v without a noise", ErrConfiguration, def.Kind)
	}
	if i, ok := b.noiseIndex[def.Noise]; ok {
		return i, nil
	}
	i := len(b.g.noises)
	b.g.noises = append(b.g.noises, def.Noise)
	b.noiseIndex[def.Noise] = i
	return i, nil
}

// spline compiles a spline. The coordinate of the spline is the NodeID of its
// coordinate function. parent is the coordinate inherited by inline splines.
func (b *Builder) spline(def *SplineDef, parent *Def) (*spline.Spline, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: missing spline", ErrConfiguration)
	}
	if def.Ref != "" {
		return b.namedSpline(def.Ref)
	}
	coordinate := def.Coordinate
	if coordinate == nil {
		coordinate = parent
	}
	if coordinate == nil {
		return nil, fmt.Errorf("%w: spline without a coordinate", ErrConfiguration)
	}
	c, err := b.Build(coordinate)
	if err != nil {
		return nil, fmt.Errorf("spline coordinate: %w", err)
	}
	points := make([]spline.Point, len(def.Points))
	for i, p := range def.Points {
		points[i] = spline.Point{Location: p.Location, Derivative: p.Derivative, Value: spline.Constant(p.Value)}
		if p.Spline != nil {
			nested, err := b.spline(p.Spline, coordinate)
			if err != nil {
				return nil, err
			}
			points[i].Value = spline.Nested(nested)
		}
	}
	s, err := spline.New(int(c), points)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return s, nil
}

func (b *Builder) namedSpline(name string) (*spline.Spline, error) {
	if s, ok := b.namedSplines[name]; ok {
		return s, nil
	}
	if b.visitingSpline[name] {
		return nil, fmt.Errorf("%w: %q", ErrCyclicSpline, name)
	}
	def, ok := b.splines[name]
	if !ok {
		return nil, fmt.Errorf("%w: spline %q", ErrUnresolvedReference, name)
	}
	b.visitingSpline[name] = true
	defer delete(b.visitingSpline, name)

	s, err := b.spline(def, nil)
	if err != nil {
		return nil, fmt.Errorf("spline %q: %w", name, err)
	}
	b.namedSplines[name] = s
	return s, nil
}
