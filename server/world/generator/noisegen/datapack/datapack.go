// Package datapack loads noise settings, density functions, noises and
// splines from the worldgen directories of a datapack.
//
// A datapack is a file system with a data/<namespace>/worldgen tree per
// namespace. Functions, noises and splines of all namespaces are loaded, so
// that the noise settings of one namespace may reference those of another.
// Besides the usual density_function, noise and noise_settings directories,
// a spline directory holds named splines referenced by name from spline
// density functions.
package datapack

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/density"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/noise"
)

var (
	// ErrNamespaceNotFound is returned when the datapack has no data directory
	// for the namespace of the noise settings.
	ErrNamespaceNotFound = fmt.Errorf("%w: namespace not found", density.ErrConfiguration)
	// ErrInvalidDocument is returned for files that are not valid JSON or do
	// not match the schema of their directory.
	ErrInvalidDocument = fmt.Errorf("%w: invalid datapack document", density.ErrConfiguration)
)

// Options configure how a datapack is loaded.
type Options struct {
	// Log is the Logger used to report what was loaded. If nil,
	// slog.Default() is used.
	Log *slog.Logger
	// Biomes is set as the biome source of the settings loaded.
	Biomes noisegen.BiomeSource
}

// Load reads the noise settings data/<namespace>/worldgen/noise_settings/<name>.json
// from fsys, together with all density functions, noises and splines of the
// datapack.
func Load(fsys fs.FS, namespace, name string, opts Options) (*noisegen.Settings, error) {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	namespaces, err := fs.ReadDir(fsys, "data")
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrNamespaceNotFound, namespace, err)
	}
	l := &loader{
		fsys:      fsys,
		functions: make(map[string]*density.Def),
		splines:   make(map[string]*density.SplineDef),
		noises:    make(map[string]noise.Parameters),
	}
	found := false
	for _, ns := range namespaces {
		if !ns.IsDir() {
			continue
		}
		found = found || ns.Name() == namespace
		if err := l.namespace(ns.Name()); err != nil {
			return nil, err
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrNamespaceNotFound, namespace)
	}

	settingsPath := path.Join("data", namespace, "worldgen", "noise_settings", name+".json")
	data, err := fs.ReadFile(fsys, settingsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: noise settings %v:%v: %w", density.ErrConfiguration, namespace, name, err)
	}
	s, err := decodeSettings(data)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", settingsPath, err)
	}
	s.Functions, s.Splines, s.Noises = l.functions, l.splines, l.noises
	s.Biomes = opts.Biomes

	opts.Log.Debug("Loaded datapack.", "settings", namespace+":"+name, "namespaces", len(namespaces),
		"functions", len(l.functions), "noises", len(l.noises), "splines", len(l.splines))
	return s, nil
}

type loader struct {
	fsys      fs.FS
	functions map[string]*density.Def
	splines   map[string]*density.SplineDef
	noises    map[string]noise.Parameters
}

// namespace loads the functions, noises and splines of a namespace.
func (l *loader) namespace(ns string) error {
	root := path.Join("data", ns, "worldgen")
	if err := l.walk(ns, path.Join(root, "density_function"), docDensityFunction, func(name string, raw json.RawMessage) error {
		d, err := decodeDensity(raw)
		l.functions[name] = d
		return err
	}); err != nil {
		return err
	}
	if err := l.walk(ns, path.Join(root, "noise"), docNoise, func(name string, raw json.RawMessage) error {
		var p noise.Parameters
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		l.noises[name] = p
		return p.Validate()
	}); err != nil {
		return err
	}
	return l.walk(ns, path.Join(root, "spline"), docSpline, func(name string, raw json.RawMessage) error {
		s, err := decodeSpline(raw)
		l.splines[name] = s
		return err
	})
}

// walk calls f for every JSON file below dir after validating it. The name
// passed is the resource location of the file. A missing dir is not an error.
func (l *loader) walk(ns, dir string, doc document, f func(name string, raw json.RawMessage) error) error {
	if _, err := fs.Stat(l.fsys, dir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fs.WalkDir(l.fsys, dir, func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() || path.Ext(p) != ".json" {
			return nil
		}
		data, err := fs.ReadFile(l.fsys, p)
		if err != nil {
			return err
		}
		if err := validate(doc, data); err != nil {
			return fmt.Errorf("%v: %w", p, err)
		}
		name := ns + ":" + strings.TrimSuffix(strings.TrimPrefix(p, dir+"/"), ".json")
		if err := f(name, data); err != nil {
			return fmt.Errorf("%v: %w", p, wrapConfiguration(err))
		}
		return nil
	})
}

// wrapConfiguration makes sure err wraps density.ErrConfiguration.
func wrapConfiguration(err error) error {
	if errors.Is(err, density.ErrConfiguration) {
		return err
	}
	return fmt.Errorf("%w: %w", density.ErrConfiguration, err)
}

type settingsDocument struct {
	SeaLevel           int             `json:"sea_level"`
	LegacyRandomSource bool            `json:"legacy_random_source"`
	DefaultBlock       blockState      `json:"default_block"`
	DefaultFluid       blockState      `json:"default_fluid"`
	SurfaceRule        json.RawMessage `json:"surface_rule"`
	Noise              struct {
		MinY           int `json:"min_y"`
		Height         int `json:"height"`
		SizeHorizontal int `json:"size_horizontal"`
		SizeVertical   int `json:"size_vertical"`
	} `json:"noise"`
	Router map[string]json.RawMessage `json:"noise_router"`
}

func decodeSettings(data []byte) (*noisegen.Settings, error) {
	if err := validate(docNoiseSettings, data); err != nil {
		return nil, err
	}
	var doc settingsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	s := &noisegen.Settings{
		MinY:               doc.Noise.MinY,
		Height:             doc.Noise.Height,
		SizeHorizontal:     doc.Noise.SizeHorizontal,
		SizeVertical:       doc.Noise.SizeVertical,
		SeaLevel:           doc.SeaLevel,
		DefaultBlock:       doc.DefaultBlock.id(),
		DefaultFluid:       doc.DefaultFluid.id(),
		LegacyRandomSource: doc.LegacyRandomSource,
	}
	var err error
	if s.Router.FinalDensity, err = decodeDensity(doc.Router["final_density"]); err != nil {
		return nil, fmt.Errorf("final density: %w", wrapConfiguration(err))
	}
	if raw, ok := doc.Router["initial_density_without_jaggedness"]; ok {
		if s.Router.InitialDensityWithoutJaggedness, err = decodeDensity(raw); err != nil {
			return nil, fmt.Errorf("initial density without jaggedness: %w", wrapConfiguration(err))
		}
	}
	if doc.SurfaceRule != nil {
		if s.SurfaceRule, err = decodeRule(doc.SurfaceRule); err != nil {
			return nil, fmt.Errorf("surface rule: %w", wrapConfiguration(err))
		}
	}
	return s, nil
}
