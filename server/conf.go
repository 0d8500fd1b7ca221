package server

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dm-vev/adamant-worldgen/server/world/chunkstore"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/datapack"
	"github.com/dm-vev/adamant-worldgen/server/world/registry"
	"github.com/pelletier/go-toml"
)

// Config contains options for pre-generating the chunks of a dimension.
type Config struct {
	// Log is the Logger to use for logging information. If nil, Log is set to
	// slog.Default().
	Log *slog.Logger
	// Settings describe the terrain to generate. If nil, the settings of the
	// datapack embedded in the binary are used.
	Settings *noisegen.Settings
	// Blocks is the registry that block states are resolved with. If nil,
	// registry.Vanilla() is used.
	Blocks *registry.Registry
	// Seed is the world seed the settings are bound to.
	Seed int64
	// Dimension is the name under which chunks are stored. Defaults to
	// "overworld".
	Dimension string

	// Store is the chunk store generated chunks are written to. If nil, a
	// store is opened in Folder and closed by Pregenerator.Close.
	Store *chunkstore.DB
	// Folder is the directory of the chunk store opened if Store is nil.
	// Defaults to "world".
	Folder string

	// Center is the chunk in the middle of the square of chunks generated.
	Center noisegen.ChunkPos
	// Radius is the number of chunks generated on every side of Center. A
	// Radius of 0 generates only Center.
	Radius int
	// Workers is the number of goroutines generating chunks. If 0, Workers is
	// set to runtime.NumCPU().
	Workers int
	// QueueSize is the number of chunks that may wait for a worker. If 0, it
	// is chosen by the generator pool.
	QueueSize int
	// BatchSize is the number of chunks written to the store at once. Defaults
	// to 32.
	BatchSize int
}

// New creates a Pregenerator using the fields of conf: the settings are
// compiled and bound to the seed and the chunk store is opened. An error is
// returned if the settings are invalid or the store could not be opened.
func (conf Config) New() (*Pregenerator, error) {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Blocks == nil {
		conf.Blocks = registry.Vanilla()
	}
	if conf.Dimension == "" {
		conf.Dimension = "overworld"
	}
	if conf.Folder == "" {
		conf.Folder = "world"
	}
	if conf.Radius < 0 {
		return nil, fmt.Errorf("negative radius %v", conf.Radius)
	}
	if conf.Workers <= 0 {
		conf.Workers = runtime.NumCPU()
	}
	if conf.BatchSize <= 0 {
		conf.BatchSize = 32
	}
	if conf.Settings == nil {
		s, err := datapack.LoadDefault(datapack.Options{Log: conf.Log})
		if err != nil {
			return nil, fmt.Errorf("load default datapack: %w", err)
		}
		conf.Settings = s
	}

	compiled, err := noisegen.Compile(conf.Settings, conf.Blocks)
	if err != nil {
		return nil, fmt.Errorf("compile settings: %w", err)
	}
	st, err := compiled.Bind(conf.Seed)
	if err != nil {
		return nil, fmt.Errorf("bind settings: %w", err)
	}

	p := &Pregenerator{conf: conf, state: st, store: conf.Store}
	if p.store == nil {
		p.store, err = chunkstore.Config{Log: conf.Log, Blocks: conf.Blocks}.Open(conf.Folder)
		if err != nil {
			return nil, fmt.Errorf("open chunk store: %w", err)
		}
		p.ownsStore = true
	}
	return p, nil
}

// UserConfig is the user configuration of the pre-generator. It may be
// serialised to TOML and converted to a Config by calling UserConfig.Config().
type UserConfig struct {
	World struct {
		// Seed is the seed of the world generated.
		Seed int64
		// Datapack is the directory of the datapack that holds the noise
		// settings. If empty, the datapack embedded in the binary is used.
		Datapack string
		// Namespace and Settings name the noise settings in the datapack, read
		// from data/<Namespace>/worldgen/noise_settings/<Settings>.json.
		Namespace string
		Settings  string
		// Dimension is the name under which generated chunks are stored.
		Dimension string
		// Folder is the folder that generated chunks are stored in.
		Folder string
	}
	Generation struct {
		// CenterX and CenterZ are the chunk coordinates of the centre of the
		// square of chunks generated.
		CenterX, CenterZ int32
		// Radius is the number of chunks generated on every side of the centre.
		Radius int
		// Workers is the number of background workers that should be dedicated
		// to generating chunks. Set to 0 to automatically select a reasonable
		// default based on the host's CPU count.
		Workers int
		// QueueSize determines how many chunk generation jobs can wait for a
		// worker. Set to 0 to use an automatically chosen size.
		QueueSize int
	}
}

// Config converts a UserConfig to a Config, so that it may be used for creating
// a Pregenerator. An error is returned if loading the datapack failed.
func (uc UserConfig) Config(log *slog.Logger) (Config, error) {
	conf := Config{
		Log:       log,
		Seed:      uc.World.Seed,
		Dimension: uc.World.Dimension,
		Folder:    uc.World.Folder,
		Center:    noisegen.ChunkPos{uc.Generation.CenterX, uc.Generation.CenterZ},
		Radius:    uc.Generation.Radius,
		Workers:   uc.Generation.Workers,
		QueueSize: uc.Generation.QueueSize,
	}
	var fsys fs.FS = datapack.Default()
	if dir := strings.TrimSpace(uc.World.Datapack); dir != "" {
		fsys = os.DirFS(dir)
	}
	namespace, name := uc.World.Namespace, uc.World.Settings
	if namespace == "" {
		namespace = datapack.DefaultNamespace
	}
	if name == "" {
		name = datapack.DefaultSettings
	}
	settings, err := datapack.Load(fsys, namespace, name, datapack.Options{Log: log})
	if err != nil {
		return conf, fmt.Errorf("load datapack: %w", err)
	}
	conf.Settings = settings
	return conf, nil
}

// DefaultConfig returns a configuration with the default values filled out.
func DefaultConfig() UserConfig {
	c := UserConfig{}
	c.World.Seed = 0
	c.World.Namespace = datapack.DefaultNamespace
	c.World.Settings = datapack.DefaultSettings
	c.World.Dimension = "overworld"
	c.World.Folder = "world"
	c.Generation.Radius = 16
	return c
}

// LoadConfig reads the user configuration stored in the TOML file at path.
// Fields missing from the file keep their default value. If the file does
// not exist yet, it is created with the default configuration.
func LoadConfig(path string) (UserConfig, error) {
	c := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return c, errors.New("config path must not be empty")
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c, writeConfig(path, c)
		}
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(contents, &c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

func writeConfig(path string, c UserConfig) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	encoded, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
