package datapack

import (
	"embed"
	"io/fs"

	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen"
)

//go:embed preset
var preset embed.FS

const (
	// DefaultNamespace and DefaultSettings name the noise settings of the
	// datapack returned by Default.
	DefaultNamespace = "adamant"
	DefaultSettings  = "overworld"
)

// Default returns the datapack embedded in the binary. It holds a small
// overworld-like terrain with continents, caves and grass covered land.
func Default() fs.FS {
	sub, err := fs.Sub(preset, "preset")
	if err != nil {
		panic(err)
	}
	return sub
}

// LoadDefault loads the settings of the embedded datapack.
func LoadDefault(opts Options) (*noisegen.Settings, error) {
	return Load(Default(), DefaultNamespace, DefaultSettings, opts)
}
