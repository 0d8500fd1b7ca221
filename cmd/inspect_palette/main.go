// Command inspect_palette prints the blocks of a chunk stored by pregen,
// together with how often each of them occurs.
package main

import (
	"cmp"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/dm-vev/adamant-worldgen/server"
	"github.com/dm-vev/adamant-worldgen/server/world/chunkstore"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen"
	"github.com/dm-vev/adamant-worldgen/server/world/registry"
)

func main() {
	configPath := flag.String("config", "config.toml", "path of the TOML configuration file of pregen")
	x := flag.Int("x", 0, "chunk x")
	z := flag.Int("z", 0, "chunk z")
	flag.Parse()

	if err := inspect(*configPath, noisegen.ChunkPos{int32(*x), int32(*z)}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func inspect(configPath string, pos noisegen.ChunkPos) error {
	uc, err := server.LoadConfig(configPath)
	if err != nil {
		return err
	}
	blocks := registry.Vanilla()
	db, err := chunkstore.Open(uc.World.Folder, blocks)
	if err != nil {
		return err
	}
	defer db.Close()

	c, err := db.Load(uc.World.Dimension, pos)
	if err != nil {
		return err
	}
	counts := make(map[registry.BlockState]int)
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			for _, s := range c.Column(x, z) {
				counts[s]++
			}
		}
	}
	states := make([]registry.BlockState, 0, len(counts))
	for s := range counts {
		states = append(states, s)
	}
	slices.SortFunc(states, func(a, b registry.BlockState) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	minY, height := c.Range()
	fmt.Printf("chunk %v (y %v to %v, digest %016x)\n", pos, minY, minY+height-1, c.Digest())
	for _, s := range states {
		fmt.Printf("%s => %d\n", blocks.Name(s), counts[s])
	}
	return nil
}
