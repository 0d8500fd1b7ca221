package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/dm-vev/adamant-worldgen/server/world/chunkstore"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/density"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/noise"
	"github.com/dm-vev/adamant-worldgen/server/world/registry"
)

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// hillSettings returns small settings with noisy terrain and no surface rule.
func hillSettings() *noisegen.Settings {
	return &noisegen.Settings{
		MinY:           0,
		Height:         64,
		SizeHorizontal: 1,
		SizeVertical:   2,
		SeaLevel:       20,
		DefaultBlock:   "minecraft:stone",
		DefaultFluid:   "minecraft:water[level=0]",
		Router: noisegen.Router{
			FinalDensity: density.Add(
				density.YClampedGradient(0, 64, 1, -1),
				density.Interpolated(density.Noise("test:hills", 1, 1)),
			),
		},
		Noises: map[string]noise.Parameters{
			"test:hills": {FirstOctave: -4, Amplitudes: []float64{1, 1}},
		},
	}
}

func newPregenerator(t *testing.T, conf Config) *Pregenerator {
	t.Helper()
	conf.Log = quietLog()
	if conf.Settings == nil {
		conf.Settings = hillSettings()
	}
	if conf.Folder == "" {
		conf.Folder = t.TempDir()
	}
	p, err := conf.New()
	if err != nil {
		t.Fatalf("new pregenerator: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestPregeneratorRun(t *testing.T) {
	t.Parallel()
	p := newPregenerator(t, Config{Seed: 99, Radius: 2, Center: noisegen.ChunkPos{10, -4}, Workers: 3, BatchSize: 4})

	sum, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Total != 25 || sum.Generated != 25 || sum.Skipped != 0 || sum.Failed != 0 {
		t.Fatalf("unexpected summary %+v", sum)
	}

	blocks := registry.Vanilla()
	for x := int32(8); x <= 12; x++ {
		for z := int32(-6); z <= -2; z++ {
			pos := noisegen.ChunkPos{x, z}
			want, err := noisegen.Generate(pos, hillSettings(), blocks, 99)
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			got, err := p.Store().Load("overworld", pos)
			if err != nil {
				t.Fatalf("load %v: %v", pos, err)
			}
			if got.Digest() != want.Digest() {
				t.Errorf("stored chunk %v differs from a directly generated chunk", pos)
			}
		}
	}
	if ok, _ := p.Store().Has("overworld", noisegen.ChunkPos{13, -4}); ok {
		t.Errorf("chunk outside of the radius was generated")
	}
}

func TestPregeneratorResume(t *testing.T) {
	t.Parallel()
	blocks := registry.Vanilla()
	store, err := chunkstore.Open(t.TempDir(), blocks)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	first := newPregenerator(t, Config{Store: store, Blocks: blocks, Radius: 1})
	if _, err := first.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	second := newPregenerator(t, Config{Store: store, Blocks: blocks, Radius: 2})
	sum, err := second.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if sum.Skipped != 9 || sum.Generated != 16 {
		t.Errorf("expected 9 skipped and 16 generated chunks, got %+v", sum)
	}
}

func TestPregeneratorCancelled(t *testing.T) {
	t.Parallel()
	p := newPregenerator(t, Config{Radius: 3})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sum, err := p.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if sum.Generated != 0 {
		t.Errorf("expected no chunks to be generated, got %v", sum.Generated)
	}
	if ok, _ := p.Store().Has("overworld", noisegen.ChunkPos{}); ok {
		t.Errorf("expected no chunk to be stored")
	}
}

func TestPregeneratorStoreUnreadable(t *testing.T) {
	t.Parallel()
	p := newPregenerator(t, Config{Radius: 1})
	if err := p.Store().Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	sum, err := p.Run(context.Background())
	if !errors.Is(err, leveldb.ErrClosed) {
		t.Fatalf("expected leveldb.ErrClosed, got %v", err)
	}
	if sum.Generated != 0 || sum.Skipped != 0 {
		t.Errorf("expected no chunks to be generated or skipped, got %+v", sum)
	}
}

func TestPregeneratorInvalidSettings(t *testing.T) {
	t.Parallel()
	s := hillSettings()
	s.Router.FinalDensity = density.Ref("test:missing")
	_, err := Config{Log: quietLog(), Settings: s, Folder: t.TempDir()}.New()
	if !errors.Is(err, density.ErrUnresolvedReference) {
		t.Errorf("expected ErrUnresolvedReference, got %v", err)
	}
}

func TestPositionsCoverSquare(t *testing.T) {
	p := &Pregenerator{conf: Config{Radius: 3, Center: noisegen.ChunkPos{-1, 7}}}
	positions := p.positions()
	if len(positions) != 49 {
		t.Fatalf("expected 49 positions, got %v", len(positions))
	}
	if positions[0] != (noisegen.ChunkPos{-1, 7}) {
		t.Errorf("expected the centre first, got %v", positions[0])
	}
	seen := make(map[noisegen.ChunkPos]bool)
	for _, pos := range positions {
		if seen[pos] {
			t.Fatalf("position %v listed twice", pos)
		}
		seen[pos] = true
		if pos.X() < -4 || pos.X() > 2 || pos.Z() < 4 || pos.Z() > 10 {
			t.Errorf("position %v outside of the square", pos)
		}
	}
}
