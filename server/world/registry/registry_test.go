package registry

import (
	"errors"
	"sync"
	"testing"
)

func TestRegistryInterns(t *testing.T) {
	t.Parallel()

	r := New()
	if s, err := r.Block("air"); err != nil || s != Air {
		t.Fatalf("air: got %v, %v", s, err)
	}
	stone := r.Register("stone")
	if again := r.Register("minecraft:stone"); again != stone {
		t.Fatalf("stone registered twice as %v and %v", stone, again)
	}
	if name := r.Name(stone); name != "minecraft:stone" {
		t.Fatalf("name = %q", name)
	}
	if _, err := r.Block("minecraft:dirt"); !errors.Is(err, ErrUnknownBlock) {
		t.Fatalf("dirt: got %v, want ErrUnknownBlock", err)
	}
	if r.Name(BlockState(100)) != "" {
		t.Fatalf("unregistered handle has a name")
	}
}

func TestNormaliseSortsProperties(t *testing.T) {
	t.Parallel()

	got := StateID("oak_log", map[string]string{"axis": "y", "age": "0"})
	if want := "minecraft:oak_log[age=0,axis=y]"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := Normalise("minecraft:grass_block[]"); got != "minecraft:grass_block" {
		t.Fatalf("got %q", got)
	}
}

func TestRegistryConcurrentUse(t *testing.T) {
	t.Parallel()

	r := Vanilla()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.MustBlock("minecraft:stone")
				r.Register("minecraft:gravel")
			}
		}()
	}
	wg.Wait()
}

func TestColdEnoughToSnow(t *testing.T) {
	t.Parallel()

	if Plains.ColdEnoughToSnow(64) {
		t.Fatalf("plains is cold at sea level")
	}
	if !Plains.ColdEnoughToSnow(700) {
		t.Fatalf("plains is warm at y=700")
	}
	if b, ok := LookupBiome("snowy_plains"); !ok || !b.ColdEnoughToSnow(0) {
		t.Fatalf("snowy plains: %v %v", b, ok)
	}
}
