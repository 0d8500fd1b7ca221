package rand

import "testing"

func TestLegacyMatchesJavaRandom(t *testing.T) {
	for _, tc := range []struct {
		seed int64
		want int32
	}{
		{seed: 0, want: -1155484576},
		{seed: 42, want: -1170105035},
	} {
		if got := NewLegacy(tc.seed).NextInt(); got != tc.want {
			t.Errorf("NewLegacy(%d).NextInt() = %d, want %d", tc.seed, got, tc.want)
		}
	}
}

func TestJavaStringHash(t *testing.T) {
	if got := javaStringHash("hello"); got != 99162322 {
		t.Fatalf("javaStringHash(hello) = %d, want 99162322", got)
	}
	if got := javaStringHash(""); got != 0 {
		t.Fatalf("javaStringHash(\"\") = %d, want 0", got)
	}
}

func TestSourcesFromSameSeedAgree(t *testing.T) {
	t.Parallel()

	sources := map[string][2]Source{
		"xoroshiro": {NewXoroshiro(1234), NewXoroshiro(1234)},
		"legacy":    {NewLegacy(1234), NewLegacy(1234)},
	}
	for name, pair := range sources {
		a, b := pair[0], pair[1]
		for i := 0; i < 1000; i++ {
			switch i % 5 {
			case 0:
				if x, y := a.NextLong(), b.NextLong(); x != y {
					t.Fatalf("%s: draw %d: NextLong %d != %d", name, i, x, y)
				}
			case 1:
				if x, y := a.NextDouble(), b.NextDouble(); x != y {
					t.Fatalf("%s: draw %d: NextDouble %v != %v", name, i, x, y)
				}
			case 2:
				if x, y := a.NextIntn(100), b.NextIntn(100); x != y {
					t.Fatalf("%s: draw %d: NextIntn %d != %d", name, i, x, y)
				}
			case 3:
				if x, y := a.NextFloat(), b.NextFloat(); x != y {
					t.Fatalf("%s: draw %d: NextFloat %v != %v", name, i, x, y)
				}
			default:
				if x, y := a.NextIntn(256), b.NextIntn(256); x != y {
					t.Fatalf("%s: draw %d: NextIntn(256) %d != %d", name, i, x, y)
				}
			}
		}
	}
}

func TestDrawRanges(t *testing.T) {
	t.Parallel()

	for _, src := range []Source{NewXoroshiro(-7), NewLegacy(-7)} {
		for i := 0; i < 10000; i++ {
			if v := src.NextDouble(); v < 0 || v >= 1 {
				t.Fatalf("NextDouble out of range: %v", v)
			}
			if v := src.NextFloat(); v < 0 || v >= 1 {
				t.Fatalf("NextFloat out of range: %v", v)
			}
			if v := src.NextIntn(7); v < 0 || v >= 7 {
				t.Fatalf("NextIntn(7) out of range: %d", v)
			}
		}
	}
}

func TestZeroStateIsReplaced(t *testing.T) {
	x := NewXoroshiro128(0, 0)
	if x.NextLong() == 0 && x.NextLong() == 0 {
		t.Fatal("expected a zero state to be replaced with a non-zero one")
	}
}

func TestPositionalFactoryIsPure(t *testing.T) {
	t.Parallel()

	for _, f := range []PositionalFactory{NewXoroshiro(99).ForkPositional(), NewLegacy(99).ForkPositional()} {
		a := f.At(12, -40, 7).NextLong()
		b := f.At(12, -40, 7).NextLong()
		if a != b {
			t.Fatalf("At is not pure: %d != %d", a, b)
		}
		if c := f.At(13, -40, 7).NextLong(); c == a {
			t.Fatalf("neighbouring positions produced the same draw %d", c)
		}
		if f.FromHashOf("minecraft:offset").NextLong() != f.FromHashOf("minecraft:offset").NextLong() {
			t.Fatal("FromHashOf is not pure")
		}
	}
}

func TestDeriveSeed(t *testing.T) {
	base := UpgradeSeed(0)
	a := DeriveSeed(base, "octave_-3")
	if a != DeriveSeed(base, "octave_-3") {
		t.Fatal("DeriveSeed is not deterministic")
	}
	if a == DeriveSeed(base, "octave_-2") {
		t.Fatal("different salts derived the same seed")
	}
	if a == DeriveSeed(UpgradeSeed(1), "octave_-3") {
		t.Fatal("different bases derived the same seed")
	}
	// Deriving twice with the same salt returns the base.
	if DeriveSeed(a, "octave_-3") != base {
		t.Fatal("expected DeriveSeed to be an involution for a fixed salt")
	}
}

func TestPositionSeedWrapsLikeInt32(t *testing.T) {
	// Large coordinates overflow the 32-bit multiplication of x but must still
	// produce a stable seed.
	if PositionSeed(30_000_000, 0, 0) != PositionSeed(30_000_000, 0, 0) {
		t.Fatal("PositionSeed is not deterministic")
	}
	if PositionSeed(0, 0, 0) != 0 {
		t.Fatalf("PositionSeed(0, 0, 0) = %d, want 0", PositionSeed(0, 0, 0))
	}
}

func TestXoroshiroReferenceStream(t *testing.T) {
	x := NewXoroshiro128(1, 2)
	for i, want := range []int64{393217, 669327710093319, 1732421326133921491, -7051953992050424633} {
		if got := x.NextLong(); got != want {
			t.Fatalf("draw %d: NextLong() = %d, want %d", i, got, want)
		}
	}
}

func TestUpgradeSeedReference(t *testing.T) {
	if got, want := UpgradeSeed(0), (Seed128{Lo: 0x3564b439cd1e1f16, Hi: 0x63cfc62a2b097592}); got != want {
		t.Fatalf("UpgradeSeed(0) = %#x, want %#x", got, want)
	}
	x := NewXoroshiro(0)
	for i, want := range []int64{3038984756725240190, -3694039286755638414} {
		if got := x.NextLong(); got != want {
			t.Fatalf("draw %d: NextLong() = %d, want %d", i, got, want)
		}
	}
	x = NewXoroshiro(42)
	for i, want := range []int32{41, 31, 85, 48, 66} {
		if got := x.NextIntn(100); got != want {
			t.Fatalf("draw %d: NextIntn(100) = %d, want %d", i, got, want)
		}
	}
}

func TestHashOfReference(t *testing.T) {
	for name, want := range map[string]Seed128{
		"minecraft:surface": {Lo: 0x4b3097bbe1a7e1ac, Hi: 0xf49561571ec10de8},
		"octave_-4":         {Lo: 0xbd90d5377ba1b762, Hi: 0xc07317d419a7548d},
	} {
		if got := HashOf(name); got != want {
			t.Errorf("HashOf(%q) = %#x, want %#x", name, got, want)
		}
	}

	f := NewXoroshiro(0).ForkPositional().(XoroshiroFactory)
	if f.lo != 0x2a2ca488f66f517e || f.hi != 0xccbc22d72e97c372 {
		t.Fatalf("forked factory state %#x %#x", f.lo, f.hi)
	}
	if got := f.FromHashOf("minecraft:surface").NextLong(); got != 5657298976704160604 {
		t.Fatalf("FromHashOf(minecraft:surface).NextLong() = %d, want 5657298976704160604", got)
	}
}
