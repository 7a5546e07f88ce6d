package palette

import "testing"

func TestAnsiColorsMatchBaseTable(t *testing.T) {
	p := New(RGBA{1, 1, 1, 1}, RGBA{0, 0, 0, 1})
	for i := 0; i < 16; i++ {
		if p.Color256(uint8(i)) != ansi16[i] {
			t.Fatalf("index %d: expected %v, got %v", i, ansi16[i], p.Color256(uint8(i)))
		}
	}
}

func TestCubeCornersMatchLevelFormula(t *testing.T) {
	p := New(RGBA{1, 1, 1, 1}, RGBA{0, 0, 0, 1})
	// Index 16 = cube(0,0,0): all channels at level 0 -> 0.
	black := p.Color256(16)
	if black != (RGBA{0, 0, 0, 1}) {
		t.Fatalf("expected cube origin to be black, got %v", black)
	}
	// Index 231 = cube(5,5,5): all channels at level 31 -> 255/255 = 1.0.
	white := p.Color256(231)
	if white != (RGBA{1, 1, 1, 1}) {
		t.Fatalf("expected cube(5,5,5) to be full intensity, got %v", white)
	}
}

func TestGreyRampIsMonotonic(t *testing.T) {
	p := New(RGBA{1, 1, 1, 1}, RGBA{0, 0, 0, 1})
	prev := float32(-1)
	for i := 232; i < 256; i++ {
		c := p.Color256(uint8(i))
		if c[0] <= prev {
			t.Fatalf("grey ramp not monotonic at index %d: %v <= %v", i, c[0], prev)
		}
		prev = c[0]
	}
}

func TestDefaultFgBg(t *testing.T) {
	fg := RGBA{1, 1, 1, 1}
	bg := RGBA{0, 0, 0, 1}
	p := New(fg, bg)
	if p.DefaultFg() != fg || p.DefaultBg() != bg {
		t.Fatalf("expected default fg/bg to round-trip")
	}
}
