// Package palette holds the static SGR color tables: the 16 ANSI colors,
// the 6x6x6 color cube, and the 24-step grey ramp, each resolved once to
// the renderer's pixel representation ([4]float32 RGBA, ready to feed to
// an OpenGL uniform) and never mutated afterward.
package palette

// RGBA is the renderer-pixel representation a Palette resolves indices to.
type RGBA [4]float32

// cubeRawLevels are the six xterm 256-color cube levels (indices 16-231),
// mapped to 8-bit intensities via level*255/31.
var cubeRawLevels = [6]int{0, 12, 16, 21, 26, 31}

var cubeLevels = buildCubeLevels()

func buildCubeLevels() [6]uint8 {
	var c [6]uint8
	for i, level := range cubeRawLevels {
		c[i] = uint8(level * 255 / 31)
	}
	return c
}

// greyLevels are the 24 grey steps for indices 232-255.
var greyLevels = buildGreyLevels()

func buildGreyLevels() [24]uint8 {
	var g [24]uint8
	for i := range g {
		g[i] = uint8(8 + i*10)
	}
	return g
}

// ansi16 is the base 16 ANSI colors (0-7 normal, 8-15 bright).
var ansi16 = [16]RGBA{
	{0.00, 0.00, 0.00, 1}, // 0 black
	{0.80, 0.00, 0.00, 1}, // 1 red
	{0.00, 0.80, 0.00, 1}, // 2 green
	{0.80, 0.80, 0.00, 1}, // 3 yellow
	{0.00, 0.00, 0.80, 1}, // 4 blue
	{0.80, 0.00, 0.80, 1}, // 5 magenta
	{0.00, 0.80, 0.80, 1}, // 6 cyan
	{0.80, 0.80, 0.80, 1}, // 7 white
	{0.40, 0.40, 0.40, 1}, // 8 bright black
	{1.00, 0.40, 0.40, 1}, // 9 bright red
	{0.40, 1.00, 0.40, 1}, // 10 bright green
	{1.00, 1.00, 0.40, 1}, // 11 bright yellow
	{0.40, 0.40, 1.00, 1}, // 12 bright blue
	{1.00, 0.40, 1.00, 1}, // 13 bright magenta
	{0.40, 1.00, 1.00, 1}, // 14 bright cyan
	{1.00, 1.00, 1.00, 1}, // 15 bright white
}

// Palette is the fixed 256-entry SGR color table plus the default fg/bg,
// allocated once at startup. Its entries are immutable thereafter.
type Palette struct {
	entries    [256]RGBA
	defaultFg  RGBA
	defaultBg  RGBA
}

// New builds a Palette from the renderer's chosen default foreground and
// background pixel values.
func New(defaultFg, defaultBg RGBA) *Palette {
	p := &Palette{defaultFg: defaultFg, defaultBg: defaultBg}
	for i := 0; i < 16; i++ {
		p.entries[i] = ansi16[i]
	}
	for i := 16; i < 232; i++ {
		idx := i - 16
		r := idx / 36
		g := (idx / 6) % 6
		b := idx % 6
		p.entries[i] = RGBA{
			float32(cubeLevels[r]) / 255,
			float32(cubeLevels[g]) / 255,
			float32(cubeLevels[b]) / 255,
			1,
		}
	}
	for i := 232; i < 256; i++ {
		level := float32(greyLevels[i-232]) / 255
		p.entries[i] = RGBA{level, level, level, 1}
	}
	return p
}

// Color256 resolves an indexed (0-255) SGR color.
func (p *Palette) Color256(index uint8) RGBA {
	return p.entries[index]
}

// DefaultFg returns the default foreground pixel value.
func (p *Palette) DefaultFg() RGBA { return p.defaultFg }

// DefaultBg returns the default background pixel value.
func (p *Palette) DefaultBg() RGBA { return p.defaultBg }
