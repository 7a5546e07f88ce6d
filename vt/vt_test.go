package vt

import (
	"testing"

	"github.com/corvidterm/corvid/grid"
	"github.com/corvidterm/corvid/palette"
	"github.com/corvidterm/corvid/parser"
)

type recordingReply struct {
	writes [][]byte
}

func (r *recordingReply) WriteReply(b []byte) {
	r.writes = append(r.writes, append([]byte(nil), b...))
}

func newExecutor(w, h int) (*Executor, *parser.Parser, *recordingReply) {
	pal := palette.New(palette.RGBA{1, 1, 1, 1}, palette.RGBA{0, 0, 0, 1})
	g := grid.New(w, h, pal)
	reply := &recordingReply{}
	ex := New(g, pal, reply)
	p := parser.New(ex, false, nil)
	return ex, p, reply
}

func TestSGRThenPrint(t *testing.T) {
	ex, p, _ := newExecutor(80, 25)
	p.Process([]byte("\x1b[31mx"))

	cell := ex.Grid.Cell(0, 0)
	if cell.Glyph != 'x' {
		t.Fatalf("expected glyph x, got %q", cell.Glyph)
	}
	if !cell.Dirty {
		t.Fatalf("expected dirty cell")
	}
	wantFg := palette.New(palette.RGBA{1, 1, 1, 1}, palette.RGBA{0, 0, 0, 1}).Color256(1)
	if cell.Fg != wantFg {
		t.Fatalf("expected red fg %v, got %v", wantFg, cell.Fg)
	}
	x, y := ex.Grid.Cursor()
	if x != 1 || y != 0 {
		t.Fatalf("expected cursor (1,0), got (%d,%d)", x, y)
	}
}

func TestCursorPositionThenQuery(t *testing.T) {
	ex, p, reply := newExecutor(80, 25)
	p.Process([]byte("\x1b[5;7H\x1b[6n"))

	x, y := ex.Grid.Cursor()
	if x != 6 || y != 4 {
		t.Fatalf("expected cursor (6,4), got (%d,%d)", x, y)
	}
	if len(reply.writes) != 1 || string(reply.writes[0]) != "\x1b[5;7R" {
		t.Fatalf("expected DSR reply \\x1b[5;7R, got %q", reply.writes)
	}
}

func TestWrapSuppression(t *testing.T) {
	ex, p, _ := newExecutor(4, 25)
	p.Process([]byte("ABCD\nE"))

	row0 := []rune{ex.Grid.Cell(0, 0).Glyph, ex.Grid.Cell(1, 0).Glyph, ex.Grid.Cell(2, 0).Glyph, ex.Grid.Cell(3, 0).Glyph}
	if string(row0) != "ABCD" {
		t.Fatalf("expected row0 ABCD, got %q", string(row0))
	}
	if ex.Grid.Cell(0, 1).Glyph != 'E' {
		t.Fatalf("expected row1[0]=E, got %q", ex.Grid.Cell(0, 1).Glyph)
	}
	x, y := ex.Grid.Cursor()
	if x != 1 || y != 1 {
		t.Fatalf("expected cursor (1,1), got (%d,%d)", x, y)
	}
	if ex.justWrapped {
		t.Fatalf("expected just_wrapped=false after the sequence settles")
	}
}

func TestInsertCharacters(t *testing.T) {
	ex, p, _ := newExecutor(80, 25)
	p.Process([]byte("abcdef\n"))
	ex.Grid.SetCursor(2, 0)
	p.Process([]byte("\x1b[2@"))

	got := make([]rune, 8)
	for i := range got {
		got[i] = ex.Grid.Cell(i, 0).Glyph
	}
	if string(got) != "ab  cdef" {
		t.Fatalf("expected 'ab  cdef', got %q", string(got))
	}
}

func TestAlternateScreenRoundTrip(t *testing.T) {
	ex, p, _ := newExecutor(4, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			ex.Grid.Put(x, y, '*', grid.DefaultRendition(palette.New(palette.RGBA{1, 1, 1, 1}, palette.RGBA{0, 0, 0, 1})))
		}
	}

	p.Process([]byte("\x1b[?1049h"))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			if ex.Grid.Cell(x, y).Glyph != ' ' {
				t.Fatalf("expected blank alternate screen at (%d,%d)", x, y)
			}
			if !ex.Grid.Cell(x, y).Dirty {
				t.Fatalf("expected dirty alternate screen at (%d,%d)", x, y)
			}
		}
	}

	p.Process([]byte("\x1b[?1049l"))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			if ex.Grid.Cell(x, y).Glyph != '*' {
				t.Fatalf("expected original primary content restored at (%d,%d)", x, y)
			}
		}
	}
}

func TestUtf8GlyphWrite(t *testing.T) {
	ex, p, _ := newExecutor(80, 25)
	p.Process([]byte{0xE2, 0x82, 0xAC})
	if ex.Grid.Cell(0, 0).Glyph != '€' {
		t.Fatalf("expected euro sign at (0,0), got %q", ex.Grid.Cell(0, 0).Glyph)
	}
	x, y := ex.Grid.Cursor()
	if x != 1 || y != 0 {
		t.Fatalf("expected cursor (1,0), got (%d,%d)", x, y)
	}
}

func TestInvariantsAfterRandomCommands(t *testing.T) {
	ex, p, _ := newExecutor(10, 10)
	p.Process([]byte("\x1b[20;20H\x1b[5;3rfoo\nbar\x1b[2J\x1b[100Abaz"))

	x, y := ex.Grid.Cursor()
	if x < 0 || x >= ex.Grid.W || y < 0 || y >= ex.Grid.H {
		t.Fatalf("cursor out of bounds: (%d,%d)", x, y)
	}
	begin, end := ex.Grid.ScrollRegion()
	if begin < 0 || end >= ex.Grid.H || begin > end {
		t.Fatalf("scroll region invariant violated: [%d,%d]", begin, end)
	}
}
