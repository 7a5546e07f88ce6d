// Package grid implements the double-buffered character grid: two fixed
// W×H cell matrices (primary and alternate), each with its own cursor and
// scrolling region, plus dirty-bit tracking for the renderer.
package grid

import "github.com/corvidterm/corvid/palette"

// Cell is a single terminal cell: a glyph and the rendition it was
// written with, plus a dirty bit the renderer clears once it has drawn
// the cell.
type Cell struct {
	Glyph  rune
	Fg     palette.RGBA
	Bg     palette.RGBA
	Bold   bool
	Italic bool
	Dirty  bool
}

// sameContent reports whether two cells carry the same glyph/fg/bg/bold
// /italic tuple. Dirty is never part of the comparison.
func sameContent(a, b Cell) bool {
	return a.Glyph == b.Glyph && a.Fg == b.Fg && a.Bg == b.Bg &&
		a.Bold == b.Bold && a.Italic == b.Italic
}

// Rendition is the current graphic-rendition state: the attributes
// stamped into new cells by Grid.Put.
type Rendition struct {
	Fg     palette.RGBA
	Bg     palette.RGBA
	Bold   bool
	Italic bool
}

// DefaultRendition returns the initial rendition: default fg/bg, no bold,
// no italic.
func DefaultRendition(pal *palette.Palette) Rendition {
	return Rendition{Fg: pal.DefaultFg(), Bg: pal.DefaultBg()}
}

// matrix is one of the two cell buffers: its cells, cursor, and scrolling
// region travel together so that swapping buffers exchanges all three as
// a unit.
type matrix struct {
	cells    []Cell
	cursorX  int
	cursorY  int
	scrBegin int
	scrEnd   int
}

func newMatrix(w, h int, pal *palette.Palette) *matrix {
	m := &matrix{
		cells:    make([]Cell, w*h),
		scrBegin: 0,
		scrEnd:   h - 1,
	}
	blank := blankCell(pal)
	for i := range m.cells {
		m.cells[i] = blank
	}
	return m
}

func blankCell(pal *palette.Palette) Cell {
	return Cell{Glyph: ' ', Fg: pal.DefaultFg(), Bg: pal.DefaultBg()}
}

// Grid is the double-buffered W×H cell grid: a primary and an alternate
// matrix, with operations confined to whichever is active.
type Grid struct {
	W, H    int
	pal     *palette.Palette
	primary *matrix
	alt     *matrix
	active  *matrix
	onAlt   bool
}

// New creates a grid of the given fixed dimensions.
func New(w, h int, pal *palette.Palette) *Grid {
	g := &Grid{W: w, H: h, pal: pal}
	g.primary = newMatrix(w, h, pal)
	g.alt = newMatrix(w, h, pal)
	g.active = g.primary
	return g
}

func (g *Grid) index(x, y int) int { return y*g.W + x }

// Cursor returns the active matrix's cursor position.
func (g *Grid) Cursor() (x, y int) { return g.active.cursorX, g.active.cursorY }

// SetCursor sets the active matrix's cursor position, clamped to bounds.
func (g *Grid) SetCursor(x, y int) {
	g.active.cursorX = clamp(x, 0, g.W-1)
	g.active.cursorY = clamp(y, 0, g.H-1)
}

// MoveCursor moves the cursor relative to its current position, clamped.
func (g *Grid) MoveCursor(dx, dy int) {
	g.SetCursor(g.active.cursorX+dx, g.active.cursorY+dy)
}

// ScrollRegion returns the active matrix's scrolling region (inclusive).
func (g *Grid) ScrollRegion() (begin, end int) { return g.active.scrBegin, g.active.scrEnd }

// SetScrollRegion sets the active matrix's scrolling region (0-based,
// inclusive). Invalid ranges are clamped to the full grid.
func (g *Grid) SetScrollRegion(begin, end int) {
	begin = clamp(begin, 0, g.H-1)
	end = clamp(end, 0, g.H-1)
	if begin > end {
		begin, end = 0, g.H-1
	}
	g.active.scrBegin = begin
	g.active.scrEnd = end
}

// Cell returns the cell at (x,y) on the active matrix.
func (g *Grid) Cell(x, y int) Cell {
	if x < 0 || x >= g.W || y < 0 || y >= g.H {
		return Cell{}
	}
	return g.active.cells[g.index(x, y)]
}

// Clear resets a cell to the blank content (space, default fg/bg, no
// bold/italic). Dirty is set iff the content actually changed.
func (g *Grid) Clear(x, y int) {
	if x < 0 || x >= g.W || y < 0 || y >= g.H {
		return
	}
	idx := g.index(x, y)
	blank := blankCell(g.pal)
	cur := g.active.cells[idx]
	blank.Dirty = cur.Dirty || !sameContent(cur, blank)
	g.active.cells[idx] = blank
}

// ClearRange clears every cell with x in [x0,x1) and y in [y0,y1).
func (g *Grid) ClearRange(x0, y0, x1, y1 int) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			g.Clear(x, y)
		}
	}
}

// Put writes a glyph at (x,y) with the given rendition, marking the cell
// dirty unconditionally regardless of whether the glyph or rendition
// actually changed.
func (g *Grid) Put(x, y int, glyph rune, r Rendition) {
	if x < 0 || x >= g.W || y < 0 || y >= g.H {
		return
	}
	g.active.cells[g.index(x, y)] = Cell{
		Glyph: glyph, Fg: r.Fg, Bg: r.Bg, Bold: r.Bold, Italic: r.Italic, Dirty: true,
	}
}

// Copy overwrites dst's content from src (both on the active matrix).
// Dirty is set iff content changed.
func (g *Grid) Copy(dstX, dstY, srcX, srcY int) {
	if srcX < 0 || srcX >= g.W || srcY < 0 || srcY >= g.H {
		return
	}
	if dstX < 0 || dstX >= g.W || dstY < 0 || dstY >= g.H {
		return
	}
	srcCell := g.active.cells[g.index(srcX, srcY)]
	dstIdx := g.index(dstX, dstY)
	dstCell := g.active.cells[dstIdx]
	changed := !sameContent(dstCell, srcCell)
	next := srcCell
	next.Dirty = dstCell.Dirty || changed
	g.active.cells[dstIdx] = next
}

// DirtyAll forces every cell of the active matrix dirty (used on expose).
func (g *Grid) DirtyAll() {
	for i := range g.active.cells {
		g.active.cells[i].Dirty = true
	}
}

// ClearDirty clears the dirty flag of a single cell, called by the
// renderer after it has drawn a non-cursor cell.
func (g *Grid) ClearDirty(x, y int) {
	if x < 0 || x >= g.W || y < 0 || y >= g.H {
		return
	}
	g.active.cells[g.index(x, y)].Dirty = false
}

// shiftBlockRow is a stable, in-row copy of cells [srcFrom,srcTo) to
// [dstFrom,...), choosing forward or backward iteration to avoid
// self-overlap damage.
func (g *Grid) shiftBlockRow(y, dstFrom, srcFrom, count int) {
	if count <= 0 {
		return
	}
	if dstFrom < srcFrom {
		for i := 0; i < count; i++ {
			g.Copy(dstFrom+i, y, srcFrom+i, y)
		}
	} else {
		for i := count - 1; i >= 0; i-- {
			g.Copy(dstFrom+i, y, srcFrom+i, y)
		}
	}
}

// InsertChars shifts cells [x..W-1-n] right by n within row y, clamped to
// the row, and clears the n newly vacated cells at x.
func (g *Grid) InsertChars(x, y, n int) {
	if n <= 0 {
		return
	}
	if n > g.W-x {
		n = g.W - x
	}
	count := g.W - x - n
	g.shiftBlockRow(y, x+n, x, count)
	g.ClearRange(x, y, x+n, y+1)
}

// DeleteChars shifts cells [x+n..W-1] left to x within row y, and clears
// the last n cells of the row.
func (g *Grid) DeleteChars(x, y, n int) {
	if n <= 0 {
		return
	}
	if n > g.W-x {
		n = g.W - x
	}
	count := g.W - x - n
	g.shiftBlockRow(y, x, x+n, count)
	g.ClearRange(g.W-n, y, g.W, y+1)
}

// shiftRows is a stable multi-row copy of rows [srcFrom,srcFrom+count) to
// rows starting at dstFrom, choosing iteration direction to avoid
// self-overlap damage.
func (g *Grid) shiftRows(dstFrom, srcFrom, count int) {
	if count <= 0 {
		return
	}
	if dstFrom < srcFrom {
		for r := 0; r < count; r++ {
			g.copyRow(dstFrom+r, srcFrom+r)
		}
	} else {
		for r := count - 1; r >= 0; r-- {
			g.copyRow(dstFrom+r, srcFrom+r)
		}
	}
}

func (g *Grid) copyRow(dstY, srcY int) {
	for x := 0; x < g.W; x++ {
		g.Copy(x, dstY, x, srcY)
	}
}

// InsertLines shifts rows [top..scrEnd-n] down by n within [top,scrEnd],
// clearing the n newly vacated rows at top.
func (g *Grid) InsertLines(top, n int) {
	_, scrEnd := g.ScrollRegion()
	if n <= 0 || top > scrEnd {
		return
	}
	if n > scrEnd-top+1 {
		n = scrEnd - top + 1
	}
	count := scrEnd - top + 1 - n
	g.shiftRows(top+n, top, count)
	g.ClearRange(0, top, g.W, top+n)
}

// DeleteLines shifts rows [top+n..scrEnd] up to top within [top,scrEnd],
// clearing the last n rows of the region.
func (g *Grid) DeleteLines(top, n int) {
	_, scrEnd := g.ScrollRegion()
	if n <= 0 || top > scrEnd {
		return
	}
	if n > scrEnd-top+1 {
		n = scrEnd - top + 1
	}
	count := scrEnd - top + 1 - n
	g.shiftRows(top, top+n, count)
	g.ClearRange(0, scrEnd-n+1, g.W, scrEnd+1)
}

// ScrollUp scrolls the active scrolling region up by one row: rows
// [begin+1,end] copy into [begin,end-1]; row end is cleared.
func (g *Grid) ScrollUp() {
	begin, end := g.ScrollRegion()
	if begin >= end {
		g.ClearRange(0, begin, g.W, end+1)
		return
	}
	g.shiftRows(begin, begin+1, end-begin)
	g.ClearRange(0, end, g.W, end+1)
}

// SwapBuffers exchanges the (cells, cursor, scroll region) triple between
// primary and alternate matrices. The new active matrix's scroll region
// travels with it.
func (g *Grid) SwapBuffers() {
	g.onAlt = !g.onAlt
	if g.onAlt {
		g.active = g.alt
	} else {
		g.active = g.primary
	}
}

// OnAlternate reports whether the alternate screen is currently active.
func (g *Grid) OnAlternate() bool { return g.onAlt }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
