// Package vt is the Executor: it applies parser.Command values to a
// grid.Grid and grid.Rendition, and writes DA/DSR replies back to the
// PTY. It owns all ECMA-48/DEC semantics the terminal supports.
package vt

import (
	"fmt"

	"github.com/corvidterm/corvid/grid"
	"github.com/corvidterm/corvid/palette"
	"github.com/corvidterm/corvid/parser"
)

// ReplyWriter is the PTY-write side of the Executor; cmd/corvid wires it
// to the real PTY master so DA/DSR replies reach the child.
type ReplyWriter interface {
	WriteReply([]byte)
}

// Executor applies parser Commands to Grid + Rendition state.
type Executor struct {
	Grid *grid.Grid

	pal       *palette.Palette
	rendition grid.Rendition
	reply     ReplyWriter

	justWrapped     bool
	appKeypad       bool
	cursorVisible   bool
	savedCursorX    int
	savedCursorY    int
	onProtocolError func(*parser.ProtocolError)
}

// New creates an Executor over g, writing replies through reply.
func New(g *grid.Grid, pal *palette.Palette, reply ReplyWriter) *Executor {
	return &Executor{
		Grid:          g,
		pal:           pal,
		rendition:     grid.DefaultRendition(pal),
		reply:         reply,
		cursorVisible: true,
	}
}

// OnProtocolError installs a callback invoked whenever the Executor meets
// an unsupported command (strict-vs-lenient mode handling lives in the
// caller, typically cmd/corvid). Errors the Parser itself detects go to the
// callback passed to parser.New, not to this one.
func (e *Executor) OnProtocolError(f func(*parser.ProtocolError)) {
	e.onProtocolError = f
}

// AppCursorKeys reports whether arrow keys use the application encoding:
// the flag is set or reset by DECCKM (private mode 1) and by ESC = / ESC >.
func (e *Executor) AppCursorKeys() bool { return e.appKeypad }

// CursorVisible reports whether the cursor should currently be drawn.
func (e *Executor) CursorVisible() bool { return e.cursorVisible }

// Execute implements parser.Sink.
func (e *Executor) Execute(c parser.Command) {
	switch c.Kind {
	case parser.CmdPrint:
		e.writePrint(c.Rune)
	case parser.CmdCarriageReturn:
		e.Grid.SetCursor(0, cursorY(e.Grid))
	case parser.CmdBackspace:
		x, y := e.Grid.Cursor()
		if x > 0 {
			e.Grid.SetCursor(x-1, y)
		}
	case parser.CmdBell:
		// BEL has no visual effect here; a real terminal would flash or ring.
	case parser.CmdTab:
		x, y := e.Grid.Cursor()
		next := x + (8 - x%8)
		if next > e.Grid.W-1 {
			next = e.Grid.W - 1
		}
		e.Grid.SetCursor(next, y)
	case parser.CmdLineFeed:
		e.lineFeed()
	case parser.CmdCsi:
		e.executeCSI(c)
	case parser.CmdOscComplete:
		// OSC payloads (window title, etc.) are accepted and discarded;
		// nothing observes them.
	case parser.CmdSetApplicationKeypad:
		e.appKeypad = c.Enable
	case parser.CmdSaveCursor:
		e.savedCursorX, e.savedCursorY = e.Grid.Cursor()
	case parser.CmdRestoreCursor:
		e.Grid.SetCursor(e.savedCursorX, e.savedCursorY)
	case parser.CmdReverseIndex:
		e.reverseIndex()
	case parser.CmdResetTerminal:
		e.reset()
	}
}

func cursorY(g *grid.Grid) int {
	_, y := g.Cursor()
	return y
}

// writePrint implements the ECMA-48 text-write algorithm: write the glyph
// at the cursor, then advance or defer-wrap at the right margin.
func (e *Executor) writePrint(r rune) {
	_, scrEnd := e.Grid.ScrollRegion()
	if e.justWrapped {
		e.justWrapped = false
		_, y := e.Grid.Cursor()
		if y+1 > scrEnd {
			e.Grid.ScrollUp()
			e.Grid.SetCursor(0, scrEnd)
		} else {
			e.Grid.SetCursor(0, y+1)
		}
	}
	x, y := e.Grid.Cursor()
	e.Grid.Put(x, y, r, e.rendition)
	x++
	if x >= e.Grid.W {
		x = e.Grid.W - 1
		e.justWrapped = true
	}
	e.Grid.SetCursor(x, y)
}

// lineFeed implements the LineFeed rule, including wrap suppression.
func (e *Executor) lineFeed() {
	if e.justWrapped {
		// The pending implicit wrap already accounts for this newline;
		// leave just_wrapped set so the next Print performs the deferred
		// row advance.
		return
	}
	_, scrEnd := e.Grid.ScrollRegion()
	_, y := e.Grid.Cursor()
	e.Grid.SetCursor(0, y)
	if y+1 > scrEnd {
		e.Grid.ScrollUp()
		e.Grid.SetCursor(0, scrEnd)
	} else {
		e.Grid.SetCursor(0, y+1)
	}
}

// reverseIndex implements ESC M: move the cursor up one line; when the
// cursor is on row 0, insert a blank line at the top of the scrolling
// region instead.
func (e *Executor) reverseIndex() {
	_, y := e.Grid.Cursor()
	if y == 0 {
		top, _ := e.Grid.ScrollRegion()
		e.Grid.InsertLines(top, 1)
	} else {
		e.Grid.MoveCursor(0, -1)
	}
}

func (e *Executor) reset() {
	e.Grid.ClearRange(0, 0, e.Grid.W, e.Grid.H)
	e.Grid.SetCursor(0, 0)
	e.rendition = grid.DefaultRendition(e.pal)
	e.appKeypad = false
	e.cursorVisible = true
	e.justWrapped = false
	if e.Grid.OnAlternate() {
		e.Grid.SwapBuffers()
	}
}

func getParam(params []int, i, def int) int {
	if i < len(params) && params[i] > 0 {
		return params[i]
	}
	return def
}

func (e *Executor) executeCSI(c parser.Command) {
	p := c.Params
	switch c.Final {
	case '@':
		n := getParam(p, 0, 1)
		x, y := e.Grid.Cursor()
		e.Grid.InsertChars(x, y, n)
	case 'A':
		e.Grid.MoveCursor(0, -getParam(p, 0, 1))
	case 'B':
		e.Grid.MoveCursor(0, getParam(p, 0, 1))
	case 'C':
		e.Grid.MoveCursor(getParam(p, 0, 1), 0)
	case 'D':
		e.Grid.MoveCursor(-getParam(p, 0, 1), 0)
	case 'P':
		n := getParam(p, 0, 1)
		x, y := e.Grid.Cursor()
		e.Grid.DeleteChars(x, y, n)
	case 'H', 'f':
		if c.Private != 0 {
			e.protocolError("unsupported private CUP")
			return
		}
		row := getParam(p, 0, 1)
		col := getParam(p, 1, 1)
		e.Grid.SetCursor(col-1, row-1)
	case 'J':
		e.eraseInDisplay(getParam(p, 0, 0))
	case 'K':
		e.eraseInLine(getParam(p, 0, 0))
	case 'L':
		n := getParam(p, 0, 1)
		_, y := e.Grid.Cursor()
		e.Grid.InsertLines(y, n)
	case 'M':
		n := getParam(p, 0, 1)
		_, y := e.Grid.Cursor()
		e.Grid.DeleteLines(y, n)
	case 'c':
		if c.Private == '>' {
			e.writeReply("\x1b[>77;20805;0c")
		}
	case 'm':
		e.executeSGR(p)
	case 'n':
		e.deviceStatusReport(getParam(p, 0, 0))
	case 'r':
		top := getParam(p, 0, 1)
		bottom := getParam(p, 1, e.Grid.H)
		e.Grid.SetScrollRegion(top-1, bottom-1)
	case 'l':
		if c.Private == '?' {
			e.setPrivateModes(p, false)
		}
	case 'h', 's':
		if c.Private == '?' {
			e.setPrivateModes(p, true)
		}
	case 't':
		// window manipulation (CSI t): no window to manipulate, ignored
	default:
		e.protocolError(fmt.Sprintf("unsupported CSI final byte %q", c.Final))
	}
}

func (e *Executor) eraseInDisplay(n int) {
	switch n {
	case 0:
		x, y := e.Grid.Cursor()
		e.Grid.ClearRange(x, y, e.Grid.W, y+1)
		e.Grid.ClearRange(0, y+1, e.Grid.W, e.Grid.H)
	case 1:
		x, y := e.Grid.Cursor()
		e.Grid.ClearRange(0, 0, e.Grid.W, y)
		e.Grid.ClearRange(0, y, x+1, y+1)
	case 2, 3:
		e.Grid.ClearRange(0, 0, e.Grid.W, e.Grid.H)
		e.Grid.SetCursor(0, 0)
	default:
		e.protocolError("unsupported erase-in-display mode")
	}
}

func (e *Executor) eraseInLine(n int) {
	x, y := e.Grid.Cursor()
	switch n {
	case 0:
		e.Grid.ClearRange(x, y, e.Grid.W, y+1)
	case 1:
		e.Grid.ClearRange(0, y, x+1, y+1)
	case 2:
		e.Grid.ClearRange(0, y, e.Grid.W, y+1)
	default:
		e.protocolError("unsupported erase-in-line mode")
	}
}

func (e *Executor) setPrivateModes(params []int, set bool) {
	for _, code := range params {
		switch code {
		case 1:
			e.appKeypad = set
		case 5, 12:
			// reverse video / cursor blink: accepted, no-op
		case 25:
			e.cursorVisible = set
		case 1002, 1006, 2004:
			// mouse reporting / SGR mouse / bracketed paste: accepted, no-op
		case 1049:
			if set {
				e.Grid.SwapBuffers()
				e.Grid.ClearRange(0, 0, e.Grid.W, e.Grid.H)
				e.Grid.DirtyAll()
			} else {
				e.Grid.SwapBuffers()
			}
		default:
			// unknown private mode: ignored
		}
	}
}

// executeSGR applies the ECMA-48 SGR parameter table left-to-right.
func (e *Executor) executeSGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			e.rendition.Fg = e.pal.DefaultFg()
			e.rendition.Bg = e.pal.DefaultBg()
			e.rendition.Bold = false
			e.rendition.Italic = false
		case p == 1:
			e.rendition.Bold = true
		case p == 3:
			e.rendition.Italic = true
		case p >= 30 && p <= 37:
			e.rendition.Fg = e.pal.Color256(uint8(p - 30))
		case p == 38:
			if i+2 < len(params) && params[i+1] == 5 {
				e.rendition.Fg = e.pal.Color256(uint8(params[i+2]))
				i += 2
			}
		case p == 39:
			e.rendition.Fg = e.pal.DefaultFg()
		case p >= 40 && p <= 47:
			e.rendition.Bg = e.pal.Color256(uint8(p - 40))
		case p == 48:
			if i+2 < len(params) && params[i+1] == 5 {
				e.rendition.Bg = e.pal.Color256(uint8(params[i+2]))
				i += 2
			}
		case p == 49:
			e.rendition.Bg = e.pal.DefaultBg()
		case p >= 90 && p <= 97:
			e.rendition.Fg = e.pal.Color256(uint8(p-90) + 8)
		case p >= 100 && p <= 107:
			e.rendition.Bg = e.pal.Color256(uint8(p-100) + 8)
		default:
			// other codes ignored
		}
	}
}

func (e *Executor) deviceStatusReport(code int) {
	switch code {
	case 5:
		e.writeReply("\x1b[0n")
	case 6:
		x, y := e.Grid.Cursor()
		e.writeReply(fmt.Sprintf("\x1b[%d;%dR", y+1, x+1))
	}
}

func (e *Executor) writeReply(s string) {
	if e.reply != nil {
		e.reply.WriteReply([]byte(s))
	}
}

func (e *Executor) protocolError(msg string) {
	if e.onProtocolError != nil {
		e.onProtocolError(&parser.ProtocolError{Msg: msg})
	}
}
