// Command corvid is a PTY-backed terminal emulator: it spawns the user's
// shell behind a pseudo-terminal, parses the ECMA-48/DEC byte stream it
// produces, and renders the resulting cell grid onto a GLFW/OpenGL window.
package main

import (
	"log"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/corvidterm/corvid/config"
	"github.com/corvidterm/corvid/display"
	"github.com/corvidterm/corvid/grid"
	"github.com/corvidterm/corvid/input"
	"github.com/corvidterm/corvid/palette"
	"github.com/corvidterm/corvid/parser"
	"github.com/corvidterm/corvid/ptyproc"
	"github.com/corvidterm/corvid/vt"
)

var (
	exitOnUnknown = pflag.BoolP("exit-on-unknown", "e", false, "fatal on unsupported escape/CSI sequences")
	printChild    = pflag.BoolP("print-child", "p", false, "log raw child bytes to stderr")
)

const blinkInterval = 500 * time.Millisecond

func main() {
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	win, err := display.NewWindow(display.DefaultWindowConfig())
	if err != nil {
		log.Fatalf("create window: %v", err)
	}
	defer win.Destroy()

	renderer, err := display.NewRenderer(win)
	if err != nil {
		log.Fatalf("create renderer: %v", err)
	}
	defer renderer.Destroy()

	cellW, cellH := renderer.CellSize()
	fbWidth, fbHeight := win.FramebufferSize()
	cols, rows := gridSize(fbWidth, fbHeight, cellW, cellH)

	pal := palette.New(palette.RGBA{0.91, 0.93, 0.97, 1}, palette.RGBA{0.05, 0.06, 0.10, 1})
	g := grid.New(cols, rows, pal)

	session, err := ptyproc.Start(cfg, uint16(cols), uint16(rows))
	if err != nil {
		log.Fatalf("start shell: %v", err)
	}
	defer session.Close()

	onProtoErr := func(pe *parser.ProtocolError) {
		if *exitOnUnknown {
			_, file, line, _ := runtime.Caller(0)
			log.Printf("%s:%d: protocol error: %s", file, line, pe.Msg)
			os.Exit(1)
		}
		log.Printf("protocol error: %s", pe.Msg)
	}
	ex := vt.New(g, pal, session)
	ex.OnProtocolError(onProtoErr)
	p := parser.New(ex, *exitOnUnknown, func(err error) {
		if pe, ok := err.(*parser.ProtocolError); ok {
			onProtoErr(pe)
		}
	})

	win.GLFW().SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Release {
			return
		}
		if data, ok := input.Encode(key, ex.AppCursorKeys()); ok {
			writeAll(session, data)
		}
	})
	win.GLFW().SetCharCallback(func(_ *glfw.Window, char rune) {
		writeAll(session, input.EncodeChar(char))
	})
	win.GLFW().SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		renderer.SetFramebufferSize(width, height)
		cols, rows := gridSize(width, height, cellW, cellH)
		session.Resize(uint16(cols), uint16(rows))
	})

	cursorVisible := true
	lastBlink := time.Now()
	readBuf := make([]byte, 4096)
	stdinOpen := true

	for !win.ShouldClose() {
		if session.HasExited() {
			break
		}

		fds := &unix.FdSet{}
		fdSet(fds, int(session.Fd()))
		maxFd := int(session.Fd())
		if stdinOpen {
			fdSet(fds, 0)
		}
		timeout := unix.Timeval{Sec: 1}
		n, err := unix.Select(maxFd+1, fds, nil, nil, &timeout)
		if err != nil && err != unix.EINTR {
			log.Printf("select: %v", err)
		}

		if n > 0 && fdIsSet(fds, int(session.Fd())) {
			nr, err := session.Read(readBuf)
			if nr > 0 {
				if *printChild {
					os.Stderr.Write(readBuf[:nr])
				}
				p.Process(readBuf[:nr])
			}
			if err != nil {
				break
			}
		}
		if n > 0 && stdinOpen && fdIsSet(fds, 0) {
			nr, err := os.Stdin.Read(readBuf)
			if nr > 0 {
				writeAll(session, readBuf[:nr])
			}
			if err != nil {
				stdinOpen = false
			}
		}

		display.PollEvents()

		now := time.Now()
		if now.Sub(lastBlink) >= blinkInterval {
			cursorVisible = !cursorVisible
			lastBlink = now
		}

		redraw(renderer, g, pal, cellW, cellH, cursorVisible && ex.CursorVisible())
		win.Viewport(win.FramebufferSize())
	}
}

func fdSet(set *unix.FdSet, fd int) {
	set.Bits[fd/64] |= 1 << (uint(fd) % 64)
}

func fdIsSet(set *unix.FdSet, fd int) bool {
	return set.Bits[fd/64]&(1<<(uint(fd)%64)) != 0
}

func writeAll(w interface{ Write([]byte) (int, error) }, data []byte) {
	for len(data) > 0 {
		n, err := w.Write(data)
		if err != nil {
			return
		}
		data = data[n:]
	}
}

func gridSize(width, height int, cellW, cellH float32) (cols, rows int) {
	cols = int(float32(width) / cellW)
	rows = int(float32(height) / cellH)
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

// redraw repaints every dirty or cursor cell: for each such cell, paint
// bg then the glyph, inverting
// fg/bg on the cursor cell when blink-phase is on; then clear the dirty
// flag on non-cursor cells only.
func redraw(r *display.Renderer, g *grid.Grid, pal *palette.Palette, cellW, cellH float32, cursorOn bool) {
	r.Clear(pal.DefaultBg())
	cx, cy := g.Cursor()
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			cell := g.Cell(x, y)
			isCursor := x == cx && y == cy
			if !cell.Dirty && !isCursor {
				continue
			}
			fg, bg := cell.Fg, cell.Bg
			if isCursor && cursorOn {
				fg, bg = bg, fg
			}
			px, py := float32(x)*cellW, float32(y)*cellH
			r.FillRect(px, py, cellW, cellH, bg)
			if cell.Glyph != ' ' && cell.Glyph != 0 {
				r.DrawText(px, py, cell.Bold, cell.Italic, fg, cell.Glyph)
			}
			if !isCursor {
				g.ClearDirty(x, y)
			}
		}
	}
	r.Present()
}
