// Package display provides the GLFW window and OpenGL-backed Renderer
// collaborator cmd/corvid wires against the vt.Executor's grid.
package display

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW and its GL context must stay pinned to the thread that created them.
	runtime.LockOSThread()
}

// WindowConfig is the initial window geometry and title.
type WindowConfig struct {
	Width  int
	Height int
	Title  string
}

// DefaultWindowConfig returns corvid's default window geometry.
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{Width: 900, Height: 600, Title: "corvid"}
}

// Window wraps a GLFW window and its OpenGL 4.1 core-profile context.
type Window struct {
	glfw *glfw.Window
}

// NewWindow creates the GLFW window and makes its GL context current.
func NewWindow(cfg WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DoubleBuffer, glfw.True)

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	win.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("gl init: %w", err)
	}
	glfw.SwapInterval(1)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	return &Window{glfw: win}, nil
}

// GLFW returns the underlying GLFW window, for event callback registration.
func (w *Window) GLFW() *glfw.Window { return w.glfw }

// FramebufferSize returns the current framebuffer size in pixels.
func (w *Window) FramebufferSize() (int, int) { return w.glfw.GetFramebufferSize() }

// ShouldClose reports whether the user asked to close the window.
func (w *Window) ShouldClose() bool { return w.glfw.ShouldClose() }

// SwapBuffers presents the back buffer.
func (w *Window) SwapBuffers() { w.glfw.SwapBuffers() }

// Viewport sets the OpenGL viewport to the given framebuffer size.
func (w *Window) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Destroy tears down the GL context and terminates GLFW.
func (w *Window) Destroy() {
	w.glfw.Destroy()
	glfw.Terminate()
}

// PollEvents drains GLFW's event queue without blocking. GLFW exposes no
// pollable fd, so the run loop treats it as an always-ready third source
// and calls this once per iteration rather than select()-ing it.
func PollEvents() {
	glfw.PollEvents()
}
