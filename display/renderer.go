package display

import (
	"fmt"
	"image"
	"image/draw"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	defaultFontSize = 16.0
	atlasSize       = 512
)

// glyph locates one rendered character inside a font atlas texture.
type glyph struct {
	x, y, w, h       float32 // normalized atlas coordinates
	pixelW, pixelH   float32
}

// fontAtlas is one font variant's rasterized glyph set on a single texture.
type fontAtlas struct {
	texture uint32
	glyphs  map[rune]glyph
}

// Renderer is the OpenGL 4.1 core-profile Renderer collaborator: it owns
// the colored-quad and textured-glyph shader programs, three font atlases
// (regular/bold/italic), and the projection matrix for the current
// framebuffer size.
type Renderer struct {
	win *Window

	cellWidth  float32
	cellHeight float32

	regular fontAtlas
	bold    fontAtlas
	italic  fontAtlas

	quadVAO, quadVBO   uint32
	quadProgram        uint32
	quadColorLoc       int32
	quadProjLoc        int32

	glyphVAO, glyphVBO uint32
	glyphProgram       uint32
	glyphColorLoc      int32
	glyphProjLoc       int32
	glyphTexLoc        int32

	proj [16]float32
}

// NewRenderer builds the shader programs and font atlases against win's
// current GL context.
func NewRenderer(win *Window) (*Renderer, error) {
	r := &Renderer{win: win}
	if err := r.initGL(); err != nil {
		return nil, err
	}
	var err error
	if r.regular, err = buildAtlas(goregular.TTF); err != nil {
		return nil, fmt.Errorf("regular font atlas: %w", err)
	}
	if r.bold, err = buildAtlas(gobold.TTF); err != nil {
		return nil, fmt.Errorf("bold font atlas: %w", err)
	}
	if r.italic, err = buildAtlas(goitalic.TTF); err != nil {
		return nil, fmt.Errorf("italic font atlas: %w", err)
	}
	r.cellWidth, r.cellHeight = cellMetrics(goregular.TTF)
	w, h := win.FramebufferSize()
	r.SetFramebufferSize(w, h)
	return r, nil
}

func cellMetrics(ttf []byte) (w, h float32) {
	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return defaultFontSize * 0.6, defaultFontSize * 1.2
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size: defaultFontSize, DPI: 96, Hinting: font.HintingFull,
	})
	if err != nil {
		return defaultFontSize * 0.6, defaultFontSize * 1.2
	}
	defer face.Close()
	metrics := face.Metrics()
	advance, _ := face.GlyphAdvance('M')
	return float32(advance.Ceil()), float32((metrics.Ascent + metrics.Descent).Ceil())
}

// buildAtlas rasterizes the printable-ASCII + Latin-1 range of ttf into a
// single-channel alpha texture keyed by rune, ready to bind and sample in
// the glyph shader.
func buildAtlas(ttf []byte) (fontAtlas, error) {
	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return fontAtlas{}, err
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size: defaultFontSize, DPI: 96, Hinting: font.HintingFull,
	})
	if err != nil {
		return fontAtlas{}, err
	}
	defer face.Close()

	metrics := face.Metrics()
	advance, _ := face.GlyphAdvance('M')
	charWidth := advance.Ceil()
	charHeight := (metrics.Ascent + metrics.Descent).Ceil()

	atlas := image.NewRGBA(image.Rect(0, 0, atlasSize, atlasSize))
	draw.Draw(atlas, atlas.Bounds(), image.Transparent, image.Point{}, draw.Src)
	drawer := &font.Drawer{Dst: atlas, Src: image.White, Face: face}

	glyphs := make(map[rune]glyph)
	x, y := 0, metrics.Ascent.Ceil()
	for _, cr := range [][2]rune{{32, 126}, {160, 255}} {
		for c := cr[0]; c <= cr[1]; c++ {
			if x+charWidth > atlasSize {
				x = 0
				y += charHeight
			}
			if y+charHeight > atlasSize {
				break
			}
			if _, ok := face.GlyphAdvance(c); !ok {
				continue
			}
			drawer.Dot = fixed.P(x, y)
			drawer.DrawString(string(c))
			glyphs[c] = glyph{
				x: float32(x) / atlasSize, y: float32(y-metrics.Ascent.Ceil()) / atlasSize,
				w: float32(charWidth) / atlasSize, h: float32(charHeight) / atlasSize,
				pixelW: float32(charWidth), pixelH: float32(charHeight),
			}
			x += charWidth
		}
	}

	alpha := make([]byte, atlasSize*atlasSize)
	for i := 0; i < atlasSize*atlasSize; i++ {
		alpha[i] = atlas.Pix[i*4+3]
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, int32(atlasSize), int32(atlasSize), 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(alpha))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return fontAtlas{texture: tex, glyphs: glyphs}, nil
}

func (r *Renderer) initGL() error {
	quadVert := `
		#version 410 core
		layout (location = 0) in vec2 aPos;
		uniform mat4 projection;
		void main() {
			gl_Position = projection * vec4(aPos, 0.0, 1.0);
		}
	` + "\x00"
	quadFrag := `
		#version 410 core
		out vec4 FragColor;
		uniform vec4 color;
		void main() {
			FragColor = color;
		}
	` + "\x00"

	var err error
	r.quadProgram, err = createProgram(quadVert, quadFrag)
	if err != nil {
		return fmt.Errorf("quad shader: %w", err)
	}
	r.quadColorLoc = gl.GetUniformLocation(r.quadProgram, gl.Str("color\x00"))
	r.quadProjLoc = gl.GetUniformLocation(r.quadProgram, gl.Str("projection\x00"))

	glyphVert := `
		#version 410 core
		layout (location = 0) in vec4 vertex;
		out vec2 TexCoords;
		uniform mat4 projection;
		void main() {
			gl_Position = projection * vec4(vertex.xy, 0.0, 1.0);
			TexCoords = vertex.zw;
		}
	` + "\x00"
	glyphFrag := `
		#version 410 core
		in vec2 TexCoords;
		out vec4 FragColor;
		uniform sampler2D text;
		uniform vec4 textColor;
		void main() {
			float alpha = texture(text, TexCoords).r;
			FragColor = vec4(textColor.rgb, textColor.a * alpha);
		}
	` + "\x00"

	r.glyphProgram, err = createProgram(glyphVert, glyphFrag)
	if err != nil {
		return fmt.Errorf("glyph shader: %w", err)
	}
	r.glyphColorLoc = gl.GetUniformLocation(r.glyphProgram, gl.Str("textColor\x00"))
	r.glyphProjLoc = gl.GetUniformLocation(r.glyphProgram, gl.Str("projection\x00"))
	r.glyphTexLoc = gl.GetUniformLocation(r.glyphProgram, gl.Str("text\x00"))

	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 6*2*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gl.GenVertexArrays(1, &r.glyphVAO)
	gl.GenBuffers(1, &r.glyphVBO)
	gl.BindVertexArray(r.glyphVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.glyphVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 6*4*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 4, gl.FLOAT, false, 4*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	return nil
}

// SetFramebufferSize recomputes the orthographic projection after a resize.
func (r *Renderer) SetFramebufferSize(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	r.proj = orthoMatrix(0, float32(width), float32(height), 0, -1, 1)
}

// CellSize implements the Renderer interface: the pixel size of one
// terminal cell at the current font size.
func (r *Renderer) CellSize() (w, h float32) { return r.cellWidth, r.cellHeight }

// Clear paints the whole framebuffer with bg, ahead of a redraw pass.
func (r *Renderer) Clear(bg [4]float32) {
	gl.ClearColor(bg[0], bg[1], bg[2], bg[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// FillRect implements the Renderer interface: paints an axis-aligned
// rectangle in fg, used for cell backgrounds and the cursor block.
func (r *Renderer) FillRect(x, y, w, h float32, fg [4]float32) {
	vertices := []float32{
		x, y,
		x + w, y,
		x + w, y + h,
		x, y,
		x + w, y + h,
		x, y + h,
	}
	gl.UseProgram(r.quadProgram)
	gl.UniformMatrix4fv(r.quadProjLoc, 1, false, &r.proj[0])
	gl.Uniform4fv(r.quadColorLoc, 1, &fg[0])
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

// DrawText implements the Renderer interface: draws a single glyph at
// (x,y) (top-left of its cell) choosing the bold/italic/regular atlas.
func (r *Renderer) DrawText(x, y float32, bold, italic bool, fg [4]float32, ru rune) {
	atlas := &r.regular
	switch {
	case bold:
		atlas = &r.bold
	case italic:
		atlas = &r.italic
	}
	g, ok := atlas.glyphs[ru]
	if !ok {
		g, ok = atlas.glyphs['?']
		if !ok {
			return
		}
	}

	top := y
	bottom := y + g.pixelH
	vertices := []float32{
		x, top, g.x, g.y,
		x + g.pixelW, top, g.x + g.w, g.y,
		x + g.pixelW, bottom, g.x + g.w, g.y + g.h,
		x, top, g.x, g.y,
		x + g.pixelW, bottom, g.x + g.w, g.y + g.h,
		x, bottom, g.x, g.y + g.h,
	}

	gl.UseProgram(r.glyphProgram)
	gl.UniformMatrix4fv(r.glyphProjLoc, 1, false, &r.proj[0])
	gl.Uniform4fv(r.glyphColorLoc, 1, &fg[0])
	gl.Uniform1i(r.glyphTexLoc, 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, atlas.texture)
	gl.BindVertexArray(r.glyphVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.glyphVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

// Present implements the Renderer interface: swaps the window's buffers.
func (r *Renderer) Present() {
	r.win.SwapBuffers()
}

// Destroy releases the renderer's GL objects.
func (r *Renderer) Destroy() {
	gl.DeleteTextures(1, &r.regular.texture)
	gl.DeleteTextures(1, &r.bold.texture)
	gl.DeleteTextures(1, &r.italic.texture)
	gl.DeleteProgram(r.quadProgram)
	gl.DeleteProgram(r.glyphProgram)
}

func orthoMatrix(left, right, bottom, top, near, far float32) [16]float32 {
	return [16]float32{
		2 / (right - left), 0, 0, 0,
		0, 2 / (top - bottom), 0, 0,
		0, 0, -2 / (far - near), 0,
		-(right + left) / (right - left), -(top + bottom) / (top - bottom), -(far + near) / (far - near), 1,
	}
}

func createProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("link program: %v", log)
	}

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("compile shader: %v", log)
	}
	return shader, nil
}
