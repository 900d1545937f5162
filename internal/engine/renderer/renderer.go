// Package renderer packs terrain chunk geometry into buffers and draws them
// with OpenGL.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/pfmap/internal/engine/renderer/shaders"
	"github.com/Faultbox/pfmap/internal/engine/shader"
	"github.com/Faultbox/pfmap/internal/logger"
	"github.com/Faultbox/pfmap/pkg/formats"
)

const maxShaderMaterials = formats.MaxMaterials

// Config holds renderer configuration.
type Config struct {
	Width    int
	Height   int
	ShowGrid bool
}

// Renderer draws uploaded terrain chunks.
type Renderer struct {
	config Config
	log    *zap.Logger

	program *shader.Program

	// Uniform locations
	locModel    int32
	locViewProj int32
	locAmbient  int32
	locDiffuse  int32
	locSpecular int32
	locLightDir int32
	locViewPos  int32
	locShowGrid int32
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		log:    logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	program, err := NewTerrainProgram()
	if err != nil {
		return nil, err
	}
	r.program = program

	r.locModel = program.Uniform("uModel")
	r.locViewProj = program.Uniform("uViewProj")
	r.locAmbient = program.Uniform("uAmbient")
	r.locDiffuse = program.Uniform("uDiffuse")
	r.locSpecular = program.Uniform("uSpecular")
	r.locLightDir = program.Uniform("uLightDir")
	r.locViewPos = program.Uniform("uViewPos")
	r.locShowGrid = program.Uniform("uShowGrid")

	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return r, nil
}

// NewTerrainProgram compiles and links the built-in terrain shaders.
func NewTerrainProgram() (*shader.Program, error) {
	program, err := shader.Compile(shaders.TerrainVertexShader, shaders.TerrainFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("terrain shader: %w", err)
	}
	return program, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	if r.program != nil {
		r.program.Delete()
		r.program = nil
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Aspect returns the viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// ToggleGrid switches the tile grid overlay.
func (r *Renderer) ToggleGrid() {
	r.config.ShowGrid = !r.config.ShowGrid
}

// Begin starts a new frame with the given camera.
func (r *Renderer) Begin(viewProj mgl32.Mat4, eye mgl32.Vec3) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.program.Use()
	gl.UniformMatrix4fv(r.locViewProj, 1, false, &viewProj[0])
	gl.Uniform3f(r.locViewPos, eye[0], eye[1], eye[2])

	light := mgl32.Vec3{-0.4, -1, -0.3}.Normalize()
	gl.Uniform3f(r.locLightDir, light[0], light[1], light[2])

	grid := int32(0)
	if r.config.ShowGrid {
		grid = 1
	}
	gl.Uniform1i(r.locShowGrid, grid)
}

// DrawChunk draws one chunk with the given model matrix.
func (r *Renderer) DrawChunk(c *GPUChunk, model mgl32.Mat4) {
	if c.vertexCount == 0 {
		return
	}
	gl.UniformMatrix4fv(r.locModel, 1, false, &model[0])

	n := int32(len(c.ambient))
	if n > 0 {
		gl.Uniform1fv(r.locAmbient, n, &c.ambient[0])
		gl.Uniform3fv(r.locDiffuse, n, &c.diffuse[0])
		gl.Uniform3fv(r.locSpecular, n, &c.specular[0])
	}

	gl.BindVertexArray(c.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, c.vertexCount)
	gl.BindVertexArray(0)
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.UseProgram(0)
}
