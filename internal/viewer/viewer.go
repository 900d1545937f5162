// Package viewer implements the interactive map viewer loop.
package viewer

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/pfmap/internal/config"
	"github.com/Faultbox/pfmap/internal/engine/camera"
	"github.com/Faultbox/pfmap/internal/engine/input"
	"github.com/Faultbox/pfmap/internal/engine/renderer"
	"github.com/Faultbox/pfmap/internal/engine/window"
	"github.com/Faultbox/pfmap/internal/logger"
	"github.com/Faultbox/pfmap/internal/world"
)

const title = "pfview"

// chunkDraw pairs an uploaded chunk with its grid position.
type chunkDraw struct {
	gpu      *renderer.GPUChunk
	row, col int
}

// Viewer shows one loaded map.
type Viewer struct {
	config   *config.Config
	log      *zap.Logger
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera

	m      *world.Map
	chunks []chunkDraw
}

// New opens the window, loads the configured map and uploads its chunks.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		config: cfg,
		log:    logger.Named("viewer"),
	}
	v.log.Info("initializing viewer",
		zap.String("map", cfg.Map.MapFile),
		zap.Int("width", cfg.Viewer.Width),
		zap.Int("height", cfg.Viewer.Height),
	)

	// The map is loaded before any window exists so a bad file fails fast.
	loader := world.NewLoader()
	loader.ChunkMaterials = cfg.Map.ChunkMaterials
	m, err := loader.LoadFile(cfg.Map.BaseDir, cfg.Map.MapFile, cfg.Map.MaterialFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load map: %w", err)
	}
	m.CenterAtOrigin()
	v.m = m

	v.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer needs the GL context the window created.
	w, h := v.window.GetSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:    w,
		Height:   h,
		ShowGrid: cfg.Viewer.ShowGrid,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	if err := v.upload(); err != nil {
		v.Close()
		return nil, err
	}

	v.input = input.New()
	v.camera = camera.NewOrbitCamera()
	v.camera.FitToBounds(m.Bounds())

	v.log.Info("viewer initialized", zap.Int("chunks", len(v.chunks)))
	return v, nil
}

func (v *Viewer) upload() error {
	for i := 0; i < v.m.NumChunks(); i++ {
		chunk, err := v.m.ChunkAt(i)
		if err != nil {
			return err
		}
		geom, err := chunk.Geometry()
		if err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		gpu, err := renderer.NewGPUChunk(geom)
		if err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		v.chunks = append(v.chunks, chunkDraw{gpu: gpu, row: chunk.Row, col: chunk.Col})
	}
	return nil
}

// Run starts the main loop and returns when the window is closed.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting viewer loop")

	for v.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}

		for _, event := range v.input.Events() {
			switch event.Type {
			case input.EventWindowResize:
				w, h := v.window.GetSize()
				v.renderer.Resize(w, h)
			case input.EventDrag:
				v.camera.HandleDrag(event.DX, event.DY)
			case input.EventZoom:
				v.camera.HandleZoom(event.DY)
			case input.EventKeyDown:
				switch event.Key {
				case sdl.SCANCODE_G:
					v.renderer.ToggleGrid()
				case sdl.SCANCODE_F:
					v.camera.FitToBounds(v.m.Bounds())
				}
			}
		}

		v.move(dt)
		v.render()
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.window.SetTitle(fmt.Sprintf("%s - %s (%d fps)", title, v.config.Map.MapFile, frameCount))
			v.log.Debug("fps", zap.Int("count", frameCount), zap.Float32("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// move pans the camera from held keys. Speed is per second at 60 fps.
func (v *Viewer) move(dt float32) {
	var forward, right, up float32
	if input.KeyHeld(sdl.SCANCODE_W) {
		forward++
	}
	if input.KeyHeld(sdl.SCANCODE_S) {
		forward--
	}
	if input.KeyHeld(sdl.SCANCODE_D) {
		right++
	}
	if input.KeyHeld(sdl.SCANCODE_A) {
		right--
	}
	if input.KeyHeld(sdl.SCANCODE_E) {
		up++
	}
	if input.KeyHeld(sdl.SCANCODE_Q) {
		up--
	}
	if forward != 0 || right != 0 || up != 0 {
		s := dt * 60
		v.camera.HandleMovement(forward*s, right*s, up*s)
	}
}

func (v *Viewer) render() {
	v.renderer.Begin(v.camera.ViewProj(v.renderer.Aspect()), v.camera.Position())
	for _, c := range v.chunks {
		v.renderer.DrawChunk(c.gpu, v.m.ChunkModelMatrix(c.row, c.col))
	}
	v.renderer.End()
}

// Close releases GPU resources and the window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	for _, c := range v.chunks {
		c.gpu.Delete()
	}
	v.chunks = nil
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
