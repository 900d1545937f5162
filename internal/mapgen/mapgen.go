// Package mapgen synthesizes pfmap tile grids from OpenSimplex noise.
package mapgen

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/ojrac/opensimplex-go"

	"github.com/Faultbox/pfmap/internal/config"
	"github.com/Faultbox/pfmap/pkg/formats"
)

// ErrInvalidParams is returned for generator settings that cannot produce an
// encodable map.
var ErrInvalidParams = errors.New("invalid generator parameters")

// maxEncodableHeight leaves room for a one-unit ramp on the highest level.
const maxEncodableHeight = 8

// Params controls map generation.
type Params struct {
	Seed         int64
	Rows, Cols   int // in chunks
	MaxHeight    int // highest base height, 0-8
	NumMaterials int

	// Fractal noise
	Scale       float32 // tiles per noise unit
	Octaves     int
	Lacunarity  float32
	Persistence float32
}

// DefaultParams returns settings for a single rolling chunk.
func DefaultParams() Params {
	return Params{
		Seed:         1,
		Rows:         1,
		Cols:         1,
		MaxHeight:    4,
		NumMaterials: 2,
		Scale:        24,
		Octaves:      3,
		Lacunarity:   2,
		Persistence:  0.5,
	}
}

// ParamsFromConfig converts the generator section of a config file.
func ParamsFromConfig(c config.GeneratorConfig) Params {
	return Params{
		Seed:         c.Seed,
		Rows:         c.Rows,
		Cols:         c.Cols,
		MaxHeight:    c.MaxHeight,
		NumMaterials: c.Materials,
		Scale:        c.Scale,
		Octaves:      c.Octaves,
		Lacunarity:   c.Lacunarity,
		Persistence:  c.Persistence,
	}
}

// Validate checks that p describes an encodable map.
func (p Params) Validate() error {
	switch {
	case p.Rows <= 0 || p.Cols <= 0 || p.Rows > formats.MaxChunkRows || p.Cols > formats.MaxChunkCols,
		p.Rows*p.Cols > formats.MaxChunks:
		return fmt.Errorf("%w: %dx%d chunks", ErrInvalidParams, p.Rows, p.Cols)
	case p.MaxHeight < 0 || p.MaxHeight > maxEncodableHeight:
		return fmt.Errorf("%w: max height %d out of range 0-%d", ErrInvalidParams, p.MaxHeight, maxEncodableHeight)
	case p.NumMaterials <= 0 || p.NumMaterials > formats.MaxMaterials:
		return fmt.Errorf("%w: %d materials", ErrInvalidParams, p.NumMaterials)
	case p.Scale <= 0:
		return fmt.Errorf("%w: scale %f", ErrInvalidParams, p.Scale)
	case p.Octaves <= 0:
		return fmt.Errorf("%w: %d octaves", ErrInvalidParams, p.Octaves)
	}
	return nil
}

// Grid is a generated map: a header and one row-major tile slice per chunk.
type Grid struct {
	Header formats.PFMapHeader
	Chunks [][]formats.Tile
}

// TileWidth returns the grid width in tiles.
func (g *Grid) TileWidth() int { return g.Header.NumCols * formats.TilesPerChunkWidth }

// TileHeight returns the grid height in tiles.
func (g *Grid) TileHeight() int { return g.Header.NumRows * formats.TilesPerChunkHeight }

// At returns the tile at map-wide coordinates.
func (g *Grid) At(row, col int) formats.Tile {
	return *g.at(row, col)
}

func (g *Grid) at(row, col int) *formats.Tile {
	chunk := (row/formats.TilesPerChunkHeight)*g.Header.NumCols + col/formats.TilesPerChunkWidth
	i := (row%formats.TilesPerChunkHeight)*formats.TilesPerChunkWidth + col%formats.TilesPerChunkWidth
	return &g.Chunks[chunk][i]
}

// WriteTo writes the header and every chunk as a pfmap file.
func (g *Grid) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	if err := formats.WriteHeader(&buf, g.Header); err != nil {
		return 0, err
	}
	for i, tiles := range g.Chunks {
		if err := formats.WriteChunk(&buf, tiles); err != nil {
			return 0, fmt.Errorf("chunk %d: %w", i, err)
		}
	}
	return buf.WriteTo(w)
}

// Generate builds a grid from p. The same parameters always produce the same
// grid.
func Generate(p Params) (*Grid, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	g := &Grid{
		Header: formats.PFMapHeader{
			Version:      formats.PFMapVersion,
			NumMaterials: p.NumMaterials,
			NumRows:      p.Rows,
			NumCols:      p.Cols,
		},
		Chunks: make([][]formats.Tile, p.Rows*p.Cols),
	}
	for i := range g.Chunks {
		g.Chunks[i] = make([]formats.Tile, formats.TilesPerChunk)
	}

	heights := sampleHeights(p, g.TileHeight(), g.TileWidth())
	for r := range heights {
		for c := range heights[r] {
			*g.at(r, c) = shapeTile(heights, r, c, p)
		}
	}
	return g, nil
}

// sampleHeights quantizes fractal noise to base heights 0..p.MaxHeight.
func sampleHeights(p Params, rows, cols int) [][]int {
	noise := opensimplex.New32(p.Seed)

	heights := make([][]int, rows)
	for r := range heights {
		heights[r] = make([]int, cols)
		for c := range heights[r] {
			v := fractalNoise(noise, float32(c), float32(r), p)
			h := int(math.Round(float64((v + 1) / 2 * float32(p.MaxHeight))))
			heights[r][c] = clamp(h, 0, p.MaxHeight)
		}
	}
	return heights
}

// fractalNoise sums octaves of noise and normalizes the result to [-1, 1].
func fractalNoise(noise opensimplex.Noise32, x, z float32, p Params) float32 {
	var val, total float32
	amplitude := float32(1)
	for i := 0; i < p.Octaves; i++ {
		val += noise.Eval2(x/p.Scale, z/p.Scale) * amplitude
		total += amplitude
		x *= p.Lacunarity
		z *= p.Lacunarity
		amplitude *= p.Persistence
	}
	return mgl32.Clamp(val/total, -1, 1)
}

type neighbour struct {
	dr, dc int
	ramp   formats.TileType
}

// Cardinal neighbours and the ramp that climbs towards each. Columns grow
// east.
var neighbours = [4]neighbour{
	{-1, 0, formats.TileRampSN},
	{1, 0, formats.TileRampNS},
	{0, -1, formats.TileRampEW},
	{0, 1, formats.TileRampWE},
}

// shapeTile turns the height at (r, c) into a tile. A tile with exactly one
// neighbour one unit higher becomes a ramp towards it. A tile next to a step
// of more than one unit is a cliff and cannot be walked on.
func shapeTile(heights [][]int, r, c int, p Params) formats.Tile {
	h := heights[r][c]
	tile := formats.Tile{
		Type:       formats.TileFlat,
		Pathable:   true,
		BaseHeight: h,
	}

	higher := 0
	var ramp formats.TileType
	for _, n := range neighbours {
		nr, nc := r+n.dr, c+n.dc
		if nr < 0 || nc < 0 || nr >= len(heights) || nc >= len(heights[nr]) {
			continue
		}
		d := heights[nr][nc] - h
		if d == 1 {
			higher++
			ramp = n.ramp
		}
		if d > 1 || d < -1 {
			tile.Pathable = false
		}
	}
	if higher == 1 {
		tile.Type = ramp
		tile.RampHeight = 1
	}

	tile.TopMaterial = h * p.NumMaterials / (p.MaxHeight + 1)
	tile.SideMaterial = (tile.TopMaterial + 1) % p.NumMaterials
	return tile
}

// DefaultMaterials returns n materials shading from grass green at index 0
// to rock grey.
func DefaultMaterials(n int) []formats.Material {
	grass := mgl32.Vec3{0.30, 0.55, 0.20}
	rock := mgl32.Vec3{0.50, 0.48, 0.45}

	mats := make([]formats.Material, n)
	for i := range mats {
		t := float32(0)
		if n > 1 {
			t = float32(i) / float32(n-1)
		}
		mats[i] = formats.Material{
			Name:             fmt.Sprintf("terrain%d", i),
			AmbientIntensity: 0.3,
			Diffuse:          grass.Mul(1 - t).Add(rock.Mul(t)),
			Specular:         mgl32.Vec3{0.05, 0.05, 0.05}.Mul(1 + t),
			Texture:          fmt.Sprintf("terrain%d.png", i),
		}
	}
	return mats
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
