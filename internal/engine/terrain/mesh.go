package terrain

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pfmap/pkg/formats"
)

// BuildChunkVertices creates the vertex list for a width x height grid of
// tiles stored row-major. Tiles are emitted in storage order, 36 vertices each.
func BuildChunkVertices(tiles []formats.Tile, width, height int) ([]Vertex, error) {
	if len(tiles) != width*height {
		return nil, fmt.Errorf("tile grid holds %d tiles, want %dx%d", len(tiles), width, height)
	}

	vertices := make([]Vertex, 0, len(tiles)*VertsPerTile)
	for r := range height {
		for c := range width {
			vertices = AppendTileVertices(vertices, tiles[r*width+c], r, c)
		}
	}
	return vertices, nil
}

// ComputeBounds returns the bounding box of the given vertices.
func ComputeBounds(vertices []Vertex) Bounds {
	if len(vertices) == 0 {
		return Bounds{}
	}

	bounds := Bounds{
		Min: mgl32.Vec3{1e10, 1e10, 1e10},
		Max: mgl32.Vec3{-1e10, -1e10, -1e10},
	}
	for i := range vertices {
		updateBounds(&bounds, vertices[i].Position)
	}
	return bounds
}

// ChunkExtent returns the world-space size of a chunk along X and Z.
func ChunkExtent() (x, z float32) {
	return formats.TilesPerChunkWidth * XCoordsPerTile, formats.TilesPerChunkHeight * ZCoordsPerTile
}

func updateBounds(b *Bounds, p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
