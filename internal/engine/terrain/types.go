// Package terrain builds renderable geometry for pfmap tiles.
//
// Coordinates: row 0 is the north edge of a chunk and rows grow south along
// +Z; columns grow east along -X; Y is up. Each tile is a closed box whose top
// face may have corners raised by the tile's ramp height.
package terrain

import "github.com/go-gl/mathgl/mgl32"

// World-space extents of one tile. Y is the size of one height unit.
const (
	XCoordsPerTile = 8
	YCoordsPerTile = 4
	ZCoordsPerTile = 8
)

// Vertex counts per tile. Faces are emitted as two unindexed triangles.
const (
	VertsPerFace = 6
	FacesPerTile = 6
	VertsPerTile = VertsPerFace * FacesPerTile
)

// Vertex is one terrain vertex. The layout matches the skinned mesh vertex
// format so terrain and models share a shader; joints and weights stay zero.
type Vertex struct {
	Position     mgl32.Vec3
	TexCoord     mgl32.Vec2
	Normal       mgl32.Vec3
	MaterialIdx  int32
	JointIndices [4]int32
	Weights      [4]float32
}

// Corner names a corner of a tile's top face.
type Corner int

// Top face corners.
const (
	CornerNW Corner = iota
	CornerNE
	CornerSE
	CornerSW
	NumCorners
)

// String returns the compass name of the corner.
func (c Corner) String() string {
	switch c {
	case CornerNW:
		return "NW"
	case CornerNE:
		return "NE"
	case CornerSE:
		return "SE"
	case CornerSW:
		return "SW"
	default:
		return "?"
	}
}

// CornerSet flags each top corner, indexed by Corner.
type CornerSet [NumCorners]bool

// Count returns how many corners are set.
func (s CornerSet) Count() int {
	n := 0
	for _, v := range s {
		if v {
			n++
		}
	}
	return n
}

// Face identifies one of the six faces of a tile, in emission order.
type Face int

// Faces in the order BuildTileVertices emits them.
const (
	FaceTop Face = iota
	FaceBottom
	FaceFront
	FaceBack
	FaceLeft
	FaceRight
)

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Heightmap holds the top-corner heights of a tile grid in world units.
type Heightmap struct {
	Corners [][NumCorners]float32 // row-major, one entry per tile
	Width   int                   // tiles per row
	Height  int                   // rows
}
