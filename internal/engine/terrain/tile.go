package terrain

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pfmap/pkg/formats"
)

// raisedCorners lists, per tile type, which top corners sit RampHeight units
// above BaseHeight. Concave corners raise the corner diagonally opposite
// their name; convex corners raise all but one corner.
var raisedCorners = [formats.NumTileTypes]CornerSet{
	formats.TileFlat:            {},
	formats.TileRampSN:          {CornerNW: true, CornerNE: true},
	formats.TileRampNS:          {CornerSE: true, CornerSW: true},
	formats.TileRampEW:          {CornerNW: true, CornerSW: true},
	formats.TileRampWE:          {CornerNE: true, CornerSE: true},
	formats.TileCornerConcaveSW: {CornerNE: true},
	formats.TileCornerConvexSW:  {CornerNW: true, CornerNE: true, CornerSW: true},
	formats.TileCornerConcaveSE: {CornerNW: true},
	formats.TileCornerConvexSE:  {CornerNW: true, CornerNE: true, CornerSE: true},
	formats.TileCornerConcaveNW: {CornerSE: true},
	formats.TileCornerConvexNW:  {CornerNW: true, CornerSE: true, CornerSW: true},
	formats.TileCornerConcaveNE: {CornerSW: true},
	formats.TileCornerConvexNE:  {CornerNE: true, CornerSE: true, CornerSW: true},
}

// RaisedCorners returns the raised top corners for a tile type.
// Unknown types raise nothing.
func RaisedCorners(t formats.TileType) CornerSet {
	if !t.Valid() {
		return CornerSet{}
	}
	return raisedCorners[t]
}

// CornerHeight returns the world-space Y of a top corner.
func CornerHeight(tile formats.Tile, c Corner) float32 {
	units := tile.BaseHeight
	if RaisedCorners(tile.Type)[c] {
		units += tile.RampHeight
	}
	return float32(units) * YCoordsPerTile
}

// quad is a face with corners named as seen from outside the face, with
// west on the right. Emitting NW-NE-SW, SE-SW-NE winds both triangles
// counter-clockwise around the outward normal.
type quad struct {
	nw, ne, se, sw Vertex
}

func (q *quad) emit(out []Vertex) {
	out[0] = q.nw
	out[1] = q.ne
	out[2] = q.sw

	out[3] = q.se
	out[4] = q.sw
	out[5] = q.ne
}

var (
	normalUp    = mgl32.Vec3{0, 1, 0}
	normalDown  = mgl32.Vec3{0, -1, 0}
	normalFront = mgl32.Vec3{0, 0, 1}
	normalBack  = mgl32.Vec3{0, 0, -1}
	normalLeft  = mgl32.Vec3{1, 0, 0}
	normalRight = mgl32.Vec3{-1, 0, 0}
)

func vertex(pos mgl32.Vec3, u, v float32, normal mgl32.Vec3, mat int) Vertex {
	return Vertex{
		Position:    pos,
		TexCoord:    mgl32.Vec2{u, v},
		Normal:      normal,
		MaterialIdx: int32(mat),
	}
}

// sideQuad connects two top corners to two bottom corners. The vertical
// texture coordinate of the top edge grows with its height so wall textures
// tile instead of stretching.
func sideQuad(nw, ne, se, sw mgl32.Vec3, normal mgl32.Vec3, mat int) quad {
	return quad{
		nw: vertex(nw, 0, nw.Y()/XCoordsPerTile, normal, mat),
		ne: vertex(ne, 1, ne.Y()/XCoordsPerTile, normal, mat),
		se: vertex(se, 1, 0, normal, mat),
		sw: vertex(sw, 0, 0, normal, mat),
	}
}

// tileQuads returns the six faces of the tile at (r, c) in emission order.
func tileQuads(tile formats.Tile, r, c int) [FacesPerTile]quad {
	xWest := -float32(c) * XCoordsPerTile
	xEast := -float32(c+1) * XCoordsPerTile
	zNorth := float32(r) * ZCoordsPerTile
	zSouth := float32(r+1) * ZCoordsPerTile
	yBottom := float32(-1 * YCoordsPerTile)

	// Top corners, world compass.
	tNW := mgl32.Vec3{xWest, CornerHeight(tile, CornerNW), zNorth}
	tNE := mgl32.Vec3{xEast, CornerHeight(tile, CornerNE), zNorth}
	tSE := mgl32.Vec3{xEast, CornerHeight(tile, CornerSE), zSouth}
	tSW := mgl32.Vec3{xWest, CornerHeight(tile, CornerSW), zSouth}

	// Bottom corners, world compass.
	bNW := mgl32.Vec3{xWest, yBottom, zNorth}
	bNE := mgl32.Vec3{xEast, yBottom, zNorth}
	bSE := mgl32.Vec3{xEast, yBottom, zSouth}
	bSW := mgl32.Vec3{xWest, yBottom, zSouth}

	topMat := tile.TopMaterial
	sideMat := tile.SideMaterial

	top := quad{
		nw: vertex(tNW, 0, 1, normalUp, topMat),
		ne: vertex(tNE, 1, 1, normalUp, topMat),
		se: vertex(tSE, 1, 0, normalUp, topMat),
		sw: vertex(tSW, 0, 0, normalUp, topMat),
	}
	// Seen from below, east and west swap sides.
	bottom := quad{
		nw: vertex(bNE, 0, 1, normalDown, topMat),
		ne: vertex(bNW, 1, 1, normalDown, topMat),
		se: vertex(bSW, 1, 0, normalDown, topMat),
		sw: vertex(bSE, 0, 0, normalDown, topMat),
	}

	return [FacesPerTile]quad{
		FaceTop:    top,
		FaceBottom: bottom,
		FaceFront:  sideQuad(tSW, tSE, bSE, bSW, normalFront, sideMat),
		FaceBack:   sideQuad(tNE, tNW, bNW, bNE, normalBack, sideMat),
		FaceLeft:   sideQuad(tNW, tSW, bSW, bNW, normalLeft, sideMat),
		FaceRight:  sideQuad(tSE, tNE, bNE, bSE, normalRight, sideMat),
	}
}

// BuildTileVertices returns the 36 vertices of the tile at row r, column c of
// a chunk: top, bottom, front, back, left and right faces, two triangles each.
func BuildTileVertices(tile formats.Tile, r, c int) [VertsPerTile]Vertex {
	var out [VertsPerTile]Vertex
	quads := tileQuads(tile, r, c)
	for i := range quads {
		quads[i].emit(out[i*VertsPerFace : (i+1)*VertsPerFace])
	}
	return out
}

// AppendTileVertices appends the tile's vertices to dst.
func AppendTileVertices(dst []Vertex, tile formats.Tile, r, c int) []Vertex {
	verts := BuildTileVertices(tile, r, c)
	return append(dst, verts[:]...)
}
