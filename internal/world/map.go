package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pfmap/internal/engine/terrain"
	"github.com/Faultbox/pfmap/pkg/formats"
)

// Record layout inside the arena, little-endian:
//
//	map    cols u32, rows u32, pos 3×f32, numMaterials u32, numChunks u32
//	chunk  geometry offset u64, geometry size u64, tiles (6 bytes each)
//
// The map record sits at offset 0, followed by every chunk record in row-major
// order, followed by every chunk's geometry buffer in the same order.
const (
	MapRecordSize   = 28
	TileRecordSize  = 6
	ChunkRecordSize = 16 + formats.TilesPerChunk*TileRecordSize
)

const (
	mapOffCols      = 0
	mapOffRows      = 4
	mapOffPos       = 8
	mapOffMaterials = 20
	mapOffChunks    = 24

	chunkOffGeomOffset = 0
	chunkOffGeomSize   = 8
	chunkOffTiles      = 16
)

// Map is a view over the map record at the start of an arena.
type Map struct {
	arena *Arena
}

// Chunk is a view over one chunk record of a Map.
type Chunk struct {
	arena    *Arena
	off      Offset
	Index    int
	Row, Col int
}

func chunkRecordOffset(i int) Offset {
	return Offset(MapRecordSize + uint64(i)*ChunkRecordSize)
}

// mapView wraps an arena already known to hold a complete map.
func mapView(a *Arena) *Map {
	return &Map{arena: a}
}

// Arena returns the block backing the map.
func (m *Map) Arena() *Arena {
	return m.arena
}

func (m *Map) field(off Offset) int {
	v, err := m.arena.uint32At(off)
	if err != nil {
		panic(err)
	}
	return int(v)
}

// Width returns the number of chunk columns.
func (m *Map) Width() int { return m.field(mapOffCols) }

// Height returns the number of chunk rows.
func (m *Map) Height() int { return m.field(mapOffRows) }

// NumMaterials returns the material count declared by the map header.
func (m *Map) NumMaterials() int { return m.field(mapOffMaterials) }

// NumChunks returns Width*Height.
func (m *Map) NumChunks() int { return m.field(mapOffChunks) }

// TileWidth returns the map width in tiles.
func (m *Map) TileWidth() int { return m.Width() * formats.TilesPerChunkWidth }

// TileHeight returns the map height in tiles.
func (m *Map) TileHeight() int { return m.Height() * formats.TilesPerChunkHeight }

// Header rebuilds the header the map was loaded from.
func (m *Map) Header() formats.PFMapHeader {
	return formats.PFMapHeader{
		Version:      formats.PFMapVersion,
		NumMaterials: m.NumMaterials(),
		NumRows:      m.Height(),
		NumCols:      m.Width(),
	}
}

// Pos returns the world-space position of the map's north-west corner.
func (m *Map) Pos() mgl32.Vec3 {
	var p mgl32.Vec3
	for i := range p {
		f, err := m.arena.float32At(mapOffPos + Offset(i*4))
		if err != nil {
			panic(err)
		}
		p[i] = f
	}
	return p
}

// SetPos moves the map.
func (m *Map) SetPos(p mgl32.Vec3) {
	for i := range p {
		if err := m.arena.putFloat32(mapOffPos+Offset(i*4), p[i]); err != nil {
			panic(err)
		}
	}
}

// Bounds returns the world-space XZ extents of the tile grid at ground level.
func (m *Map) Bounds() terrain.Bounds {
	cx, cz := terrain.ChunkExtent()
	pos := m.Pos()
	return terrain.Bounds{
		Min: mgl32.Vec3{pos.X() - float32(m.Width())*cx, pos.Y(), pos.Z()},
		Max: mgl32.Vec3{pos.X(), pos.Y(), pos.Z() + float32(m.Height())*cz},
	}
}

// CenterAtOrigin places the map so the centre of its tile grid sits at the
// world origin on the XZ plane. Y is left unchanged.
func (m *Map) CenterAtOrigin() {
	cx, cz := terrain.ChunkExtent()
	width := float32(m.Width()) * cx
	depth := float32(m.Height()) * cz
	m.SetPos(mgl32.Vec3{width / 2, m.Pos().Y(), -depth / 2})
}

// ChunkModelMatrix returns the translation that places chunk (row, col) in
// world space.
func (m *Map) ChunkModelMatrix(row, col int) mgl32.Mat4 {
	cx, cz := terrain.ChunkExtent()
	pos := m.Pos()
	return mgl32.Translate3D(pos.X()-float32(col)*cx, pos.Y(), pos.Z()+float32(row)*cz)
}

// Chunk returns the chunk at (row, col).
func (m *Map) Chunk(row, col int) (*Chunk, error) {
	if row < 0 || col < 0 || row >= m.Height() || col >= m.Width() {
		return nil, fmt.Errorf("%w: chunk (%d,%d) outside %dx%d map", ErrOutOfBounds, row, col, m.Height(), m.Width())
	}
	return m.ChunkAt(row*m.Width() + col)
}

// ChunkAt returns the i-th chunk in row-major order.
func (m *Map) ChunkAt(i int) (*Chunk, error) {
	if i < 0 || i >= m.NumChunks() {
		return nil, fmt.Errorf("%w: chunk %d of %d", ErrOutOfBounds, i, m.NumChunks())
	}
	off := chunkRecordOffset(i)
	if _, err := m.arena.Slice(off, ChunkRecordSize); err != nil {
		return nil, err
	}
	w := m.Width()
	return &Chunk{arena: m.arena, off: off, Index: i, Row: i / w, Col: i % w}, nil
}

// TileAt returns the tile at map-wide tile coordinates.
func (m *Map) TileAt(row, col int) (formats.Tile, error) {
	if row < 0 || col < 0 || row >= m.TileHeight() || col >= m.TileWidth() {
		return formats.Tile{}, fmt.Errorf("%w: tile (%d,%d) outside %dx%d grid",
			ErrOutOfBounds, row, col, m.TileHeight(), m.TileWidth())
	}
	chunk, err := m.Chunk(row/formats.TilesPerChunkHeight, col/formats.TilesPerChunkWidth)
	if err != nil {
		return formats.Tile{}, err
	}
	return chunk.Tile(row%formats.TilesPerChunkHeight, col%formats.TilesPerChunkWidth)
}

// IsPathable reports whether the tile at map-wide coordinates can be walked on.
// Tiles outside the map are not pathable.
func (m *Map) IsPathable(row, col int) bool {
	t, err := m.TileAt(row, col)
	return err == nil && t.Pathable
}

// GeometryOffset returns where the chunk's geometry buffer starts.
func (c *Chunk) GeometryOffset() (Offset, error) {
	v, err := c.arena.uint64At(c.off + chunkOffGeomOffset)
	return Offset(v), err
}

// Geometry returns the chunk's geometry buffer.
func (c *Chunk) Geometry() ([]byte, error) {
	off, err := c.GeometryOffset()
	if err != nil {
		return nil, err
	}
	size, err := c.arena.uint64At(c.off + chunkOffGeomSize)
	if err != nil {
		return nil, err
	}
	return c.arena.Slice(off, size)
}

func (c *Chunk) setGeometry(off Offset, size uint64) error {
	if _, err := c.arena.Slice(off, size); err != nil {
		return err
	}
	if err := c.arena.putUint64(c.off+chunkOffGeomOffset, uint64(off)); err != nil {
		return err
	}
	return c.arena.putUint64(c.off+chunkOffGeomSize, size)
}

func (c *Chunk) tileBytes(row, col int) ([]byte, error) {
	if row < 0 || col < 0 || row >= formats.TilesPerChunkHeight || col >= formats.TilesPerChunkWidth {
		return nil, fmt.Errorf("%w: tile (%d,%d) outside chunk", ErrOutOfBounds, row, col)
	}
	i := row*formats.TilesPerChunkWidth + col
	return c.arena.Slice(c.off+chunkOffTiles+Offset(i*TileRecordSize), TileRecordSize)
}

// Tile returns the tile at (row, col) within the chunk.
func (c *Chunk) Tile(row, col int) (formats.Tile, error) {
	b, err := c.tileBytes(row, col)
	if err != nil {
		return formats.Tile{}, err
	}
	return decodeTile(b), nil
}

// Tiles returns a copy of the chunk's tiles in row-major order.
func (c *Chunk) Tiles() ([]formats.Tile, error) {
	b, err := c.arena.Slice(c.off+chunkOffTiles, formats.TilesPerChunk*TileRecordSize)
	if err != nil {
		return nil, err
	}
	tiles := make([]formats.Tile, formats.TilesPerChunk)
	for i := range tiles {
		tiles[i] = decodeTile(b[i*TileRecordSize:])
	}
	return tiles, nil
}

func (c *Chunk) setTiles(tiles []formats.Tile) error {
	if len(tiles) != formats.TilesPerChunk {
		return fmt.Errorf("chunk holds %d tiles, got %d", formats.TilesPerChunk, len(tiles))
	}
	b, err := c.arena.Slice(c.off+chunkOffTiles, formats.TilesPerChunk*TileRecordSize)
	if err != nil {
		return err
	}
	for i, t := range tiles {
		encodeTile(b[i*TileRecordSize:], t)
	}
	return nil
}

func encodeTile(b []byte, t formats.Tile) {
	b[0] = byte(t.Type)
	b[1] = 0
	if t.Pathable {
		b[1] = 1
	}
	b[2] = byte(t.BaseHeight)
	b[3] = byte(t.TopMaterial)
	b[4] = byte(t.SideMaterial)
	b[5] = byte(t.RampHeight)
}

func decodeTile(b []byte) formats.Tile {
	return formats.Tile{
		Type:         formats.TileType(b[0]),
		Pathable:     b[1] != 0,
		BaseHeight:   int(b[2]),
		TopMaterial:  int(b[3]),
		SideMaterial: int(b[4]),
		RampHeight:   int(b[5]),
	}
}
