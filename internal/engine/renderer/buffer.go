package renderer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pfmap/internal/engine/terrain"
	"github.com/Faultbox/pfmap/pkg/formats"
)

// Chunk buffer errors.
var (
	ErrBufferTooSmall = errors.New("chunk buffer too small")
	ErrMaterialIndex  = errors.New("tile material index out of range")
	ErrCorruptBuffer  = errors.New("corrupt chunk buffer")
)

// Chunk buffer layout, all values little-endian:
//
//	header   numVertices u32, numMaterials u32
//	material ambient f32, diffuse 3×f32, specular 3×f32
//	vertex   position 3×f32, uv 2×f32, normal 3×f32, material i32,
//	         joints 4×i32, weights 4×f32
const (
	ChunkHeaderSize    = 8
	MaterialRecordSize = 7 * 4
	VertexSize         = 17 * 4
)

// Vertex attribute byte offsets within a vertex record.
const (
	offsetPosition = 0
	offsetTexCoord = 12
	offsetNormal   = 20
	offsetMaterial = 32
	offsetJoints   = 36
	offsetWeights  = 52
)

// MaterialUniform is the per-material data the terrain shader reads.
type MaterialUniform struct {
	Ambient  float32
	Diffuse  mgl32.Vec3
	Specular mgl32.Vec3
}

// ChunkBuffer is a decoded chunk geometry buffer.
type ChunkBuffer struct {
	Materials []MaterialUniform
	Vertices  []terrain.Vertex
}

// BufferSizeForChunk returns the number of bytes needed to hold the geometry of
// a width x height tile grid using numMaterials materials.
func BufferSizeForChunk(width, height, numMaterials int) int {
	return ChunkHeaderSize +
		numMaterials*MaterialRecordSize +
		width*height*terrain.VertsPerTile*VertexSize
}

// InitChunkBuffer fills buf with the header, material records and vertices of
// a tile grid. It returns the number of bytes written. Every tile's material
// indices must address mats. Nothing is written on error.
func InitChunkBuffer(buf []byte, tiles []formats.Tile, width, height int, mats []formats.Material) (int, error) {
	if len(tiles) != width*height {
		return 0, fmt.Errorf("tile grid holds %d tiles, want %dx%d", len(tiles), width, height)
	}
	size := BufferSizeForChunk(width, height, len(mats))
	if len(buf) < size {
		return 0, fmt.Errorf("%w: have %d bytes, need %d", ErrBufferTooSmall, len(buf), size)
	}
	for i, t := range tiles {
		if t.TopMaterial >= len(mats) || t.SideMaterial >= len(mats) || t.TopMaterial < 0 || t.SideMaterial < 0 {
			return 0, fmt.Errorf("%w: tile %d (row %d, col %d) uses %d/%d, have %d materials",
				ErrMaterialIndex, i, i/width, i%width, t.TopMaterial, t.SideMaterial, len(mats))
		}
	}

	le := binary.LittleEndian
	le.PutUint32(buf[0:], uint32(len(tiles)*terrain.VertsPerTile))
	le.PutUint32(buf[4:], uint32(len(mats)))

	off := ChunkHeaderSize
	for _, m := range mats {
		putFloat32(buf[off:], m.AmbientIntensity)
		putVec3(buf[off+4:], m.Diffuse)
		putVec3(buf[off+16:], m.Specular)
		off += MaterialRecordSize
	}

	for r := range height {
		for c := range width {
			verts := terrain.BuildTileVertices(tiles[r*width+c], r, c)
			for i := range verts {
				putVertex(buf[off:off+VertexSize], &verts[i])
				off += VertexSize
			}
		}
	}
	return off, nil
}

// DecodeChunkBuffer parses a buffer written by InitChunkBuffer.
func DecodeChunkBuffer(buf []byte) (*ChunkBuffer, error) {
	numVerts, numMats, err := chunkHeader(buf)
	if err != nil {
		return nil, err
	}

	cb := &ChunkBuffer{
		Materials: make([]MaterialUniform, numMats),
		Vertices:  make([]terrain.Vertex, numVerts),
	}

	off := ChunkHeaderSize
	for i := range cb.Materials {
		cb.Materials[i] = MaterialUniform{
			Ambient:  getFloat32(buf[off:]),
			Diffuse:  getVec3(buf[off+4:]),
			Specular: getVec3(buf[off+16:]),
		}
		off += MaterialRecordSize
	}
	for i := range cb.Vertices {
		cb.Vertices[i] = getVertex(buf[off : off+VertexSize])
		off += VertexSize
	}
	return cb, nil
}

// chunkHeader reads the counts from a chunk buffer and checks that the buffer
// is large enough to hold them.
func chunkHeader(buf []byte) (numVerts, numMats int, err error) {
	if len(buf) < ChunkHeaderSize {
		return 0, 0, fmt.Errorf("%w: %d bytes", ErrCorruptBuffer, len(buf))
	}
	numVerts = int(binary.LittleEndian.Uint32(buf[0:]))
	numMats = int(binary.LittleEndian.Uint32(buf[4:]))
	if numVerts%terrain.VertsPerTile != 0 {
		return 0, 0, fmt.Errorf("%w: %d vertices is not a whole number of tiles", ErrCorruptBuffer, numVerts)
	}
	need := ChunkHeaderSize + numMats*MaterialRecordSize + numVerts*VertexSize
	if len(buf) < need {
		return 0, 0, fmt.Errorf("%w: have %d bytes, header needs %d", ErrCorruptBuffer, len(buf), need)
	}
	return numVerts, numMats, nil
}

// vertexBytes returns the vertex region of a chunk buffer.
func vertexBytes(buf []byte) ([]byte, int, error) {
	numVerts, numMats, err := chunkHeader(buf)
	if err != nil {
		return nil, 0, err
	}
	start := ChunkHeaderSize + numMats*MaterialRecordSize
	return buf[start : start+numVerts*VertexSize], numVerts, nil
}

func putVertex(b []byte, v *terrain.Vertex) {
	putVec3(b[offsetPosition:], v.Position)
	putFloat32(b[offsetTexCoord:], v.TexCoord[0])
	putFloat32(b[offsetTexCoord+4:], v.TexCoord[1])
	putVec3(b[offsetNormal:], v.Normal)
	binary.LittleEndian.PutUint32(b[offsetMaterial:], uint32(v.MaterialIdx))
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint32(b[offsetJoints+i*4:], uint32(v.JointIndices[i]))
		putFloat32(b[offsetWeights+i*4:], v.Weights[i])
	}
}

func getVertex(b []byte) terrain.Vertex {
	var v terrain.Vertex
	v.Position = getVec3(b[offsetPosition:])
	v.TexCoord = mgl32.Vec2{getFloat32(b[offsetTexCoord:]), getFloat32(b[offsetTexCoord+4:])}
	v.Normal = getVec3(b[offsetNormal:])
	v.MaterialIdx = int32(binary.LittleEndian.Uint32(b[offsetMaterial:]))
	for i := 0; i < 4; i++ {
		v.JointIndices[i] = int32(binary.LittleEndian.Uint32(b[offsetJoints+i*4:]))
		v.Weights[i] = getFloat32(b[offsetWeights+i*4:])
	}
	return v
}

func putFloat32(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(f))
}

func getFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func putVec3(b []byte, v mgl32.Vec3) {
	putFloat32(b[0:], v[0])
	putFloat32(b[4:], v[1])
	putFloat32(b[8:], v[2])
}

func getVec3(b []byte) mgl32.Vec3 {
	return mgl32.Vec3{getFloat32(b[0:]), getFloat32(b[4:]), getFloat32(b[8:])}
}
