package renderer

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pfmap/internal/engine/terrain"
	"github.com/Faultbox/pfmap/pkg/formats"
)

func createTestMaterials(n int) []formats.Material {
	mats := make([]formats.Material, n)
	for i := range mats {
		f := float32(i + 1)
		mats[i] = formats.Material{
			Name:             "mat",
			AmbientIntensity: 0.1 * f,
			Diffuse:          mgl32.Vec3{0.1 * f, 0.2 * f, 0.3 * f},
			Specular:         mgl32.Vec3{0.01 * f, 0.02 * f, 0.03 * f},
			Texture:          "grass.png",
		}
	}
	return mats
}

func createTestTiles(width, height int) []formats.Tile {
	tiles := make([]formats.Tile, width*height)
	for i := range tiles {
		tiles[i] = formats.Tile{
			Type:         formats.TileType(i % formats.NumTileTypes),
			Pathable:     i%2 == 0,
			BaseHeight:   i % 4,
			TopMaterial:  i % 2,
			SideMaterial: (i + 1) % 2,
			RampHeight:   1,
		}
	}
	return tiles
}

func TestBufferSizeForChunk(t *testing.T) {
	tests := []struct {
		w, h, mats int
		want       int
	}{
		{0, 0, 0, 8},
		{1, 1, 0, 8 + 36*68},
		{1, 1, 2, 8 + 2*28 + 36*68},
		{32, 32, 3, 8 + 3*28 + 32*32*36*68},
	}
	for _, tt := range tests {
		if got := BufferSizeForChunk(tt.w, tt.h, tt.mats); got != tt.want {
			t.Errorf("BufferSizeForChunk(%d, %d, %d) = %d, want %d", tt.w, tt.h, tt.mats, got, tt.want)
		}
	}
}

func TestInitChunkBuffer_RoundTrip(t *testing.T) {
	const w, h = 4, 3
	tiles := createTestTiles(w, h)
	mats := createTestMaterials(2)

	buf := make([]byte, BufferSizeForChunk(w, h, len(mats)))
	n, err := InitChunkBuffer(buf, tiles, w, h, mats)
	if err != nil {
		t.Fatalf("InitChunkBuffer failed: %v", err)
	}
	if n != len(buf) {
		t.Errorf("wrote %d bytes, want %d", n, len(buf))
	}

	cb, err := DecodeChunkBuffer(buf)
	if err != nil {
		t.Fatalf("DecodeChunkBuffer failed: %v", err)
	}

	if len(cb.Materials) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(cb.Materials))
	}
	for i, m := range cb.Materials {
		if m.Ambient != mats[i].AmbientIntensity || m.Diffuse != mats[i].Diffuse || m.Specular != mats[i].Specular {
			t.Errorf("material %d: got %+v", i, m)
		}
	}

	want, err := terrain.BuildChunkVertices(tiles, w, h)
	if err != nil {
		t.Fatalf("BuildChunkVertices failed: %v", err)
	}
	if len(cb.Vertices) != len(want) {
		t.Fatalf("expected %d vertices, got %d", len(want), len(cb.Vertices))
	}
	for i := range want {
		if cb.Vertices[i] != want[i] {
			t.Fatalf("vertex %d: got %+v, want %+v", i, cb.Vertices[i], want[i])
		}
	}
}

func TestInitChunkBuffer_TooSmall(t *testing.T) {
	tiles := createTestTiles(2, 2)
	mats := createTestMaterials(2)
	buf := make([]byte, BufferSizeForChunk(2, 2, 2)-1)

	_, err := InitChunkBuffer(buf, tiles, 2, 2, mats)
	if !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("expected ErrBufferTooSmall, got %v", err)
	}
}

func TestInitChunkBuffer_MaterialIndex(t *testing.T) {
	tiles := createTestTiles(2, 2)
	tiles[3].SideMaterial = 5
	mats := createTestMaterials(2)
	buf := make([]byte, BufferSizeForChunk(2, 2, 2))

	_, err := InitChunkBuffer(buf, tiles, 2, 2, mats)
	if !errors.Is(err, ErrMaterialIndex) {
		t.Fatalf("expected ErrMaterialIndex, got %v", err)
	}
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d written on failure", i)
		}
	}
}

func TestInitChunkBuffer_GridMismatch(t *testing.T) {
	buf := make([]byte, BufferSizeForChunk(2, 2, 1))
	if _, err := InitChunkBuffer(buf, createTestTiles(2, 1), 2, 2, createTestMaterials(1)); err == nil {
		t.Error("expected error for short tile grid")
	}
}

func TestDecodeChunkBuffer_Corrupt(t *testing.T) {
	tiles := createTestTiles(1, 1)
	mats := createTestMaterials(1)
	buf := make([]byte, BufferSizeForChunk(1, 1, 1))
	if _, err := InitChunkBuffer(buf, tiles, 1, 1, mats); err != nil {
		t.Fatalf("InitChunkBuffer failed: %v", err)
	}

	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"short header", buf[:4]},
		{"truncated vertices", buf[:len(buf)-1]},
		{"partial tile", func() []byte {
			b := append([]byte(nil), buf...)
			b[0] = 35
			return b
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeChunkBuffer(tt.buf); !errors.Is(err, ErrCorruptBuffer) {
				t.Errorf("expected ErrCorruptBuffer, got %v", err)
			}
		})
	}
}

func TestVertexBytes(t *testing.T) {
	buf := make([]byte, BufferSizeForChunk(2, 1, 3))
	if _, err := InitChunkBuffer(buf, createTestTiles(2, 1), 2, 1, createTestMaterials(3)); err != nil {
		t.Fatalf("InitChunkBuffer failed: %v", err)
	}

	verts, n, err := vertexBytes(buf)
	if err != nil {
		t.Fatalf("vertexBytes failed: %v", err)
	}
	if n != 2*terrain.VertsPerTile {
		t.Errorf("expected %d vertices, got %d", 2*terrain.VertsPerTile, n)
	}
	if len(verts) != n*VertexSize {
		t.Errorf("expected %d bytes, got %d", n*VertexSize, len(verts))
	}
	if got := getVertex(verts[:VertexSize]).Normal; got != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("first vertex normal %v, want up", got)
	}
}
