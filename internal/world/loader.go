// Package world materializes pfmap files into a Map held in a single arena.
package world

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/pfmap/internal/engine/renderer"
	"github.com/Faultbox/pfmap/internal/logger"
	"github.com/Faultbox/pfmap/pkg/formats"
)

// Loader errors.
var (
	ErrMaterialFileOpen = errors.New("cannot open material file")
	ErrMaterialParse    = formats.ErrMaterialParse
	ErrMapTooLarge      = errors.New("map exceeds arena size limit")
)

// DefaultMaxArenaSize is the largest arena LoadFile allocates unless
// Loader.MaxArenaSize says otherwise.
const DefaultMaxArenaSize = 1 << 30

// ChunkGeometrySize returns the geometry buffer size of one chunk of a map
// declaring numMaterials materials.
func ChunkGeometrySize(numMaterials int) uint64 {
	return uint64(renderer.BufferSizeForChunk(
		formats.TilesPerChunkWidth, formats.TilesPerChunkHeight, numMaterials))
}

// ComputeRequiredSize returns the exact arena size needed to load a map with
// the given header.
func ComputeRequiredSize(h formats.PFMapHeader) uint64 {
	n := uint64(h.NumChunks())
	return MapRecordSize + n*(ChunkRecordSize+ChunkGeometrySize(h.NumMaterials))
}

// Loader builds maps from pfmap streams. Within one load, material files are
// parsed once per path and shared by every chunk that names them. Each load
// starts with an empty cache, so edited material files are picked up.
type Loader struct {
	// ChunkMaterials overrides the material file for individual chunks,
	// keyed by row-major chunk index.
	ChunkMaterials map[int]string

	// MaxArenaSize caps the arena LoadFile allocates. Zero means
	// DefaultMaxArenaSize.
	MaxArenaSize uint64

	cache *MaterialCache
	log   *zap.Logger
}

// NewLoader creates a loader with an empty material cache.
func NewLoader() *Loader {
	return &Loader{
		cache: NewMaterialCache(),
		log:   logger.Named("world"),
	}
}

// CacheStats returns material cache hits and misses of the last load.
func (l *Loader) CacheStats() (hits, misses int) {
	return l.cache.Stats()
}

// LoadFile reads baseDir/mapName, allocates an arena of the required size and
// initializes the map from it.
func (l *Loader) LoadFile(baseDir, mapName, matName string) (*Map, error) {
	path := filepath.Join(baseDir, mapName)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening map %s: %w", path, err)
	}
	defer f.Close()

	tr := formats.NewTileReader(bufio.NewReader(f))
	header, err := tr.ReadHeader()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}

	size := ComputeRequiredSize(header)
	limit := l.MaxArenaSize
	if limit == 0 {
		limit = DefaultMaxArenaSize
	}
	if size > limit {
		return nil, fmt.Errorf("%s: %w: need %d bytes, limit %d", path, ErrMapTooLarge, size, limit)
	}

	// The body continues on the header's reader so parse errors report
	// file lines.
	m, err := l.load(header, baseDir, tr, matName, NewArena(size))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// InitializeFromStream reads every chunk of the map body from r into arena.
// Chunks are read in row-major order, each followed by the initialization of
// its geometry buffer from baseDir/matName (or a ChunkMaterials override).
//
// The arena must hold at least ComputeRequiredSize(header) bytes. Any failure
// zeroes the arena and returns a nil map.
func (l *Loader) InitializeFromStream(header formats.PFMapHeader, baseDir string, r io.Reader,
	matName string, arena *Arena) (*Map, error) {
	return l.load(header, baseDir, formats.NewTileReader(r), matName, arena)
}

func (l *Loader) load(header formats.PFMapHeader, baseDir string, tr *formats.TileReader,
	matName string, arena *Arena) (*Map, error) {
	if err := header.Validate(); err != nil {
		return nil, err
	}
	required := ComputeRequiredSize(header)
	if arena == nil || arena.Len() < required {
		have := uint64(0)
		if arena != nil {
			have = arena.Len()
		}
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrSizeMismatch, have, required)
	}

	l.cache.Clear()
	m, err := l.initialize(header, baseDir, tr, matName, arena)
	if err != nil {
		arena.Zero()
		return nil, err
	}

	l.log.Info("map loaded",
		zap.Int("rows", header.NumRows),
		zap.Int("cols", header.NumCols),
		zap.Int("materials", header.NumMaterials),
		zap.Uint64("bytes", required),
	)
	return m, nil
}

func (l *Loader) initialize(header formats.PFMapHeader, baseDir string, tr *formats.TileReader,
	matName string, arena *Arena) (*Map, error) {
	numChunks := header.NumChunks()
	if err := writeMapRecord(arena, header); err != nil {
		return nil, err
	}

	m := mapView(arena)
	geomSize := ChunkGeometrySize(header.NumMaterials)
	geomBase := Offset(MapRecordSize + uint64(numChunks)*ChunkRecordSize)

	tiles := make([]formats.Tile, formats.TilesPerChunk)

	for i := 0; i < numChunks; i++ {
		chunk, err := m.ChunkAt(i)
		if err != nil {
			return nil, err
		}
		if err := chunk.setGeometry(geomBase+Offset(uint64(i)*geomSize), geomSize); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}

		if err := tr.ReadChunk(tiles); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		if err := chunk.setTiles(tiles); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}

		mats, err := l.materials(baseDir, l.materialFile(i, matName), header.NumMaterials)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}

		geom, err := chunk.Geometry()
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		if _, err := renderer.InitChunkBuffer(geom, tiles,
			formats.TilesPerChunkWidth, formats.TilesPerChunkHeight, mats); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}

		l.log.Debug("chunk loaded",
			zap.Int("chunk", i),
			zap.Int("row", chunk.Row),
			zap.Int("col", chunk.Col),
		)
	}
	return m, nil
}

func (l *Loader) materialFile(chunk int, def string) string {
	if name, ok := l.ChunkMaterials[chunk]; ok && name != "" {
		return name
	}
	return def
}

// materials returns the parsed contents of baseDir/name, reading the file only
// on the first request for that path.
func (l *Loader) materials(baseDir, name string, count int) ([]formats.Material, error) {
	path := filepath.Join(baseDir, name)
	if mats, ok := l.cache.Get(path, count); ok {
		l.log.Debug("material cache hit", zap.String("path", path))
		return mats, nil
	}
	l.log.Debug("material cache miss", zap.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMaterialFileOpen, err)
	}
	defer f.Close()

	mats, err := formats.ParsePFMat(f, count)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l.cache.Set(path, count, mats)
	return mats, nil
}

func writeMapRecord(a *Arena, h formats.PFMapHeader) error {
	fields := []struct {
		off Offset
		v   uint32
	}{
		{mapOffCols, uint32(h.NumCols)},
		{mapOffRows, uint32(h.NumRows)},
		{mapOffMaterials, uint32(h.NumMaterials)},
		{mapOffChunks, uint32(h.NumChunks())},
	}
	for _, f := range fields {
		if err := a.putUint32(f.off, f.v); err != nil {
			return err
		}
	}
	for i := 0; i < 3; i++ {
		if err := a.putFloat32(mapOffPos+Offset(i*4), 0); err != nil {
			return err
		}
	}
	return nil
}
