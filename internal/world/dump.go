package world

import (
	"fmt"
	"io"

	"github.com/Faultbox/pfmap/pkg/formats"
)

// DumpMap writes the tile body of m chunk by chunk in the form
// InitializeFromStream reads. No header is written.
func DumpMap(w io.Writer, m *Map) error {
	for i := 0; i < m.NumChunks(); i++ {
		chunk, err := m.ChunkAt(i)
		if err != nil {
			return err
		}
		tiles, err := chunk.Tiles()
		if err != nil {
			return err
		}
		if err := formats.WriteChunk(w, tiles); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
	}
	return nil
}

// DumpMapFile writes the header followed by the tile body, producing a
// complete pfmap file.
func DumpMapFile(w io.Writer, m *Map) error {
	if err := formats.WriteHeader(w, m.Header()); err != nil {
		return err
	}
	return DumpMap(w, m)
}
