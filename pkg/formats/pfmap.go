package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PFMapVersion is the only supported header version.
const PFMapVersion = "1.0"

// MaxMaterials is the largest material count a map can declare.
// Material indices are stored as a single digit.
const MaxMaterials = 10

// Chunk grid limits. A full map of MaxChunks chunks needs well under 1 GiB
// once its geometry is built, and every count fits a uint32.
const (
	MaxChunkRows = 64
	MaxChunkCols = 64
	MaxChunks    = 256
)

// PFMapHeader is the text header that precedes the chunk body of a pfmap file.
type PFMapHeader struct {
	Version      string
	NumMaterials int
	NumRows      int
	NumCols      int
}

// NumChunks returns the number of chunks the body holds. It is only
// meaningful for a header that passed Validate.
func (h PFMapHeader) NumChunks() int {
	return h.NumRows * h.NumCols
}

// Validate checks the header counts.
func (h PFMapHeader) Validate() error {
	if h.Version != PFMapVersion {
		return fmt.Errorf("%w: %q", ErrUnsupportedPFMap, h.Version)
	}
	if h.NumMaterials <= 0 || h.NumMaterials > MaxMaterials {
		return fmt.Errorf("%w: num_materials %d out of range 1-%d", ErrInvalidHeader, h.NumMaterials, MaxMaterials)
	}
	if h.NumRows <= 0 || h.NumCols <= 0 || h.NumRows > MaxChunkRows || h.NumCols > MaxChunkCols {
		return fmt.Errorf("%w: %dx%d chunks, limit %dx%d", ErrInvalidHeader,
			h.NumRows, h.NumCols, MaxChunkRows, MaxChunkCols)
	}
	if h.NumChunks() > MaxChunks {
		return fmt.Errorf("%w: %d chunks, limit %d", ErrInvalidHeader, h.NumChunks(), MaxChunks)
	}
	return nil
}

// TileReader reads tile rows from a pfmap body and tracks the current line
// for diagnostics.
type TileReader struct {
	r    *bufio.Reader
	line int
}

// NewTileReader wraps r. If r is already a *bufio.Reader it is used as is, so
// a header parsed from the same reader is not lost to buffering.
func NewTileReader(r io.Reader) *TileReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &TileReader{r: br}
}

// Line returns the number of lines consumed so far.
func (tr *TileReader) Line() int {
	return tr.line
}

// readLine returns the next line without its terminator.
// A final line without a trailing newline is still returned.
func (tr *TileReader) readLine() (string, error) {
	s, err := tr.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && s != "" {
			err = nil
		} else {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return "", &ParseError{Line: tr.line + 1, Err: fmt.Errorf("%w: %w", ErrStreamRead, err)}
		}
	}
	tr.line++
	return strings.TrimRight(s, "\r\n"), nil
}

// ReadHeader parses the four header lines:
//
//	version 1.0
//	num_materials <n>
//	num_rows <n>
//	num_cols <n>
func (tr *TileReader) ReadHeader() (PFMapHeader, error) {
	var h PFMapHeader

	version, err := tr.readField("version")
	if err != nil {
		return PFMapHeader{}, err
	}
	h.Version = version

	ints := []struct {
		key string
		dst *int
	}{
		{"num_materials", &h.NumMaterials},
		{"num_rows", &h.NumRows},
		{"num_cols", &h.NumCols},
	}
	for _, f := range ints {
		v, err := tr.readField(f.key)
		if err != nil {
			return PFMapHeader{}, err
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return PFMapHeader{}, &ParseError{Line: tr.line, Token: v, Err: fmt.Errorf("%w: %s: %v", ErrInvalidHeader, f.key, err)}
		}
		*f.dst = n
	}

	if err := h.Validate(); err != nil {
		return PFMapHeader{}, &ParseError{Line: tr.line, Err: err}
	}
	return h, nil
}

func (tr *TileReader) readField(key string) (string, error) {
	line, err := tr.readLine()
	if err != nil {
		return "", err
	}
	fields := strings.Fields(line)
	if len(fields) != 2 || fields[0] != key {
		return "", &ParseError{Line: tr.line, Err: fmt.Errorf("%w: expected %q, got %q", ErrInvalidHeader, key+" <value>", line)}
	}
	return fields[1], nil
}

// ReadRow reads one line holding exactly len(out) tile tokens separated by
// spaces or tabs. Nothing is written to out unless the whole row parses.
func (tr *TileReader) ReadRow(out []Tile) error {
	line, err := tr.readLine()
	if err != nil {
		return err
	}

	tokens := strings.FieldsFunc(line, isTokenSeparator)
	if len(tokens) < len(out) {
		return &ParseError{
			Line:   tr.line,
			Column: len(tokens) + 1,
			Err:    fmt.Errorf("%w: got %d tokens, want %d", ErrTruncatedRow, len(tokens), len(out)),
		}
	}

	row := make([]Tile, len(out))
	for i := range row {
		tile, err := ParseTile(tokens[i])
		if err != nil {
			return &ParseError{Line: tr.line, Column: i + 1, Token: tokens[i], Err: err}
		}
		row[i] = tile
	}

	if len(tokens) > len(out) {
		return &ParseError{
			Line:   tr.line,
			Column: len(out) + 1,
			Token:  tokens[len(out)],
			Err:    fmt.Errorf("%w: got %d tokens, want %d", ErrExtraTokens, len(tokens), len(out)),
		}
	}

	copy(out, row)
	return nil
}

// ReadChunk reads TilesPerChunkHeight rows of TilesPerChunkWidth tiles into
// out in row-major order. out must hold TilesPerChunk tiles.
func (tr *TileReader) ReadChunk(out []Tile) error {
	return tr.ReadGrid(out, TilesPerChunkWidth, TilesPerChunkHeight)
}

// ReadGrid reads height rows of width tiles into out in row-major order.
func (tr *TileReader) ReadGrid(out []Tile, width, height int) error {
	if len(out) != width*height {
		return fmt.Errorf("tile buffer holds %d tiles, want %d", len(out), width*height)
	}
	for r := 0; r < height; r++ {
		if err := tr.ReadRow(out[r*width : (r+1)*width]); err != nil {
			return err
		}
	}
	return nil
}

func isTokenSeparator(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

// WriteHeader writes h in the form ReadHeader accepts.
func WriteHeader(w io.Writer, h PFMapHeader) error {
	version := h.Version
	if version == "" {
		version = PFMapVersion
	}
	_, err := fmt.Fprintf(w, "version %s\nnum_materials %d\nnum_rows %d\nnum_cols %d\n",
		version, h.NumMaterials, h.NumRows, h.NumCols)
	return err
}

// WriteGrid writes tiles as height lines of width space-separated tokens.
// Every tile is validated first so a failed write leaves w untouched.
func WriteGrid(w io.Writer, tiles []Tile, width, height int) error {
	if len(tiles) != width*height {
		return fmt.Errorf("tile grid holds %d tiles, want %d", len(tiles), width*height)
	}
	for i, t := range tiles {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("tile (%d,%d): %w", i/width, i%width, err)
		}
	}

	buf := make([]byte, 0, height*width*(TileTokenLen+1))
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			buf = tiles[r*width+c].appendToken(buf)
			if c != width-1 {
				buf = append(buf, ' ')
			}
		}
		buf = append(buf, '\n')
	}
	_, err := w.Write(buf)
	return err
}

// WriteChunk writes one chunk worth of tiles.
func WriteChunk(w io.Writer, tiles []Tile) error {
	return WriteGrid(w, tiles, TilesPerChunkWidth, TilesPerChunkHeight)
}
