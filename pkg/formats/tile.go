package formats

import (
	"errors"
	"fmt"
)

// Tile format errors.
var (
	ErrMalformedToken   = errors.New("malformed tile token")
	ErrInvalidTileType  = errors.New("invalid tile type")
	ErrInvalidPathable  = errors.New("invalid pathable flag")
	ErrFieldOutOfRange  = errors.New("tile field does not fit one digit")
	ErrTruncatedRow     = errors.New("truncated tile row")
	ErrExtraTokens      = errors.New("extra tokens in tile row")
	ErrStreamRead       = errors.New("stream read failure")
	ErrInvalidHeader    = errors.New("invalid map header")
	ErrUnsupportedPFMap = errors.New("unsupported pfmap version")
)

// TileTokenLen is the length of one encoded tile.
const TileTokenLen = 6

// Chunk dimensions in tiles.
const (
	TilesPerChunkWidth  = 32
	TilesPerChunkHeight = 32
	TilesPerChunk       = TilesPerChunkWidth * TilesPerChunkHeight
)

// TileType selects the silhouette of a tile's top face.
type TileType uint8

// Tile types. Values match the digit stored in the first token position.
const (
	TileFlat TileType = iota
	// Ramp rising toward the north edge.
	TileRampSN
	// Ramp rising toward the south edge.
	TileRampNS
	// Ramp rising toward the west edge.
	TileRampEW
	// Ramp rising toward the east edge.
	TileRampWE
	TileCornerConcaveSW
	TileCornerConvexSW
	TileCornerConcaveSE
	TileCornerConvexSE
	TileCornerConcaveNW
	TileCornerConvexNW
	TileCornerConcaveNE
	TileCornerConvexNE

	NumTileTypes = int(iota)
)

var tileTypeNames = [NumTileTypes]string{
	"Flat",
	"RampSN",
	"RampNS",
	"RampEW",
	"RampWE",
	"CornerConcaveSW",
	"CornerConvexSW",
	"CornerConcaveSE",
	"CornerConvexSE",
	"CornerConcaveNW",
	"CornerConvexNW",
	"CornerConcaveNE",
	"CornerConvexNE",
}

// String returns a human-readable tile type name.
func (t TileType) String() string {
	if t.Valid() {
		return tileTypeNames[t]
	}
	return fmt.Sprintf("Unknown(%d)", uint8(t))
}

// Valid reports whether t is one of the known tile types.
func (t TileType) Valid() bool {
	return int(t) < NumTileTypes
}

// IsRamp returns true for the four ramp types.
func (t TileType) IsRamp() bool {
	return t >= TileRampSN && t <= TileRampWE
}

// IsCorner returns true for the convex and concave corner types.
func (t TileType) IsCorner() bool {
	return t >= TileCornerConcaveSW && t <= TileCornerConvexNE
}

// Tile is one terrain cell as stored in a pfmap file.
type Tile struct {
	Type         TileType
	Pathable     bool
	BaseHeight   int
	TopMaterial  int
	SideMaterial int
	RampHeight   int
}

// ParseTile decodes a 6-character token laid out as
// [type][pathable][base_height][top_mat][side_mat][ramp_height].
// On error the returned tile is the zero value.
func ParseTile(token string) (Tile, error) {
	if len(token) != TileTokenLen {
		return Tile{}, fmt.Errorf("%w: %q has length %d, want %d", ErrMalformedToken, token, len(token), TileTokenLen)
	}

	var d [TileTokenLen]int
	for i := 0; i < TileTokenLen; i++ {
		ch := token[i]
		if ch < '0' || ch > '9' {
			return Tile{}, fmt.Errorf("%w: %q has non-digit %q at %d", ErrMalformedToken, token, ch, i)
		}
		d[i] = int(ch - '0')
	}

	if d[1] > 1 {
		return Tile{}, fmt.Errorf("%w: %d", ErrInvalidPathable, d[1])
	}

	return Tile{
		Type:         TileType(d[0]),
		Pathable:     d[1] == 1,
		BaseHeight:   d[2],
		TopMaterial:  d[3],
		SideMaterial: d[4],
		RampHeight:   d[5],
	}, nil
}

// Validate checks that every field can be encoded as a single digit.
func (t Tile) Validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidTileType, t.Type)
	}
	fields := [...]struct {
		name string
		v    int
	}{
		{"type", int(t.Type)},
		{"base_height", t.BaseHeight},
		{"top_material", t.TopMaterial},
		{"side_material", t.SideMaterial},
		{"ramp_height", t.RampHeight},
	}
	for _, f := range fields {
		if f.v < 0 || f.v > 9 {
			return fmt.Errorf("%w: %s=%d", ErrFieldOutOfRange, f.name, f.v)
		}
	}
	return nil
}

// Token encodes the tile back to its 6-digit form.
// The result is only meaningful for tiles that pass Validate.
func (t Tile) Token() string {
	return string(t.appendToken(make([]byte, 0, TileTokenLen)))
}

func (t Tile) appendToken(dst []byte) []byte {
	pathable := byte('0')
	if t.Pathable {
		pathable = '1'
	}
	return append(dst,
		byte(t.Type)+'0',
		pathable,
		byte(t.BaseHeight)+'0',
		byte(t.TopMaterial)+'0',
		byte(t.SideMaterial)+'0',
		byte(t.RampHeight)+'0',
	)
}

// String returns the encoded token.
func (t Tile) String() string {
	return t.Token()
}
