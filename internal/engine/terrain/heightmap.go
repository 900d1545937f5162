package terrain

import (
	"github.com/Faultbox/pfmap/pkg/formats"
)

// BuildHeightmap records the top-corner heights of every tile in a
// width x height grid.
func BuildHeightmap(tiles []formats.Tile, width, height int) *Heightmap {
	hm := &Heightmap{
		Corners: make([][NumCorners]float32, width*height),
		Width:   width,
		Height:  height,
	}
	for i := range hm.Corners {
		if i >= len(tiles) {
			break
		}
		for c := CornerNW; c < NumCorners; c++ {
			hm.Corners[i][c] = CornerHeight(tiles[i], c)
		}
	}
	return hm
}

// GetInterpolatedHeight returns the height of the top surface at a point
// inside tile (r, c). fx runs from the west edge (0) to the east edge (1),
// fz from the north edge (0) to the south edge (1).
func (h *Heightmap) GetInterpolatedHeight(r, c int, fx, fz float32) float32 {
	if r < 0 || c < 0 || r >= h.Height || c >= h.Width {
		return 0
	}
	fx = clampf(fx, 0, 1)
	fz = clampf(fz, 0, 1)

	corners := h.Corners[r*h.Width+c]

	// Bilinear: north edge, south edge, then between them.
	north := corners[CornerNW]*(1-fx) + corners[CornerNE]*fx
	south := corners[CornerSW]*(1-fx) + corners[CornerSE]*fx
	return north*(1-fz) + south*fz
}

// IsWalkable reports whether tile (r, c) is pathable. Out-of-range cells are
// never walkable.
func IsWalkable(tiles []formats.Tile, width, height, r, c int) bool {
	if r < 0 || c < 0 || r >= height || c >= width {
		return false
	}
	return tiles[r*width+c].Pathable
}

func clampf(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
