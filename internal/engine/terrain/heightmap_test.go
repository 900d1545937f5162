package terrain

import (
	"testing"

	"github.com/Faultbox/pfmap/pkg/formats"
)

func TestGetInterpolatedHeight(t *testing.T) {
	// RampNS: north corners at base, south corners raised.
	tiles := []formats.Tile{{Type: formats.TileRampNS, BaseHeight: 1, RampHeight: 2}}
	hm := BuildHeightmap(tiles, 1, 1)

	tests := []struct {
		name   string
		fx, fz float32
		want   float32
	}{
		{"north edge", 0.5, 0, 4},
		{"south edge", 0.5, 1, 12},
		{"center", 0.5, 0.5, 8},
		{"clamped", 2, 2, 12},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := hm.GetInterpolatedHeight(0, 0, tc.fx, tc.fz); !approxEqual(got, tc.want) {
				t.Errorf("expected %f, got %f", tc.want, got)
			}
		})
	}
}

func TestGetInterpolatedHeight_OutOfRange(t *testing.T) {
	hm := BuildHeightmap(createTestGrid(2, 2, formats.Tile{BaseHeight: 5}), 2, 2)
	if got := hm.GetInterpolatedHeight(2, 0, 0, 0); got != 0 {
		t.Errorf("expected 0 outside the grid, got %f", got)
	}
	if got := hm.GetInterpolatedHeight(1, 1, 0.3, 0.7); got != 5*YCoordsPerTile {
		t.Errorf("expected %d, got %f", 5*YCoordsPerTile, got)
	}
}

func TestIsWalkable(t *testing.T) {
	tiles := createTestGrid(2, 2, formats.Tile{})
	tiles[3].Pathable = true

	if !IsWalkable(tiles, 2, 2, 1, 1) {
		t.Error("expected (1,1) walkable")
	}
	if IsWalkable(tiles, 2, 2, 0, 0) {
		t.Error("expected (0,0) blocked")
	}
	if IsWalkable(tiles, 2, 2, -1, 0) || IsWalkable(tiles, 2, 2, 0, 2) {
		t.Error("out-of-range cells must not be walkable")
	}
}
