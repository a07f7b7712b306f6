package grid

import "testing"

func TestGetGridCoords(t *testing.T) {
	tests := []struct {
		index int
		cols  int
		wantX int
		wantY int
	}{
		// 64 cols (display width)
		{0, 64, 0, 0},
		{1, 64, 1, 0},
		{63, 64, 63, 0},
		{64, 64, 0, 1},
		{65, 64, 1, 1},
		{127, 64, 63, 1},
		{2047, 64, 63, 31},

		// 32 cols (half-block console rows)
		{0, 32, 0, 0},
		{31, 32, 31, 0},
		{32, 32, 0, 1},
		{1023, 32, 31, 31},
	}

	for _, tc := range tests {
		gotX, gotY := GetGridCoords(tc.index, tc.cols)
		if gotX != tc.wantX || gotY != tc.wantY {
			t.Errorf("GetGridCoords(%d, %d) = (%d, %d); want (%d, %d)", tc.index, tc.cols, gotX, gotY, tc.wantX, tc.wantY)
		}
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		v, n, want int
	}{
		{0, 64, 0},
		{63, 64, 63},
		{64, 64, 0},
		{67, 64, 3},
		{255, 64, 63},
		{-1, 64, 63},
		{-65, 64, 63},
		{40, 32, 8},
	}

	for _, tc := range tests {
		if got := Wrap(tc.v, tc.n); got != tc.want {
			t.Errorf("Wrap(%d, %d) = %d; want %d", tc.v, tc.n, got, tc.want)
		}
	}
}
