package raster

// AddNonZeroPadding grows the image by one pixel on every side. Border pixels
// copy the nearest edge pixel (corners copy the corner), so the old grid ends
// up at offset (1,1). Images without pixels are left unchanged.
func (img *Image) AddNonZeroPadding() {
	if img.Empty() {
		return
	}
	w, h := img.width+2, img.height+2
	grid := allocGrid(w, h)
	for r := 0; r < h; r++ {
		sr := clampInt(r-1, 0, img.height-1)
		for c := 0; c < w; c++ {
			sc := clampInt(c-1, 0, img.width-1)
			grid[r][c] = img.pixels[sr][sc]
		}
	}
	img.width, img.height, img.pixels = w, h, grid
}

// Pad applies AddNonZeroPadding n times on a copy and returns it.
func (img *Image) Pad(n int) *Image {
	out := img.CloneFull()
	for i := 0; i < n; i++ {
		out.AddNonZeroPadding()
	}
	return out
}

// clampInt clamps v to [lo,hi]
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
