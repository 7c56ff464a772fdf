package inline

// PageGrid exposes the sorted horizontal page-break coordinates of the band a
// line is placed in.
type PageGrid interface {
	HorizontalBreaks() []int64
}

// Grid is a static PageGrid.
type Grid []int64

func (g Grid) HorizontalBreaks() []int64 { return g }

// UniformGrid cuts [start, end] into n segments of equal width. The last
// break is always end.
func UniformGrid(start, end int64, n int) Grid {
	if n < 1 {
		n = 1
	}
	g := make(Grid, n)
	for i := 1; i < n; i++ {
		g[i-1] = start + (end-start)*int64(i)/int64(n)
	}
	g[n-1] = end
	return g
}
