package mesh

// MultiIndexMatrix2D enumerates the barycentric multi-indices (a0, a1, a2)
// with a0+a1+a2 = p in the order
//
//	(p,0,0), (p-1,1,0), (p-1,0,1), (p-2,2,0), (p-2,1,1), (p-2,0,2), ...
//
// ending with (0,0,p).
func MultiIndexMatrix2D(p int) (mi [][3]int) {
	if p < 0 {
		return
	}
	mi = make([][3]int, 0, (p+1)*(p+2)/2)
	for i := 0; i <= p; i++ {
		for k := 0; k <= i; k++ {
			j := i - k
			mi = append(mi, [3]int{p - i, j, k})
		}
	}
	return
}

// BarycentricPoints places the points MultiIndexMatrix2D(p)/p inside the
// triangle tri. Rows listed in skip (by position) are dropped. Order zero
// collapses to the first vertex.
func BarycentricPoints(p int, tri [3][2]float64, skip ...int) (pts [][2]float64) {
	var (
		mi   = MultiIndexMatrix2D(p)
		drop = make(map[int]bool, len(skip))
	)
	for _, s := range skip {
		if s < 0 {
			s += len(mi)
		}
		drop[s] = true
	}
	if p == 0 {
		if !drop[0] {
			pts = append(pts, tri[0])
		}
		return
	}
	pf := float64(p)
	for r, alpha := range mi {
		if drop[r] {
			continue
		}
		var x [2]float64
		for v := 0; v < 3; v++ {
			w := float64(alpha[v]) / pf
			x[0] += w * tri[v][0]
			x[1] += w * tri[v][1]
		}
		pts = append(pts, x)
	}
	return
}
