package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/govem/types"
	"github.com/notargets/govem/utils"
)

// PolygonMesh is a 2D mesh of counter clockwise polygons stored as a flat
// vertex list with per cell offsets. Edges are discovered on construction
// and oriented along the traversal of the first cell that uses them.
type PolygonMesh struct {
	Nodes    *mat.Dense  // [NN, 2]
	Cell     utils.Index // Flat vertex list
	Location utils.Index // Cell k owns Cell[Location[k]:Location[k+1]]

	Edges     [][2]int      // Edge to vertex, oriented as traversed by EdgeCells[e][0]
	EdgeCells [][4]int      // [c0, c1, l0, l1]
	CellEdges []utils.Index // Cell to edge in traversal order

	edgeMap map[types.EdgeKey]int
}

// NewPolygonMesh validates the connectivity and builds the edge tables.
func NewPolygonMesh(nodes *mat.Dense, cell, location []int) (pm *PolygonMesh, err error) {
	var (
		nn, gd = nodes.Dims()
		nc     = len(location) - 1
	)
	if gd != 2 {
		err = fmt.Errorf("%w: polygon mesh nodes must be 2D, have %d columns",
			utils.ErrInconsistentMeshTopology, gd)
		return
	}
	if nc < 1 {
		err = fmt.Errorf("%w: no cells", utils.ErrInconsistentMeshTopology)
		return
	}
	if err = utils.CheckOffsets(location, len(cell), 3); err != nil {
		err = fmt.Errorf("%w: cell location: %v", utils.ErrInconsistentMeshTopology, err)
		return
	}
	if err = utils.Index(cell).CheckBounds(nn); err != nil {
		err = fmt.Errorf("%w: cell vertex list: %v", utils.ErrInconsistentMeshTopology, err)
		return
	}
	pm = &PolygonMesh{
		Nodes:    nodes,
		Cell:     utils.Index(cell).Copy(),
		Location: utils.Index(location).Copy(),
		edgeMap:  make(map[types.EdgeKey]int),
	}
	if err = pm.buildEdges(); err != nil {
		pm = nil
	}
	return
}

func (pm *PolygonMesh) buildEdges() (err error) {
	var (
		nc = pm.NumberOfCells()
	)
	pm.CellEdges = make([]utils.Index, nc)
	for k := 0; k < nc; k++ {
		verts := pm.Cell[pm.Location[k]:pm.Location[k+1]]
		nv := len(verts)
		pm.CellEdges[k] = utils.NewIndex(nv)
		for i := 0; i < nv; i++ {
			ev := [2]int{verts[i], verts[(i+1)%nv]}
			if ev[0] == ev[1] {
				return fmt.Errorf("%w: cell %d repeats vertex %d",
					utils.ErrInconsistentMeshTopology, k, ev[0])
			}
			key := types.NewEdgeKey(ev)
			e, exists := pm.edgeMap[key]
			if !exists {
				e = len(pm.Edges)
				pm.edgeMap[key] = e
				pm.Edges = append(pm.Edges, ev)
				pm.EdgeCells = append(pm.EdgeCells, [4]int{k, k, i, i})
				pm.CellEdges[k][i] = e
				continue
			}
			ec := &pm.EdgeCells[e]
			switch {
			case ec[0] != ec[1] || ec[0] == k:
				return fmt.Errorf("%w: edge %v is shared by more than two cell sides",
					utils.ErrInconsistentMeshTopology, key.GetVertices(false))
			case pm.Edges[e] == ev:
				return fmt.Errorf("%w: cells %d and %d traverse edge %v in the same direction",
					utils.ErrInconsistentMeshTopology, ec[0], k, ev)
			}
			ec[1], ec[3] = k, i
			pm.CellEdges[k][i] = e
		}
	}
	return
}

func (pm *PolygonMesh) GeoDimension() int  { return 2 }
func (pm *PolygonMesh) NumberOfNodes() int { r, _ := pm.Nodes.Dims(); return r }
func (pm *PolygonMesh) NumberOfEdges() int { return len(pm.Edges) }
func (pm *PolygonMesh) NumberOfCells() int { return len(pm.Location) - 1 }

func (pm *PolygonMesh) NumberOfGlobalIPoints(p int) int {
	return pm.NumberOfNodes() + pm.NumberOfEdges()*(p-1) + pm.NumberOfCells()*p*(p-1)/2
}

func (pm *PolygonMesh) NumberOfLocalIPoints(p int, kind EntityKind) (n []int) {
	var (
		fill = func(N, val int) []int {
			r := make([]int, N)
			for i := range r {
				r[i] = val
			}
			return r
		}
	)
	switch kind {
	case Node:
		n = fill(pm.NumberOfNodes(), 1)
	case Edge:
		n = fill(pm.NumberOfEdges(), p+1)
	case Cell:
		n = fill(pm.NumberOfCells(), p*(p-1)/2)
	default:
		n = pm.NumberOfVerticesOfCells()
		for k := range n {
			n[k] = n[k]*p + p*(p-1)/2
		}
	}
	return
}

func (pm *PolygonMesh) EdgeToIPoint(p int) (e2p []utils.Index) {
	var (
		nn = pm.NumberOfNodes()
	)
	e2p = make([]utils.Index, pm.NumberOfEdges())
	for e, ev := range pm.Edges {
		row := utils.NewIndex(p + 1)
		row[0], row[p] = ev[0], ev[1]
		for k := 1; k < p; k++ {
			row[k] = nn + e*(p-1) + k - 1
		}
		e2p[e] = row
	}
	return
}

func (pm *PolygonMesh) BoundaryEdgeFlag() (isBd []bool) {
	isBd = make([]bool, pm.NumberOfEdges())
	for e, ec := range pm.EdgeCells {
		isBd[e] = ec[0] == ec[1]
	}
	return
}

func (pm *PolygonMesh) EdgeToCell() [][4]int { return pm.EdgeCells }

func (pm *PolygonMesh) CellVertices() (cell, location utils.Index) {
	return pm.Cell, pm.Location
}

func (pm *PolygonMesh) NumberOfVerticesOfCells() (nv []int) {
	nv = make([]int, pm.NumberOfCells())
	for k := range nv {
		nv[k] = pm.Location[k+1] - pm.Location[k]
	}
	return
}

// CellArea is the shoelace area of each cell, positive for counter
// clockwise vertex order.
func (pm *PolygonMesh) CellArea() (area []float64) {
	area = make([]float64, pm.NumberOfCells())
	for k := range area {
		a, _, _ := pm.cellMoments(k)
		area[k] = a
	}
	return
}

func (pm *PolygonMesh) cellMoments(k int) (a, cx, cy float64) {
	var (
		verts = pm.Cell[pm.Location[k]:pm.Location[k+1]]
		nv    = len(verts)
	)
	for i := 0; i < nv; i++ {
		x0, y0 := pm.Nodes.At(verts[i], 0), pm.Nodes.At(verts[i], 1)
		x1, y1 := pm.Nodes.At(verts[(i+1)%nv], 0), pm.Nodes.At(verts[(i+1)%nv], 1)
		cross := x0*y1 - x1*y0
		a += cross
		cx += (x0 + x1) * cross
		cy += (y0 + y1) * cross
	}
	a *= 0.5
	cx /= 6 * a
	cy /= 6 * a
	return
}

// EntityBarycenter returns nodes, edge midpoints or area weighted polygon
// centroids.
func (pm *PolygonMesh) EntityBarycenter(kind EntityKind) (bc *mat.Dense) {
	switch kind {
	case Edge:
		bc = mat.NewDense(pm.NumberOfEdges(), 2, nil)
		for e, ev := range pm.Edges {
			for d := 0; d < 2; d++ {
				bc.Set(e, d, 0.5*(pm.Nodes.At(ev[0], d)+pm.Nodes.At(ev[1], d)))
			}
		}
	case Cell:
		bc = mat.NewDense(pm.NumberOfCells(), 2, nil)
		for k := 0; k < pm.NumberOfCells(); k++ {
			_, cx, cy := pm.cellMoments(k)
			bc.Set(k, 0, cx)
			bc.Set(k, 1, cy)
		}
	default:
		bc = mat.DenseCopyOf(pm.Nodes)
	}
	return
}

func (pm *PolygonMesh) EntityMeasure(kind EntityKind) (m []float64) {
	switch kind {
	case Edge:
		m = make([]float64, pm.NumberOfEdges())
		for e, ev := range pm.Edges {
			dx := pm.Nodes.At(ev[1], 0) - pm.Nodes.At(ev[0], 0)
			dy := pm.Nodes.At(ev[1], 1) - pm.Nodes.At(ev[0], 1)
			m[e] = math.Hypot(dx, dy)
		}
	case Cell:
		m = pm.CellArea()
	default:
		m = make([]float64, pm.NumberOfNodes())
	}
	return
}

// InterpolationPoints returns NumberOfGlobalIPoints(p) points: the nodes,
// p-1 equispaced points inside each edge (start to end), and p(p-1)/2 points
// per cell on a lattice of order p-2 spanning a small equilateral triangle
// of side sqrt(area)*scale anchored at the centroid.
func (pm *PolygonMesh) InterpolationPoints(p int, scale float64) (ipts *mat.Dense) {
	var (
		nn  = pm.NumberOfNodes()
		ne  = pm.NumberOfEdges()
		nc  = pm.NumberOfCells()
		row int
	)
	ipts = mat.NewDense(pm.NumberOfGlobalIPoints(p), 2, nil)
	for ; row < nn; row++ {
		ipts.SetRow(row, pm.Nodes.RawRowView(row))
	}
	for e := 0; e < ne; e++ {
		ev := pm.Edges[e]
		for k := 1; k < p; k++ {
			w1 := float64(k) / float64(p)
			for d := 0; d < 2; d++ {
				ipts.Set(row, d, (1-w1)*pm.Nodes.At(ev[0], d)+w1*pm.Nodes.At(ev[1], d))
			}
			row++
		}
	}
	if p < 2 {
		return
	}
	bc := pm.EntityBarycenter(Cell)
	area := pm.CellArea()
	for k := 0; k < nc; k++ {
		h := math.Sqrt(area[k]) * scale
		tri := ReferenceTriangle.Anchor(bc.At(k, 0), bc.At(k, 1), h)
		for _, x := range BarycentricPoints(p-2, tri) {
			ipts.Set(row, 0, x[0])
			ipts.Set(row, 1, x[1])
			row++
		}
	}
	return
}

// Triangle holds three 2D vertices.
type Triangle [3][2]float64

var (
	// ReferenceTriangle has a vertex at the origin and extends up and right.
	ReferenceTriangle = Triangle{{0, 0}, {1, 0}, {0.5, math.Sqrt(3) / 2}}
	// MirroredTriangle has a vertex at the origin and extends down and left.
	MirroredTriangle = Triangle{{-1, 0}, {-0.5, -math.Sqrt(3) / 2}, {0, 0}}
)

// Anchor scales the triangle by h and translates it to (x, y).
func (t Triangle) Anchor(x, y, h float64) (r [3][2]float64) {
	for v := 0; v < 3; v++ {
		r[v][0] = x + t[v][0]*h
		r[v][1] = y + t[v][1]*h
	}
	return
}
