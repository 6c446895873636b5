package vem

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/govem/mesh"
	"github.com/notargets/govem/utils"
)

// GD is the number of vector components of the space.
const GD = 2

// DefaultIPointScale places cell interior interpolation points at
// 0.3*sqrt(cell area) from the centroid.
const DefaultIPointScale = 0.3

// CVVEDof2D maps the entities of a polygon mesh to the global degrees of
// freedom of the order P conforming vector virtual element space.
//
// Scalar carriers are the mesh interpolation points of order P: nodes, then
// P-1 points per edge, then P(P-1)/2 per cell. Each carrier holds GD DOFs
// laid out according to Order.
type CVVEDof2D struct {
	Mesh  mesh.PolygonQuery
	P     int
	Order utils.DOFOrder

	nCarrier int
	cell2dof []utils.Index
}

func NewCVVEDof2D(m mesh.PolygonQuery, p int, order utils.DOFOrder) (dof *CVVEDof2D, err error) {
	switch {
	case p < 1:
		err = fmt.Errorf("%w: polynomial order %d, must be >= 1", utils.ErrInvalidSpaceConfiguration, p)
		return
	case !order.Valid():
		err = fmt.Errorf("%w: %s", utils.ErrInvalidSpaceConfiguration, order)
		return
	case m.GeoDimension() != GD:
		err = fmt.Errorf("%w: mesh has geometric dimension %d, space needs %d",
			utils.ErrInvalidSpaceConfiguration, m.GeoDimension(), GD)
		return
	}
	dof = &CVVEDof2D{
		Mesh:     m,
		P:        p,
		Order:    order,
		nCarrier: m.NumberOfGlobalIPoints(p),
	}
	if dof.cell2dof, err = dof.buildCellToDof(); err != nil {
		dof = nil
	}
	return
}

func (dof *CVVEDof2D) NumberOfGlobalDofs() int {
	return GD * dof.Mesh.NumberOfGlobalIPoints(dof.P)
}

// NumberOfLocalDofs has one entry per entity of the given kind. All gives
// the full DOF count of each cell, Edge the DOFs on each closed edge and
// Cell the interior DOFs of each cell.
func (dof *CVVEDof2D) NumberOfLocalDofs(kind mesh.EntityKind) (n []int) {
	n = dof.Mesh.NumberOfLocalIPoints(dof.P, kind)
	for i := range n {
		n[i] *= GD
	}
	return
}

// CellToDof returns copies of the DOF lists of the selected cells.
func (dof *CVVEDof2D) CellToDof(sel utils.Selector) (c2d []utils.Index, err error) {
	var (
		I utils.Index
	)
	if I, err = sel.Indices(len(dof.cell2dof)); err != nil {
		return
	}
	c2d = make([]utils.Index, len(I))
	for i, k := range I {
		c2d[i] = dof.cell2dof[k].Copy()
	}
	return
}

// EdgeToDof expands each edge's P+1 scalar points, start node to end node,
// into their vector DOFs.
func (dof *CVVEDof2D) EdgeToDof(sel utils.Selector) (e2d []utils.Index, err error) {
	var (
		e2p = dof.Mesh.EdgeToIPoint(dof.P)
		I   utils.Index
	)
	if I, err = sel.Indices(len(e2p)); err != nil {
		return
	}
	e2d = make([]utils.Index, len(I))
	for i, e := range I {
		e2d[i] = dof.Order.Expand(e2p[e], dof.nCarrier, GD)
	}
	return
}

// IsBoundaryDof flags every component of every carrier on a boundary edge,
// the edge end nodes included.
func (dof *CVVEDof2D) IsBoundaryDof() (isBd []bool) {
	var (
		e2p    = dof.Mesh.EdgeToIPoint(dof.P)
		isBdEg = dof.Mesh.BoundaryEdgeFlag()
	)
	isBd = make([]bool, dof.NumberOfGlobalDofs())
	for e, bd := range isBdEg {
		if !bd {
			continue
		}
		for _, d := range dof.Order.Expand(e2p[e], dof.nCarrier, GD) {
			isBd[d] = true
		}
	}
	return
}

func (dof *CVVEDof2D) buildCellToDof() (c2d []utils.Index, err error) {
	var (
		carriers []utils.Index
	)
	if dof.P == 1 {
		carriers, err = dof.vertexCarriers()
	} else {
		carriers, err = dof.cellCarriers()
	}
	if err != nil {
		return
	}
	c2d = make([]utils.Index, len(carriers))
	for k, cs := range carriers {
		c2d[k] = dof.Order.Expand(cs, dof.nCarrier, GD)
	}
	return
}

// vertexCarriers is the order 1 table: the carriers of a cell are its vertices.
func (dof *CVVEDof2D) vertexCarriers() (carriers []utils.Index, err error) {
	var (
		cell, location = dof.Mesh.CellVertices()
		nc             = dof.Mesh.NumberOfCells()
	)
	if len(location) != nc+1 {
		err = fmt.Errorf("%w: cell location table does not cover %d cells",
			utils.ErrInconsistentMeshTopology, nc)
		return
	}
	if err = utils.CheckOffsets(location, len(cell), 3); err != nil {
		err = fmt.Errorf("%w: cell location: %v", utils.ErrInconsistentMeshTopology, err)
		return
	}
	if err = cell.CheckBounds(dof.Mesh.NumberOfNodes()); err != nil {
		err = fmt.Errorf("%w: cell vertices: %v", utils.ErrInconsistentMeshTopology, err)
		return
	}
	carriers, err = cell.Copy().Split(location)
	return
}

// cellCarriers builds the order >= 2 table in one flat buffer: per cell, each
// local edge contributes its start point and P-1 interior points in the
// cell's traversal direction, then the cell interior points follow.
func (dof *CVVEDof2D) cellCarriers() (carriers []utils.Index, err error) {
	var (
		m        = dof.Mesh
		p        = dof.P
		nn       = m.NumberOfNodes()
		ne       = m.NumberOfEdges()
		nc       = m.NumberOfCells()
		cip      = p * (p - 1) / 2
		ldof     = m.NumberOfLocalIPoints(p, mesh.All)
		nv       = m.NumberOfVerticesOfCells()
		e2p      = m.EdgeToIPoint(p)
		e2c      = m.EdgeToCell()
		location utils.Index
		flat     utils.Index
		written  []bool
	)
	if len(ldof) != nc || len(nv) != nc || len(e2p) != ne || len(e2c) != ne ||
		dof.nCarrier != nn+ne*(p-1)+nc*cip {
		err = fmt.Errorf("%w: entity tables disagree with %d nodes, %d edges, %d cells",
			utils.ErrInconsistentMeshTopology, nn, ne, nc)
		return
	}
	for k := 0; k < nc; k++ {
		if ldof[k] != nv[k]*p+cip {
			err = fmt.Errorf("%w: cell %d has %d local points, expected %d",
				utils.ErrInconsistentMeshTopology, k, ldof[k], nv[k]*p+cip)
			return
		}
	}
	location = utils.Accumulate(ldof)
	flat = utils.NewIndex(location[nc])
	written = make([]bool, len(flat))
	write := func(slot, val int) error {
		if written[slot] {
			return fmt.Errorf("%w: slot %d written twice", utils.ErrInconsistentMeshTopology, slot)
		}
		written[slot] = true
		flat[slot] = val
		return nil
	}

	for e, ec := range e2c {
		c0, c1, l0, l1 := ec[0], ec[1], ec[2], ec[3]
		if c0 < 0 || c0 >= nc || c1 < 0 || c1 >= nc ||
			l0 < 0 || l0 >= nv[c0] || l1 < 0 || l1 >= nv[c1] {
			err = fmt.Errorf("%w: edge %d adjacency %v", utils.ErrInconsistentMeshTopology, e, ec)
			return
		}
		pts := e2p[e]
		if len(pts) != p+1 {
			err = fmt.Errorf("%w: edge %d has %d points, expected %d",
				utils.ErrInconsistentMeshTopology, e, len(pts), p+1)
			return
		}
		if err = pts.CheckBounds(dof.nCarrier); err != nil {
			err = fmt.Errorf("%w: edge %d points: %v", utils.ErrInconsistentMeshTopology, e, err)
			return
		}
		for k := 0; k < p; k++ {
			if err = write(location[c0]+l0*p+k, pts[k]); err != nil {
				return
			}
		}
		if c1 == c0 {
			continue
		}
		for k := 0; k < p; k++ {
			if err = write(location[c1]+l1*p+k, pts[p-k]); err != nil {
				return
			}
		}
	}

	base := nn + ne*(p-1)
	for c := 0; c < nc; c++ {
		off := location[c] + nv[c]*p
		for k := 0; k < cip; k++ {
			if err = write(off+k, base+c*cip+k); err != nil {
				return
			}
		}
	}
	for slot, ok := range written {
		if !ok {
			err = fmt.Errorf("%w: slot %d never written", utils.ErrInconsistentMeshTopology, slot)
			return
		}
	}
	carriers, err = flat.Split(location)
	return
}

type orderClass uint8

const (
	linearOrder orderClass = iota
	quadraticOrder
	cubicOrder
	generalOrder
)

func classifyOrder(p int) orderClass {
	switch {
	case p <= 1:
		return linearOrder
	case p == 2:
		return quadraticOrder
	case p == 3:
		return cubicOrder
	}
	return generalOrder
}

// InterpolationPoints returns one row per node and edge point, then
// P(P-1) rows per cell. Cell rows come in two blocks: (P-2)(P-1)/2 points per
// cell on a lattice over the reference triangle, then P(P+1)/2-1 points per
// cell on a lattice over the mirrored triangle, both anchored at the centroid
// and scaled by sqrt(area)*scale.
func (dof *CVVEDof2D) InterpolationPoints(scale float64) (ipts *mat.Dense, err error) {
	var (
		m     = dof.Mesh
		p     = dof.P
		nc    = m.NumberOfCells()
		egdof = m.NumberOfNodes() + m.NumberOfEdges()*(p-1)
		mpts  = m.InterpolationPoints(p, scale)
		class = classifyOrder(p)
	)
	if r, _ := mpts.Dims(); r < egdof {
		err = fmt.Errorf("%w: mesh returned %d interpolation points, need %d",
			utils.ErrInconsistentMeshTopology, r, egdof)
		return
	}
	if class == linearOrder {
		ipts = mat.DenseCopyOf(mpts.Slice(0, egdof, 0, GD))
		return
	}

	var (
		bc   = m.EntityBarycenter(mesh.Cell)
		area = m.CellArea()
		n1   = (p - 2) * (p - 1) / 2
	)
	if r, _ := bc.Dims(); r != nc || len(area) != nc {
		err = fmt.Errorf("%w: cell geometry tables do not cover %d cells",
			utils.ErrInconsistentMeshTopology, nc)
		return
	}
	ipts = mat.NewDense(egdof+p*(p-1)*nc, GD, nil)
	ipts.Slice(0, egdof, 0, GD).(*mat.Dense).Copy(mpts.Slice(0, egdof, 0, GD))

	anchor := func(k int, t mesh.Triangle) [3][2]float64 {
		return t.Anchor(bc.At(k, 0), bc.At(k, 1), math.Sqrt(area[k])*scale)
	}
	var first func(k int) [][2]float64
	switch class {
	case cubicOrder:
		first = func(k int) [][2]float64 {
			return [][2]float64{{bc.At(k, 0), bc.At(k, 1)}}
		}
	case generalOrder:
		first = func(k int) [][2]float64 {
			return mesh.BarycentricPoints(p-3, anchor(k, mesh.ReferenceTriangle))
		}
	}
	if first != nil {
		fillPattern(ipts, egdof, nc, first)
	}
	fillPattern(ipts, egdof+n1*nc, nc, func(k int) [][2]float64 {
		return mesh.BarycentricPoints(p-1, anchor(k, mesh.MirroredTriangle), -1)
	})
	return
}

// fillPattern writes the points of each cell consecutively from row0 on.
func fillPattern(ipts *mat.Dense, row0, nc int, pts func(k int) [][2]float64) {
	row := row0
	for k := 0; k < nc; k++ {
		for _, x := range pts(k) {
			ipts.Set(row, 0, x[0])
			ipts.Set(row, 1, x[1])
			row++
		}
	}
}
