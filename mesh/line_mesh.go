package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/govem/utils"
)

// LineMesh is a mesh of straight 2-node cells (bars) embedded in GD = 1, 2
// or 3 dimensions.
type LineMesh struct {
	Nodes *mat.Dense // [NN, GD]
	Cells [][2]int
}

func NewLineMesh(nodes *mat.Dense, cells [][2]int) (lm *LineMesh, err error) {
	var (
		nn, gd = nodes.Dims()
	)
	if gd < 1 || gd > 3 {
		err = fmt.Errorf("%w: line mesh nodes have %d coordinates",
			utils.ErrInconsistentMeshTopology, gd)
		return
	}
	lm = &LineMesh{Nodes: nodes, Cells: make([][2]int, len(cells))}
	copy(lm.Cells, cells)
	for k, c := range cells {
		if err = utils.Index(c[:]).CheckBounds(nn); err != nil {
			err = fmt.Errorf("%w: cell %d: %v", utils.ErrInconsistentMeshTopology, k, err)
			lm = nil
			return
		}
		if lm.length(k) < utils.NODETOL {
			err = fmt.Errorf("%w: cell %d has zero length", utils.ErrInconsistentMeshTopology, k)
			lm = nil
			return
		}
	}
	return
}

func (lm *LineMesh) GeoDimension() int   { _, c := lm.Nodes.Dims(); return c }
func (lm *LineMesh) NumberOfNodes() int  { r, _ := lm.Nodes.Dims(); return r }
func (lm *LineMesh) NumberOfCells() int  { return len(lm.Cells) }
func (lm *LineMesh) CellNodes() [][2]int { return lm.Cells }

func (lm *LineMesh) delta(k int) (d []float64) {
	var (
		c = lm.Cells[k]
	)
	d = make([]float64, lm.GeoDimension())
	floats.SubTo(d, lm.Nodes.RawRowView(c[1]), lm.Nodes.RawRowView(c[0]))
	return
}

func (lm *LineMesh) length(k int) float64 {
	return floats.Norm(lm.delta(k), 2)
}

// EntityMeasure returns bar lengths for Cell (and Edge, the same entities)
// and zeros for Node.
func (lm *LineMesh) EntityMeasure(kind EntityKind, sel utils.Selector) (m []float64, err error) {
	var (
		I utils.Index
	)
	switch kind {
	case Node:
		if I, err = sel.Indices(lm.NumberOfNodes()); err != nil {
			return
		}
		m = make([]float64, len(I))
	case Cell, Edge:
		if I, err = sel.Indices(lm.NumberOfCells()); err != nil {
			return
		}
		m = make([]float64, len(I))
		for i, k := range I {
			m[i] = lm.length(k)
		}
	default:
		err = fmt.Errorf("no single measure for %s entities", kind)
	}
	return
}

// CellUnitTangent returns [len(sel), GD] unit vectors pointing from the
// first node of each bar to the second.
func (lm *LineMesh) CellUnitTangent(sel utils.Selector) (T *mat.Dense, err error) {
	var (
		I  utils.Index
		gd = lm.GeoDimension()
	)
	if I, err = sel.Indices(lm.NumberOfCells()); err != nil {
		return
	}
	if len(I) == 0 {
		return
	}
	T = mat.NewDense(len(I), gd, nil)
	for i, k := range I {
		d := lm.delta(k)
		floats.Scale(1/floats.Norm(d, 2), d)
		T.SetRow(i, d)
	}
	return
}
