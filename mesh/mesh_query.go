package mesh

import (
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/govem/utils"
)

// EntityKind names a class of topological entity, or all of them together.
type EntityKind uint8

const (
	All EntityKind = iota
	Node
	Edge
	Cell
)

func (e EntityKind) String() string {
	return [...]string{"All", "Node", "Edge", "Cell"}[e]
}

// PolygonQuery is what the vector VEM space needs from a 2D polygonal mesh.
// Interpolation points of order p are numbered nodes first, then p-1 points
// per edge, then p(p-1)/2 points per cell.
type PolygonQuery interface {
	GeoDimension() int
	NumberOfNodes() int
	NumberOfEdges() int
	NumberOfCells() int
	NumberOfGlobalIPoints(p int) int
	// NumberOfLocalIPoints has one entry per entity of the given kind; All
	// counts every interpolation point touching a cell.
	NumberOfLocalIPoints(p int, kind EntityKind) []int
	// EdgeToIPoint lists, per edge, the start node, the p-1 interior points
	// and the end node.
	EdgeToIPoint(p int) []utils.Index
	BoundaryEdgeFlag() []bool
	// EdgeToCell rows are [c0, c1, l0, l1]; c1 == c0 on the boundary.
	EdgeToCell() [][4]int
	// CellVertices returns the flat counter clockwise vertex list and the
	// per cell offsets into it.
	CellVertices() (cell, location utils.Index)
	NumberOfVerticesOfCells() []int
	EntityBarycenter(kind EntityKind) *mat.Dense
	CellArea() []float64
	InterpolationPoints(p int, scale float64) *mat.Dense
}

// LineQuery is what bar (truss) integrators need from a mesh of 2-node cells.
type LineQuery interface {
	GeoDimension() int
	NumberOfNodes() int
	NumberOfCells() int
	CellNodes() [][2]int
	EntityMeasure(kind EntityKind, sel utils.Selector) ([]float64, error)
	CellUnitTangent(sel utils.Selector) (*mat.Dense, error)
}
