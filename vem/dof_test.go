package vem

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/govem/mesh"
	"github.com/notargets/govem/utils"
)

// twoSquares is the unit square pair [0,2]x[0,1]:
//
//	3---4---5
//	| 0 | 1 |
//	0---1---2
//
// Edges in discovery order: 0:(0,1) 1:(1,4) 2:(4,3) 3:(3,0) 4:(1,2) 5:(2,5) 6:(5,4).
func twoSquares(t *testing.T) *mesh.PolygonMesh {
	pm, err := mesh.NewRectangleQuadMesh([4]float64{0, 2, 0, 1}, 2, 1)
	require.NoError(t, err)
	return pm
}

// patchedMesh overrides parts of a real mesh to feed broken or unusual
// topology to the DOF builder.
type patchedMesh struct {
	*mesh.PolygonMesh
	gd        int
	edgeCells [][4]int
	location  utils.Index
	closed    bool
}

func (pm *patchedMesh) CellVertices() (cell, location utils.Index) {
	cell, location = pm.PolygonMesh.CellVertices()
	if pm.location != nil {
		location = pm.location
	}
	return
}

func (pm *patchedMesh) GeoDimension() int {
	if pm.gd != 0 {
		return pm.gd
	}
	return pm.PolygonMesh.GeoDimension()
}

func (pm *patchedMesh) EdgeToCell() [][4]int {
	if pm.edgeCells != nil {
		return pm.edgeCells
	}
	return pm.PolygonMesh.EdgeToCell()
}

func (pm *patchedMesh) BoundaryEdgeFlag() []bool {
	if pm.closed {
		return make([]bool, pm.NumberOfEdges())
	}
	return pm.PolygonMesh.BoundaryEdgeFlag()
}

func TestCellToDofOrder1(t *testing.T) {
	pm := twoSquares(t)
	{
		dof, err := NewCVVEDof2D(pm, 1, utils.NodeMajor)
		require.NoError(t, err)
		assert.Equal(t, 12, dof.NumberOfGlobalDofs())
		c2d, err := dof.CellToDof(utils.All())
		require.NoError(t, err)
		want := []utils.Index{
			{0, 1, 2, 3, 8, 9, 6, 7},
			{2, 3, 4, 5, 10, 11, 8, 9},
		}
		if diff := cmp.Diff(want, c2d); diff != "" {
			t.Errorf("cell to dof mismatch (-want +got):\n%s", diff)
		}
	}
	{
		dof, err := NewCVVEDof2D(pm, 1, utils.ComponentMajor)
		require.NoError(t, err)
		c2d, err := dof.CellToDof(utils.List(1))
		require.NoError(t, err)
		assert.Equal(t, []utils.Index{{1, 2, 5, 4, 7, 8, 11, 10}}, c2d)
	}
}

func TestCellToDofOrder2(t *testing.T) {
	pm := twoSquares(t)
	{
		dof, err := NewCVVEDof2D(pm, 2, utils.NodeMajor)
		require.NoError(t, err)
		assert.Equal(t, 30, dof.NumberOfGlobalDofs())
		c2d, err := dof.CellToDof(utils.All())
		require.NoError(t, err)
		// carriers: cell 0 = 0 6 1 7 4 8 3 9 13, cell 1 = 1 10 2 11 5 12 4 7 14
		want := []utils.Index{
			{0, 1, 12, 13, 2, 3, 14, 15, 8, 9, 16, 17, 6, 7, 18, 19, 26, 27},
			{2, 3, 20, 21, 4, 5, 22, 23, 10, 11, 24, 25, 8, 9, 14, 15, 28, 29},
		}
		if diff := cmp.Diff(want, c2d); diff != "" {
			t.Errorf("cell to dof mismatch (-want +got):\n%s", diff)
		}
	}
	{
		dof, err := NewCVVEDof2D(pm, 2, utils.ComponentMajor)
		require.NoError(t, err)
		c2d, err := dof.CellToDof(utils.Range(0, 1))
		require.NoError(t, err)
		want := []utils.Index{
			{0, 6, 1, 7, 4, 8, 3, 9, 13, 15, 21, 16, 22, 19, 23, 18, 24, 28},
		}
		assert.Equal(t, want, c2d)
	}
}

func TestCellToDofReturnsCopies(t *testing.T) {
	dof, err := NewCVVEDof2D(twoSquares(t), 2, utils.NodeMajor)
	require.NoError(t, err)
	c2d, _ := dof.CellToDof(utils.All())
	c2d[0][0] = -100
	again, _ := dof.CellToDof(utils.All())
	assert.Equal(t, 0, again[0][0])
	_, err = dof.CellToDof(utils.Range(0, 3))
	assert.True(t, errors.Is(err, utils.ErrSelectionOutOfRange))
}

// carriersOf recovers scalar carriers from a node-major DOF list.
func carriersOf(dofs utils.Index) (c utils.Index) {
	for i := 0; i < len(dofs); i += GD {
		c = append(c, dofs[i]/GD)
	}
	return
}

func TestCellToDofProperties(t *testing.T) {
	quads, err := mesh.NewRectangleQuadMesh([4]float64{0, 1, 0, 1}, 3, 2)
	require.NoError(t, err)
	tris, err := mesh.NewRectangleTriMesh([4]float64{0, 1, 0, 1}, 2, 3)
	require.NoError(t, err)
	for _, pm := range []*mesh.PolygonMesh{quads, tris} {
		for p := 1; p <= 5; p++ {
			for _, order := range []utils.DOFOrder{utils.NodeMajor, utils.ComponentMajor} {
				dof, err := NewCVVEDof2D(pm, p, order)
				require.NoError(t, err)
				gdof := dof.NumberOfGlobalDofs()
				assert.Equal(t, 2*pm.NumberOfGlobalIPoints(p), gdof)
				c2d, err := dof.CellToDof(utils.All())
				require.NoError(t, err)
				ldof := dof.NumberOfLocalDofs(mesh.All)
				seen := make([]bool, gdof)
				for k, dofs := range c2d {
					assert.Len(t, dofs, ldof[k])
					assert.NoError(t, dofs.CheckBounds(gdof))
					local := make(map[int]bool)
					for _, d := range dofs {
						assert.False(t, local[d], "p=%d %s cell %d repeats dof %d", p, order, k, d)
						local[d] = true
						seen[d] = true
					}
				}
				for d, ok := range seen {
					assert.True(t, ok, "p=%d %s dof %d belongs to no cell", p, order, d)
				}
			}
		}
	}
}

func TestEdgeReversal(t *testing.T) {
	pm, err := mesh.NewRectangleTriMesh([4]float64{0, 1, 0, 1}, 2, 2)
	require.NoError(t, err)
	for p := 2; p <= 4; p++ {
		dof, err := NewCVVEDof2D(pm, p, utils.NodeMajor)
		require.NoError(t, err)
		c2d, _ := dof.CellToDof(utils.All())
		e2p := pm.EdgeToIPoint(p)
		count := make(map[int]int)
		for _, dofs := range c2d {
			for _, c := range carriersOf(dofs) {
				count[c]++
			}
		}
		for e, ec := range pm.EdgeToCell() {
			a := carriersOf(c2d[ec[0]])
			interiorA := a[ec[2]*p+1 : ec[2]*p+p]
			assert.Equal(t, e2p[e][0], a[ec[2]*p])
			assert.Equal(t, e2p[e][1:p], interiorA)
			if ec[0] == ec[1] {
				for _, c := range interiorA {
					assert.Equal(t, 1, count[c])
				}
				continue
			}
			b := carriersOf(c2d[ec[1]])
			interiorB := b[ec[3]*p+1 : ec[3]*p+p]
			assert.Equal(t, e2p[e][p], b[ec[3]*p])
			assert.Equal(t, interiorA.Reverse(), interiorB)
			for _, c := range interiorA {
				assert.Equal(t, 2, count[c])
			}
		}
	}
}

func TestEdgeToDof(t *testing.T) {
	pm := twoSquares(t)
	dof, err := NewCVVEDof2D(pm, 3, utils.NodeMajor)
	require.NoError(t, err)
	e2d, err := dof.EdgeToDof(utils.List(1))
	require.NoError(t, err)
	assert.Equal(t, []utils.Index{{2, 3, 16, 17, 18, 19, 8, 9}}, e2d)
	all, err := dof.EdgeToDof(utils.All())
	require.NoError(t, err)
	assert.Len(t, all, 7)
	for _, row := range all {
		assert.Len(t, row, 8)
		for i := 0; i < len(row); i += 2 {
			assert.Equal(t, row[i]+1, row[i+1])
			assert.Equal(t, 0, row[i]%2)
		}
	}
	_, err = dof.EdgeToDof(utils.List(7))
	assert.True(t, errors.Is(err, utils.ErrSelectionOutOfRange))
}

func TestIsBoundaryDof(t *testing.T) {
	pm := twoSquares(t)
	{
		dof, err := NewCVVEDof2D(pm, 2, utils.NodeMajor)
		require.NoError(t, err)
		isBd := dof.IsBoundaryDof()
		require.Len(t, isBd, 30)
		interior := map[int]bool{14: true, 15: true, 26: true, 27: true, 28: true, 29: true}
		for d, bd := range isBd {
			assert.Equal(t, !interior[d], bd, "dof %d", d)
		}
	}
	{
		dof, err := NewCVVEDof2D(pm, 2, utils.ComponentMajor)
		require.NoError(t, err)
		isBd := dof.IsBoundaryDof()
		interior := map[int]bool{7: true, 13: true, 14: true, 22: true, 28: true, 29: true}
		for d, bd := range isBd {
			assert.Equal(t, !interior[d], bd, "dof %d", d)
		}
	}
	{
		dof, err := NewCVVEDof2D(&patchedMesh{PolygonMesh: pm, closed: true}, 3, utils.NodeMajor)
		require.NoError(t, err)
		for _, bd := range dof.IsBoundaryDof() {
			assert.False(t, bd)
		}
	}
}

func TestInterpolationPoints(t *testing.T) {
	pm := twoSquares(t)
	var (
		s3 = math.Sqrt(3)
		h  = 0.3
	)
	{
		dof, _ := NewCVVEDof2D(pm, 1, utils.NodeMajor)
		ipts, err := dof.InterpolationPoints(DefaultIPointScale)
		require.NoError(t, err)
		assert.True(t, mat.Equal(ipts, pm.Nodes))
	}
	{
		dof, _ := NewCVVEDof2D(pm, 2, utils.NodeMajor)
		ipts, err := dof.InterpolationPoints(DefaultIPointScale)
		require.NoError(t, err)
		r, _ := ipts.Dims()
		assert.Equal(t, 17, r)
		assert.InDeltaSlice(t, []float64{0.5, 0}, ipts.RawRowView(6), 1.e-14)
		assert.InDeltaSlice(t, []float64{0.5 - h, 0.5}, ipts.RawRowView(13), 1.e-14)
		assert.InDeltaSlice(t, []float64{0.5 - h/2, 0.5 - h*s3/2}, ipts.RawRowView(14), 1.e-14)
		assert.InDeltaSlice(t, []float64{1.5 - h, 0.5}, ipts.RawRowView(15), 1.e-14)

		// Scale only moves the cell points
		wide, err := dof.InterpolationPoints(0.6)
		require.NoError(t, err)
		assert.InDeltaSlice(t, ipts.RawRowView(12), wide.RawRowView(12), 1.e-14)
		assert.InDeltaSlice(t, []float64{0.5 - 0.6, 0.5}, wide.RawRowView(13), 1.e-14)
	}
	{
		dof, _ := NewCVVEDof2D(pm, 3, utils.NodeMajor)
		ipts, err := dof.InterpolationPoints(DefaultIPointScale)
		require.NoError(t, err)
		r, _ := ipts.Dims()
		assert.Equal(t, 32, r)
		// Degenerate first pattern: one point per cell at the centroid
		assert.InDeltaSlice(t, []float64{0.5, 0.5}, ipts.RawRowView(20), 1.e-14)
		assert.InDeltaSlice(t, []float64{1.5, 0.5}, ipts.RawRowView(21), 1.e-14)
		// Second pattern, 5 points per cell
		assert.InDeltaSlice(t, []float64{0.5 - h, 0.5}, ipts.RawRowView(22), 1.e-14)
		assert.InDeltaSlice(t, []float64{0.5 - 3*h/4, 0.5 - h*s3/4}, ipts.RawRowView(23), 1.e-14)
		assert.InDeltaSlice(t, []float64{0.5 - h/2, 0.5}, ipts.RawRowView(24), 1.e-14)
		assert.InDeltaSlice(t, []float64{0.5 - h/2, 0.5 - h*s3/2}, ipts.RawRowView(25), 1.e-14)
		assert.InDeltaSlice(t, []float64{0.5 - h/4, 0.5 - h*s3/4}, ipts.RawRowView(26), 1.e-14)
		assert.InDeltaSlice(t, []float64{1.5 - h, 0.5}, ipts.RawRowView(27), 1.e-14)
	}
	{
		dof, _ := NewCVVEDof2D(pm, 4, utils.NodeMajor)
		ipts, err := dof.InterpolationPoints(DefaultIPointScale)
		require.NoError(t, err)
		r, _ := ipts.Dims()
		assert.Equal(t, 27+12*2, r)
		assert.InDeltaSlice(t, []float64{0.5, 0.5}, ipts.RawRowView(27), 1.e-14)
		assert.InDeltaSlice(t, []float64{0.5 + h, 0.5}, ipts.RawRowView(28), 1.e-14)
		assert.InDeltaSlice(t, []float64{0.5 + h/2, 0.5 + h*s3/2}, ipts.RawRowView(29), 1.e-14)
		assert.InDeltaSlice(t, []float64{1.5, 0.5}, ipts.RawRowView(30), 1.e-14)
		assert.InDeltaSlice(t, []float64{0.5 - h, 0.5}, ipts.RawRowView(33), 1.e-14)
		assert.InDeltaSlice(t, []float64{1.5 - h, 0.5}, ipts.RawRowView(42), 1.e-14)
	}
}

func TestDofErrors(t *testing.T) {
	pm := twoSquares(t)
	_, err := NewCVVEDof2D(pm, 0, utils.NodeMajor)
	assert.True(t, errors.Is(err, utils.ErrInvalidSpaceConfiguration))
	_, err = NewCVVEDof2D(pm, 2, utils.DOFOrder(9))
	assert.True(t, errors.Is(err, utils.ErrInvalidSpaceConfiguration))
	_, err = NewCVVEDof2D(&patchedMesh{PolygonMesh: pm, gd: 3}, 2, utils.NodeMajor)
	assert.True(t, errors.Is(err, utils.ErrInvalidSpaceConfiguration))

	broken := func(row int, ec [4]int) *patchedMesh {
		edgeCells := make([][4]int, pm.NumberOfEdges())
		copy(edgeCells, pm.EdgeToCell())
		edgeCells[row] = ec
		return &patchedMesh{PolygonMesh: pm, edgeCells: edgeCells}
	}
	// second cell out of range
	_, err = NewCVVEDof2D(broken(1, [4]int{0, 2, 1, 3}), 2, utils.NodeMajor)
	assert.True(t, errors.Is(err, utils.ErrInconsistentMeshTopology))
	// local edge index past the cell's vertex count
	_, err = NewCVVEDof2D(broken(1, [4]int{0, 1, 1, 4}), 2, utils.NodeMajor)
	assert.True(t, errors.Is(err, utils.ErrInconsistentMeshTopology))
	// two edges claim the same slot, leaving another empty
	_, err = NewCVVEDof2D(broken(1, [4]int{0, 1, 1, 0}), 3, utils.NodeMajor)
	assert.True(t, errors.Is(err, utils.ErrInconsistentMeshTopology))
	// the order 1 path does not read edge adjacency
	_, err = NewCVVEDof2D(broken(1, [4]int{0, 2, 1, 3}), 1, utils.NodeMajor)
	assert.NoError(t, err)

	// order 1 reads the raw vertex offsets, which must be a valid table
	for _, location := range []utils.Index{
		{0, 9, 8}, // decreasing
		{1, 4, 8}, // does not start at 0
		{0, 2, 8}, // two vertex cell
		{0, 4, 7}, // does not cover the vertex list
	} {
		_, err = NewCVVEDof2D(&patchedMesh{PolygonMesh: pm, location: location}, 1, utils.NodeMajor)
		assert.True(t, errors.Is(err, utils.ErrInconsistentMeshTopology), "location %v", location)
	}
}
