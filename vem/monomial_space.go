package vem

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/govem/mesh"
	"github.com/notargets/govem/utils"
)

// ScaledMonomialSpace2D is the per cell polynomial space spanned by
// ((x-x_K)/h_K)^a ((y-y_K)/h_K)^b, a+b <= P, with x_K the cell centroid and
// h_K = sqrt(|K|). Basis functions are graded: 1, ξ, η, ξ², ξη, η², ...
type ScaledMonomialSpace2D struct {
	Mesh mesh.PolygonQuery
	P    int
	Q    int // quadrature order for integrals over cells, carried for callers

	barycenter *mat.Dense
	cellSize   []float64
}

func NewScaledMonomialSpace2D(m mesh.PolygonQuery, p, q int) (sm *ScaledMonomialSpace2D, err error) {
	if p < 0 {
		err = fmt.Errorf("%w: monomial order %d", utils.ErrInvalidSpaceConfiguration, p)
		return
	}
	var (
		nc   = m.NumberOfCells()
		area = m.CellArea()
		bc   = m.EntityBarycenter(mesh.Cell)
	)
	if r, _ := bc.Dims(); r != nc || len(area) != nc {
		err = fmt.Errorf("%w: cell geometry tables do not cover %d cells",
			utils.ErrInconsistentMeshTopology, nc)
		return
	}
	sm = &ScaledMonomialSpace2D{
		Mesh:       m,
		P:          p,
		Q:          q,
		barycenter: bc,
		cellSize:   make([]float64, nc),
	}
	for k, a := range area {
		if a <= 0 {
			err = fmt.Errorf("%w: cell %d has area %g", utils.ErrInconsistentMeshTopology, k, a)
			sm = nil
			return
		}
		sm.cellSize[k] = math.Sqrt(a)
	}
	return
}

func (sm *ScaledMonomialSpace2D) NumberOfLocalDofs() int {
	return (sm.P + 1) * (sm.P + 2) / 2
}

func (sm *ScaledMonomialSpace2D) NumberOfGlobalDofs() int {
	return sm.Mesh.NumberOfCells() * sm.NumberOfLocalDofs()
}

func (sm *ScaledMonomialSpace2D) CellSize() []float64        { return sm.cellSize }
func (sm *ScaledMonomialSpace2D) CellBarycenter() *mat.Dense { return sm.barycenter }

func (sm *ScaledMonomialSpace2D) scaled(cell int, x [2]float64) (xi, eta []float64) {
	var (
		h = sm.cellSize[cell]
		p = sm.P
	)
	xi = make([]float64, p+1)
	eta = make([]float64, p+1)
	xi[0], eta[0] = 1, 1
	for a := 1; a <= p; a++ {
		xi[a] = xi[a-1] * (x[0] - sm.barycenter.At(cell, 0)) / h
		eta[a] = eta[a-1] * (x[1] - sm.barycenter.At(cell, 1)) / h
	}
	return
}

// Basis evaluates every basis function of cell at x.
func (sm *ScaledMonomialSpace2D) Basis(cell int, x [2]float64) (phi []float64) {
	var (
		xi, eta = sm.scaled(cell, x)
	)
	phi = make([]float64, 0, sm.NumberOfLocalDofs())
	for d := 0; d <= sm.P; d++ {
		for j := 0; j <= d; j++ {
			phi = append(phi, xi[d-j]*eta[j])
		}
	}
	return
}

// GradBasis evaluates the physical gradient of every basis function of cell at x.
func (sm *ScaledMonomialSpace2D) GradBasis(cell int, x [2]float64) (grad [][2]float64) {
	var (
		xi, eta = sm.scaled(cell, x)
		h       = sm.cellSize[cell]
	)
	grad = make([][2]float64, 0, sm.NumberOfLocalDofs())
	for d := 0; d <= sm.P; d++ {
		for j := 0; j <= d; j++ {
			var g [2]float64
			if a := d - j; a > 0 {
				g[0] = float64(a) * xi[a-1] * eta[j] / h
			}
			if j > 0 {
				g[1] = float64(j) * xi[d-j] * eta[j-1] / h
			}
			grad = append(grad, g)
		}
	}
	return
}

// VectorMonomialSpace2D is the two component product of a scaled monomial
// space: the first half of the basis is (m, 0), the second half (0, m).
type VectorMonomialSpace2D struct {
	Scalar *ScaledMonomialSpace2D
}

func NewVectorMonomialSpace2D(m mesh.PolygonQuery, p, q int) (vm *VectorMonomialSpace2D, err error) {
	var sm *ScaledMonomialSpace2D
	if sm, err = NewScaledMonomialSpace2D(m, p, q); err != nil {
		return
	}
	vm = &VectorMonomialSpace2D{Scalar: sm}
	return
}

func (vm *VectorMonomialSpace2D) NumberOfLocalDofs() int {
	return GD * vm.Scalar.NumberOfLocalDofs()
}

func (vm *VectorMonomialSpace2D) NumberOfGlobalDofs() int {
	return GD * vm.Scalar.NumberOfGlobalDofs()
}

func (vm *VectorMonomialSpace2D) Basis(cell int, x [2]float64) (phi [][2]float64) {
	var (
		s  = vm.Scalar.Basis(cell, x)
		nd = len(s)
	)
	phi = make([][2]float64, GD*nd)
	for i, v := range s {
		phi[i][0] = v
		phi[nd+i][1] = v
	}
	return
}
