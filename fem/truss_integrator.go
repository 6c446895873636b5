package fem

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/govem/utils"
)

// TrussStructureIntegrator computes the axial stiffness of straight bars with
// Young's modulus E and cross section A.
type TrussStructureIntegrator struct {
	E, A float64
	Q    int // quadrature order, the linear bar is integrated exactly for any Q >= 1
}

func NewTrussStructureIntegrator(E, A float64, q int) *TrussStructureIntegrator {
	return &TrussStructureIntegrator{E: E, A: A, Q: q}
}

// stiffness writes R = t⊗t*E*A/L into the endpoint blocks: +R on the
// node-self blocks, -R on the node-cross blocks.
func (it *TrussStructureIntegrator) stiffness(order utils.DOFOrder, t []float64, L float64, K *mat.SymDense) {
	var (
		gd = len(t)
		s  = it.E * it.A / L
	)
	for a := 0; a < 2; a++ {
		for b := a; b < 2; b++ {
			sign := 1.
			if a != b {
				sign = -1.
			}
			for i := 0; i < gd; i++ {
				for j := 0; j < gd; j++ {
					K.SetSym(order.Local(a, i, 2, gd), order.Local(b, j, 2, gd), sign*s*t[i]*t[j])
				}
			}
		}
	}
}

// AssembleCellMatrix returns the [2*GD, 2*GD] stiffness of every selected bar.
// spaces must hold GD identical spaces. A nil cellMeasure is read from the
// mesh. When out is supplied it must have one matrix of the exact size per
// selected bar; it is overwritten and nil is returned.
func (it *TrussStructureIntegrator) AssembleCellMatrix(spaces []*LagrangeSpace, sel utils.Selector,
	cellMeasure []float64, out []*mat.SymDense) ([]*mat.SymDense, error) {
	return assembleBars(it.stiffness, spaces, sel, cellMeasure, out)
}

// AssembleCellMatrixParallel is AssembleCellMatrix spread over workers goroutines.
func (it *TrussStructureIntegrator) AssembleCellMatrixParallel(ctx context.Context, spaces []*LagrangeSpace,
	sel utils.Selector, cellMeasure []float64, out []*mat.SymDense, workers int) ([]*mat.SymDense, error) {
	return assembleBarsParallel(ctx, it.stiffness, spaces, sel, cellMeasure, out, workers)
}

// AxialStrain recovers the engineering strain t·(u1-u0)/L of each selected
// bar from the global displacement vector u.
func (it *TrussStructureIntegrator) AxialStrain(spaces []*LagrangeSpace, sel utils.Selector,
	u []float64) (strain []float64, err error) {
	var (
		be  *barElements
		ls  *LagrangeSpace
		c2d []utils.Index
	)
	if be, err = newBarElements(spaces, sel, nil); err != nil {
		return
	}
	ls = spaces[0]
	if len(u) != ls.NumberOfGlobalDofs() {
		err = fmt.Errorf("%w: displacement has %d entries, need %d",
			utils.ErrShapeMismatch, len(u), ls.NumberOfGlobalDofs())
		return
	}
	if c2d, err = ls.CellToDof(sel); err != nil {
		return
	}
	strain = make([]float64, len(be.cells))
	for i, dofs := range c2d {
		t := be.tangent.RawRowView(i)
		for d := 0; d < be.gd; d++ {
			du := u[dofs[be.order.Local(1, d, 2, be.gd)]] - u[dofs[be.order.Local(0, d, 2, be.gd)]]
			strain[i] += t[d] * du
		}
		strain[i] /= be.length[i]
	}
	return
}
