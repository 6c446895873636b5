package fem

import (
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/govem/utils"
)

// TrussMassIntegrator computes the consistent mass of straight bars with
// density Rho and cross section A:
//
//	M = Rho*A*L/6 * [[2, 1], [1, 2]] ⊗ I
type TrussMassIntegrator struct {
	Rho, A float64
}

func (mi *TrussMassIntegrator) mass(order utils.DOFOrder, t []float64, L float64, M *mat.SymDense) {
	var (
		gd = len(t)
		m  = mi.Rho * mi.A * L / 6
	)
	M.Zero()
	for a := 0; a < 2; a++ {
		for b := a; b < 2; b++ {
			w := m
			if a == b {
				w = 2 * m
			}
			for i := 0; i < gd; i++ {
				M.SetSym(order.Local(a, i, 2, gd), order.Local(b, i, 2, gd), w)
			}
		}
	}
}

// AssembleCellMatrix has the same contract as the stiffness assembly.
func (mi *TrussMassIntegrator) AssembleCellMatrix(spaces []*LagrangeSpace, sel utils.Selector,
	cellMeasure []float64, out []*mat.SymDense) ([]*mat.SymDense, error) {
	return assembleBars(mi.mass, spaces, sel, cellMeasure, out)
}
