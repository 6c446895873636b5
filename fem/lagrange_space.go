package fem

import (
	"fmt"

	"github.com/notargets/govem/mesh"
	"github.com/notargets/govem/utils"
)

// LagrangeSpace is the linear Lagrange space on a mesh of bars. A truss
// problem in GD dimensions uses GD copies of the same space, one per
// displacement component, and numbers their DOFs jointly using Order.
type LagrangeSpace struct {
	Mesh  mesh.LineQuery
	Order utils.DOFOrder
}

func NewLagrangeSpace(m mesh.LineQuery, order utils.DOFOrder) (ls *LagrangeSpace, err error) {
	if !order.Valid() {
		err = fmt.Errorf("%w: %s", utils.ErrInvalidSpaceConfiguration, order)
		return
	}
	if gd := m.GeoDimension(); gd < 1 || gd > 3 {
		err = fmt.Errorf("%w: bar mesh in %d dimensions", utils.ErrInvalidSpaceConfiguration, gd)
		return
	}
	ls = &LagrangeSpace{Mesh: m, Order: order}
	return
}

func (ls *LagrangeSpace) GeoDimension() int { return ls.Mesh.GeoDimension() }

// NumberOfGlobalDofs counts every component at every node.
func (ls *LagrangeSpace) NumberOfGlobalDofs() int {
	return ls.GeoDimension() * ls.Mesh.NumberOfNodes()
}

func (ls *LagrangeSpace) NumberOfLocalDofs() int { return 2 * ls.GeoDimension() }

// CellToDof returns the 2*GD global DOFs of each selected bar, listed in the
// same local layout the bar integrators produce.
func (ls *LagrangeSpace) CellToDof(sel utils.Selector) (c2d []utils.Index, err error) {
	var (
		I     utils.Index
		nodes = ls.Mesh.CellNodes()
	)
	if I, err = sel.Indices(ls.Mesh.NumberOfCells()); err != nil {
		return
	}
	c2d = make([]utils.Index, len(I))
	for i, k := range I {
		c2d[i] = ls.cellDofs(nodes[k])
	}
	return
}

func (ls *LagrangeSpace) cellDofs(ends [2]int) utils.Index {
	return ls.Order.Expand(utils.Index{ends[0], ends[1]}, ls.Mesh.NumberOfNodes(), ls.GeoDimension())
}

// checkSpaces verifies that spaces is a full vector tuple: one space per
// geometric dimension, all on the same mesh with the same layout.
func checkSpaces(spaces []*LagrangeSpace) (ls *LagrangeSpace, err error) {
	if len(spaces) == 0 || spaces[0] == nil {
		err = fmt.Errorf("%w: no spaces", utils.ErrInvalidSpaceConfiguration)
		return
	}
	ls = spaces[0]
	if gd := ls.GeoDimension(); len(spaces) != gd {
		err = fmt.Errorf("%w: %d spaces for a %d dimensional mesh",
			utils.ErrInvalidSpaceConfiguration, len(spaces), gd)
		ls = nil
		return
	}
	for i, s := range spaces[1:] {
		if s == nil || s.Mesh != ls.Mesh || s.Order != ls.Order {
			err = fmt.Errorf("%w: space %d differs from space 0",
				utils.ErrInvalidSpaceConfiguration, i+1)
			ls = nil
			return
		}
	}
	return
}
