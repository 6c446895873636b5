package vem

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/govem/mesh"
	"github.com/notargets/govem/utils"
)

// ConformingVectorVESpace2D is the order P conforming vector virtual element
// space on a polygon mesh. It owns the projection spaces and the DOF tables,
// which are built once and never change.
type ConformingVectorVESpace2D struct {
	Mesh mesh.PolygonQuery
	P    int
	Q    int // quadrature order for projection assembly by callers, not read here

	SMSpace *ScaledMonomialSpace2D
	VMSpace *VectorMonomialSpace2D
	Dof     *CVVEDof2D
}

type spaceConfig struct {
	order utils.DOFOrder
	q     int
}

type SpaceOption func(*spaceConfig)

func WithDOFOrder(o utils.DOFOrder) SpaceOption {
	return func(c *spaceConfig) { c.order = o }
}

// WithQuadratureOrder sets the quadrature order used by the monomial spaces;
// it defaults to P+3.
func WithQuadratureOrder(q int) SpaceOption {
	return func(c *spaceConfig) { c.q = q }
}

func NewConformingVectorVESpace2D(m mesh.PolygonQuery, p int, opts ...SpaceOption) (vs *ConformingVectorVESpace2D, err error) {
	var (
		cfg = spaceConfig{order: utils.NodeMajor, q: p + 3}
		dof *CVVEDof2D
		sm  *ScaledMonomialSpace2D
	)
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.q < 1 {
		err = fmt.Errorf("%w: quadrature order %d", utils.ErrInvalidSpaceConfiguration, cfg.q)
		return
	}
	if dof, err = NewCVVEDof2D(m, p, cfg.order); err != nil {
		return
	}
	if sm, err = NewScaledMonomialSpace2D(m, p, cfg.q); err != nil {
		return
	}
	vs = &ConformingVectorVESpace2D{
		Mesh:    m,
		P:       p,
		Q:       cfg.q,
		SMSpace: sm,
		VMSpace: &VectorMonomialSpace2D{Scalar: sm},
		Dof:     dof,
	}
	return
}

func (vs *ConformingVectorVESpace2D) NumberOfGlobalDofs() int {
	return vs.Dof.NumberOfGlobalDofs()
}

func (vs *ConformingVectorVESpace2D) NumberOfLocalDofs(kind mesh.EntityKind) []int {
	return vs.Dof.NumberOfLocalDofs(kind)
}

func (vs *ConformingVectorVESpace2D) CellToDof(sel utils.Selector) ([]utils.Index, error) {
	return vs.Dof.CellToDof(sel)
}

func (vs *ConformingVectorVESpace2D) InterpolationPoints() (*mat.Dense, error) {
	return vs.Dof.InterpolationPoints(DefaultIPointScale)
}

func (vs *ConformingVectorVESpace2D) IsBoundaryDof() []bool {
	return vs.Dof.IsBoundaryDof()
}

func (vs *ConformingVectorVESpace2D) DOFOrder() utils.DOFOrder {
	return vs.Dof.Order
}
