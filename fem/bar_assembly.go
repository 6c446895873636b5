package fem

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/govem/mesh"
	"github.com/notargets/govem/utils"
)

// barKernel fills the local matrix of one bar from its unit tangent and length.
type barKernel func(order utils.DOFOrder, t []float64, L float64, K *mat.SymDense)

// barElements holds the per element geometry of a selection of bars.
type barElements struct {
	order   utils.DOFOrder
	gd      int
	cells   utils.Index
	length  []float64
	tangent *mat.Dense
}

func newBarElements(spaces []*LagrangeSpace, sel utils.Selector, cellMeasure []float64) (be *barElements, err error) {
	var (
		ls *LagrangeSpace
		I  utils.Index
		T  *mat.Dense
	)
	if ls, err = checkSpaces(spaces); err != nil {
		return
	}
	m := ls.Mesh
	if I, err = sel.Indices(m.NumberOfCells()); err != nil {
		return
	}
	if cellMeasure == nil {
		if cellMeasure, err = m.EntityMeasure(mesh.Cell, sel); err != nil {
			return
		}
	}
	if len(cellMeasure) != len(I) {
		err = fmt.Errorf("%w: %d cell measures for %d selected bars",
			utils.ErrShapeMismatch, len(cellMeasure), len(I))
		return
	}
	for i, L := range cellMeasure {
		if !(L > 0) {
			err = fmt.Errorf("%w: bar %d has length %g", utils.ErrInconsistentMeshTopology, I[i], L)
			return
		}
	}
	if T, err = m.CellUnitTangent(sel); err != nil {
		return
	}
	be = &barElements{
		order:   ls.Order,
		gd:      ls.GeoDimension(),
		cells:   I,
		length:  cellMeasure,
		tangent: T,
	}
	return
}

// prepare returns out after checking it holds one 2*GD square matrix per
// element, or a fresh slice when out is nil.
func (be *barElements) prepare(out []*mat.SymDense) (K []*mat.SymDense, err error) {
	var (
		n    = len(be.cells)
		ldof = 2 * be.gd
	)
	if out == nil {
		K = make([]*mat.SymDense, n)
		for i := range K {
			K[i] = mat.NewSymDense(ldof, nil)
		}
		return
	}
	if len(out) != n {
		err = fmt.Errorf("%w: output holds %d matrices, need %d", utils.ErrShapeMismatch, len(out), n)
		return
	}
	for i, k := range out {
		if k == nil || k.SymmetricDim() != ldof {
			err = fmt.Errorf("%w: output matrix %d is not %dx%d", utils.ErrShapeMismatch, i, ldof, ldof)
			return
		}
	}
	K = out
	return
}

func (be *barElements) fill(kernel barKernel, K []*mat.SymDense, kMin, kMax int) {
	for i := kMin; i < kMax; i++ {
		kernel(be.order, be.tangent.RawRowView(i), be.length[i], K[i])
	}
}

// assembleBars runs kernel over every selected bar. When out is supplied the
// matrices are written into it and nil is returned.
func assembleBars(kernel barKernel, spaces []*LagrangeSpace, sel utils.Selector,
	cellMeasure []float64, out []*mat.SymDense) (K []*mat.SymDense, err error) {
	var (
		be *barElements
	)
	if be, err = newBarElements(spaces, sel, cellMeasure); err != nil {
		return
	}
	if K, err = be.prepare(out); err != nil {
		return
	}
	be.fill(kernel, K, 0, len(be.cells))
	if out != nil {
		K = nil
	}
	return
}

// assembleBarsParallel is assembleBars with the selection split into
// contiguous chunks, one per worker. Every element writes only its own
// matrix so the result does not depend on the number of workers.
func assembleBarsParallel(ctx context.Context, kernel barKernel, spaces []*LagrangeSpace,
	sel utils.Selector, cellMeasure []float64, out []*mat.SymDense, workers int) (K []*mat.SymDense, err error) {
	var (
		be *barElements
	)
	if be, err = newBarElements(spaces, sel, cellMeasure); err != nil {
		return
	}
	if K, err = be.prepare(out); err != nil {
		return
	}
	pm := utils.NewPartitionMap(workers, len(be.cells))
	g, gctx := errgroup.WithContext(ctx)
	for np := 0; np < pm.ParallelDegree; np++ {
		kMin, kMax := pm.GetBucketRange(np)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			be.fill(kernel, K, kMin, kMax)
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		K = nil
		return
	}
	if out != nil {
		K = nil
	}
	return
}
