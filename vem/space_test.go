package vem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/govem/mesh"
	"github.com/notargets/govem/utils"
)

func TestConformingVectorVESpace2D(t *testing.T) {
	pm := twoSquares(t)
	vs, err := NewConformingVectorVESpace2D(pm, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, vs.Q)
	assert.Equal(t, utils.NodeMajor, vs.DOFOrder())
	assert.Equal(t, 30, vs.NumberOfGlobalDofs())
	assert.Equal(t, []int{18, 18}, vs.NumberOfLocalDofs(mesh.All))
	assert.Equal(t, []int{6, 6, 6, 6, 6, 6, 6}, vs.NumberOfLocalDofs(mesh.Edge))
	assert.Equal(t, []int{2, 2}, vs.NumberOfLocalDofs(mesh.Cell))
	assert.Equal(t, []int{2, 2, 2, 2, 2, 2}, vs.NumberOfLocalDofs(mesh.Node))

	c2d, err := vs.CellToDof(utils.All())
	require.NoError(t, err)
	direct, _ := vs.Dof.CellToDof(utils.All())
	assert.Equal(t, direct, c2d)

	ipts, err := vs.InterpolationPoints()
	require.NoError(t, err)
	r, c := ipts.Dims()
	assert.Equal(t, 17, r)
	assert.Equal(t, 2, c)
	assert.Len(t, vs.IsBoundaryDof(), 30)

	assert.Equal(t, 6, vs.SMSpace.NumberOfLocalDofs())
	assert.Equal(t, 12, vs.VMSpace.NumberOfLocalDofs())
	assert.Equal(t, 24, vs.VMSpace.NumberOfGlobalDofs())

	sdofs, err := NewConformingVectorVESpace2D(pm, 2,
		WithDOFOrder(utils.ComponentMajor), WithQuadratureOrder(4))
	require.NoError(t, err)
	assert.Equal(t, 4, sdofs.Q)
	assert.Equal(t, utils.ComponentMajor, sdofs.DOFOrder())
	assert.Equal(t, vs.NumberOfGlobalDofs(), sdofs.NumberOfGlobalDofs())
	// Same carriers, different component packing
	nodeMajor, _ := vs.CellToDof(utils.List(1))
	compMajor, _ := sdofs.CellToDof(utils.List(1))
	for i := 0; i < len(nodeMajor[0]); i += 2 {
		carrier := nodeMajor[0][i] / 2
		assert.Equal(t, carrier, compMajor[0][i/2])
		assert.Equal(t, carrier+15, compMajor[0][9+i/2])
	}
}

func TestSpaceErrors(t *testing.T) {
	pm := twoSquares(t)
	_, err := NewConformingVectorVESpace2D(pm, 0)
	assert.True(t, errors.Is(err, utils.ErrInvalidSpaceConfiguration))
	_, err = NewConformingVectorVESpace2D(pm, 2, WithQuadratureOrder(0))
	assert.True(t, errors.Is(err, utils.ErrInvalidSpaceConfiguration))
	_, err = NewConformingVectorVESpace2D(pm, 2, WithDOFOrder(utils.DOFOrder(7)))
	assert.True(t, errors.Is(err, utils.ErrInvalidSpaceConfiguration))
	vs, err := NewConformingVectorVESpace2D(pm, 2)
	require.NoError(t, err)
	_, err = vs.CellToDof(utils.List(2))
	assert.True(t, errors.Is(err, utils.ErrSelectionOutOfRange))
}

func TestScaledMonomialSpace2D(t *testing.T) {
	pm := twoSquares(t)
	sm, err := NewScaledMonomialSpace2D(pm, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 12, sm.NumberOfGlobalDofs())
	assert.InDeltaSlice(t, []float64{1, 1}, sm.CellSize(), 1.e-14)
	bc := sm.CellBarycenter()
	assert.InDelta(t, 1.5, bc.At(1, 0), 1.e-14)

	assert.InDeltaSlice(t, []float64{1, 0, 0, 0, 0, 0}, sm.Basis(0, [2]float64{0.5, 0.5}), 1.e-14)
	// ξ = 1, η = 0
	assert.InDeltaSlice(t, []float64{1, 1, 0, 1, 0, 0}, sm.Basis(1, [2]float64{2.5, 0.5}), 1.e-14)
	// ξ = 0.5, η = -0.5
	assert.InDeltaSlice(t, []float64{1, 0.5, -0.5, 0.25, -0.25, 0.25},
		sm.Basis(0, [2]float64{1, 0}), 1.e-14)

	grad := sm.GradBasis(0, [2]float64{0.5, 0.5})
	require.Len(t, grad, 6)
	assert.Equal(t, [2]float64{0, 0}, grad[0])
	assert.Equal(t, [2]float64{1, 0}, grad[1])
	assert.Equal(t, [2]float64{0, 1}, grad[2])
	for _, g := range grad[3:] {
		assert.Equal(t, [2]float64{0, 0}, g)
	}
	grad = sm.GradBasis(0, [2]float64{1, 0})
	assert.InDeltaSlice(t, []float64{1, 0}, grad[3][:], 1.e-14)      // 2ξ/h
	assert.InDeltaSlice(t, []float64{-0.5, 0.5}, grad[4][:], 1.e-14) // (η, ξ)/h
	assert.InDeltaSlice(t, []float64{0, -1}, grad[5][:], 1.e-14)     // 2η/h

	_, err = NewScaledMonomialSpace2D(pm, -1, 1)
	assert.True(t, errors.Is(err, utils.ErrInvalidSpaceConfiguration))
}

func TestVectorMonomialSpace2D(t *testing.T) {
	pm := twoSquares(t)
	vm, err := NewVectorMonomialSpace2D(pm, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, vm.NumberOfLocalDofs())
	phi := vm.Basis(0, [2]float64{1, 0.5})
	require.Len(t, phi, 6)
	assert.Equal(t, [][2]float64{
		{1, 0}, {0.5, 0}, {0, 0},
		{0, 1}, {0, 0.5}, {0, 0},
	}, phi)
}
