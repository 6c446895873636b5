/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/govem/InputParameters"
	"github.com/notargets/govem/mesh"
	"github.com/notargets/govem/utils"
	"github.com/notargets/govem/vem"
)

// VEMCmd represents the vem command
var VEMCmd = &cobra.Command{
	Use:   "vem",
	Short: "Build the conforming vector VEM space on a polygon mesh and report its DOF tables",
	Long:  `Build the conforming vector VEM space on a polygon mesh and report its DOF tables`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			ip     *InputParameters.VEMParameters
			report *VEMReport
		)
		icFile, _ := cmd.Flags().GetString("inputConditionsFile")
		if ip, err = readVEMInput(icFile); err != nil {
			return
		}
		ip.Print()
		if report, err = RunVEM(ip, logger); err != nil {
			return
		}
		if show, _ := cmd.Flags().GetBool("printDofs"); show {
			var (
				sel utils.Selector
				I   utils.Index
			)
			cells, _ := cmd.Flags().GetString("cells")
			if sel, err = utils.ParseSelector(cells); err != nil {
				return
			}
			if I, err = sel.Indices(len(report.CellToDof)); err != nil {
				return
			}
			for _, k := range I {
				fmt.Printf("cell %d: %v\n", k, report.CellToDof[k])
			}
		}
		return
	},
}

func init() {
	rootCmd.AddCommand(VEMCmd)
	VEMCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- PolynomialOrder\n\t- DOFOrder\n\t- Mesh")
	VEMCmd.Flags().BoolP("printDofs", "p", false, "print the cell to DOF table")
	VEMCmd.Flags().StringP("cells", "c", ":", "cells to print, like \":\", \"3\", \"2:5\" or \"end\"")
}

func readVEMInput(fileName string) (ip *InputParameters.VEMParameters, err error) {
	var data []byte
	if len(fileName) == 0 {
		exampleFile := `
########################################
Title: "Two Squares"
PolynomialOrder: 2
DOFOrder: vdims # or sdofs
Mesh:
  Type: quad # tri, or gmsh with File: mesh.msh
  Box: [0, 2, 0, 1]
  NX: 2
  NY: 1
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		return nil, fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile)")
	}
	if data, err = os.ReadFile(fileName); err != nil {
		return
	}
	ip = &InputParameters.VEMParameters{}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("reading %s: %w", fileName, err)
	}
	return
}

// VEMReport summarizes the space built by RunVEM.
type VEMReport struct {
	NumberOfCells        int
	NumberOfEdges        int
	NumberOfGlobalDofs   int
	NumberOfBoundaryDofs int
	InterpolationPoints  *mat.Dense
	CellToDof            []utils.Index
}

func buildPolygonMesh(mp InputParameters.MeshParameters) (pm *mesh.PolygonMesh, err error) {
	switch mp.Type {
	case "quad":
		return mesh.NewRectangleQuadMesh(mp.Box, mp.NX, mp.NY)
	case "tri":
		return mesh.NewRectangleTriMesh(mp.Box, mp.NX, mp.NY)
	case "gmsh":
		return mesh.ReadGmsh22(mp.File)
	}
	return nil, fmt.Errorf("unknown mesh type %q", mp.Type)
}

func RunVEM(ip *InputParameters.VEMParameters, logger *zap.Logger) (report *VEMReport, err error) {
	var (
		pm    *mesh.PolygonMesh
		order utils.DOFOrder
		vs    *vem.ConformingVectorVESpace2D
		opts  []vem.SpaceOption
	)
	if err = ip.Validate(); err != nil {
		return
	}
	if order, err = utils.ParseDOFOrder(ip.DOFOrder); err != nil {
		return
	}
	if pm, err = buildPolygonMesh(ip.Mesh); err != nil {
		return
	}
	logger.Debug("mesh built",
		zap.String("type", ip.Mesh.Type),
		zap.Int("nodes", pm.NumberOfNodes()),
		zap.Int("edges", pm.NumberOfEdges()),
		zap.Int("cells", pm.NumberOfCells()),
		zap.Float64("area", floats.Sum(pm.EntityMeasure(mesh.Cell))))

	opts = append(opts, vem.WithDOFOrder(order))
	if ip.QuadratureOrder > 0 {
		opts = append(opts, vem.WithQuadratureOrder(ip.QuadratureOrder))
	}
	if vs, err = vem.NewConformingVectorVESpace2D(pm, ip.PolynomialOrder, opts...); err != nil {
		return
	}
	report = &VEMReport{
		NumberOfCells:      pm.NumberOfCells(),
		NumberOfEdges:      pm.NumberOfEdges(),
		NumberOfGlobalDofs: vs.NumberOfGlobalDofs(),
	}
	for _, bd := range vs.IsBoundaryDof() {
		if bd {
			report.NumberOfBoundaryDofs++
		}
	}
	if report.CellToDof, err = vs.CellToDof(utils.All()); err != nil {
		return nil, err
	}
	if report.InterpolationPoints, err = vs.Dof.InterpolationPoints(ip.IPointScale); err != nil {
		return nil, err
	}
	nIpts, _ := report.InterpolationPoints.Dims()
	logger.Info("vem space built",
		zap.Int("order", ip.PolynomialOrder),
		zap.Stringer("dofOrder", order),
		zap.Int("globalDofs", report.NumberOfGlobalDofs),
		zap.Int("boundaryDofs", report.NumberOfBoundaryDofs),
		zap.Int("interpolationPoints", nIpts))
	return
}
