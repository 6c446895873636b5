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
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/govem/InputParameters"
	"github.com/notargets/govem/fem"
	"github.com/notargets/govem/mesh"
	"github.com/notargets/govem/utils"
)

// TrussCmd represents the truss command
var TrussCmd = &cobra.Command{
	Use:   "truss",
	Short: "Assemble the element stiffness and mass matrices of a truss",
	Long:  `Assemble the element stiffness and mass matrices of a truss, and recover bar strains from a displacement`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			tp     *InputParameters.TrussParameters
			report *TrussReport
		)
		icFile, _ := cmd.Flags().GetString("inputConditionsFile")
		if tp, err = readTrussInput(icFile); err != nil {
			return
		}
		if w := viper.GetInt("workers"); w > 0 {
			tp.Workers = w
		}
		tp.Print()
		if report, err = RunTruss(cmd.Context(), tp, logger); err != nil {
			return
		}
		for k, s := range report.Strain {
			fmt.Printf("bar %d: strain %12.5e\n", k, s)
		}
		return
	},
}

func init() {
	rootCmd.AddCommand(TrussCmd)
	TrussCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- E, A, Rho\n\t- Nodes, Bars")
	TrussCmd.Flags().IntP("workers", "w", 0, "number of assembly goroutines, overrides Workers in the input file")
	_ = viper.BindPFlag("workers", TrussCmd.Flags().Lookup("workers"))
}

func readTrussInput(fileName string) (tp *InputParameters.TrussParameters, err error) {
	var data []byte
	if len(fileName) == 0 {
		exampleFile := `
########################################
Title: "Single Bar"
E: 2.
A: 3.
Rho: 1.
DOFOrder: sdofs # or vdims
Nodes:
  - [0, 0]
  - [1, 0]
Bars:
  - [0, 1]
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		return nil, fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile)")
	}
	if data, err = os.ReadFile(fileName); err != nil {
		return
	}
	tp = &InputParameters.TrussParameters{}
	if err = tp.Parse(data); err != nil {
		return nil, fmt.Errorf("reading %s: %w", fileName, err)
	}
	return
}

// TrussReport holds the element matrices assembled by RunTruss.
type TrussReport struct {
	Stiffness []*mat.SymDense
	Mass      []*mat.SymDense
	CellToDof []utils.Index
	Strain    []float64
	TotalMass float64
}

func RunTruss(ctx context.Context, tp *InputParameters.TrussParameters, logger *zap.Logger) (report *TrussReport, err error) {
	var (
		lm      *mesh.LineMesh
		ls      *fem.LagrangeSpace
		order   utils.DOFOrder
		lengths []float64
	)
	if ctx == nil {
		ctx = context.Background()
	}
	if err = tp.Validate(); err != nil {
		return
	}
	if order, err = utils.ParseDOFOrder(tp.DOFOrder); err != nil {
		return
	}
	gd, coords := tp.Coordinates()
	if lm, err = mesh.NewLineMesh(mat.NewDense(len(tp.Nodes), gd, coords), tp.Bars); err != nil {
		return
	}
	if ls, err = fem.NewLagrangeSpace(lm, order); err != nil {
		return
	}
	spaces := make([]*fem.LagrangeSpace, gd)
	for i := range spaces {
		spaces[i] = ls
	}
	if lengths, err = lm.EntityMeasure(mesh.Cell, utils.All()); err != nil {
		return
	}

	report = &TrussReport{}
	stiff := fem.NewTrussStructureIntegrator(tp.E, tp.A, 3)
	if report.Stiffness, err = stiff.AssembleCellMatrixParallel(ctx, spaces, utils.All(), lengths, nil, tp.Workers); err != nil {
		return nil, err
	}
	mass := &fem.TrussMassIntegrator{Rho: tp.Rho, A: tp.A}
	if report.Mass, err = mass.AssembleCellMatrix(spaces, utils.All(), lengths, nil); err != nil {
		return nil, err
	}
	if report.CellToDof, err = ls.CellToDof(utils.All()); err != nil {
		return nil, err
	}
	for _, M := range report.Mass {
		n := M.SymmetricDim()
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				report.TotalMass += M.At(i, j)
			}
		}
	}
	report.TotalMass /= float64(gd)
	logger.Info("truss assembled",
		zap.Int("bars", lm.NumberOfCells()),
		zap.Int("globalDofs", ls.NumberOfGlobalDofs()),
		zap.Stringer("dofOrder", order),
		zap.Int("workers", tp.Workers),
		zap.Float64("totalMass", report.TotalMass))

	if tp.Displacement != nil {
		if report.Strain, err = stiff.AxialStrain(spaces, utils.All(), tp.Displacement); err != nil {
			return nil, err
		}
		logger.Debug("strain recovered", zap.Float64s("strain", report.Strain))
	}
	return
}
