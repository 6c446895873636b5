package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"

	"github.com/notargets/govem/utils"
)

// MeshParameters selects the polygon mesh of a VEM run: a generated
// rectangle ("quad" or "tri") or a Gmsh 2.2 file ("gmsh").
type MeshParameters struct {
	Type string     `json:"Type"`
	Box  [4]float64 `json:"Box"` // xmin, xmax, ymin, ymax
	NX   int        `json:"NX"`
	NY   int        `json:"NY"`
	File string     `json:"File"`
}

// VEMParameters are obtained from the YAML input file of the vem command
type VEMParameters struct {
	Title           string         `json:"Title"`
	PolynomialOrder int            `json:"PolynomialOrder"`
	QuadratureOrder int            `json:"QuadratureOrder"` // 0 selects PolynomialOrder+3
	DOFOrder        string         `json:"DOFOrder"`        // vdims / node-major or sdofs / component-major
	IPointScale     float64        `json:"IPointScale"`
	Mesh            MeshParameters `json:"Mesh"`
}

func (ip *VEMParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	if ip.DOFOrder == "" {
		ip.DOFOrder = utils.NodeMajor.String()
	}
	if ip.IPointScale == 0 {
		ip.IPointScale = 0.3
	}
	return
}

func (ip *VEMParameters) Validate() (err error) {
	if ip.PolynomialOrder < 1 {
		return fmt.Errorf("%w: PolynomialOrder %d", utils.ErrInvalidSpaceConfiguration, ip.PolynomialOrder)
	}
	if _, err = utils.ParseDOFOrder(ip.DOFOrder); err != nil {
		return
	}
	switch ip.Mesh.Type {
	case "quad", "tri":
		if ip.Mesh.NX < 1 || ip.Mesh.NY < 1 {
			err = fmt.Errorf("rectangle mesh needs NX, NY >= 1, have %d, %d", ip.Mesh.NX, ip.Mesh.NY)
		}
	case "gmsh":
		if len(ip.Mesh.File) == 0 {
			err = fmt.Errorf("gmsh mesh needs a File")
		}
	default:
		err = fmt.Errorf("unknown mesh type %q, use quad, tri or gmsh", ip.Mesh.Type)
	}
	return
}

func (ip *VEMParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d]\t\t\t\t= Polynomial Order\n", ip.PolynomialOrder)
	fmt.Printf("[%d]\t\t\t\t= Quadrature Order\n", ip.QuadratureOrder)
	fmt.Printf("[%s]\t\t= DOF Order\n", ip.DOFOrder)
	fmt.Printf("%8.5f\t\t= Interpolation Point Scale\n", ip.IPointScale)
	switch ip.Mesh.Type {
	case "gmsh":
		fmt.Printf("[%s] %s\t= Mesh\n", ip.Mesh.Type, ip.Mesh.File)
	default:
		fmt.Printf("[%s] %v %dx%d\t= Mesh\n", ip.Mesh.Type, ip.Mesh.Box, ip.Mesh.NX, ip.Mesh.NY)
	}
}

// TrussParameters are obtained from the YAML input file of the truss command
type TrussParameters struct {
	Title        string      `json:"Title"`
	E            float64     `json:"E"`
	A            float64     `json:"A"`
	Rho          float64     `json:"Rho"`
	DOFOrder     string      `json:"DOFOrder"`
	Workers      int         `json:"Workers"`
	Nodes        [][]float64 `json:"Nodes"`
	Bars         [][2]int    `json:"Bars"`
	Displacement []float64   `json:"Displacement"` // optional, laid out in DOFOrder
}

func (tp *TrussParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, tp); err != nil {
		return
	}
	if tp.DOFOrder == "" {
		tp.DOFOrder = utils.NodeMajor.String()
	}
	if tp.Workers < 1 {
		tp.Workers = 1
	}
	return
}

func (tp *TrussParameters) Validate() (err error) {
	if !(tp.E > 0) || !(tp.A > 0) {
		return fmt.Errorf("E and A must be positive, have %g, %g", tp.E, tp.A)
	}
	if tp.Rho < 0 {
		return fmt.Errorf("density Rho must not be negative, have %g", tp.Rho)
	}
	if _, err = utils.ParseDOFOrder(tp.DOFOrder); err != nil {
		return
	}
	if len(tp.Nodes) == 0 || len(tp.Bars) == 0 {
		return fmt.Errorf("truss needs Nodes and Bars")
	}
	gd := len(tp.Nodes[0])
	if gd < 1 || gd > 3 {
		return fmt.Errorf("nodes need 1, 2 or 3 coordinates, node 0 has %d", gd)
	}
	for i, x := range tp.Nodes {
		if len(x) != gd {
			return fmt.Errorf("node %d has %d coordinates, node 0 has %d", i, len(x), gd)
		}
	}
	if tp.Displacement != nil && len(tp.Displacement) != gd*len(tp.Nodes) {
		return fmt.Errorf("%w: Displacement has %d entries, need %d",
			utils.ErrShapeMismatch, len(tp.Displacement), gd*len(tp.Nodes))
	}
	return
}

// Coordinates flattens Nodes row by row.
func (tp *TrussParameters) Coordinates() (gd int, coords []float64) {
	if len(tp.Nodes) == 0 {
		return
	}
	gd = len(tp.Nodes[0])
	coords = make([]float64, 0, gd*len(tp.Nodes))
	for _, x := range tp.Nodes {
		coords = append(coords, x...)
	}
	return
}

func (tp *TrussParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", tp.Title)
	fmt.Printf("%12.5g\t\t= E\n", tp.E)
	fmt.Printf("%12.5g\t\t= A\n", tp.A)
	fmt.Printf("%12.5g\t\t= Rho\n", tp.Rho)
	fmt.Printf("[%s]\t\t= DOF Order\n", tp.DOFOrder)
	fmt.Printf("[%d]\t\t\t\t= Workers\n", tp.Workers)
	fmt.Printf("[%d nodes, %d bars]\t= Truss\n", len(tp.Nodes), len(tp.Bars))
}
