package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/govem/utils"
)

func rectangleNodes(box [4]float64, nx, ny int) (nodes *mat.Dense, node func(i, j int) int) {
	var (
		hx = (box[1] - box[0]) / float64(nx)
		hy = (box[3] - box[2]) / float64(ny)
	)
	nodes = mat.NewDense((nx+1)*(ny+1), 2, nil)
	node = func(i, j int) int { return j*(nx+1) + i }
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			nodes.Set(node(i, j), 0, box[0]+float64(i)*hx)
			nodes.Set(node(i, j), 1, box[2]+float64(j)*hy)
		}
	}
	return
}

func checkRectangle(box [4]float64, nx, ny int) error {
	if nx < 1 || ny < 1 || box[1] <= box[0] || box[3] <= box[2] {
		return fmt.Errorf("%w: rectangle %v with %dx%d cells",
			utils.ErrInconsistentMeshTopology, box, nx, ny)
	}
	return nil
}

// NewRectangleQuadMesh covers box = [xmin, xmax, ymin, ymax] with nx*ny
// quadrilaterals, numbered row by row from the bottom left.
func NewRectangleQuadMesh(box [4]float64, nx, ny int) (pm *PolygonMesh, err error) {
	if err = checkRectangle(box, nx, ny); err != nil {
		return
	}
	nodes, node := rectangleNodes(box, nx, ny)
	cell := make([]int, 0, 4*nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			cell = append(cell, node(i, j), node(i+1, j), node(i+1, j+1), node(i, j+1))
		}
	}
	return NewPolygonMesh(nodes, cell, utils.NewRange(0, nx*ny).Scale(4))
}

// NewRectangleTriMesh splits every quadrilateral of NewRectangleQuadMesh
// along its rising diagonal.
func NewRectangleTriMesh(box [4]float64, nx, ny int) (pm *PolygonMesh, err error) {
	if err = checkRectangle(box, nx, ny); err != nil {
		return
	}
	nodes, node := rectangleNodes(box, nx, ny)
	cell := make([]int, 0, 6*nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a, b, c, d := node(i, j), node(i+1, j), node(i+1, j+1), node(i, j+1)
			cell = append(cell, a, b, c, a, c, d)
		}
	}
	return NewPolygonMesh(nodes, cell, utils.NewRange(0, 2*nx*ny).Scale(3))
}
