package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// gmshCellVertices maps the Gmsh 2.2 element types read as polygon cells to
// their corner count. Lines and points carry boundary tags only and are skipped.
var gmshCellVertices = map[int]int{
	2: 3, // 3-node triangle
	3: 4, // 4-node quadrangle
}

// ReadGmsh22 reads a 2D triangle/quad mesh from an ASCII Gmsh 2.2 file.
func ReadGmsh22(filename string) (*PolygonMesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadGmsh22From(file)
}

type gmshData struct {
	nodeIDs map[int]int // Gmsh node ID -> array index
	coords  [][2]float64
	cell    []int
	loc     []int
}

// ReadGmsh22From parses ASCII Gmsh 2.2 content. Cells are reordered counter
// clockwise where needed.
func ReadGmsh22From(r io.Reader) (*PolygonMesh, error) {
	var (
		scanner = bufio.NewScanner(r)
		gd      = &gmshData{nodeIDs: make(map[int]int), loc: []int{0}}
	)
	const maxScanTokenSize = 1024 * 1024 * 10 // 10MB
	scanner.Buffer(make([]byte, 64*1024), maxScanTokenSize)

	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "$MeshFormat":
			if err := readGmshFormat(scanner); err != nil {
				return nil, err
			}
		case "$Nodes":
			if err := readGmshNodes(scanner, gd); err != nil {
				return nil, err
			}
		case "$Elements":
			if err := readGmshElements(scanner, gd); err != nil {
				return nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %v", err)
	}
	if len(gd.loc) < 2 {
		return nil, fmt.Errorf("no triangle or quadrangle elements found")
	}

	nodes := mat.NewDense(len(gd.coords), 2, nil)
	for i, x := range gd.coords {
		nodes.Set(i, 0, x[0])
		nodes.Set(i, 1, x[1])
	}
	orientCounterClockwise(nodes, gd.cell, gd.loc)
	return NewPolygonMesh(nodes, gd.cell, gd.loc)
}

func readGmshFormat(scanner *bufio.Scanner) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}
	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line")
	}
	if !strings.HasPrefix(parts[0], "2") {
		return fmt.Errorf("unsupported Gmsh version: %s", parts[0])
	}
	if parts[1] != "0" {
		return fmt.Errorf("binary Gmsh files are not supported")
	}
	return skipGmshSection(scanner, "$EndMeshFormat")
}

func readGmshNodes(scanner *bufio.Scanner, gd *gmshData) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Nodes")
	}
	numNodes, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid number of nodes: %v", err)
	}
	if numNodes < 0 {
		return fmt.Errorf("invalid number of nodes: %d", numNodes)
	}
	gd.coords = make([][2]float64, numNodes)
	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in Nodes at node %d", i)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return fmt.Errorf("invalid node entry at line %d", i+1)
		}
		nodeID, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("invalid node ID: %v", err)
		}
		for j := 0; j < 2; j++ {
			if gd.coords[i][j], err = strconv.ParseFloat(fields[j+1], 64); err != nil {
				return fmt.Errorf("invalid coordinate: %v", err)
			}
		}
		gd.nodeIDs[nodeID] = i
	}
	return skipGmshSection(scanner, "$EndNodes")
}

func readGmshElements(scanner *bufio.Scanner, gd *gmshData) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Elements")
	}
	numElems, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid number of elements: %v", err)
	}
	if numElems < 0 {
		return fmt.Errorf("invalid number of elements: %d", numElems)
	}
	for i := 0; i < numElems; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in Elements at element %d", i)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			return fmt.Errorf("invalid element entry at line %d", i+1)
		}
		gmshType, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("invalid element type: %v", err)
		}
		numTags, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("invalid number of tags: %v", err)
		}
		if numTags < 0 {
			return fmt.Errorf("element %s has %d tags", fields[0], numTags)
		}
		nv, ok := gmshCellVertices[gmshType]
		if !ok {
			continue
		}
		startIdx := 3 + numTags
		if len(fields)-startIdx < nv {
			return fmt.Errorf("element %s expects %d nodes, got %d", fields[0], nv, len(fields)-startIdx)
		}
		for j := 0; j < nv; j++ {
			id, err := strconv.Atoi(fields[startIdx+j])
			if err != nil {
				return fmt.Errorf("invalid node ID: %v", err)
			}
			idx, ok := gd.nodeIDs[id]
			if !ok {
				return fmt.Errorf("element %s references unknown node %d", fields[0], id)
			}
			gd.cell = append(gd.cell, idx)
		}
		gd.loc = append(gd.loc, len(gd.cell))
	}
	return skipGmshSection(scanner, "$EndElements")
}

func skipGmshSection(scanner *bufio.Scanner, endMarker string) error {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == endMarker {
			return nil
		}
	}
	return fmt.Errorf("missing %s", endMarker)
}

func orientCounterClockwise(nodes *mat.Dense, cell, loc []int) {
	for k := 0; k+1 < len(loc); k++ {
		verts := cell[loc[k]:loc[k+1]]
		var a float64
		for i := range verts {
			j := (i + 1) % len(verts)
			a += nodes.At(verts[i], 0)*nodes.At(verts[j], 1) - nodes.At(verts[j], 0)*nodes.At(verts[i], 1)
		}
		if a < 0 {
			for i, j := 0, len(verts)-1; i < j; i, j = i+1, j-1 {
				verts[i], verts[j] = verts[j], verts[i]
			}
		}
	}
}
