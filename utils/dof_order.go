package utils

import (
	"fmt"
	"strings"
)

// DOFOrder is the layout of vector valued degrees of freedom.
type DOFOrder uint8

const (
	// NodeMajor interleaves the vector components of each carrier:
	// DOF = GD*carrier + component.
	NodeMajor DOFOrder = iota
	// ComponentMajor lists all carriers of component 0, then component 1, ...:
	// DOF = component*NCarrier + carrier.
	ComponentMajor
)

func (o DOFOrder) String() string {
	switch o {
	case NodeMajor:
		return "node-major"
	case ComponentMajor:
		return "component-major"
	}
	return fmt.Sprintf("DOFOrder(%d)", uint8(o))
}

func (o DOFOrder) Valid() bool {
	return o == NodeMajor || o == ComponentMajor
}

var dofOrderNames = map[string]DOFOrder{
	"node-major":      NodeMajor,
	"vdims":           NodeMajor,
	"component-major": ComponentMajor,
	"sdofs":           ComponentMajor,
}

func ParseDOFOrder(label string) (o DOFOrder, err error) {
	var ok bool
	if o, ok = dofOrderNames[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("%w: unknown DOF order %q", ErrInvalidSpaceConfiguration, label)
	}
	return
}

// Global returns the DOF of component comp at carrier among nCarrier
// carriers with gd components each.
func (o DOFOrder) Global(carrier, comp, nCarrier, gd int) int {
	if o == ComponentMajor {
		return comp*nCarrier + carrier
	}
	return gd*carrier + comp
}

// Local returns the position of (carrier, comp) within a list of nLocal
// carriers expanded by Expand.
func (o DOFOrder) Local(carrier, comp, nLocal, gd int) int {
	return o.Global(carrier, comp, nLocal, gd)
}

// Expand turns scalar carriers into their vector DOFs, in this layout.
func (o DOFOrder) Expand(carriers Index, nCarrier, gd int) (dofs Index) {
	var (
		n = len(carriers)
	)
	dofs = NewIndex(gd * n)
	for i, s := range carriers {
		for c := 0; c < gd; c++ {
			dofs[o.Local(i, c, n, gd)] = o.Global(s, c, nCarrier, gd)
		}
	}
	return
}
