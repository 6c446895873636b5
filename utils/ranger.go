package utils

import (
	"fmt"
	"strconv"
	"strings"
)

type selectorKind uint8

const (
	selectAll selectorKind = iota
	selectRange
	selectFrom
	selectLast
	selectList
)

// Selector picks a subset of the entities of one kind: all of them, a
// contiguous half open range, or an explicit list.
type Selector struct {
	kind   selectorKind
	i1, i2 int
	list   Index
}

func All() Selector {
	return Selector{kind: selectAll}
}

// Range selects [i1, i2). Negative bounds are out of range.
func Range(i1, i2 int) Selector {
	return Selector{kind: selectRange, i1: i1, i2: i2}
}

// From selects i1 through the last entity.
func From(i1 int) Selector {
	return Selector{kind: selectFrom, i1: i1}
}

// Last selects the last entity.
func Last() Selector {
	return Selector{kind: selectLast}
}

func List(indices ...int) Selector {
	return Selector{kind: selectList, list: Index(indices).Copy()}
}

// ParseSelector converts the phrases used on the command line and in input
// files into a Selector:
//
//	":"   = all entities
//	"end" = the last entity
//	"N"   = entity N
//	N     = entity N
//	"2:N" = entities 2 through N-1
//	":N"  = entities 0 through N-1
//	"N:"  = entities N through the end
//	[]int = explicit list
func ParseSelector(dimI interface{}) (s Selector, err error) {
	switch dim := dimI.(type) {
	case string:
		dim = strings.TrimSpace(dim)
		switch dim {
		case ":", "":
			s = All()
		case "end":
			s = Last()
		default:
			var (
				i1, i2 int
				toEnd  bool
			)
			if i1, i2, toEnd, err = parseRange(dim); err != nil {
				return
			}
			if toEnd {
				s = From(i1)
			} else {
				s = Range(i1, i2)
			}
		}
	case int:
		s = Range(dim, dim+1)
	case []int:
		s = List(dim...)
	case Index:
		s = List(dim...)
	default:
		err = fmt.Errorf("unable to parse selector of type %T", dimI)
	}
	return
}

func parseRange(dim string) (i1, i2 int, toEnd bool, err error) {
	var (
		splits = strings.Split(dim, ":")
		parse  = func(field string) (val int, err error) {
			if val, err = strconv.Atoi(field); err != nil {
				return 0, fmt.Errorf("malformed range %q: %v", dim, err)
			}
			if val < 0 {
				return 0, fmt.Errorf("%w: negative bound in %q", ErrSelectionOutOfRange, dim)
			}
			return
		}
	)
	if len(splits) > 2 {
		err = fmt.Errorf("malformed range %q", dim)
		return
	}
	if len(splits[0]) != 0 {
		if i1, err = parse(splits[0]); err != nil {
			return
		}
	}
	if len(splits) == 1 {
		i2 = i1 + 1
		return
	}
	if len(splits[1]) == 0 {
		toEnd = true
		return
	}
	if i2, err = parse(splits[1]); err != nil {
		return
	}
	if i2 == i1 {
		i2 = i1 + 1
	}
	return
}

// IsAll reports whether the selector covers every entity.
func (s Selector) IsAll() bool {
	return s.kind == selectAll
}

// Indices resolves the selector against max entities.
func (s Selector) Indices(max int) (I Index, err error) {
	switch s.kind {
	case selectAll:
		I = NewRange(0, max-1)
	case selectRange, selectFrom:
		i1, i2 := s.i1, s.i2
		if s.kind == selectFrom {
			i2 = max
		}
		if i1 < 0 || i2 < 0 || i2 > max || i1 > i2 {
			err = fmt.Errorf("%w: range %s over %d entities", ErrSelectionOutOfRange, s, max)
			return
		}
		I = NewRange(i1, i2-1)
	case selectLast:
		if max < 1 {
			err = fmt.Errorf("%w: no last entity among %d", ErrSelectionOutOfRange, max)
			return
		}
		I = Index{max - 1}
	case selectList:
		if err = s.list.CheckBounds(max); err != nil {
			err = fmt.Errorf("%w: %v", ErrSelectionOutOfRange, err)
			return
		}
		I = s.list.Copy()
	}
	return
}

func (s Selector) String() string {
	switch s.kind {
	case selectRange:
		return fmt.Sprintf("%d:%d", s.i1, s.i2)
	case selectFrom:
		return fmt.Sprintf("%d:", s.i1)
	case selectLast:
		return "end"
	case selectList:
		return fmt.Sprintf("%v", []int(s.list))
	default:
		return ":"
	}
}
