package utils

import (
	"fmt"
)

type Index []int

func NewIndex(N int) (I Index) {
	return make(Index, N)
}

func NewRange(rmin, rmax int) (r Index) {
	var (
		size = rmax - rmin + 1 // INCLUSIVE RANGE
	)
	if size < 0 {
		size = 0
	}
	r = make(Index, size)
	for i := range r {
		r[i] = i + rmin
	}
	return
}

func (I Index) Scale(val int) (r Index) {
	r = make(Index, len(I))
	for i, ival := range I {
		r[i] = val * ival
	}
	return r
}

func (I Index) Reverse() (r Index) {
	var (
		n = len(I)
	)
	r = make(Index, n)
	for i, val := range I {
		r[n-1-i] = val
	}
	return
}

func (I Index) Copy() (r Index) {
	r = make(Index, len(I))
	copy(r, I)
	return
}

// CheckBounds verifies that every entry lies in [0, max).
func (I Index) CheckBounds(max int) (err error) {
	for i, val := range I {
		if val < 0 || val > max-1 {
			err = fmt.Errorf("index[%d] = %d outside [0,%d)", i, val, max)
			return
		}
	}
	return
}

// Accumulate returns the exclusive prefix sum of counts, with one more entry
// than counts. Entry k is the offset of item k in a flat buffer, the last
// entry is the buffer length.
func Accumulate(counts []int) (location Index) {
	location = make(Index, len(counts)+1)
	for i, c := range counts {
		location[i+1] = location[i] + c
	}
	return
}

// CheckOffsets verifies that location is a valid offset table over a flat
// buffer of length total: it starts at 0, ends at total and every segment
// holds at least minCount entries.
func CheckOffsets(location Index, total, minCount int) (err error) {
	var (
		n = len(location) - 1
	)
	if n < 0 || location[0] != 0 || location[n] != total {
		return fmt.Errorf("offsets %v must start at 0 and end at %d", []int(location), total)
	}
	for k := 0; k < n; k++ {
		if count := location[k+1] - location[k]; count < minCount {
			return fmt.Errorf("segment %d holds %d entries, need at least %d", k, count, minCount)
		}
	}
	return
}

// Split cuts a flat buffer into the segments delimited by location, as
// produced by Accumulate. Segments share storage with I.
func (I Index) Split(location Index) (segs []Index, err error) {
	if err = CheckOffsets(location, len(I), 0); err != nil {
		return
	}
	segs = make([]Index, len(location)-1)
	for k := range segs {
		segs[k] = I[location[k]:location[k+1]:location[k+1]]
	}
	return
}
