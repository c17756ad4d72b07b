package mctal

import (
	"fmt"
	"iter"
)

// Indexer converts between eight-axis bin coordinates and flat offsets
// into a row-major value array with the T axis varying fastest, and
// iterates flat offsets with a caller-chosen axis nesting order.
//
// An Indexer holds no tally data: it can address any array flattened over
// eight labeled sizes, with absent axes mapped to size 1. All methods are
// read-only, so one Indexer may be shared by concurrent iterations.
type Indexer struct {
	sizes   [NumAxes]int
	strides [NumAxes]int
}

// NewIndexer builds an Indexer for the given normalized axis sizes in
// canonical order. Every size must be at least 1.
func NewIndexer(sizes [NumAxes]int) (*Indexer, error) {
	ix := &Indexer{sizes: sizes}
	stride := 1
	for i := NumAxes - 1; i >= 0; i-- {
		if sizes[i] < 1 {
			return nil, fmt.Errorf("%w: axis %s size %d", ErrIndexRange, AxisKind(i), sizes[i])
		}
		ix.strides[i] = stride
		stride *= sizes[i]
	}
	return ix, nil
}

// Size returns the size of the given axis.
func (ix *Indexer) Size(k AxisKind) int {
	return ix.sizes[k]
}

// Sizes returns the eight axis sizes in canonical order.
func (ix *Indexer) Sizes() [NumAxes]int {
	return ix.sizes
}

// Stride returns the flat-offset stride of the given axis.
func (ix *Indexer) Stride(k AxisKind) int {
	return ix.strides[k]
}

// NumElements returns the product of the axis sizes: the length of the
// flat array the Indexer addresses.
func (ix *Indexer) NumElements() int {
	n := 1
	for _, s := range ix.sizes {
		n *= s
	}
	return n
}

// Offset converts a full eight-axis coordinate to its flat offset.
func (ix *Indexer) Offset(coord [NumAxes]int) (int, error) {
	off := 0
	for i := NumAxes - 1; i >= 0; i-- {
		if coord[i] < 0 || coord[i] >= ix.sizes[i] {
			return 0, fmt.Errorf("%w: index %d for axis %s (size %d)",
				ErrIndexRange, coord[i], AxisKind(i), ix.sizes[i])
		}
		off += coord[i] * ix.strides[i]
	}
	return off, nil
}

// Coord converts a flat offset back to its eight-axis coordinate.
// It is the exact inverse of Offset.
func (ix *Indexer) Coord(offset int) ([NumAxes]int, error) {
	var coord [NumAxes]int
	if offset < 0 || offset >= ix.NumElements() {
		return coord, fmt.Errorf("%w: offset %d (of %d)", ErrIndexRange, offset, ix.NumElements())
	}
	for i := 0; i < NumAxes; i++ {
		coord[i] = offset / ix.strides[i]
		offset %= ix.strides[i]
	}
	return coord, nil
}

// loopPlan is a validated iteration request: the free axes in nesting
// order plus the base offset contributed by the fixed axes.
type loopPlan struct {
	ix    *Indexer
	free  []AxisKind
	base  int
	fixed [NumAxes]int // indices of the fixed axes; zero elsewhere
}

// plan validates that free and fixed together cover the eight axes exactly
// once and that every fixed index is in range. Validation errors are
// reported here, before any element is produced.
func (ix *Indexer) plan(free []AxisKind, fixed map[AxisKind]int) (*loopPlan, error) {
	var seen [NumAxes]bool
	p := &loopPlan{ix: ix, free: make([]AxisKind, len(free))}
	copy(p.free, free)
	for _, k := range p.free {
		if k >= NumAxes {
			return nil, fmt.Errorf("%w: invalid free axis %s", ErrAxisSet, k)
		}
		if seen[k] {
			return nil, fmt.Errorf("%w: axis %s listed twice", ErrAxisSet, k)
		}
		seen[k] = true
	}
	for k, v := range fixed {
		if k >= NumAxes {
			return nil, fmt.Errorf("%w: invalid fixed axis %s", ErrAxisSet, k)
		}
		if seen[k] {
			return nil, fmt.Errorf("%w: axis %s is both free and fixed", ErrAxisSet, k)
		}
		seen[k] = true
		if v < 0 || v >= ix.sizes[k] {
			return nil, fmt.Errorf("%w: fixed index %d for axis %s (size %d)",
				ErrIndexRange, v, k, ix.sizes[k])
		}
		p.fixed[k] = v
		p.base += v * ix.strides[k]
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("%w: axis %s is neither free nor fixed", ErrAxisSet, AxisKind(i))
		}
	}
	return p, nil
}

// walk runs the free-axis odometer, calling fn with the current free
// indices and flat offset. The first free axis varies slowest, the last
// fastest. With no free axes the single fixed point is visited once.
func (p *loopPlan) walk(fn func(idx []int, off int) bool) {
	idx := make([]int, len(p.free))
	for {
		off := p.base
		for i, k := range p.free {
			off += idx[i] * p.ix.strides[k]
		}
		if !fn(idx, off) {
			return
		}
		i := len(p.free) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < p.ix.sizes[p.free[i]] {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return
		}
	}
}

// Offsets returns a lazy sequence of flat offsets visiting every
// combination of the free axes while the remaining axes stay fixed.
// The order of free chooses the nesting order: free[0] varies slowest,
// the last entry fastest. Re-ranging the sequence restarts it, and it is
// safe to stop early.
func (ix *Indexer) Offsets(free []AxisKind, fixed map[AxisKind]int) (iter.Seq[int], error) {
	p, err := ix.plan(free, fixed)
	if err != nil {
		return nil, err
	}
	return func(yield func(int) bool) {
		p.walk(func(_ []int, off int) bool {
			return yield(off)
		})
	}, nil
}

// Coords is like Offsets but yields the full eight-axis coordinate in
// canonical order, with fixed axes filled from fixed.
func (ix *Indexer) Coords(free []AxisKind, fixed map[AxisKind]int) (iter.Seq[[NumAxes]int], error) {
	p, err := ix.plan(free, fixed)
	if err != nil {
		return nil, err
	}
	return func(yield func([NumAxes]int) bool) {
		coord := p.fixed
		p.walk(func(idx []int, _ int) bool {
			for i, k := range p.free {
				coord[k] = idx[i]
			}
			return yield(coord)
		})
	}, nil
}

// FreeCoords is like Coords but yields only the free axes, as a map from
// axis kind to the current index.
func (ix *Indexer) FreeCoords(free []AxisKind, fixed map[AxisKind]int) (iter.Seq[map[AxisKind]int], error) {
	p, err := ix.plan(free, fixed)
	if err != nil {
		return nil, err
	}
	return func(yield func(map[AxisKind]int) bool) {
		p.walk(func(idx []int, _ int) bool {
			m := make(map[AxisKind]int, len(p.free))
			for i, k := range p.free {
				m[k] = idx[i]
			}
			return yield(m)
		})
	}, nil
}

// Items yields (coordinate, flat offset) pairs, combining Coords and
// Offsets in one pass.
func (ix *Indexer) Items(free []AxisKind, fixed map[AxisKind]int) (iter.Seq2[[NumAxes]int, int], error) {
	p, err := ix.plan(free, fixed)
	if err != nil {
		return nil, err
	}
	return func(yield func([NumAxes]int, int) bool) {
		coord := p.fixed
		p.walk(func(idx []int, off int) bool {
			for i, k := range p.free {
				coord[k] = idx[i]
			}
			return yield(coord, off)
		})
	}, nil
}
