package mctal

import (
	"errors"
	"testing"
)

// refOffset is an independent row-major flattening with T varying fastest,
// used to cross-check the Indexer's stride arithmetic.
func refOffset(sizes, coord [NumAxes]int) int {
	off := 0
	for i := 0; i < NumAxes; i++ {
		off = off*sizes[i] + coord[i]
	}
	return off
}

func allFixed(ix *Indexer) map[AxisKind]int {
	fixed := make(map[AxisKind]int)
	for _, k := range AxisKinds() {
		fixed[k] = 0
	}
	return fixed
}

func TestNewIndexerRejectsBadSizes(t *testing.T) {
	sizes := [NumAxes]int{2, 1, 1, 1, 1, 1, 3, 1}
	if _, err := NewIndexer(sizes); err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}

	sizes[3] = 0
	if _, err := NewIndexer(sizes); !errors.Is(err, ErrIndexRange) {
		t.Errorf("expected ErrIndexRange for zero size, got %v", err)
	}
}

func TestIndexerStrides(t *testing.T) {
	sizes := [NumAxes]int{2, 1, 3, 1, 4, 1, 2, 5}
	ix, err := NewIndexer(sizes)
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}

	// T innermost: stride 1, each earlier axis the product of the later sizes.
	want := [NumAxes]int{120, 120, 40, 40, 10, 10, 5, 1}
	for _, k := range AxisKinds() {
		if got := ix.Stride(k); got != want[k] {
			t.Errorf("stride %s: got %d, want %d", k, got, want[k])
		}
	}

	if ix.NumElements() != 240 {
		t.Errorf("NumElements: got %d, want 240", ix.NumElements())
	}
}

func TestOffsetMatchesReference(t *testing.T) {
	sizes := [NumAxes]int{2, 1, 3, 1, 4, 1, 2, 5}
	ix, err := NewIndexer(sizes)
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}

	// Every coordinate in the full cross-product, all eight axes.
	var coord [NumAxes]int
	var walk func(axis int)
	walk = func(axis int) {
		if axis == NumAxes {
			got, err := ix.Offset(coord)
			if err != nil {
				t.Fatalf("Offset(%v) failed: %v", coord, err)
			}
			if want := refOffset(sizes, coord); got != want {
				t.Fatalf("Offset(%v): got %d, want %d", coord, got, want)
			}
			back, err := ix.Coord(got)
			if err != nil {
				t.Fatalf("Coord(%d) failed: %v", got, err)
			}
			if back != coord {
				t.Fatalf("Coord(%d): got %v, want %v", got, back, coord)
			}
			return
		}
		for i := 0; i < sizes[axis]; i++ {
			coord[axis] = i
			walk(axis + 1)
		}
		coord[axis] = 0
	}
	walk(0)
}

func TestOffsetRangeChecks(t *testing.T) {
	ix, err := NewIndexer([NumAxes]int{2, 1, 1, 1, 1, 1, 3, 1})
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}

	tests := []struct {
		name  string
		coord [NumAxes]int
	}{
		{"negative index", [NumAxes]int{-1, 0, 0, 0, 0, 0, 0, 0}},
		{"index at size", [NumAxes]int{2, 0, 0, 0, 0, 0, 0, 0}},
		{"size-1 axis exceeded", [NumAxes]int{0, 1, 0, 0, 0, 0, 0, 0}},
		{"inner axis exceeded", [NumAxes]int{0, 0, 0, 0, 0, 0, 3, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ix.Offset(tt.coord); !errors.Is(err, ErrIndexRange) {
				t.Errorf("expected ErrIndexRange, got %v", err)
			}
		})
	}

	if _, err := ix.Coord(-1); !errors.Is(err, ErrIndexRange) {
		t.Errorf("Coord(-1): expected ErrIndexRange, got %v", err)
	}
	if _, err := ix.Coord(6); !errors.Is(err, ErrIndexRange) {
		t.Errorf("Coord(6): expected ErrIndexRange, got %v", err)
	}
}

func TestOffsetsBijection(t *testing.T) {
	sizes := [NumAxes]int{2, 1, 3, 1, 2, 1, 2, 2}
	ix, err := NewIndexer(sizes)
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}

	orders := [][]AxisKind{
		{AxisF, AxisD, AxisU, AxisS, AxisM, AxisC, AxisE, AxisT},
		{AxisT, AxisE, AxisC, AxisM, AxisS, AxisU, AxisD, AxisF},
		{AxisU, AxisF, AxisT, AxisM, AxisE, AxisD, AxisS, AxisC},
	}
	for _, free := range orders {
		seq, err := ix.Offsets(free, nil)
		if err != nil {
			t.Fatalf("Offsets(%v) failed: %v", free, err)
		}
		seen := make(map[int]bool)
		n := 0
		for off := range seq {
			if off < 0 || off >= ix.NumElements() {
				t.Fatalf("order %v: offset %d outside [0, %d)", free, off, ix.NumElements())
			}
			if seen[off] {
				t.Fatalf("order %v: offset %d visited twice", free, off)
			}
			seen[off] = true
			n++
		}
		if n != ix.NumElements() {
			t.Errorf("order %v: visited %d offsets, want %d", free, n, ix.NumElements())
		}
	}
}

func TestOffsetsNestingOrder(t *testing.T) {
	// F=2, E=3, everything else 1. With free order [E, F] the F index
	// must vary fastest even though F is the outermost canonical axis.
	sizes := [NumAxes]int{2, 1, 1, 1, 1, 1, 3, 1}
	ix, err := NewIndexer(sizes)
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}

	fixed := map[AxisKind]int{AxisD: 0, AxisU: 0, AxisS: 0, AxisM: 0, AxisC: 0, AxisT: 0}
	seq, err := ix.Offsets([]AxisKind{AxisE, AxisF}, fixed)
	if err != nil {
		t.Fatalf("Offsets failed: %v", err)
	}

	var got []int
	for off := range seq {
		got = append(got, off)
	}
	// Flat layout is off = f*3 + e.
	want := []int{0, 3, 1, 4, 2, 5}
	if len(got) != len(want) {
		t.Fatalf("got %d offsets, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("offset %d: got %d, want %d (sequence %v)", i, got[i], want[i], got)
		}
	}
}

func TestOffsetsRestartAndAbandon(t *testing.T) {
	ix, err := NewIndexer([NumAxes]int{2, 1, 1, 1, 1, 1, 3, 1})
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}
	seq, err := ix.Offsets([]AxisKind{AxisF, AxisE}, map[AxisKind]int{
		AxisD: 0, AxisU: 0, AxisS: 0, AxisM: 0, AxisC: 0, AxisT: 0,
	})
	if err != nil {
		t.Fatalf("Offsets failed: %v", err)
	}

	// Abandon after two elements.
	var first []int
	for off := range seq {
		first = append(first, off)
		if len(first) == 2 {
			break
		}
	}
	if len(first) != 2 || first[0] != 0 || first[1] != 1 {
		t.Fatalf("partial iteration: got %v, want [0 1]", first)
	}

	// A fresh range restarts from the beginning.
	var again []int
	for off := range seq {
		again = append(again, off)
	}
	if len(again) != 6 || again[0] != 0 {
		t.Errorf("restarted iteration: got %v, want 6 offsets from 0", again)
	}
}

func TestIterationValidation(t *testing.T) {
	ix, err := NewIndexer([NumAxes]int{2, 1, 1, 1, 1, 1, 3, 1})
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}

	full := allFixed(ix)

	tests := []struct {
		name  string
		free  []AxisKind
		fixed map[AxisKind]int
		want  error
	}{
		{
			name: "axis omitted",
			free: []AxisKind{AxisF},
			fixed: map[AxisKind]int{
				AxisD: 0, AxisU: 0, AxisS: 0, AxisM: 0, AxisC: 0, AxisT: 0,
			},
			want: ErrAxisSet,
		},
		{
			name:  "axis both free and fixed",
			free:  []AxisKind{AxisF, AxisE},
			fixed: full,
			want:  ErrAxisSet,
		},
		{
			name: "axis duplicated in free",
			free: []AxisKind{AxisF, AxisF},
			fixed: map[AxisKind]int{
				AxisD: 0, AxisU: 0, AxisS: 0, AxisM: 0, AxisC: 0, AxisE: 0, AxisT: 0,
			},
			want: ErrAxisSet,
		},
		{
			name: "fixed index out of bounds",
			free: []AxisKind{AxisF},
			fixed: map[AxisKind]int{
				AxisD: 0, AxisU: 0, AxisS: 0, AxisM: 0, AxisC: 0, AxisE: 3, AxisT: 0,
			},
			want: ErrIndexRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := ix.Offsets(tt.free, tt.fixed)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if seq != nil {
				t.Error("expected nil sequence on validation failure")
			}
		})
	}
}

func TestNoFreeAxes(t *testing.T) {
	ix, err := NewIndexer([NumAxes]int{2, 1, 1, 1, 1, 1, 3, 1})
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}
	fixed := allFixed(ix)
	fixed[AxisF] = 1
	fixed[AxisE] = 2

	seq, err := ix.Offsets(nil, fixed)
	if err != nil {
		t.Fatalf("Offsets failed: %v", err)
	}
	var got []int
	for off := range seq {
		got = append(got, off)
	}
	if len(got) != 1 || got[0] != 5 {
		t.Errorf("expected single offset 5, got %v", got)
	}
}

func TestCoordsAndItems(t *testing.T) {
	ix, err := NewIndexer([NumAxes]int{2, 1, 1, 1, 1, 1, 3, 1})
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}
	fixed := map[AxisKind]int{AxisD: 0, AxisU: 0, AxisS: 0, AxisM: 0, AxisC: 0, AxisT: 0}

	items, err := ix.Items([]AxisKind{AxisF, AxisE}, fixed)
	if err != nil {
		t.Fatalf("Items failed: %v", err)
	}
	n := 0
	for coord, off := range items {
		want, err := ix.Offset(coord)
		if err != nil {
			t.Fatalf("Offset(%v) failed: %v", coord, err)
		}
		if off != want {
			t.Errorf("coord %v: item offset %d, Offset says %d", coord, off, want)
		}
		n++
	}
	if n != 6 {
		t.Errorf("visited %d items, want 6", n)
	}

	free, err := ix.FreeCoords([]AxisKind{AxisE, AxisF}, fixed)
	if err != nil {
		t.Fatalf("FreeCoords failed: %v", err)
	}
	var firstFree map[AxisKind]int
	for m := range free {
		firstFree = m
		break
	}
	if len(firstFree) != 2 {
		t.Fatalf("free coord has %d axes, want 2: %v", len(firstFree), firstFree)
	}
	if firstFree[AxisE] != 0 || firstFree[AxisF] != 0 {
		t.Errorf("first free coord: got %v, want E=0 F=0", firstFree)
	}
}
