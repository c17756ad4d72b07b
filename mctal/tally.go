package mctal

import (
	"fmt"
	"strings"

	"github.com/robert-malhotra/go-mctal/particle"
)

// DetectorType identifies the detector kind of a tally.
type DetectorType int

const (
	DetectorNone  DetectorType = 0
	DetectorPoint DetectorType = 1
	DetectorRing  DetectorType = 2
	DetectorFIP   DetectorType = 3 // pinhole radiograph
	DetectorFIR   DetectorType = 4 // transmitted image radiograph, rectangular
	DetectorFIC   DetectorType = 5 // transmitted image radiograph, cylindrical
)

var detectorNames = map[DetectorType]string{
	DetectorNone:  "none",
	DetectorPoint: "point",
	DetectorRing:  "ring",
	DetectorFIP:   "pinhole radiograph (FIP)",
	DetectorFIR:   "transmitted image radiograph (rectangular, FIR)",
	DetectorFIC:   "transmitted image radiograph (cylindrical, FIC)",
}

func (d DetectorType) String() string {
	if s, ok := detectorNames[d]; ok {
		return s
	}
	return fmt.Sprintf("DetectorType(%d)", int(d))
}

// ParseDetectorType converts the tally-head detector code.
func ParseDetectorType(code int) (DetectorType, error) {
	d := DetectorType(code)
	if _, ok := detectorNames[d]; !ok {
		return 0, fmt.Errorf("unknown detector type %d", code)
	}
	return d, nil
}

// ModifierType identifies the tally modifier ("*" energy-weighted,
// "+" collision-weighted, or none).
type ModifierType int

const (
	ModifierNone     ModifierType = 0
	ModifierAsterisk ModifierType = 1
	ModifierPlus     ModifierType = 2
)

var modifierNames = map[ModifierType]string{
	ModifierNone:     "none",
	ModifierAsterisk: "*",
	ModifierPlus:     "+",
}

func (m ModifierType) String() string {
	if s, ok := modifierNames[m]; ok {
		return s
	}
	return fmt.Sprintf("ModifierType(%d)", int(m))
}

// ParseModifierType converts the tally-head modifier code.
func ParseModifierType(code int) (ModifierType, error) {
	m := ModifierType(code)
	if _, ok := modifierNames[m]; !ok {
		return 0, fmt.Errorf("unknown tally modifier type %d", code)
	}
	return m, nil
}

// Entry is one flattened tally result: the tallied value and its relative
// uncertainty.
type Entry struct {
	Value  float64
	RelErr float64
}

// TFCRow is one row of the tally fluctuation chart: running statistics
// recorded at a source-particle count.
type TFCRow struct {
	NPS    int64
	Mean   float64
	RelErr float64
	FOM    float64
}

// TFC is a tally's fluctuation chart: a reference coordinate into the
// tally's bins plus the running statistics recorded there.
type TFC struct {
	Coord [NumAxes]int // zero-based bin coordinate the chart tracks
	Rows  []TFCRow
}

// Tally is one parsed MCTAL tally: its metadata, the eight bin dimensions
// in canonical order, the flattened results and the fluctuation chart.
// A Tally is fully populated during parsing and immutable afterward.
type Tally struct {
	Number    int
	Particles []particle.Type
	Detector  DetectorType
	Modifier  ModifierType
	Comments  []string // FC comment card lines, indentation stripped

	// Axes holds the eight bin dimensions indexed by AxisKind, so
	// Axes[AxisE] is the energy axis.
	Axes [NumAxes]Axis

	// Values is the flattened results in row-major order with F varying
	// slowest and T fastest; its length equals TotalVals().
	Values []Entry

	TFC TFC

	ix *Indexer // cached at finalization; shares stride math with Value
}

// Size returns the normalized size of the given axis.
func (t *Tally) Size(k AxisKind) int {
	return t.Axes[k].Size()
}

// Sizes returns the eight normalized axis sizes in canonical order.
func (t *Tally) Sizes() [NumAxes]int {
	var s [NumAxes]int
	for i := range t.Axes {
		s[i] = t.Axes[i].Size()
	}
	return s
}

// TotalVals returns the product of the eight normalized axis sizes, which
// equals the number of flattened entries once parsing completes.
func (t *Tally) TotalVals() int {
	n := 1
	for i := range t.Axes {
		n *= t.Axes[i].Size()
	}
	return n
}

// Indexer returns the strided indexer for this tally's axis sizes. The
// same indexer backs Value, so both agree on the flattening order by
// construction.
func (t *Tally) Indexer() *Indexer {
	if t.ix == nil {
		// Normalized sizes are always >= 1, so this cannot fail.
		ix, err := NewIndexer(t.Sizes())
		if err != nil {
			panic(fmt.Sprintf("mctal: tally %d indexer: %v", t.Number, err))
		}
		t.ix = ix
	}
	return t.ix
}

// Value returns the entry at the given eight-axis bin coordinate.
// Each index must lie in [0, Size(kind)).
func (t *Tally) Value(coord [NumAxes]int) (Entry, error) {
	if len(t.Values) == 0 {
		return Entry{}, fmt.Errorf("tally %d has no values", t.Number)
	}
	off, err := t.Indexer().Offset(coord)
	if err != nil {
		return Entry{}, err
	}
	return t.Values[off], nil
}

func (t *Tally) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tally %d:\n", t.Number)
	syms := make([]string, len(t.Particles))
	for i, p := range t.Particles {
		syms[i] = p.Name
	}
	fmt.Fprintf(&sb, "  Particles: %s\n", strings.Join(syms, ", "))
	fmt.Fprintf(&sb, "  Detector Type: %s\n", t.Detector)
	fmt.Fprintf(&sb, "  Modifier Type: %s\n", t.Modifier)
	sb.WriteString("  Bins:")
	for _, a := range t.Axes {
		fmt.Fprintf(&sb, " %s=%d", a.Kind, a.Declared)
		if a.Qualifier != QualNone {
			fmt.Fprintf(&sb, "%c", a.Qualifier)
		}
	}
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "  FC Lines: %d\n", len(t.Comments))
	fmt.Fprintf(&sb, "  VALS Entries: %d\n", len(t.Values))
	fmt.Fprintf(&sb, "  TFC Entries: %d\n", len(t.TFC.Rows))
	fmt.Fprintf(&sb, "  TFC Bin: %v", t.TFC.Coord)
	return sb.String()
}
