package mctal

import (
	"fmt"
	"regexp"
)

// AxisKind identifies one of the eight MCTAL bin dimensions, in the
// canonical order F, D, U, S, M, C, E, T.
type AxisKind uint8

const (
	AxisF AxisKind = iota // cell/surface/detector
	AxisD                 // direct/flagged
	AxisU                 // user
	AxisS                 // segment
	AxisM                 // multiplier
	AxisC                 // cosine
	AxisE                 // energy
	AxisT                 // time
)

// NumAxes is the number of bin dimensions in every tally.
const NumAxes = 8

// AxisKinds returns the eight kinds in canonical order.
func AxisKinds() [NumAxes]AxisKind {
	return [NumAxes]AxisKind{AxisF, AxisD, AxisU, AxisS, AxisM, AxisC, AxisE, AxisT}
}

var axisLetters = [NumAxes]byte{'F', 'D', 'U', 'S', 'M', 'C', 'E', 'T'}

var axisDescriptions = [NumAxes]string{
	"cell/surf/det",
	"direct/flagged",
	"user",
	"segment",
	"multiplier",
	"cosine",
	"energy",
	"time",
}

// String returns the axis letter ("F" .. "T").
func (k AxisKind) String() string {
	if k >= NumAxes {
		return fmt.Sprintf("AxisKind(%d)", uint8(k))
	}
	return string(axisLetters[k])
}

// Description returns the axis dimension's description.
func (k AxisKind) Description() string {
	if k >= NumAxes {
		return ""
	}
	return axisDescriptions[k]
}

// HasPayload reports whether declarations for this axis kind carry explicit
// boundary values in the MCTAL file. Only F, C, E and T do.
func (k AxisKind) HasPayload() bool {
	switch k {
	case AxisF, AxisC, AxisE, AxisT:
		return true
	}
	return false
}

// ParseAxisKind maps an axis letter to its kind. Both cases are accepted.
func ParseAxisKind(letter byte) (AxisKind, bool) {
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	for i, l := range axisLetters {
		if l == letter {
			return AxisKind(i), true
		}
	}
	return 0, false
}

// Axis qualifier characters read from a bin declaration line.
const (
	QualNone         byte = 0   // plain bin counts
	QualTotal        byte = 't' // includes a totals bin; one fewer boundary follows
	QualUnnormalized byte = 'u' // cumulative/unnormalized bins
)

// Axis is one bin dimension of a tally.
type Axis struct {
	Kind      AxisKind
	Declared  int       // size as written in the file; 0 means the axis is absent
	Qualifier byte      // QualNone, QualTotal or QualUnnormalized
	Bounds    []float64 // boundary/label values for payload-bearing kinds
}

// Size returns the logical size of the axis: the declared size with an
// absent axis (declared 0) normalized to 1.
func (a Axis) Size() int {
	if a.Declared < 1 {
		return 1
	}
	return a.Declared
}

// payloadLen returns how many boundary values follow the declaration.
// A 't' qualifier means the declared count includes a totals bin, which
// has no boundary of its own.
func (a Axis) payloadLen() int {
	if a.Qualifier == QualTotal {
		return a.Declared - 1
	}
	return a.Declared
}

// binDeclRe matches an axis declaration line: the axis letter, an optional
// one-character qualifier, then the declared bin count.
var binDeclRe = regexp.MustCompile(`^([fdusmcetFDUSMCET])([tuTU ]?)\s+(\d+)`)

// parseAxisDecl decodes a bin declaration line. ok is false when the line
// is not an axis declaration at all.
func parseAxisDecl(line string) (kind AxisKind, qual byte, declared int, ok bool) {
	m := binDeclRe.FindStringSubmatch(line)
	if m == nil {
		return 0, 0, 0, false
	}
	kind, ok = ParseAxisKind(m[1][0])
	if !ok {
		return 0, 0, 0, false
	}
	if m[2] != "" && m[2] != " " {
		qual = m[2][0]
		if qual >= 'A' && qual <= 'Z' {
			qual += 'a' - 'A'
		}
	}
	// The count matched \d+, so this cannot fail.
	for _, c := range m[3] {
		declared = declared*10 + int(c-'0')
	}
	return kind, qual, declared, true
}
