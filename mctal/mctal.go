// Package mctal reads MCNP MCTAL tally files into an in-memory model.
//
// An MCTAL file is the line-oriented text export MCNP writes for every
// tally of a run: run metadata, then one block per tally with its eight
// bin dimensions (cell/surface, direct, user, segment, multiplier,
// cosine, energy, time), the flattened results and a fluctuation chart.
// [Parse] consumes the file's lines and returns an [Overview]; each
// [Tally] addresses its flattened values through the row-major,
// T-innermost convention implemented by [Indexer], which callers can also
// use directly to walk a tally in any axis nesting order:
//
//	seq, err := tal.Indexer().Offsets([]mctal.AxisKind{mctal.AxisF, mctal.AxisE},
//		map[mctal.AxisKind]int{mctal.AxisD: 0, mctal.AxisU: 0, mctal.AxisS: 0,
//			mctal.AxisM: 0, mctal.AxisC: 0, mctal.AxisT: 0})
//	for off := range seq {
//		fmt.Println(tal.Values[off].Value)
//	}
//
// The package performs no file I/O: callers supply the decoded lines and
// a particle lookup (particle.Default covers MCNP6).
package mctal

import (
	"fmt"

	"github.com/robert-malhotra/go-mctal/particle"
)

// ParticleLookup resolves MCNP particle type indices (IPT numbers) during
// tally decoding. particle.Table implements it.
type ParticleLookup interface {
	// ByIPT returns the particle with the given IPT number.
	ByIPT(ipt int) (particle.Type, error)

	// Len returns the number of known particle types, which is the
	// token count of an explicit particle-flag line.
	Len() int
}

// Overview is the parse result for one MCTAL file: the run metadata and
// the completed tallies keyed by tally number. It is read-only once Parse
// returns.
type Overview struct {
	Case     string // caller-assigned case label; not read from the file
	CodeName string
	Version  string
	ProbID   string // problem id date and time
	Knod     int    // dump order number
	NPS      int64  // source particles run
	RNR      int64  // random numbers generated

	Title string

	// TallyNumbers lists the tally numbers the header announced, in file
	// order. Tallies holds the blocks actually parsed.
	TallyNumbers []int
	Tallies      map[int]*Tally
}

// Tally returns the tally with the given number, if present.
func (o *Overview) Tally(num int) (*Tally, bool) {
	t, ok := o.Tallies[num]
	return t, ok
}

// NumTallies returns the number of parsed tallies.
func (o *Overview) NumTallies() int {
	return len(o.Tallies)
}

func (o *Overview) String() string {
	return fmt.Sprintf(
		"MCTAL Overview:\nCase: %s\nCode Name: %s\nVersion: %s\nProblem ID: %s\n"+
			"Knod: %d\nNPS: %.3e\nRNR: %d\nTitle: %s\nTally Numbers: %v\nNumber of Tallies: %d",
		o.Case, o.CodeName, o.Version, o.ProbID,
		o.Knod, float64(o.NPS), o.RNR, o.Title, o.TallyNumbers, len(o.Tallies))
}
