package mctal

import (
	"fmt"
	"strings"

	"github.com/robert-malhotra/go-mctal/internal/scan"
	"github.com/robert-malhotra/go-mctal/particle"
)

// parseState names what the parser expects from the next line.
type parseState int

const (
	stateRunInfo parseState = iota
	stateTitle
	stateNTal
	stateTallyNums
	stateTallyHead
	stateParticle
	stateComments
	stateBin
	stateBinData
	stateVals
	stateTFC
	stateKCode
)

var stateNames = [...]string{
	stateRunInfo:   "run info",
	stateTitle:     "title",
	stateNTal:      "ntal",
	stateTallyNums: "tally numbers",
	stateTallyHead: "tally head",
	stateParticle:  "particle flags",
	stateComments:  "fc comments",
	stateBin:       "bin declaration",
	stateBinData:   "bin data",
	stateVals:      "vals",
	stateTFC:       "tfc",
	stateKCode:     "kcode",
}

func (s parseState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("parseState(%d)", int(s))
}

// fcIndent is the leading whitespace that distinguishes a tally comment
// line from the first bin declaration.
const fcIndent = "     "

// parser is the MCTAL state machine. It holds at most one tally under
// construction; ownership moves into the Overview when the tally's
// fluctuation chart completes.
type parser struct {
	particles ParticleLookup
	ov        *Overview
	state     parseState
	line      int // 1-based number of the line being processed

	ntal int

	cur       *Tally
	nextAxis  AxisKind // canonical kind the next bin declaration must have
	axis      Axis     // axis whose payload is being accumulated
	expect    int      // target count for the current payload/vals block
	tfcHeader bool     // tfc header line seen for the current tally
	nTFC      int
	iTFC      int
}

// Parse reads the lines of one MCTAL file and returns its Overview.
// particles resolves particle type indices during tally decoding; nil
// selects particle.Default. Lines must be supplied exactly as written in
// the file: leading whitespace is structurally significant.
func Parse(lines []string, particles ParticleLookup) (*Overview, error) {
	if particles == nil {
		particles = particle.Default()
	}
	p := &parser{
		particles: particles,
		ov:        &Overview{Tallies: make(map[int]*Tally)},
		state:     stateRunInfo,
	}
	for i := 0; i < len(lines); {
		p.line = i + 1
		consumed, err := p.step(lines[i])
		if err != nil {
			return nil, err
		}
		if consumed {
			i++
		}
	}
	if err := p.finish(); err != nil {
		return nil, err
	}
	return p.ov, nil
}

// step processes one line in the current state. A false consumed return
// re-dispatches the same line after a state transition.
func (p *parser) step(line string) (consumed bool, err error) {
	switch p.state {
	case stateRunInfo:
		return true, p.readRunInfo(line)
	case stateTitle:
		p.ov.Title = strings.TrimSpace(line)
		p.state = stateNTal
		return true, nil
	case stateNTal:
		return true, p.readNTal(line)
	case stateTallyNums:
		return true, p.readTallyNums(line)
	case stateTallyHead:
		return true, p.readTallyHead(line)
	case stateParticle:
		return true, p.readParticleFlags(line)
	case stateComments:
		return p.readComment(line), nil
	case stateBin:
		return true, p.readBinDecl(line)
	case stateBinData:
		return true, p.readBinData(line)
	case stateVals:
		return true, p.readVals(line)
	case stateTFC:
		return true, p.readTFC(line)
	case stateKCode:
		// KCODE blocks are not implemented; their lines are consumed
		// without effect.
		return true, nil
	}
	return true, p.failf("%w: unhandled state", ErrMalformed)
}

// failf wraps a failure with the current line number and state.
func (p *parser) failf(format string, args ...any) error {
	return &ParseError{Line: p.line, State: p.state.String(), Err: fmt.Errorf(format, args...)}
}

// readRunInfo reads the seven-token run line:
//
//	mcnp6.mp   6     12/18/25 12:51:58     7        59999293     45587388933
func (p *parser) readRunInfo(line string) error {
	parts := scan.Fields(line)
	if len(parts) != 7 {
		return p.failf("%w: expected 7 run info tokens, got %d", ErrMalformed, len(parts))
	}
	knod, err := scan.Int(parts[4])
	if err != nil {
		return p.failf("%w: knod: %v", ErrMalformed, err)
	}
	nps, err := scan.Int64(parts[5])
	if err != nil {
		return p.failf("%w: nps: %v", ErrMalformed, err)
	}
	rnr, err := scan.Int64(parts[6])
	if err != nil {
		return p.failf("%w: rnr: %v", ErrMalformed, err)
	}
	p.ov.CodeName = parts[0]
	p.ov.Version = parts[1]
	p.ov.ProbID = parts[2] + " " + parts[3]
	p.ov.Knod = knod
	p.ov.NPS = nps
	p.ov.RNR = rnr
	p.state = stateTitle
	return nil
}

// readNTal reads the tally count line, with an optional perturbation
// count that is consumed but not used:
//
//	ntal     4
//	ntal     4  npert    2
func (p *parser) readNTal(line string) error {
	parts := scan.Fields(line)
	if (len(parts) != 2 && len(parts) != 4) || parts[0] != "ntal" {
		return p.failf("%w: expected \"ntal <n> [npert <m>]\"", ErrMalformed)
	}
	ntal, err := scan.Int(parts[1])
	if err != nil {
		return p.failf("%w: ntal: %v", ErrMalformed, err)
	}
	if len(parts) == 4 {
		if _, err := scan.Int(parts[3]); err != nil {
			return p.failf("%w: npert: %v", ErrMalformed, err)
		}
	}
	p.ntal = ntal
	if ntal == 0 {
		p.state = stateTallyHead
	} else {
		p.state = stateTallyNums
	}
	return nil
}

// readTallyNums accumulates tally numbers across lines until the count
// declared by ntal is reached.
func (p *parser) readTallyNums(line string) error {
	nums, err := scan.Ints(scan.Fields(line))
	if err != nil {
		return p.failf("%w: tally number: %v", ErrMalformed, err)
	}
	p.ov.TallyNumbers = append(p.ov.TallyNumbers, nums...)
	if len(p.ov.TallyNumbers) > p.ntal {
		return p.failf("%w: %d tally numbers for ntal %d",
			ErrCardinality, len(p.ov.TallyNumbers), p.ntal)
	}
	if len(p.ov.TallyNumbers) == p.ntal {
		p.state = stateTallyHead
	}
	return nil
}

// readTallyHead reads the five-token tally head line and starts a new
// tally:
//
//	tally    1                   -1    0    0
//
// A "kcode" marker switches to the unimplemented-KCODE state; anything
// else that is not a tally head is a structural error.
func (p *parser) readTallyHead(line string) error {
	parts := scan.Fields(line)
	if len(parts) == 0 {
		return nil // blank separator line
	}
	if parts[0] == "kcode" {
		p.state = stateKCode
		return nil
	}
	if parts[0] != "tally" {
		return p.failf("%w: expected tally head, got %q", ErrMalformed, parts[0])
	}
	if len(parts) != 5 {
		return p.failf("%w: expected 5 tally head tokens, got %d", ErrMalformed, len(parts))
	}
	num, err := scan.Int(parts[1])
	if err != nil {
		return p.failf("%w: tally number: %v", ErrMalformed, err)
	}
	mask, err := scan.Int(parts[2])
	if err != nil {
		return p.failf("%w: particle field: %v", ErrMalformed, err)
	}
	detCode, err := scan.Int(parts[3])
	if err != nil {
		return p.failf("%w: detector type: %v", ErrMalformed, err)
	}
	det, err := ParseDetectorType(detCode)
	if err != nil {
		return p.failf("%w: %v", ErrMalformed, err)
	}
	modCode, err := scan.Int(parts[4])
	if err != nil {
		return p.failf("%w: modifier type: %v", ErrMalformed, err)
	}
	mod, err := ParseModifierType(modCode)
	if err != nil {
		return p.failf("%w: %v", ErrMalformed, err)
	}

	p.cur = &Tally{Number: num, Detector: det, Modifier: mod}
	for i := range p.cur.Axes {
		p.cur.Axes[i].Kind = AxisKind(i)
	}
	p.nextAxis = AxisF
	p.tfcHeader = false

	// A positive particle field is a bitmask over the first three IPT
	// numbers (neutron, photon, electron); otherwise an explicit flag
	// line follows.
	if mask > 0 {
		for i := 0; i < 3; i++ {
			if mask>>i&1 == 1 {
				pt, err := p.particles.ByIPT(i + 1)
				if err != nil {
					return p.failf("tally %d: %w", num, err)
				}
				p.cur.Particles = append(p.cur.Particles, pt)
			}
		}
		p.state = stateComments
	} else {
		p.state = stateParticle
	}
	return nil
}

// readParticleFlags reads the explicit particle line: one flag token per
// known particle type, where a positive flag in position i selects IPT i+1.
func (p *parser) readParticleFlags(line string) error {
	parts := scan.Fields(line)
	if len(parts) != p.particles.Len() {
		return p.failf("%w: expected %d particle flags, got %d",
			ErrMalformed, p.particles.Len(), len(parts))
	}
	for i, tok := range parts {
		flag, err := scan.Int(tok)
		if err != nil {
			return p.failf("%w: particle flag: %v", ErrMalformed, err)
		}
		if flag <= 0 {
			continue
		}
		pt, err := p.particles.ByIPT(i + 1)
		if err != nil {
			return p.failf("tally %d: %w", p.cur.Number, err)
		}
		p.cur.Particles = append(p.cur.Particles, pt)
	}
	p.state = stateComments
	return nil
}

// readComment collects indented FC comment lines; the first non-indented
// line ends the block and is re-dispatched as a bin declaration.
func (p *parser) readComment(line string) (consumed bool) {
	if strings.HasPrefix(line, fcIndent) {
		p.cur.Comments = append(p.cur.Comments, strings.TrimSpace(line))
		return true
	}
	p.state = stateBin
	return false
}

// readBinDecl reads one axis declaration, which must arrive in canonical
// F..T order. Payload-bearing axes with a nonzero count switch to payload
// accumulation; reaching the T axis switches to the value block.
func (p *parser) readBinDecl(line string) error {
	kind, qual, declared, ok := parseAxisDecl(line)
	if !ok {
		return p.failf("%w: expected axis declaration", ErrMalformed)
	}
	if kind != p.nextAxis {
		return p.failf("%w: axis %s out of order, expected %s", ErrMalformed, kind, p.nextAxis)
	}
	p.nextAxis = kind + 1

	axis := Axis{Kind: kind, Declared: declared, Qualifier: qual}
	if declared != 0 && kind.HasPayload() && axis.payloadLen() > 0 {
		p.axis = axis
		p.expect = axis.payloadLen()
		p.state = stateBinData
		return nil
	}
	p.storeAxis(axis)
	return nil
}

// storeAxis records a completed axis on the current tally. Storing the T
// axis ends the bin section: the value block's pair count is now known.
func (p *parser) storeAxis(axis Axis) {
	p.cur.Axes[axis.Kind] = axis
	if axis.Kind == AxisT {
		p.expect = p.cur.TotalVals()
		p.state = stateVals
	} else {
		p.state = stateBin
	}
}

// readBinData accumulates an axis payload across lines until exactly the
// expected number of boundary values has been read.
func (p *parser) readBinData(line string) error {
	var err error
	p.axis.Bounds, err = scan.AppendFloats(p.axis.Bounds, scan.Fields(line))
	if err != nil {
		return p.failf("%w: axis %s: %v", ErrMalformed, p.axis.Kind, err)
	}
	if len(p.axis.Bounds) > p.expect {
		return p.failf("%w: %d boundary values for axis %s, expected %d",
			ErrCardinality, len(p.axis.Bounds), p.axis.Kind, p.expect)
	}
	if len(p.axis.Bounds) == p.expect {
		axis := p.axis
		p.axis = Axis{}
		p.storeAxis(axis)
	}
	return nil
}

// readVals reads the value block: an optional leading "vals" marker, then
// (value, relative error) pairs until every bin has one.
func (p *parser) readVals(line string) error {
	if len(p.cur.Values) == 0 && strings.HasPrefix(line, "vals") {
		return nil
	}
	parts := scan.Fields(line)
	if len(parts)%2 != 0 {
		return p.failf("%w: odd token count %d in vals block", ErrMalformed, len(parts))
	}
	for i := 0; i < len(parts); i += 2 {
		val, err := scan.Float(parts[i])
		if err != nil {
			return p.failf("%w: value: %v", ErrMalformed, err)
		}
		relErr, err := scan.Float(parts[i+1])
		if err != nil {
			return p.failf("%w: relative error: %v", ErrMalformed, err)
		}
		p.cur.Values = append(p.cur.Values, Entry{Value: val, RelErr: relErr})
	}
	if len(p.cur.Values) > p.expect {
		return p.failf("%w: %d value pairs, expected %d", ErrCardinality, len(p.cur.Values), p.expect)
	}
	if len(p.cur.Values) == p.expect {
		p.state = stateTFC
	}
	return nil
}

// readTFC reads the fluctuation chart: a header declaring the row count
// and the chart's one-based bin coordinate, then exactly that many
// (nps, mean, relative error, figure of merit) rows.
func (p *parser) readTFC(line string) error {
	if strings.HasPrefix(line, "tfc") {
		parts := scan.Fields(line)
		if len(parts) != 10 || parts[0] != "tfc" {
			return p.failf("%w: expected \"tfc <rows> <8 bin indices>\"", ErrMalformed)
		}
		n, err := scan.Int(parts[1])
		if err != nil {
			return p.failf("%w: tfc row count: %v", ErrMalformed, err)
		}
		for i, tok := range parts[2:] {
			v, err := scan.Int(tok)
			if err != nil {
				return p.failf("%w: tfc bin index: %v", ErrMalformed, err)
			}
			p.cur.TFC.Coord[i] = v - 1 // file is one-based
		}
		p.tfcHeader = true
		p.nTFC = n
		p.iTFC = 0
		if n == 0 {
			p.finishTally()
		}
		return nil
	}
	if !p.tfcHeader {
		return p.failf("%w: expected tfc header", ErrMalformed)
	}
	parts := scan.Fields(line)
	if len(parts) != 4 {
		return p.failf("%w: expected 4 tfc row tokens, got %d", ErrMalformed, len(parts))
	}
	nps, err := scan.Int64(parts[0])
	if err != nil {
		return p.failf("%w: tfc nps: %v", ErrMalformed, err)
	}
	mean, err := scan.Float(parts[1])
	if err != nil {
		return p.failf("%w: tfc mean: %v", ErrMalformed, err)
	}
	relErr, err := scan.Float(parts[2])
	if err != nil {
		return p.failf("%w: tfc error: %v", ErrMalformed, err)
	}
	fom, err := scan.Float(parts[3])
	if err != nil {
		return p.failf("%w: tfc fom: %v", ErrMalformed, err)
	}
	p.cur.TFC.Rows = append(p.cur.TFC.Rows, TFCRow{NPS: nps, Mean: mean, RelErr: relErr, FOM: fom})
	p.iTFC++
	if p.iTFC == p.nTFC {
		p.finishTally()
	}
	return nil
}

// finishTally moves the completed tally into the Overview and returns the
// machine to the tally-head state. The tally's indexer is built here so
// the record is fully immutable afterward.
func (p *parser) finishTally() {
	p.cur.Indexer()
	p.ov.Tallies[p.cur.Number] = p.cur
	p.cur = nil
	p.state = stateTallyHead
}

// finish checks that the input did not end mid-structure.
func (p *parser) finish() error {
	switch p.state {
	case stateTallyHead, stateKCode:
		return nil
	default:
		if p.cur != nil {
			return &ParseError{
				Line:  p.line,
				State: p.state.String(),
				Err:   fmt.Errorf("%w while reading tally %d", ErrTruncated, p.cur.Number),
			}
		}
		return &ParseError{Line: p.line, State: p.state.String(), Err: ErrTruncated}
	}
}
