// Package particle provides the MCNP particle-type table.
//
// MCNP identifies particle types by a small positive integer called the
// IPT number (1 = neutron, 2 = photon, 3 = electron, ...). The table here
// carries one descriptive record per type: its designator symbol, name,
// rest mass and default lower energy cutoff. MCTAL tally decoding only
// needs IPT resolution, but symbol lookup is provided for callers building
// particle designators for input cards.
package particle

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrUnknown is returned when a lookup does not match any known particle.
var ErrUnknown = errors.New("unknown particle type")

// Type describes one MCNP particle type.
type Type struct {
	IPT         int     `yaml:"ipt"`
	Symbol      string  `yaml:"symbol"`
	Name        string  `yaml:"name"`
	RestMassMeV float64 `yaml:"mass_mev"`
	CutoffMeV   float64 `yaml:"cutoff_mev"`
}

func (t Type) String() string {
	return fmt.Sprintf("%s (%s, ipt %d)", t.Name, t.Symbol, t.IPT)
}

// Table is an immutable set of particle types indexed by IPT number and
// by designator symbol.
type Table struct {
	byIPT    map[int]Type
	bySymbol map[string]Type
	ipts     []int
}

// NewTable builds a table from the given records.
// Duplicate IPT numbers or symbols are rejected.
func NewTable(types []Type) (*Table, error) {
	t := &Table{
		byIPT:    make(map[int]Type, len(types)),
		bySymbol: make(map[string]Type, len(types)),
	}
	for _, p := range types {
		if p.IPT <= 0 {
			return nil, fmt.Errorf("particle %q: invalid ipt %d", p.Symbol, p.IPT)
		}
		if _, ok := t.byIPT[p.IPT]; ok {
			return nil, fmt.Errorf("duplicate particle ipt %d", p.IPT)
		}
		if _, ok := t.bySymbol[p.Symbol]; ok {
			return nil, fmt.Errorf("duplicate particle symbol %q", p.Symbol)
		}
		t.byIPT[p.IPT] = p
		t.bySymbol[p.Symbol] = p
		t.ipts = append(t.ipts, p.IPT)
	}
	sort.Ints(t.ipts)
	return t, nil
}

// ByIPT returns the particle with the given IPT number.
func (t *Table) ByIPT(ipt int) (Type, error) {
	p, ok := t.byIPT[ipt]
	if !ok {
		return Type{}, fmt.Errorf("%w: ipt %d", ErrUnknown, ipt)
	}
	return p, nil
}

// BySymbol returns the particle with the given designator symbol.
// Symbols are case-sensitive single characters ("N", "P", "E", "|", ...).
func (t *Table) BySymbol(symbol string) (Type, error) {
	p, ok := t.bySymbol[symbol]
	if !ok {
		return Type{}, fmt.Errorf("%w: symbol %q", ErrUnknown, symbol)
	}
	return p, nil
}

// Len returns the number of particle types in the table.
func (t *Table) Len() int {
	return len(t.byIPT)
}

// IPTs returns the defined IPT numbers in ascending order.
func (t *Table) IPTs() []int {
	out := make([]int, len(t.ipts))
	copy(out, t.ipts)
	return out
}

//go:embed particles.yaml
var tableYAML []byte

var (
	tableOnce    sync.Once
	defaultTable *Table
)

// Default returns the built-in MCNP6 particle table, loaded from the
// embedded resource on first use.
func Default() *Table {
	tableOnce.Do(func() {
		var types []Type
		if err := yaml.Unmarshal(tableYAML, &types); err != nil {
			panic(fmt.Sprintf("particle: decoding embedded table: %v", err))
		}
		t, err := NewTable(types)
		if err != nil {
			panic(fmt.Sprintf("particle: building embedded table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}
