// Command mctaldump summarizes MCNP MCTAL files and dumps tally values
// in a chosen axis order.
//
// Usage:
//
//	mctaldump [-tally N] [-by f,e] [-rev] file.mctal...
//
// Without flags every tally is summarized. With -tally and -by the named
// tally's values are printed as a grid: the first -by axis selects rows,
// the last varies fastest across columns, and all remaining axes are held
// at their first bin. -rev reverses the column order, e.g. high-to-low
// energy group listings.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/robert-malhotra/go-mctal/mctal"
	"github.com/robert-malhotra/go-mctal/particle"
)

func main() {
	tallyNum := flag.Int("tally", 0, "tally number to dump (0 = summaries only)")
	by := flag.String("by", "f,e", "comma-separated axis letters for the dump nesting order")
	rev := flag.Bool("rev", false, "reverse the innermost axis order")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: mctaldump [-tally N] [-by f,e] [-rev] file.mctal...")
		os.Exit(1)
	}

	for _, file := range flag.Args() {
		if err := run(file, *tallyNum, *by, *rev); err != nil {
			fmt.Fprintf(os.Stderr, "mctaldump: %s: %v\n", file, err)
			os.Exit(1)
		}
	}
}

func run(file string, tallyNum int, by string, rev bool) error {
	lines, err := readLines(file)
	if err != nil {
		return err
	}

	ov, err := mctal.Parse(lines, particle.Default())
	if err != nil {
		return err
	}
	ov.Case = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

	fmt.Println(ov)
	for _, num := range ov.TallyNumbers {
		tal, ok := ov.Tally(num)
		if !ok {
			fmt.Printf("tally %d announced but not present\n", num)
			continue
		}
		fmt.Println()
		fmt.Println(tal)
		if ref, err := tal.Value(tal.TFC.Coord); err == nil {
			fmt.Printf("  Value at TFC bin: %.6e (rel err %.4f)\n", ref.Value, ref.RelErr)
		}
	}

	if tallyNum == 0 {
		return nil
	}
	tal, ok := ov.Tally(tallyNum)
	if !ok {
		return fmt.Errorf("no tally %d", tallyNum)
	}
	free, err := parseAxes(by)
	if err != nil {
		return err
	}
	fmt.Printf("\nTally %d values by %s:\n", tallyNum, by)
	return dumpGrid(tal, free, rev)
}

// readLines loads a file as raw lines, tolerating CRLF endings and a
// trailing newline.
func readLines(file string) ([]string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	return strings.Split(text, "\n"), nil
}

// parseAxes converts "f,e" into axis kinds.
func parseAxes(s string) ([]mctal.AxisKind, error) {
	var kinds []mctal.AxisKind
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if len(part) != 1 {
			return nil, fmt.Errorf("invalid axis %q", part)
		}
		k, ok := mctal.ParseAxisKind(part[0])
		if !ok {
			return nil, fmt.Errorf("invalid axis %q", part)
		}
		kinds = append(kinds, k)
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("no axes in %q", s)
	}
	return kinds, nil
}

// dumpGrid prints the tally's values iterated in the free-axis order,
// one output row per step of the second-innermost axis.
func dumpGrid(tal *mctal.Tally, free []mctal.AxisKind, rev bool) error {
	fixed := make(map[mctal.AxisKind]int)
	inFree := make(map[mctal.AxisKind]bool)
	for _, k := range free {
		inFree[k] = true
	}
	for _, k := range mctal.AxisKinds() {
		if !inFree[k] {
			fixed[k] = 0
		}
	}

	ix := tal.Indexer()
	seq, err := ix.Offsets(free, fixed)
	if err != nil {
		return err
	}

	cols := ix.Size(free[len(free)-1])
	row := make([]mctal.Entry, 0, cols)
	flush := func() {
		if rev {
			for i, j := 0, len(row)-1; i < j; i, j = i+1, j-1 {
				row[i], row[j] = row[j], row[i]
			}
		}
		for _, e := range row {
			fmt.Printf("%10.6e %.4f  ", e.Value, e.RelErr)
		}
		fmt.Println()
		row = row[:0]
	}

	for off := range seq {
		row = append(row, tal.Values[off])
		if len(row) == cols {
			flush()
		}
	}
	return nil
}
