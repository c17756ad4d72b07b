// Package scan provides token-level helpers for reading line-oriented
// numeric grammars such as MCTAL.
//
// Lines are split on whitespace runs; the helpers here convert the
// resulting tokens with error messages that name the offending token, so
// callers only add line-level context.
package scan

import (
	"fmt"
	"strconv"
	"strings"
)

// Fields splits a line into whitespace-separated tokens.
// Leading and trailing whitespace contribute no tokens.
func Fields(line string) []string {
	return strings.Fields(line)
}

// Int parses a token as a decimal integer.
func Int(tok string) (int, error) {
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", tok)
	}
	return v, nil
}

// Int64 parses a token as a decimal 64-bit integer.
func Int64(tok string) (int64, error) {
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", tok)
	}
	return v, nil
}

// Float parses a token as a floating-point number. MCTAL writes values in
// Fortran E-notation ("3.00000E+09"), which ParseFloat accepts directly.
func Float(tok string) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", tok)
	}
	return v, nil
}

// Ints parses every token as a decimal integer.
func Ints(toks []string) ([]int, error) {
	out := make([]int, 0, len(toks))
	for _, tok := range toks {
		v, err := Int(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Floats parses every token as a floating-point number.
func Floats(toks []string) ([]float64, error) {
	return AppendFloats(nil, toks)
}

// AppendFloats parses every token as a floating-point number and appends
// the results to dst. Used for payload blocks that accumulate across lines.
func AppendFloats(dst []float64, toks []string) ([]float64, error) {
	for _, tok := range toks {
		v, err := Float(tok)
		if err != nil {
			return dst, err
		}
		dst = append(dst, v)
	}
	return dst, nil
}
