package fusion

import (
	"github.com/pkg/errors"
)

// Position is a zero-based genomic coordinate within a contig.
//
// Position is signed. Mate-gap expansion may push a coordinate below zero
// (e.g., start-MaxMateGap near the beginning of a contig), and all arithmetic,
// including bucketing, must behave consistently for negative values.
type Position int64

// Strand is the orientation of a feature or a predicted breakpoint.
type Strand uint8

const (
	// Forward is the "+" strand.
	Forward Strand = iota
	// Reverse is the "-" strand.
	Reverse
)

// String returns "+" or "-".
func (s Strand) String() string {
	if s == Forward {
		return "+"
	}
	return "-"
}

// ParseStrand parses "+" or "-".
func ParseStrand(text string) (Strand, error) {
	switch text {
	case "+":
		return Forward, nil
	case "-":
		return Reverse, nil
	}
	return Forward, errors.Errorf("invalid strand: %s", text)
}

// Direction describes which way the mate pairs supporting a breakpoint point.
// A downstream-directed breakpoint is supported by mates aligning before it in
// contig order; an upstream-directed one by mates aligning after it.
type Direction uint8

const (
	// Downstream means the supporting mates point toward higher coordinates.
	Downstream Direction = iota
	// Upstream means the supporting mates point toward lower coordinates.
	Upstream
)

// String returns "downstream" or "upstream".
func (d Direction) String() string {
	if d == Downstream {
		return "downstream"
	}
	return "upstream"
}

// ParseDirection parses "downstream" or "upstream".
func ParseDirection(text string) (Direction, error) {
	switch text {
	case "downstream":
		return Downstream, nil
	case "upstream":
		return Upstream, nil
	}
	return Downstream, errors.Errorf("invalid direction: %s", text)
}
