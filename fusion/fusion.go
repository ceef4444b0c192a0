package fusion

// FilterReason records which filter rejected a fusion candidate. The zero
// value means the candidate is still alive. A reason is stored directly on the
// record, so there is no process-wide registry of filter tags.
type FilterReason uint8

const (
	// FilterNone marks a surviving candidate.
	FilterNone FilterReason = iota
	// FilterBlacklist marks a candidate removed by FilterBlacklistedRanges.
	FilterBlacklist
	// FilterDuplicates marks a candidate removed by CollapseDuplicates.
	FilterDuplicates
)

// String returns the reason name as it appears in reports.
func (r FilterReason) String() string {
	switch r {
	case FilterNone:
		return "none"
	case FilterBlacklist:
		return "blacklist"
	case FilterDuplicates:
		return "duplicates"
	}
	return "invalid"
}

// Fusion is one candidate fusion event between two breakpoints, as produced by
// the upstream caller. The record is mutated in place by the filter passes;
// only the Filter field is ever written.
//
// Gene1 and Gene2 must be valid IDs in the GeneDB that accompanies the
// collection. Coordinates are zero-based.
type Fusion struct {
	// Gene1 and Gene2 are the genes the two breakpoints are associated with.
	Gene1, Gene2 GeneID
	// Contig1/Breakpoint1 and Contig2/Breakpoint2 locate the two breakpoints.
	Contig1, Contig2         ContigID
	Breakpoint1, Breakpoint2 Position
	// Direction1 and Direction2 describe which way the supporting mate pairs
	// of each breakpoint point.
	Direction1, Direction2 Direction
	// PredictedStrand1 and PredictedStrand2 are the strand predictions for the
	// breakpoints. They are meaningless when StrandsAmbiguous is true.
	PredictedStrand1, PredictedStrand2 Strand
	StrandsAmbiguous                   bool
	// SplitReads1 and SplitReads2 count the split reads anchoring around
	// breakpoint1 and breakpoint2, respectively. DiscordantMates counts the
	// mate pairs straddling the junction without spanning it.
	SplitReads1, SplitReads2 int
	DiscordantMates          int
	// Spliced1 and Spliced2 are true when the respective breakpoint coincides
	// with a known splice site.
	Spliced1, Spliced2 bool
	// ReadThrough is true when the upstream caller classified this event as
	// transcriptional read-through between neighboring genes.
	ReadThrough bool
	// Evalue is the upstream confidence score. Higher means less confident.
	Evalue float64
	// ClosestGenomicBreakpoint1 and ClosestGenomicBreakpoint2 are set by the
	// genomic-support filter: a value >= 0 means a nearby breakpoint in
	// whole-genome data may recover this candidate even after another filter
	// rejected it. Negative means no such recovery is possible.
	ClosestGenomicBreakpoint1 Position
	ClosestGenomicBreakpoint2 Position
	// Filter is the reason this candidate was rejected, or FilterNone.
	Filter FilterReason
}

// SupportingReads returns the total read support for the candidate.
func (f *Fusion) SupportingReads() int {
	return f.SplitReads1 + f.SplitReads2 + f.DiscordantMates
}

// The accessors below address the two breakpoints by number (1 or 2) so that
// rule matching can be written once and applied symmetrically.

func (f *Fusion) contig(which int) ContigID {
	if which == 1 {
		return f.Contig1
	}
	return f.Contig2
}

func (f *Fusion) breakpoint(which int) Position {
	if which == 1 {
		return f.Breakpoint1
	}
	return f.Breakpoint2
}

func (f *Fusion) gene(which int) GeneID {
	if which == 1 {
		return f.Gene1
	}
	return f.Gene2
}

func (f *Fusion) direction(which int) Direction {
	if which == 1 {
		return f.Direction1
	}
	return f.Direction2
}

func (f *Fusion) predictedStrand(which int) Strand {
	if which == 1 {
		return f.PredictedStrand1
	}
	return f.PredictedStrand2
}

func (f *Fusion) splitReads(which int) int {
	if which == 1 {
		return f.SplitReads1
	}
	return f.SplitReads2
}

func otherBreakpoint(which int) int {
	if which == 1 {
		return 2
	}
	return 1
}
