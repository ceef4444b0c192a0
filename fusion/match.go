package fusion

// overlappingFraction returns the fraction of the inclusive range
// [start1, end1] that overlaps [start2, end2]. Full containment yields 1.0, a
// disjoint pair 0.0. An overlap at a single shared edge contributes a length
// of one base.
func overlappingFraction(start1, end1, start2, end2 Position) float64 {
	length1 := float64(end1 - start1 + 1)
	switch {
	case start1 >= start2 && end1 <= end2:
		return 1
	case start1 >= start2 && start1 <= end2:
		return float64(end2-start1+1) / length1
	case end1 >= start2 && end1 <= end2:
		return float64(end1-start2+1) / length1
	default:
		return 0
	}
}

// matchesBlacklistItem decides whether one breakpoint of a fusion matches a
// blacklist item. which selects the breakpoint under test (1 or 2).
func matchesBlacklistItem(geneDB *GeneDB, item blacklistItem, f *Fusion, which int, evalueCutoff float64, maxMateGap int) bool {
	switch item.kind {

	case blacklistAny:
		// The breakpoint is inside a region that is blacklisted wholesale.
		return true

	case blacklistSplitReadDonor:
		// Fusions only supported by donor-side split reads.
		return f.DiscordantMates+f.splitReads(which) == 0

	case blacklistSplitReadAcceptor:
		// Fusions only supported by acceptor-side split reads.
		return f.DiscordantMates+f.splitReads(otherBreakpoint(which)) == 0

	case blacklistSplitReadAny:
		// Fusions only supported by split reads.
		return f.DiscordantMates == 0

	case blacklistDiscordantMates:
		// Fusions only supported by discordant mates.
		return f.SplitReads1+f.SplitReads2 == 0

	case blacklistReadThrough:
		return f.ReadThrough

	case blacklistLowSupport:
		// Recurrent speculative fusions recovered for one reason or another.
		return f.Evalue > evalueCutoff

	case blacklistFilterSpliced:
		// Speculative fusions recovered because both breakpoints are spliced.
		return f.Evalue > evalueCutoff && f.Spliced1 && f.Spliced2

	case blacklistNotBothSpliced:
		return !f.Spliced1 || !f.Spliced2

	case blacklistGene:
		return f.gene(which) == item.gene

	case blacklistPosition:
		if f.contig(which) != item.contig {
			return false
		}
		// Strand must match if the rule defines one. When strands could not be
		// predicted, assume a match.
		if item.strandDefined && !f.StrandsAmbiguous && f.predictedStrand(which) != item.strand {
			return false
		}
		bp := f.breakpoint(which)
		if bp == item.start {
			return true
		}
		// Without split reads the breakpoint is only approximate. Accept it if
		// the discordant mates are near the blacklisted coordinate and point
		// toward it.
		if f.SplitReads1+f.SplitReads2 == 0 {
			gap := Position(maxMateGap)
			switch f.direction(which) {
			case Downstream:
				return bp <= item.start && bp >= item.start-gap
			case Upstream:
				return bp >= item.start && bp <= item.start+gap
			}
		}
		return false

	case blacklistRange:
		if f.contig(which) != item.contig {
			return false
		}
		if item.strandDefined && !f.StrandsAmbiguous && f.predictedStrand(which) != item.strand {
			return false
		}
		// The gene that the breakpoint is associated with must overlap the
		// blacklisted range by more than half of its own length.
		gene := geneDB.GeneInfo(f.gene(which))
		return overlappingFraction(gene.Start, gene.End, item.start, item.end) > 0.5
	}
	return false
}
