package fusion

// Stats represents high-level counters of one blacklist filtering pass.
type Stats struct {
	// Lines is the total number of blacklist lines read, including comments.
	Lines int
	// Comments counts empty lines and lines starting with '#'.
	Comments int
	// SkippedLines counts malformed lines that were skipped with a warning.
	SkippedLines int
	// VacuousRules counts rules that pair two keyword items. Such rules have
	// no coordinates to search and can never match a fusion.
	VacuousRules int
	// IndexedFusions is the number of fusions inserted into the spatial index.
	IndexedFusions int
	// Filtered is the number of fusions tagged by the blacklist.
	Filtered int
}

// Merge adds the field values of the two Stats objects and creates new Stats.
func (s Stats) Merge(o Stats) Stats {
	s.Lines += o.Lines
	s.Comments += o.Comments
	s.SkippedLines += o.SkippedLines
	s.VacuousRules += o.VacuousRules
	s.IndexedFusions += o.IndexedFusions
	s.Filtered += o.Filtered
	return s
}
