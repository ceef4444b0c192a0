package fusion

// Opts holds the tunable thresholds of the blacklist filter.
type Opts struct {
	// EvalueCutoff is the e-value above which a candidate counts as poorly
	// supported. Used by the low_support and filter_spliced rules.
	EvalueCutoff float64

	// MaxMateGap is the maximum distance between a discordant-mate breakpoint
	// and a blacklisted coordinate for the two to still count as "near". It
	// also widens the index lookup window around every blacklist rule.
	MaxMateGap int
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	EvalueCutoff: 0.3, // matches the upstream caller's reporting cutoff
	MaxMateGap:   200, // typical insert size minus two read lengths
}
