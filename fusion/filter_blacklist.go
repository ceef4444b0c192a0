package fusion

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
)

// FilterBlacklistedRanges removes fusion candidates that coincide with known
// problematic regions or satisfy heuristic noise rules. The blacklist file
// has one rule per line; empty lines and lines starting with '#' are ignored.
// A rule has two whitespace-separated items; the first must be a gene or a
// range, the second may additionally be a keyword. A fusion is removed when
// its two breakpoints match the two items in either order.
//
// The blacklist may be compressed; the format is inferred from the path.
// Matched fusions get Filter set to FilterBlacklist. Rules are applied in
// file order, and a matched fusion is withdrawn from candidacy immediately,
// so each fusion is attributed to at most the first matching rule.
//
// The return value is the number of fusions whose Filter remains unset.
// Malformed lines are skipped with a warning; only a failure to read the
// blacklist itself is an error.
func FilterBlacklistedRanges(ctx context.Context, fusions []*Fusion, blacklistPath string, geneDB *GeneDB, stats *Stats, opts Opts) (int, error) {
	index := buildSpatialIndex(geneDB, fusions)
	stats.IndexedFusions = len(index.keys)

	in, err := file.Open(ctx, blacklistPath)
	if err != nil {
		return 0, errors.Wrapf(err, "open blacklist %s", blacklistPath)
	}
	var r io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}

	matched := []*Fusion{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		stats.Lines++

		// Skip comment lines.
		if line == "" || line[0] == '#' {
			stats.Comments++
			continue
		}

		// Parse line.
		tokens := strings.Fields(line)
		if len(tokens) != 2 {
			log.Error.Printf("blacklist %s line %d: expected two columns: %q", blacklistPath, stats.Lines, line)
			stats.SkippedLines++
			continue
		}
		item1, err1 := parseBlacklistItem(tokens[0], geneDB, false)
		item2, err2 := parseBlacklistItem(tokens[1], geneDB, true)
		if err1 != nil || err2 != nil {
			if err1 == nil {
				err1 = err2
			}
			log.Error.Printf("blacklist %s line %d: %v", blacklistPath, stats.Lines, err1)
			stats.SkippedLines++
			continue
		}
		if !item1.spatial() && !item2.spatial() {
			// Two keyword items give the rule no coordinates to search, so it
			// can never select a fusion. Almost certainly a mistake in the
			// blacklist file.
			log.Error.Printf("blacklist %s line %d: rule has no coordinates and matches nothing: %q", blacklistPath, stats.Lines, line)
			stats.VacuousRules++
			continue
		}

		// Find all fusions with breakpoints in the vicinity of the items. The
		// window is widened by MaxMateGap because position rules tolerate that
		// much slack for fusions supported only by discordant mates.
		gap := Position(opts.MaxMateGap)
		var keys []bucketKey
		emit := func(key bucketKey) { keys = append(keys, key) }
		if item1.spatial() {
			bucketsFor(item1.contig, item1.start-gap, item1.end+gap, emit)
		}
		if item2.spatial() {
			bucketsFor(item2.contig, item2.start-gap, item2.end+gap, emit)
		}
		for _, key := range keys {
			set := index.buckets[key]
			if len(set) == 0 {
				continue
			}
			matched = matched[:0]
			for f := range set {
				if matchesBlacklistItem(geneDB, item1, f, 1, opts.EvalueCutoff, opts.MaxMateGap) &&
					matchesBlacklistItem(geneDB, item2, f, 2, opts.EvalueCutoff, opts.MaxMateGap) ||
					matchesBlacklistItem(geneDB, item1, f, 2, opts.EvalueCutoff, opts.MaxMateGap) &&
						matchesBlacklistItem(geneDB, item2, f, 1, opts.EvalueCutoff, opts.MaxMateGap) {
					matched = append(matched, f)
				}
			}
			for _, f := range matched {
				f.Filter = FilterBlacklist
				index.remove(f)
				stats.Filtered++
			}
		}
	}
	if err := sc.Err(); err != nil {
		_ = in.Close(ctx)
		return 0, errors.Wrapf(err, "read blacklist %s", blacklistPath)
	}
	if err := in.Close(ctx); err != nil {
		return 0, errors.Wrapf(err, "close blacklist %s", blacklistPath)
	}

	// Count remaining fusions.
	remaining := 0
	for _, f := range fusions {
		if f.Filter == FilterNone {
			remaining++
		}
	}
	return remaining, nil
}
