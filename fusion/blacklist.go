package fusion

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// blacklistKind enumerates the rule semantics a blacklist item can have.
// Range, position and gene items carry coordinates; the remaining kinds are
// pure predicates over a fusion's supporting evidence.
type blacklistKind uint8

const (
	blacklistRange blacklistKind = iota
	blacklistPosition
	blacklistGene
	blacklistAny
	blacklistSplitReadDonor
	blacklistSplitReadAcceptor
	blacklistSplitReadAny
	blacklistDiscordantMates
	blacklistReadThrough
	blacklistLowSupport
	blacklistFilterSpliced
	blacklistNotBothSpliced
)

// blacklistKeywords maps the keyword spellings allowed in the second column of
// a blacklist file to their rule kinds.
var blacklistKeywords = map[string]blacklistKind{
	"any":                 blacklistAny,
	"split_read_donor":    blacklistSplitReadDonor,
	"split_read_acceptor": blacklistSplitReadAcceptor,
	"split_read_any":      blacklistSplitReadAny,
	"discordant_mates":    blacklistDiscordantMates,
	"read_through":        blacklistReadThrough,
	"low_support":         blacklistLowSupport,
	"filter_spliced":      blacklistFilterSpliced,
	"not_both_spliced":    blacklistNotBothSpliced,
}

// blacklistItem is one parsed token of a blacklist line. Items are transient;
// they live only while their line is being applied.
type blacklistItem struct {
	kind          blacklistKind
	strandDefined bool
	strand        Strand
	contig        ContigID
	start, end    Position // zero-based, inclusive
	gene          GeneID
}

// spatial reports whether the item carries coordinates that can seed an index
// lookup. Keyword items do not.
func (item blacklistItem) spatial() bool {
	return item.kind == blacklistRange || item.kind == blacklistPosition || item.kind == blacklistGene
}

// parseRange converts the string representation of a range into coordinates.
// The grammar is [+|-]CONTIG:POS or [+|-]CONTIG:START-END with one-based,
// inclusive coordinates; a leading "+" or "-" constrains the strand. The
// parsed coordinates are zero-based.
func parseRange(text string, geneDB *GeneDB) (blacklistItem, error) {
	var item blacklistItem
	s := text
	if strings.HasPrefix(s, "+") {
		item.strandDefined = true
		item.strand = Forward
		s = s[1:]
	} else if strings.HasPrefix(s, "-") {
		item.strandDefined = true
		item.strand = Reverse
		s = s[1:]
	}
	colon := strings.IndexByte(s, ':')
	if colon <= 0 {
		return item, errors.Errorf("unknown gene or malformed range: %s", text)
	}
	if item.contig = geneDB.contigID(s[:colon]); item.contig == invalidContigID {
		return item, errors.Errorf("unknown gene or malformed range: %s", text)
	}
	s = s[colon+1:]
	if dash := strings.IndexByte(s, '-'); dash >= 0 {
		start, err := strconv.ParseInt(s[:dash], 10, 64)
		if err != nil {
			return item, errors.Errorf("unknown gene or malformed range: %s", text)
		}
		end, err := strconv.ParseInt(s[dash+1:], 10, 64)
		if err != nil {
			return item, errors.Errorf("unknown gene or malformed range: %s", text)
		}
		item.start = Position(start) - 1 // convert to zero-based coordinates
		item.end = Position(end) - 1
	} else {
		start, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return item, errors.Errorf("unknown gene or malformed range: %s", text)
		}
		item.start = Position(start) - 1
		item.end = item.start
	}
	return item, nil
}

// parseBlacklistItem parses one token of a blacklist line. When allowKeyword
// is true the token may name a predicate rule; otherwise it must be a gene
// name known to geneDB or a range.
func parseBlacklistItem(text string, geneDB *GeneDB, allowKeyword bool) (blacklistItem, error) {
	if allowKeyword {
		if kind, ok := blacklistKeywords[text]; ok {
			return blacklistItem{kind: kind}, nil
		}
	}
	if gi := geneDB.GeneInfoByName(text); gi != nil {
		return blacklistItem{
			kind:   blacklistGene,
			gene:   gi.ID,
			contig: gi.Contig,
			start:  gi.Start,
			end:    gi.End,
		}, nil
	}
	item, err := parseRange(text, geneDB)
	if err != nil {
		return item, err
	}
	if item.start == item.end {
		item.kind = blacklistPosition
	} else {
		item.kind = blacklistRange
	}
	return item, nil
}
