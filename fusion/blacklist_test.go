package fusion

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestParseRange(t *testing.T) {
	db := newTestGeneDB()
	chr1 := db.contigID("chr1")

	item, err := parseRange("chr1:100-200", db)
	expect.NoError(t, err)
	expect.EQ(t, item.contig, chr1)
	expect.EQ(t, item.start, Position(99))
	expect.EQ(t, item.end, Position(199))
	expect.EQ(t, item.strandDefined, false)

	item, err = parseRange("chr1:100", db)
	expect.NoError(t, err)
	expect.EQ(t, item.start, Position(99))
	expect.EQ(t, item.end, Position(99))

	item, err = parseRange("+chr1:100-200", db)
	expect.NoError(t, err)
	expect.EQ(t, item.strandDefined, true)
	expect.EQ(t, item.strand, Forward)

	item, err = parseRange("-chr2:500", db)
	expect.NoError(t, err)
	expect.EQ(t, item.strandDefined, true)
	expect.EQ(t, item.strand, Reverse)
	expect.EQ(t, item.start, Position(499))

	for _, text := range []string{
		"chrUn:100",   // unknown contig
		"chr1",        // no position
		"chr1:",       // empty position
		"chr1:abc",    // non-numeric position
		"chr1:10-abc", // non-numeric end
		":100",        // empty contig
	} {
		if _, err := parseRange(text, db); err == nil {
			t.Errorf("parseRange(%q): expected failure", text)
		}
	}
}

func TestParseBlacklistItem(t *testing.T) {
	db := newTestGeneDB()

	// Keywords are only recognized when allowed.
	for keyword, kind := range blacklistKeywords {
		item, err := parseBlacklistItem(keyword, db, true)
		expect.NoError(t, err)
		expect.EQ(t, item.kind, kind)
		if _, err := parseBlacklistItem(keyword, db, false); err == nil {
			t.Errorf("keyword %q accepted in the first column", keyword)
		}
	}

	// A known gene name yields a gene item carrying the gene's own span.
	gi := db.GeneInfoByName("GENE_A")
	item, err := parseBlacklistItem("GENE_A", db, true)
	expect.NoError(t, err)
	expect.EQ(t, item.kind, blacklistGene)
	expect.EQ(t, item.gene, gi.ID)
	expect.EQ(t, item.contig, gi.Contig)
	expect.EQ(t, item.start, gi.Start)
	expect.EQ(t, item.end, gi.End)

	// Single positions and proper ranges are distinguished after parsing.
	item, err = parseBlacklistItem("chr1:100", db, true)
	expect.NoError(t, err)
	expect.EQ(t, item.kind, blacklistPosition)
	item, err = parseBlacklistItem("chr1:100-200", db, false)
	expect.NoError(t, err)
	expect.EQ(t, item.kind, blacklistRange)

	expect.EQ(t, item.spatial(), true)
	expect.EQ(t, blacklistItem{kind: blacklistAny}.spatial(), false)
}
