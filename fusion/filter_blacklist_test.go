package fusion

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
)

func newTestGeneDB() *GeneDB {
	db := NewGeneDB()
	db.AddGene("GENE_A", "chr1", 999000, 1001000, Forward)
	db.AddGene("GENE_B", "chr2", 5000, 9000, Reverse)
	db.AddGene("GENE_C", "chr1", 2500000, 2600000, Forward)
	return db
}

// newTestFusion returns a well-supported GENE_A/GENE_B candidate with
// breakpoints at chr1:999999 and chr2:6000.
func newTestFusion(db *GeneDB) *Fusion {
	a := db.GeneInfoByName("GENE_A")
	b := db.GeneInfoByName("GENE_B")
	return &Fusion{
		Gene1:                     a.ID,
		Gene2:                     b.ID,
		Contig1:                   a.Contig,
		Contig2:                   b.Contig,
		Breakpoint1:               999999,
		Breakpoint2:               6000,
		Direction1:                Downstream,
		Direction2:                Upstream,
		PredictedStrand1:          Forward,
		PredictedStrand2:          Reverse,
		SplitReads1:               3,
		SplitReads2:               2,
		DiscordantMates:           1,
		Spliced1:                  true,
		Spliced2:                  true,
		Evalue:                    0.01,
		ClosestGenomicBreakpoint1: -1,
		ClosestGenomicBreakpoint2: -1,
	}
}

func testWriteFile(t *testing.T, dir, name, data string) string {
	path := filepath.Join(dir, name)
	assert.NoError(t, ioutil.WriteFile(path, []byte(data), 0644))
	return path
}

func testFilter(t *testing.T, fusions []*Fusion, blacklist string, opts Opts) (int, Stats) {
	ctx := vcontext.Background()
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := testWriteFile(t, tempDir, "blacklist.tsv", blacklist)
	stats := Stats{}
	remaining, err := FilterBlacklistedRanges(ctx, fusions, path, newTestGeneDB(), &stats, opts)
	assert.NoError(t, err)
	return remaining, stats
}

func TestFilterBlacklistedRanges(t *testing.T) {
	db := newTestGeneDB()

	// chr1:1000000 is one-based; it blacklists the zero-based breakpoint
	// 999999 of the first fusion.
	f := newTestFusion(db)
	other := newTestFusion(db)
	other.Breakpoint1 = 2550000
	other.Gene1 = db.GeneInfoByName("GENE_C").ID

	remaining, stats := testFilter(t, []*Fusion{f, other},
		"# known artifact\n\nchr1:1000000-1000000 any\n", DefaultOpts)
	expect.EQ(t, f.Filter, FilterBlacklist)
	expect.EQ(t, other.Filter, FilterNone)
	expect.EQ(t, remaining, 1)
	expect.EQ(t, stats.Comments, 2)
	expect.EQ(t, stats.Filtered, 1)
}

func TestFilterRulePairSymmetry(t *testing.T) {
	db := newTestGeneDB()
	f := newTestFusion(db) // gene1=GENE_A, gene2=GENE_B

	// The rule names the genes in the opposite order of the fusion record.
	remaining, _ := testFilter(t, []*Fusion{f}, "GENE_B GENE_A\n", DefaultOpts)
	expect.EQ(t, f.Filter, FilterBlacklist)
	expect.EQ(t, remaining, 0)
}

func TestFilterIdempotence(t *testing.T) {
	db := newTestGeneDB()
	f := newTestFusion(db)
	other := newTestFusion(db)
	other.Breakpoint2 = 8000

	const blacklist = "GENE_A any\n"
	fusions := []*Fusion{f, other}
	remaining, stats := testFilter(t, fusions, blacklist, DefaultOpts)
	expect.EQ(t, remaining, 0)
	expect.EQ(t, stats.Filtered, 2)

	// A second pass over the already-filtered collection changes nothing:
	// filtered fusions are no longer candidates.
	remaining, stats = testFilter(t, fusions, blacklist, DefaultOpts)
	expect.EQ(t, remaining, 0)
	expect.EQ(t, stats.IndexedFusions, 0)
	expect.EQ(t, stats.Filtered, 0)
}

func TestFilterMateGapWindow(t *testing.T) {
	db := newTestGeneDB()
	g := newTestFusion(db)
	g.SplitReads1, g.SplitReads2 = 0, 0
	g.DiscordantMates = 4
	g.Breakpoint1 = 1000
	g.Direction1 = Downstream

	// One-based 1006 is zero-based 1005; within a 10bp mate gap of
	// breakpoint 1000.
	opts := DefaultOpts
	opts.MaxMateGap = 10
	remaining, _ := testFilter(t, []*Fusion{g}, "chr1:1006 any\n", opts)
	expect.EQ(t, g.Filter, FilterBlacklist)
	expect.EQ(t, remaining, 0)

	g = newTestFusion(db)
	g.SplitReads1, g.SplitReads2 = 0, 0
	g.DiscordantMates = 4
	g.Breakpoint1 = 1000
	g.Direction1 = Downstream
	opts.MaxMateGap = 2
	remaining, _ = testFilter(t, []*Fusion{g}, "chr1:1006 any\n", opts)
	expect.EQ(t, g.Filter, FilterNone)
	expect.EQ(t, remaining, 1)
}

func TestFilterSkipsMalformedLines(t *testing.T) {
	db := newTestGeneDB()
	f := newTestFusion(db)

	remaining, stats := testFilter(t, []*Fusion{f},
		"chr1:1000000\n"+ // one column
			"chrUn:1-2 any\n"+ // unknown contig
			"any GENE_A\n"+ // keyword in the first column
			"GENE_C chr1:notanumber\n", // malformed second column
		DefaultOpts)
	expect.EQ(t, remaining, 1)
	expect.EQ(t, f.Filter, FilterNone)
	expect.EQ(t, stats.SkippedLines, 4)
	expect.EQ(t, stats.Filtered, 0)
}

func TestFilterFirstMatchWins(t *testing.T) {
	db := newTestGeneDB()
	f := newTestFusion(db)

	// Both lines match, but the fusion is withdrawn from the index by the
	// first, so the pass stops re-testing it.
	remaining, stats := testFilter(t, []*Fusion{f},
		"chr1:1000000 any\nGENE_A any\n", DefaultOpts)
	expect.EQ(t, remaining, 0)
	expect.EQ(t, stats.Filtered, 1)
}

func TestFilterRecoveryEligible(t *testing.T) {
	db := newTestGeneDB()

	// A fusion rejected by another filter but still eligible for
	// genomic-support recovery is re-tested and re-tagged; a terminally
	// filtered one is left alone.
	eligible := newTestFusion(db)
	eligible.Filter = FilterDuplicates
	eligible.ClosestGenomicBreakpoint1 = 999500
	terminal := newTestFusion(db)
	terminal.Filter = FilterDuplicates

	remaining, _ := testFilter(t, []*Fusion{eligible, terminal}, "GENE_A any\n", DefaultOpts)
	expect.EQ(t, eligible.Filter, FilterBlacklist)
	expect.EQ(t, terminal.Filter, FilterDuplicates)
	expect.EQ(t, remaining, 0)
}

func TestFilterCompressedBlacklist(t *testing.T) {
	ctx := vcontext.Background()
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	buf := bytes.Buffer{}
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte("chr1:1000000-1000000 any\n"))
	assert.NoError(t, err)
	assert.NoError(t, gz.Close())
	path := filepath.Join(tempDir, "blacklist.tsv.gz")
	assert.NoError(t, ioutil.WriteFile(path, buf.Bytes(), 0644))

	db := newTestGeneDB()
	f := newTestFusion(db)
	stats := Stats{}
	remaining, err := FilterBlacklistedRanges(ctx, []*Fusion{f}, path, db, &stats, DefaultOpts)
	assert.NoError(t, err)
	expect.EQ(t, f.Filter, FilterBlacklist)
	expect.EQ(t, remaining, 0)
}

func TestFilterMissingBlacklist(t *testing.T) {
	ctx := vcontext.Background()
	db := newTestGeneDB()
	stats := Stats{}
	_, err := FilterBlacklistedRanges(ctx, nil, "/nonexistent/blacklist.tsv", db, &stats, DefaultOpts)
	if err == nil {
		t.Fatal("expected an error for a missing blacklist file")
	}
}
