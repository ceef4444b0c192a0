package main

// fusion-blacklist is a post-processing filter over gene-fusion candidates.
// It removes candidates that coincide with known problematic genomic regions
// or satisfy heuristic noise rules listed in a blacklist file.
//
// Example:
//
//    fusion-blacklist -genes genes.tsv -fusions candidates.tsv \
//        -blacklist blacklist.tsv.gz -output filtered.tsv
//
// The candidates can also be read from (or saved to) a recordio dump so the
// filtering stage can be re-run without re-parsing the TSV inputs:
//
//    fusion-blacklist -rio-input all.rio -blacklist blacklist.tsv.gz

import (
	"context"
	"flag"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/fusionfilter/fusion"
)

// Collection of options set via cmdline flags.
type blacklistFlags struct {
	genesPath          string
	fusionsPath        string
	rioInputPath       string
	rioOutputPath      string
	blacklistPath      string
	outputPath         string
	collapseDuplicates bool
}

func runBlacklist(ctx context.Context, flags blacklistFlags, opts fusion.Opts) {
	var (
		geneDB  *fusion.GeneDB
		fusions []*fusion.Fusion
	)
	if flags.rioInputPath != "" {
		r := newFusionReader(ctx, flags.rioInputPath)
		for r.Scan() {
			fusions = append(fusions, r.Get())
		}
		geneDB = r.GeneDB()
		r.Close(ctx)
	} else {
		geneDB = fusion.NewGeneDB()
		geneDB.ReadGenes(ctx, flags.genesPath)
		fusions = readFusions(ctx, flags.fusionsPath, geneDB)
	}
	log.Printf("Stats: %d candidate fusions", len(fusions))

	if flags.rioOutputPath != "" {
		w := newFusionWriter(ctx, flags.rioOutputPath, geneDB, opts)
		for _, f := range fusions {
			w.Write(f)
		}
		w.Close(ctx)
	}

	if flags.collapseDuplicates {
		fusion.CollapseDuplicates(fusions)
	}

	stats := fusion.Stats{}
	remaining, err := fusion.FilterBlacklistedRanges(ctx, fusions, flags.blacklistPath, geneDB, &stats, opts)
	if err != nil {
		log.Panic(err)
	}
	log.Printf("Stats: blacklist pass: %+v", stats)
	log.Printf("Stats: %d of %d fusions remaining", remaining, len(fusions))

	writeFusions(ctx, flags.outputPath, geneDB, fusions)
}

func main() {
	opts := fusion.DefaultOpts
	flags := blacklistFlags{}
	flag.StringVar(&flags.genesPath, "genes", "", "TSV file of gene annotations (Gene Contig Start End Strand, one-based inclusive coordinates).")
	flag.StringVar(&flags.fusionsPath, "fusions", "", "TSV file of candidate fusions produced by the upstream caller.")
	flag.StringVar(&flags.rioInputPath, "rio-input", "", `Recordio dump of candidates and the gene DB, written by an earlier run with
-rio-output. If nonempty, -genes and -fusions are ignored.`)
	flag.StringVar(&flags.rioOutputPath, "rio-output", "", "If nonempty, dump the candidates and the gene DB to this recordio file before filtering.")
	flag.StringVar(&flags.blacklistPath, "blacklist", "", "Blacklist file with one rule per line. May be compressed.")
	flag.StringVar(&flags.outputPath, "output", "./filtered.tsv", "TSV file for the annotated candidates. The Filter column names the filter that rejected each candidate.")
	flag.BoolVar(&flags.collapseDuplicates, "collapse-duplicates", false, "Tag duplicate records of the same fusion event before filtering.")
	flag.Float64Var(&opts.EvalueCutoff, "evalue-cutoff", fusion.DefaultOpts.EvalueCutoff, "E-value above which a candidate counts as poorly supported.")
	flag.IntVar(&opts.MaxMateGap, "max-mate-gap", fusion.DefaultOpts.MaxMateGap, "Max distance between a discordant-mate breakpoint and a blacklisted coordinate.")

	cleanup := grail.Init()
	defer cleanup()
	if flags.blacklistPath == "" {
		log.Fatal("-blacklist is required")
	}
	if flags.rioInputPath == "" && (flags.genesPath == "" || flags.fusionsPath == "") {
		log.Fatal("either -rio-input or both -genes and -fusions are required")
	}
	ctx := vcontext.Background()
	runBlacklist(ctx, flags, opts)
	log.Printf("All done")
}
