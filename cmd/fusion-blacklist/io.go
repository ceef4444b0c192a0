package main

// This file defines the candidate I/O of fusion-blacklist: a TSV reader and
// writer for interchange with the upstream caller, and a recordio dump
// (fusionWriter / fusionReader) that stores the candidates together with the
// gene DB so the filtering stage can be re-run on its own.

import (
	"bufio"
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/recordio"
	"github.com/grailbio/base/recordio/recordiozstd"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/fusionfilter/fusion"
)

// fusionRow mirrors one line of the candidate TSV. Breakpoints and
// closest-genomic-breakpoint columns are zero-based. Strand columns are "+",
// "-", or "." when the strands could not be predicted.
type fusionRow struct {
	Gene1, Gene2                                         string
	Contig1, Breakpoint1, Direction1, Strand1            string
	Contig2, Breakpoint2, Direction2, Strand2            string
	SplitReads1, SplitReads2, DiscordantMates            string
	Spliced1, Spliced2, ReadThrough                      string
	Evalue                                               string
	ClosestGenomicBreakpoint1, ClosestGenomicBreakpoint2 string
}

var fusionHeader = []string{
	"Gene1", "Gene2",
	"Contig1", "Breakpoint1", "Direction1", "Strand1",
	"Contig2", "Breakpoint2", "Direction2", "Strand2",
	"SplitReads1", "SplitReads2", "DiscordantMates",
	"Spliced1", "Spliced2", "ReadThrough",
	"Evalue",
	"ClosestGenomicBreakpoint1", "ClosestGenomicBreakpoint2",
}

// readFusions reads the candidate TSV. The file may be compressed. Any data
// error crashes the process; the upstream caller controls this format, so a
// broken file is not recoverable.
func readFusions(ctx context.Context, path string, geneDB *fusion.GeneDB) []*fusion.Fusion {
	in, err := file.Open(ctx, path)
	if err != nil {
		log.Panicf("open %s: %v", path, err)
	}
	var inr io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(inr, in.Name()); u != nil {
		inr = u
	}
	r := tsv.NewReader(inr)
	r.HasHeaderRow = true
	r.UseHeaderNames = true

	parseInt := func(s string, nLine int) int64 {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			log.Panicf("read tsv %s:%d: bad integer %q", path, nLine, s)
		}
		return v
	}
	parseBool := func(s string, nLine int) bool {
		v, err := strconv.ParseBool(s)
		if err != nil {
			log.Panicf("read tsv %s:%d: bad boolean %q", path, nLine, s)
		}
		return v
	}
	geneID := func(name string, nLine int) fusion.GeneID {
		gi := geneDB.GeneInfoByName(name)
		if gi == nil {
			log.Panicf("read tsv %s:%d: gene %s not in the gene annotation", path, nLine, name)
		}
		return gi.ID
	}

	var fusions []*fusion.Fusion
	row := fusionRow{}
	nLine := 0
	for {
		if err := r.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			log.Panic(err)
		}
		nLine++
		f := &fusion.Fusion{
			Gene1:                     geneID(row.Gene1, nLine),
			Gene2:                     geneID(row.Gene2, nLine),
			Contig1:                   geneDB.InternContig(row.Contig1),
			Contig2:                   geneDB.InternContig(row.Contig2),
			Breakpoint1:               fusion.Position(parseInt(row.Breakpoint1, nLine)),
			Breakpoint2:               fusion.Position(parseInt(row.Breakpoint2, nLine)),
			SplitReads1:               int(parseInt(row.SplitReads1, nLine)),
			SplitReads2:               int(parseInt(row.SplitReads2, nLine)),
			DiscordantMates:           int(parseInt(row.DiscordantMates, nLine)),
			Spliced1:                  parseBool(row.Spliced1, nLine),
			Spliced2:                  parseBool(row.Spliced2, nLine),
			ReadThrough:               parseBool(row.ReadThrough, nLine),
			ClosestGenomicBreakpoint1: fusion.Position(parseInt(row.ClosestGenomicBreakpoint1, nLine)),
			ClosestGenomicBreakpoint2: fusion.Position(parseInt(row.ClosestGenomicBreakpoint2, nLine)),
		}
		if f.Direction1, err = fusion.ParseDirection(row.Direction1); err != nil {
			log.Panicf("read tsv %s:%d: %v", path, nLine, err)
		}
		if f.Direction2, err = fusion.ParseDirection(row.Direction2); err != nil {
			log.Panicf("read tsv %s:%d: %v", path, nLine, err)
		}
		if row.Strand1 == "." || row.Strand2 == "." {
			f.StrandsAmbiguous = true
		} else {
			if f.PredictedStrand1, err = fusion.ParseStrand(row.Strand1); err != nil {
				log.Panicf("read tsv %s:%d: %v", path, nLine, err)
			}
			if f.PredictedStrand2, err = fusion.ParseStrand(row.Strand2); err != nil {
				log.Panicf("read tsv %s:%d: %v", path, nLine, err)
			}
		}
		if f.Evalue, err = strconv.ParseFloat(row.Evalue, 64); err != nil {
			log.Panicf("read tsv %s:%d: bad evalue %q", path, nLine, row.Evalue)
		}
		fusions = append(fusions, f)
	}
	if err := in.Close(ctx); err != nil {
		log.Panicf("close %s: %v", path, err)
	}
	log.Printf("Read %d candidate fusions from %s", len(fusions), path)
	return fusions
}

// writeFusions writes the candidates back out with a trailing Filter column
// naming the filter that rejected each one ("none" for survivors).
func writeFusions(ctx context.Context, path string, geneDB *fusion.GeneDB, fusions []*fusion.Fusion) {
	out, err := file.Create(ctx, path)
	if err != nil {
		log.Panicf("create %s: %v", path, err)
	}
	w := bufio.NewWriter(out.Writer(ctx))
	er := errors.Once{}
	for i, col := range fusionHeader {
		if i > 0 {
			er.Set(w.WriteByte('\t'))
		}
		_, err := w.WriteString(col)
		er.Set(err)
	}
	_, err = w.WriteString("\tFilter\n")
	er.Set(err)

	strand := func(f *fusion.Fusion, s fusion.Strand) string {
		if f.StrandsAmbiguous {
			return "."
		}
		return s.String()
	}
	for _, f := range fusions {
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%d\t%s\t%s\t%d\t%d\t%d\t%t\t%t\t%t\t%g\t%d\t%d\t%s\n",
			geneDB.GeneInfo(f.Gene1).Gene, geneDB.GeneInfo(f.Gene2).Gene,
			geneDB.ContigName(f.Contig1), f.Breakpoint1, f.Direction1, strand(f, f.PredictedStrand1),
			geneDB.ContigName(f.Contig2), f.Breakpoint2, f.Direction2, strand(f, f.PredictedStrand2),
			f.SplitReads1, f.SplitReads2, f.DiscordantMates,
			f.Spliced1, f.Spliced2, f.ReadThrough,
			f.Evalue,
			f.ClosestGenomicBreakpoint1, f.ClosestGenomicBreakpoint2,
			f.Filter)
		er.Set(err)
	}
	er.Set(w.Flush())
	er.Set(out.Close(ctx))
	if er.Err() != nil {
		log.Panicf("write %s: %v", path, er.Err())
	}
	log.Printf("Wrote %d fusions to %s", len(fusions), path)
}

const (
	// <fileVersionHeader, fileVersion> is stored in a recordio header.
	fileVersionHeader = "fusionblacklistversion"
	fileVersion       = "FUSION_BLACKLIST_V1"
)

// dumpHeader is stored in the trailer section of the recordio file.
type dumpHeader struct {
	// Opts is the set of options in effect when the dump was written.
	Opts fusion.Opts
	// Contigs is the contig name table, indexed by ContigID.
	Contigs []string
	// Genes is the list of genes registered in the gene DB.
	Genes []fusion.GeneInfo
}

func encodeGOB(gw *gob.Encoder, v interface{}) {
	if err := gw.Encode(v); err != nil {
		panic(err)
	}
}

func decodeGOB(gr *gob.Decoder, v interface{}) {
	if err := gr.Decode(v); err != nil {
		panic(err)
	}
}

// fusionWriter dumps the gene DB and candidate fusions into a recordio file.
type fusionWriter struct {
	out    file.File
	w      recordio.Writer
	geneDB *fusion.GeneDB
	opts   fusion.Opts
}

func newFusionWriter(ctx context.Context, outPath string, geneDB *fusion.GeneDB, opts fusion.Opts) *fusionWriter {
	recordiozstd.Init()
	out, err := file.Create(ctx, outPath)
	if err != nil {
		log.Panicf("rio create %v: %v", outPath, err)
	}
	w := recordio.NewWriter(out.Writer(ctx), recordio.WriterOpts{
		Transformers: []string{recordiozstd.Name},
	})
	w.AddHeader(fileVersionHeader, fileVersion)
	w.AddHeader(recordio.KeyTrailer, true)
	return &fusionWriter{out: out, w: w, geneDB: geneDB, opts: opts}
}

// Write adds a fusion candidate. Any error will crash the process.
func (w *fusionWriter) Write(f *fusion.Fusion) {
	b := bytes.NewBuffer(nil)
	gw := gob.NewEncoder(b)
	encodeGOB(gw, *f)
	w.w.Append(b.Bytes())
}

// Close closes the writer. It must be called exactly once, after writing all
// the candidates.
func (w *fusionWriter) Close(ctx context.Context) {
	b := bytes.NewBuffer(nil)
	gw := gob.NewEncoder(b)
	h := dumpHeader{Opts: w.opts, Contigs: w.geneDB.Contigs()}
	minGeneID, limitGeneID := w.geneDB.GeneIDRange()
	for gid := minGeneID; gid < limitGeneID; gid++ {
		h.Genes = append(h.Genes, *w.geneDB.GeneInfo(gid))
	}
	encodeGOB(gw, h)
	w.w.SetTrailer(b.Bytes())
	if err := w.w.Finish(); err != nil {
		log.Panic(err)
	}
	if err := w.out.Close(ctx); err != nil {
		log.Panic(err)
	}
}

// fusionReader reads a dump created by fusionWriter.
type fusionReader struct {
	in     file.File
	r      recordio.Scanner
	geneDB *fusion.GeneDB
	opts   fusion.Opts

	f *fusion.Fusion // last candidate read by Scan.
}

func newFusionReader(ctx context.Context, inPath string) *fusionReader {
	in, err := file.Open(ctx, inPath)
	if err != nil {
		log.Panicf("open %s: %v", inPath, err)
	}
	recordiozstd.Init()
	r := recordio.NewScanner(in.Reader(ctx), recordio.ScannerOpts{})
	versionFound := false
	for _, kv := range r.Header() {
		if kv.Key == fileVersionHeader {
			if kv.Value.(string) != fileVersion {
				log.Panicf("fusion dump version mismatch, got %v, expect %v",
					kv.Value.(string), fileVersion)
			}
			versionFound = true
			break
		}
	}
	if !versionFound {
		log.Panic(fileVersionHeader + " not found")
	}
	gr := gob.NewDecoder(bytes.NewReader(r.Trailer()))
	h := dumpHeader{}
	decodeGOB(gr, &h)

	geneDB := fusion.NewGeneDB()
	geneDB.PrepopulateContigs(h.Contigs)
	geneDB.PrepopulateGeneInfo(h.Genes)
	return &fusionReader{in: in, r: r, geneDB: geneDB, opts: h.Opts}
}

// Opts returns the options written in the dump. It can be called any time.
func (r *fusionReader) Opts() fusion.Opts { return r.opts }

// GeneDB returns the gene DB written in the dump. It can be called any time.
func (r *fusionReader) GeneDB() *fusion.GeneDB { return r.geneDB }

// Scan reads the next fusion candidate.
//
// REQUIRES: Close hasn't been called.
func (r *fusionReader) Scan() bool {
	if !r.r.Scan() {
		return false
	}
	gr := gob.NewDecoder(bytes.NewReader(r.r.Get().([]byte)))
	f := fusion.Fusion{}
	decodeGOB(gr, &f)
	r.f = &f
	return true
}

// Get yields the current candidate.
//
// REQUIRES: Last Scan call returned true.
func (r *fusionReader) Get() *fusion.Fusion { return r.f }

// Close closes the reader. It must be called exactly once. Any error will
// crash the process.
func (r *fusionReader) Close(ctx context.Context) {
	if err := r.r.Err(); err != nil {
		log.Panic(err)
	}
	if err := r.in.Close(ctx); err != nil {
		log.Panic(err)
	}
}
