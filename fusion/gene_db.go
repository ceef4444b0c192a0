package fusion

import (
	"context"
	"io"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
)

// ContigID is a dense sequence number (1, 2, 3, ...) assigned to a chromosome
// or scaffold name. IDs are valid only within one process invocation.
type ContigID int32

const invalidContigID = ContigID(0)

// GeneID is a dense sequence number (1, 2, 3, ...) assigned to a gene (e.g.,
// "MAPK10"). IDs are valid only within one process invocation.
type GeneID int32

const invalidGeneID = GeneID(0)

// GeneInfo stores the reference info about a gene. The blacklist engine only
// reads these records; they are owned by the GeneDB.
type GeneInfo struct {
	// ID is a dense sequence number (1, 2, ...). It is valid only during the
	// current run.
	ID GeneID
	// Gene is the gene symbol, e.g. "OR8K1".
	Gene string
	// Contig, Start, End locate the gene span. Coordinates are zero-based,
	// inclusive on both ends.
	Contig ContigID
	Start  Position
	End    Position
	// Strand is the annotated strand of the gene.
	Strand Strand
}

// GeneDB maps contig and gene names to dense IDs and owns the gene records
// that blacklist rules and fusions refer to. Thread compatible.
type GeneDB struct {
	contigNames map[string]ContigID
	contigs     []string // indexed by ContigID

	names map[string]GeneID
	genes []*GeneInfo // indexed by GeneID
}

// NewGeneDB creates an empty GeneDB.
func NewGeneDB() *GeneDB {
	return &GeneDB{
		contigNames: map[string]ContigID{},
		contigs:     []string{"invalid"},
		names:       map[string]GeneID{},
		genes:       []*GeneInfo{{Gene: "invalid"}},
	}
}

// InternContig finds or assigns an ID for the contig with the given name.
func (m *GeneDB) InternContig(name string) ContigID {
	if id, ok := m.contigNames[name]; ok {
		return id
	}
	id := ContigID(len(m.contigs))
	m.contigNames[name] = id
	m.contigs = append(m.contigs, name)
	return id
}

// contigID retrieves the ID of a contig. It returns invalidContigID if the
// contig is not registered.
func (m *GeneDB) contigID(name string) ContigID {
	return m.contigNames[name]
}

// ContigName returns the name of a contig.
//
// REQUIRES: id is valid.
func (m *GeneDB) ContigName(id ContigID) string {
	if id == invalidContigID {
		panic(id)
	}
	return m.contigs[id]
}

// Contigs returns the registered contig names, indexed by ContigID. The first
// entry is a placeholder for the invalid ID.
func (m *GeneDB) Contigs() []string { return m.contigs }

// GeneIDRange returns the range of gene IDs registered in this object. The
// low end is closed, the high end is open.
func (m *GeneDB) GeneIDRange() (GeneID, GeneID) { return 1, GeneID(len(m.genes)) }

// GeneInfo gets the GeneInfo given an ID. It always returns a non-nil info.
//
// REQUIRES: id is valid.
func (m *GeneDB) GeneInfo(id GeneID) *GeneInfo {
	if id == invalidGeneID {
		panic(id)
	}
	return m.genes[id]
}

// GeneInfoByName gets GeneInfo given a gene name. It returns nil if the gene
// is not registered.
func (m *GeneDB) GeneInfoByName(name string) *GeneInfo {
	id := m.names[name]
	if id == invalidGeneID {
		return nil
	}
	return m.genes[id]
}

// internGene finds or assigns an ID to the gene with the given name.
func (m *GeneDB) internGene(name string) GeneID {
	if id, ok := m.names[name]; ok {
		return id
	}
	id := GeneID(len(m.genes))
	m.names[name] = id
	m.genes = append(m.genes, &GeneInfo{ID: id, Gene: name})
	return id
}

// AddGene registers a gene span. Coordinates are zero-based, inclusive. The
// contig is interned as a side effect. Re-adding a gene overwrites its span.
func (m *GeneDB) AddGene(name, contig string, start, end Position, strand Strand) GeneID {
	id := m.internGene(name)
	gi := m.genes[id]
	gi.Contig = m.InternContig(contig)
	gi.Start, gi.End, gi.Strand = start, end, strand
	return id
}

// PrepopulateContigs registers contig names in batch, preserving their IDs.
// Used to rebuild a GeneDB from a recordio dump.
func (m *GeneDB) PrepopulateContigs(contigs []string) {
	for i, name := range contigs {
		if i == 0 {
			continue // placeholder for the invalid ID
		}
		if id := m.InternContig(name); id != ContigID(i) {
			panic(name)
		}
	}
}

// PrepopulateGeneInfo fills gene info in batch, preserving gene IDs. Used to
// rebuild a GeneDB from a recordio dump.
func (m *GeneDB) PrepopulateGeneInfo(genes []GeneInfo) {
	for _, info := range genes {
		gid := m.internGene(info.Gene)
		if gid != info.ID {
			panic(info)
		}
		*m.genes[gid] = info
	}
}

// ReadGenes reads a gene-annotation TSV with a "Gene Contig Start End Strand"
// header. Start and End are one-based, inclusive, and are converted to
// zero-based on load. Contigs are interned in order of first appearance.
func (m *GeneDB) ReadGenes(ctx context.Context, path string) {
	in, err := file.Open(ctx, path)
	if err != nil {
		log.Panicf("open %s: %v", path, err)
	}
	r := tsv.NewReader(in.Reader(ctx))
	r.HasHeaderRow = true
	r.UseHeaderNames = true

	row := struct{ Gene, Contig, Start, End, Strand string }{}
	nLine := 0
	for {
		if err := r.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			log.Panic(err)
		}
		nLine++
		start, err := strconv.ParseInt(row.Start, 10, 64)
		if err != nil {
			log.Panicf("read tsv %s:%d: bad start %q", path, nLine, row.Start)
		}
		end, err := strconv.ParseInt(row.End, 10, 64)
		if err != nil {
			log.Panicf("read tsv %s:%d: bad end %q", path, nLine, row.End)
		}
		strand, err := ParseStrand(row.Strand)
		if err != nil {
			log.Panicf("read tsv %s:%d: %v", path, nLine, err)
		}
		m.AddGene(row.Gene, row.Contig, Position(start)-1, Position(end)-1, strand)
	}
	if err := in.Close(ctx); err != nil {
		log.Panicf("close %s: %v", path, err)
	}
	log.Printf("Read %d genes, %d contigs from %s", nLine, len(m.contigs)-1, path)
}
