package fusion

// The genome is divided into fixed-width buckets so that fusions near a
// blacklisted coordinate can be looked up without scanning the whole
// collection. An interval maps to the minimal contiguous set of buckets
// covering it.

// bucketWidth is the bucket size in base pairs.
const bucketWidth = 100000

// bucketKey identifies one bucket: a contig and a bucket-aligned start
// coordinate.
type bucketKey struct {
	contig ContigID
	start  Position
}

// floorDiv divides p by width, rounding toward negative infinity. Plain
// integer division truncates toward zero, which would map negative
// coordinates (produced by mate-gap expansion) into the wrong bucket.
func floorDiv(p, width Position) Position {
	q := p / width
	if p%width != 0 && p < 0 {
		q--
	}
	return q
}

// bucketsFor calls emit with every bucket key overlapped by the inclusive
// interval [start, end] on the given contig.
func bucketsFor(contig ContigID, start, end Position, emit func(bucketKey)) {
	for b := floorDiv(start, bucketWidth); b <= floorDiv(end, bucketWidth); b++ {
		emit(bucketKey{contig, b * bucketWidth})
	}
}

// spatialIndex maps bucket keys to the set of live fusions whose breakpoints
// or gene spans fall into the bucket. It is built once per filtering pass and
// owned exclusively by it.
type spatialIndex struct {
	buckets map[bucketKey]map[*Fusion]struct{}
	// keys remembers every bucket a fusion was inserted under, so a match can
	// remove it from the whole index eagerly.
	keys map[*Fusion][]bucketKey
}

// buildSpatialIndex indexes all fusions that are still candidates: unfiltered
// ones, plus filtered ones that the genomic-support filter may yet recover.
func buildSpatialIndex(geneDB *GeneDB, fusions []*Fusion) *spatialIndex {
	x := &spatialIndex{
		buckets: map[bucketKey]map[*Fusion]struct{}{},
		keys:    map[*Fusion][]bucketKey{},
	}
	for _, f := range fusions {
		if f.Filter != FilterNone && f.ClosestGenomicBreakpoint1 < 0 {
			continue
		}
		g1 := geneDB.GeneInfo(f.Gene1)
		g2 := geneDB.GeneInfo(f.Gene2)
		emit := func(key bucketKey) { x.insert(f, key) }
		bucketsFor(f.Contig1, f.Breakpoint1, f.Breakpoint1, emit)
		bucketsFor(f.Contig2, f.Breakpoint2, f.Breakpoint2, emit)
		bucketsFor(g1.Contig, g1.Start, g1.End, emit)
		bucketsFor(g2.Contig, g2.Start, g2.End, emit)
	}
	return x
}

// insert adds f to the bucket at key. Inserting the same fusion into the same
// bucket twice is a no-op; breakpoints and gene spans often share buckets.
func (x *spatialIndex) insert(f *Fusion, key bucketKey) {
	set := x.buckets[key]
	if set == nil {
		set = map[*Fusion]struct{}{}
		x.buckets[key] = set
	}
	if _, ok := set[f]; ok {
		return
	}
	set[f] = struct{}{}
	x.keys[f] = append(x.keys[f], key)
}

// remove deletes f from every bucket it occupies, so that later blacklist
// lines do not test it again.
func (x *spatialIndex) remove(f *Fusion) {
	for _, key := range x.keys[f] {
		delete(x.buckets[key], f)
	}
	delete(x.keys, f)
}
