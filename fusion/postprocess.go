package fusion

import (
	"encoding/binary"

	"github.com/grailbio/base/log"
	"github.com/minio/highwayhash"
)

type hashKey = [highwayhash.Size]uint8

// groupFusionsByEvent groups candidate indices by the event they describe:
// the gene pair and breakpoint pair, ignoring orientation.
func groupFusionsByEvent(fusions []*Fusion) map[hashKey][]int {
	var zeroSeed = hashKey{}
	buf := make([]uint8, 0, 24)

	hashEvent := func(f *Fusion) hashKey {
		g1, g2 := f.Gene1, f.Gene2
		b1, b2 := f.Breakpoint1, f.Breakpoint2
		if g2 < g1 || (g1 == g2 && b2 < b1) {
			g1, g2 = g2, g1
			b1, b2 = b2, b1
		}
		var tmp [8]uint8
		buf = buf[:0]
		binary.LittleEndian.PutUint32(tmp[:4], uint32(g1))
		buf = append(buf, tmp[:4]...)
		binary.LittleEndian.PutUint32(tmp[:4], uint32(g2))
		buf = append(buf, tmp[:4]...)
		binary.LittleEndian.PutUint64(tmp[:], uint64(b1))
		buf = append(buf, tmp[:]...)
		binary.LittleEndian.PutUint64(tmp[:], uint64(b2))
		buf = append(buf, tmp[:]...)
		return highwayhash.Sum(buf, zeroSeed[:])
	}

	groups := map[hashKey][]int{}
	for i, f := range fusions {
		h := hashEvent(f)
		groups[h] = append(groups[h], i)
	}
	return groups
}

// CollapseDuplicates tags candidate records that describe the same event (same
// gene pair and breakpoint pair) with FilterDuplicates, keeping the copy with
// the most supporting reads. Already-filtered records keep their original
// reason. It returns the number of records tagged.
func CollapseDuplicates(fusions []*Fusion) int {
	groups := groupFusionsByEvent(fusions)
	nDup := 0
	for _, indices := range groups {
		best := indices[0]
		for _, i := range indices[1:] {
			if fusions[i].SupportingReads() > fusions[best].SupportingReads() {
				best = i
			}
		}
		for _, i := range indices {
			if i != best && fusions[i].Filter == FilterNone {
				fusions[i].Filter = FilterDuplicates
				nDup++
			}
		}
	}
	if nDup > 0 {
		log.Printf("Tagged %d of %d candidates as duplicates", nDup, len(fusions))
	}
	return nDup
}
