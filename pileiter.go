package hotspot

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/brentp/hotspot/bamat"
)

// Iterator generates piles the order they were queried.
// Internally, it holds a cache of alignment objects that overlap
// the current position. It requests new ones and drops old ones
// as they start or end overlapping with the (updated) pile position.
type Iterator struct {
	// underlying iterator from which to pull *sam.Records.
	bit   *bam.Iterator
	bamat *bamat.BamAt
	chrom string
	err   error
	// pile gets created and set on each call to Next()
	pile *Pile
	opts Options
	// track current genomic position
	pos int
	// hold all the alignments we (might) need to look at given the current pos
	cache []*Align
	end   int
	// reference bases for [refStart, refStart+len(ref))
	ref      []byte
	refStart int
}

// Position indicates where the pileup is performed, 0-based half-open.
// An End <= 0 means the end of the chromosome.
type Position struct {
	Chrom string
	Start int
	End   int
}

func (p Position) String() string {
	if p.End <= 0 {
		return p.Chrom
	}
	return fmt.Sprintf("%s:%d-%d", p.Chrom, p.Start+1, p.End)
}

// ParseRegion parses a 1-based inclusive region like chr1:1234-5678, or just chr1 for the whole chromosome.
func ParseRegion(region string) (Position, error) {
	chromse := strings.Split(strings.TrimSpace(region), ":")
	if chromse[0] == "" || len(chromse) > 2 {
		return Position{}, fmt.Errorf("expected a region like {chrom}:{start}-{end}. Got %q", region)
	}
	if len(chromse) == 1 {
		return Position{Chrom: chromse[0]}, nil
	}
	se := strings.Split(strings.ReplaceAll(chromse[1], ",", ""), "-")
	if len(se) != 2 {
		return Position{}, fmt.Errorf("expected a region like {chrom}:{start}-{end}. Got %q", region)
	}
	start, err := strconv.Atoi(se[0])
	if err != nil {
		return Position{}, fmt.Errorf("unable to parse region %s", region)
	}
	end, err := strconv.Atoi(se[1])
	if err != nil {
		return Position{}, fmt.Errorf("unable to parse region %s", region)
	}
	if start < 1 || end < start {
		return Position{}, fmt.Errorf("bad interval in region %s", region)
	}
	return Position{Chrom: chromse[0], Start: start - 1, End: end}, nil
}

// Up is the user-facing function that performs the pileup.
// When fa is nil every RefBase is 'N' and no mismatches are reported.
func Up(bampath string, opts Options, pos Position, fa *Reference) *Iterator {
	b, err := bamat.New(bampath)
	if err != nil {
		return &Iterator{err: err}
	}
	if pos.End <= 0 {
		if pos.End, err = b.Len(pos.Chrom); err != nil {
			b.Close()
			return &Iterator{err: err}
		}
	}

	bit, err := b.Query(pos.Chrom, pos.Start, pos.End)
	if err != nil {
		b.Close()
		return &Iterator{err: err}
	}

	it := &Iterator{bit: bit, bamat: b, pos: pos.Start, chrom: pos.Chrom, opts: opts, end: pos.End}
	it.cache = make([]*Align, 0, 32)

	if fa != nil {
		it.refStart = pos.Start
		if it.ref, err = fa.Fetch(pos.Chrom, pos.Start, pos.End); err != nil {
			it.err = err
			return it
		}
	}

	// prime the cache and potentially advance it to the start of the first read.
	for bit.Next() {
		rec := it.bit.Record()
		if !passes(rec, opts) {
			continue
		}
		it.cache = append(it.cache, &Align{Record: rec})
		if it.cache[0].Start() > it.pos {
			it.pos = it.cache[0].Start()
		}
		break
	}
	if err := bit.Error(); err != nil && err != io.EOF {
		it.err = err
	}
	return it
}

// Error returns any error encountered by the Iterator
func (it *Iterator) Error() error {
	if it.err == io.EOF {
		return nil
	}
	return it.err
}

func passes(r *sam.Record, o Options) bool {
	if uint16(r.Flags)&o.IncludeFlag != o.IncludeFlag {
		return false
	}
	if uint16(r.Flags)&o.ExcludeFlag != 0 {
		return false
	}
	return r.MapQ >= o.MinMappingQuality
}

func (it *Iterator) refBase(pos int) byte {
	i := pos - it.refStart
	if i < 0 || i >= len(it.ref) {
		return 'N'
	}
	return it.ref[i]
}

// Next returns true as long as any remaning pileups are available.
func (it *Iterator) Next() bool {
	if it.err != nil || it.pos >= it.end {
		return false
	}
	// drop from the cache where the end is < the current position. this could leave
	// on some unneeded alignments when a longer alignment precedes a shorter one,
	// that will just cause pile.Update to do a bit more work but wont affect they
	// result.
	var i int
	for i = 0; i < len(it.cache) && it.cache[i].End() < it.pos; i++ {
	}
	if i > 0 {
		// copy the items we need to the start and nil out the rest so we don't leak.
		copy(it.cache, it.cache[i:])
		for j := i; j > 0; j-- {
			it.cache[len(it.cache)-j] = nil
		}
		it.cache = it.cache[:len(it.cache)-i]
	}

	// add to the cache as long until the start of the most recently added record
	// is greater than the current position.
	hasMore := true
	for len(it.cache) == 0 || it.cache[len(it.cache)-1].Start() <= it.pos {
		if it.bit.Next() {
			rec := it.bit.Record()
			if !passes(rec, it.opts) {
				continue
			}
			it.cache = append(it.cache, &Align{Record: rec})
		} else {
			hasMore = false
			it.err = it.bit.Error()
			break
		}
	}
	if len(it.cache) == 0 && !hasMore {
		return false
	}
	if it.err != nil && it.err != io.EOF {
		it.pile = nil
		return false
	}
	it.pile = &Pile{Chrom: it.chrom, Pos: it.pos, RefBase: it.refBase(it.pos)}
	if err := it.pile.Update(it.opts, it.cache); err != nil {
		it.err = err
		it.pile = nil
		return false
	}
	it.pos++
	// skip missing regions.
	if it.pile.Depth == 0 && len(it.cache) > 0 && it.cache[0].Start() > it.pos {
		it.pos = it.cache[0].Start()
	}
	return true
}

// Pile returns the next pile from the iterator.
func (it *Iterator) Pile() *Pile { return it.pile }

// Close the underlying bam iterator and bam file.
func (it *Iterator) Close() error {
	it.cache = it.cache[:0]
	var err error
	if it.bit != nil {
		err = it.bit.Close()
	}
	if cerr := it.bamat.Close(); err == nil {
		err = cerr
	}
	return err
}
