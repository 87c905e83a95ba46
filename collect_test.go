package hotspot_test

import (
	"errors"

	"github.com/brentp/hotspot"
	. "gopkg.in/check.v1"
)

type piles struct {
	ps  []hotspot.Pile
	i   int
	err error
}

func (s *piles) Next() bool {
	if s.i >= len(s.ps) {
		return false
	}
	s.i++
	return true
}

func (s *piles) Pile() *hotspot.Pile { return &s.ps[s.i-1] }
func (s *piles) Error() error        { return s.err }

type CollectTest struct{}

var _ = Suite(&CollectTest{})

func genomePiles() *piles {
	return &piles{ps: []hotspot.Pile{
		{Chrom: "chr1", Pos: 104, MisMatches: 3},
		{Chrom: "chr1", Pos: 105, MisMatches: 4},
		{Chrom: "chr1", Pos: 106, MisMatches: 0, Deletions: 2},
		{Chrom: "chr1", Pos: 110, MisMatches: 1},
		{Chrom: "chr1", Pos: 121, MisMatches: 2},
		{Chrom: "chr1", Pos: 130, MisMatches: 5},
		{Chrom: "chr1", Pos: 150, MisMatches: 1, Insertions: 1},
	}}
}

func (t *CollectTest) TestGenomic(c *C) {
	counts, err := hotspot.Collect(genomePiles(), hotspot.Options{}, nil)
	c.Assert(err, IsNil)
	c.Assert(counts, DeepEquals, hotspot.PositionCounts{104: 3, 105: 4, 110: 1, 121: 2, 130: 5, 150: 1})
}

func (t *CollectTest) TestMinAlt(c *C) {
	counts, err := hotspot.Collect(genomePiles(), hotspot.Options{MinAltReads: 3}, nil)
	c.Assert(err, IsNil)
	c.Assert(counts, DeepEquals, hotspot.PositionCounts{104: 3, 105: 4, 130: 5})
}

func (t *CollectTest) TestIndels(c *C) {
	counts, err := hotspot.Collect(genomePiles(), hotspot.Options{CountIndels: true}, nil)
	c.Assert(err, IsNil)
	c.Assert(counts[106], Equals, 2)
	c.Assert(counts[150], Equals, 2)
}

func (t *CollectTest) TestGene(c *C) {
	g, err := hotspot.ParseBed(plusBed)
	c.Assert(err, IsNil)
	counts, err := hotspot.Collect(genomePiles(), hotspot.Options{}, g)
	c.Assert(err, IsNil)
	// 104 and 130 are outside the coding exons and splice sites; 121 is a 5' splice site.
	c.Assert(counts, DeepEquals, hotspot.PositionCounts{0: 4, 5: 1, 51: 2, 15: 1})

	st, err := hotspot.PositionStatistics(counts)
	c.Assert(err, IsNil)
	c.Assert(st.Recurrent, Equals, 6)
	c.Assert(st.DeltaEntropy > 0, Equals, true)
}

func (t *CollectTest) TestOtherChrom(c *C) {
	g, err := hotspot.ParseBed(plusBed)
	c.Assert(err, IsNil)
	src := &piles{ps: []hotspot.Pile{{Chrom: "chr2", Pos: 105, MisMatches: 4}}}
	counts, err := hotspot.Collect(src, hotspot.Options{}, g)
	c.Assert(err, IsNil)
	c.Assert(counts, HasLen, 0)
}

func (t *CollectTest) TestError(c *C) {
	src := genomePiles()
	src.err = errors.New("truncated bam")
	_, err := hotspot.Collect(src, hotspot.Options{}, nil)
	c.Assert(err, ErrorMatches, "truncated bam")
}
