package hotspot_test

import (
	"github.com/biogo/hts/sam"
	"github.com/brentp/hotspot"

	. "gopkg.in/check.v1"
)

var records = []*sam.Record{
	{Name: "r001/1", Pos: 6, Cigar: []sam.CigarOp{
		sam.NewCigarOp(sam.CigarMatch, 8),
		sam.NewCigarOp(sam.CigarInsertion, 2),
		sam.NewCigarOp(sam.CigarMatch, 4),
		sam.NewCigarOp(sam.CigarDeletion, 1),
		sam.NewCigarOp(sam.CigarMatch, 3),
	},
		Flags: sam.Paired | sam.ProperPair | sam.MateReverse | sam.Read1,
		Seq:   sam.NewSeq([]byte("TTAGATAAAGGATACTG")),
		Qual:  []uint8{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
	},
}

type PileTest struct{}

var _ = Suite(&PileTest{})

func (t *PileTest) TestAt(c *C) {
	r := hotspot.Align{Record: records[0]}
	cig, err := r.At(0)
	c.Assert(err, IsNil)
	c.Assert(cig, IsNil)

	cig, err = r.At(8)
	c.Assert(err, IsNil)
	c.Assert(cig.At.Type(), Equals, sam.CigarMatch)

	for off := 13; off < 18; off++ {
		cig, err = r.At(off)
		c.Assert(err, IsNil)
		c.Assert(cig.At.Type(), Equals, sam.CigarMatch)
	}
	cig, _ = r.At(18)
	c.Assert(cig.At.Type(), Equals, sam.CigarDeletion)
	c.Assert(cig.Right.Type(), Equals, sam.CigarMatch)
	cig, _ = r.At(19)
	c.Assert(cig.At.Type(), Equals, sam.CigarMatch)

	cig, err = r.At(22)
	c.Assert(err, IsNil)
	c.Assert(cig, IsNil)
}

func (t *PileTest) TestBackwards(c *C) {
	r := hotspot.Align{Record: records[0]}
	_, err := r.At(10)
	c.Assert(err, IsNil)
	_, err = r.At(10)
	c.Assert(err, Equals, hotspot.ErrBackwards)
	_, err = r.At(9)
	c.Assert(err, Equals, hotspot.ErrBackwards)
	_, err = r.At(11)
	c.Assert(err, IsNil)
}

func (t *PileTest) TestRight(c *C) {
	r := hotspot.Align{Record: records[0]}
	cig, _ := r.At(17)
	c.Assert(cig.Right.Type(), Equals, sam.CigarDeletion)
	cig, _ = r.At(18)
	c.Assert(cig.Right.Type(), Equals, sam.CigarMatch)

	// last base of the read.
	cig, _ = r.At(21)
	c.Assert(cig.At.Type(), Equals, sam.CigarMatch)
	c.Assert(cig.Right.Type(), Equals, sam.CigarMatch)
}

func (t *PileTest) TestBases(c *C) {
	r := hotspot.Align{Record: records[0]}
	var cig *hotspot.CigarSummary

	cig, _ = r.At(r.Pos)
	c.Assert(string(cig.Base), Equals, "T")

	cig, _ = r.At(r.Pos + 1)
	c.Assert(string(cig.Base), Equals, "T")

	cig, _ = r.At(r.Pos + 2)
	c.Assert(string(cig.Base), Equals, "A")
	c.Assert(cig.Qual, Equals, uint8(0xff))

	cig, _ = r.At(r.Pos + 7)
	c.Assert(string(cig.Base), Equals, "A")
	c.Assert(cig.Right.Type(), Equals, sam.CigarInsertion)
	c.Assert(cig.Insertion, DeepEquals, []byte("AG"))

	// -- insertion between 7 and 8

	cig, _ = r.At(r.Pos + 8)
	c.Assert(string(cig.Base), Equals, "G")
	c.Assert(cig.Insertion, IsNil)

	cig, _ = r.At(r.Pos + 9)
	c.Assert(string(cig.Base), Equals, "A")

	cig, _ = r.At(r.Pos + 10)
	c.Assert(string(cig.Base), Equals, "T")

	cig, _ = r.At(r.Pos + 11)
	c.Assert(string(cig.Base), Equals, "A")

	cig, _ = r.At(r.Pos + 12)
	c.Assert(string(cig.Base), Equals, "*")

	cig, _ = r.At(r.Pos + 15)
	c.Assert(string(cig.Base), Equals, "G")
}

func (t *PileTest) TestMutations(c *C) {
	p := &hotspot.Pile{MisMatches: 3, Deletions: 2, Insertions: 1}
	c.Assert(p.Mutations(hotspot.Options{}), Equals, 3)
	c.Assert(p.Mutations(hotspot.Options{CountIndels: true}), Equals, 6)
}

func (t *PileTest) TestTabString(c *C) {
	p := hotspot.Pile{Chrom: "ref", Pos: 9, RefBase: 'A', Depth: 3, MisMatches: 1, Alts: [4]uint32{0, 1, 0, 0}}
	c.Assert(p.TabString(), Equals, "ref\t10\tA\t3\t1\t0\t1\t0\t0\t0\t0")
}
