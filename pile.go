package hotspot

import (
	"errors"
	"fmt"

	"github.com/biogo/hts/sam"
)

// ErrBackwards is returned by Align.At when a position at or before a previous query is requested.
var ErrBackwards = errors.New("hotspot: can't query an alignment at the same or a lower position than a previous call")

// SkipBase holds the byte used for a Skip Operation.
var SkipBase byte = '.'

// Options holds the filters used to decide which bases count toward a Pile.
type Options struct {
	MinBaseQuality    uint8  `arg:"-q,--min-base-quality" help:"base quality threshold"`
	MinMappingQuality uint8  `arg:"-Q,--min-mapping-quality" help:"mapping quality threshold"`
	ExcludeFlag       uint16 `arg:"-F,--exclude-flag" help:"exclude reads with any of these flags"`
	IncludeFlag       uint16 `arg:"-f,--include-flag" help:"require reads to have all of these flags"`
	MinAltReads       int    `arg:"-a,--min-alt-reads" help:"a position is mutated when at least this many reads disagree with the reference"`
	CountIndels       bool   `arg:"-i,--count-indels" help:"count deletions and insertions as mutations"`
}

// Pile holds the information about a single base.
type Pile struct {
	Chrom      string
	Pos        int
	Depth      int       // count of reads passing filters.
	RefBase    byte      // Reference base a this position.
	MisMatches uint32    // number of substitutions against RefBase.
	Alts       [4]uint32 // substitutions split by A, C, G, T.
	Deletions  uint32    // counts of deletions 'D' at this base
	Insertions uint32    // counts of insertions 'I' following this base
}

func baseIndex(b byte) int {
	switch b {
	case 'A', 'a':
		return 0
	case 'C', 'c':
		return 1
	case 'G', 'g':
		return 2
	case 'T', 't':
		return 3
	}
	return -1
}

// Mutations is the number of reads carrying a mutation at this position.
// Indels only count when o.CountIndels is set.
func (p *Pile) Mutations(o Options) int {
	n := int(p.MisMatches)
	if o.CountIndels {
		n += int(p.Deletions + p.Insertions)
	}
	return n
}

// TabString prints a tab-delimited version of the Pile
func (p Pile) TabString() string {
	return fmt.Sprintf("%s\t%d\t%c\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d",
		p.Chrom, p.Pos+1, p.RefBase, p.Depth, p.MisMatches,
		p.Alts[0], p.Alts[1], p.Alts[2], p.Alts[3],
		p.Deletions, p.Insertions)
}

// Update the Pile with info from the alignments that meet the requirements in Options.
// A base that matches RefBase, or where either the read or the reference is 'N', is never a mismatch.
func (p *Pile) Update(o Options, alns []*Align) error {
	for _, a := range alns {
		if a.MapQ < o.MinMappingQuality {
			continue
		}
		s, err := a.At(p.Pos)
		if err != nil {
			return err
		}
		if s == nil {
			continue
		}
		t := s.At.Type()
		if t == sam.CigarSkipped {
			continue
		}
		if t.Consumes().Query != 0 && s.Qual < o.MinBaseQuality {
			continue
		}

		p.Depth++

		if t == sam.CigarDeletion {
			p.Deletions++
		} else if i := baseIndex(s.Base); i >= 0 && baseIndex(p.RefBase) >= 0 && s.Base != p.RefBase {
			p.MisMatches++
			p.Alts[i]++
		}
		if s.Right.Type() == sam.CigarInsertion {
			p.Insertions++
		}
	}
	return nil
}

// Align is a sam.Record with a cursor to track position in the read and reference.
type Align struct {
	*sam.Record
	// track the into the Cigar Ops.
	CursorCigar int
	// track basepairs into the Reference
	CursorPos int
	// track basepairs into the read
	CursorRead int

	// Sequence holds the expanded sequence.
	Sequence []byte
	// the lowest position that may be queried next.
	next int
}

// CigarSummary is a summary of the context of a position for 1 alignment
type CigarSummary struct {
	At        sam.CigarOp
	Right     sam.CigarOp
	Qual      uint8
	Base      byte
	Insertion []byte
}

// At returns the CigarOp for a particular genomic position of the given read.
// It returns nil when the alignment does not cover pos0. Positions must be queried in increasing order.
func (a *Align) At(pos0 int) (*CigarSummary, error) {
	if pos0 < a.next {
		return nil, ErrBackwards
	}
	a.next = pos0 + 1
	pos := a.Pos + a.CursorPos
	if pos0 < pos || len(a.Cigar) == 0 {
		return nil, nil
	}

	if a.Sequence == nil {
		a.Sequence = a.Seq.Expand()
	}

	for _, co := range a.Cigar[a.CursorCigar:] {
		t := co.Type()
		con := t.Consumes()
		l := co.Len()
		lr := l * con.Reference
		lq := l * con.Query

		if pos+lr > pos0 {
			res := &CigarSummary{At: co, Right: co}
			// add distance into read. Subtract how far before la we are.
			readi := a.CursorRead + (pos0 - pos)
			if lq > 0 && readi >= len(a.Sequence) {
				// SEQ is '*'.
				res.Base = 'N'
			} else if lq > 0 {
				// if we consume bases from the read, then grab them.
				res.Base = a.Sequence[readi]
				if readi < len(a.Qual) {
					res.Qual = a.Qual[readi]
				}
			} else {
				res.Base = '*'
				if t == sam.CigarSkipped {
					res.Base = SkipBase
				}
			}
			if idx := a.CursorCigar + 1; pos+lr-1 == pos0 && idx < len(a.Cigar) {
				res.Right = a.Cigar[idx]
			}
			if res.Right.Type() == sam.CigarInsertion && lq > 0 {
				if end := readi + 1 + res.Right.Len(); end <= len(a.Sequence) {
					res.Insertion = a.Sequence[readi+1 : end]
				}
			}
			return res, nil
		}
		a.CursorCigar++
		a.CursorPos += lr
		a.CursorRead += lq
		pos += lr
	}
	return nil, nil
}
