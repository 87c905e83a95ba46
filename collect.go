package hotspot

// PileSource yields piles in increasing position order. *Iterator satisfies it.
type PileSource interface {
	Next() bool
	Pile() *Pile
	Error() error
}

// Collect drains src into PositionCounts. A position is kept when at least
// max(1, o.MinAltReads) reads carry a mutation there. With a non-nil gene, positions
// are converted to coding-sequence positions and anything outside the gene is dropped.
func Collect(src PileSource, o Options, g *Gene) (PositionCounts, error) {
	minAlt := o.MinAltReads
	if minAlt < 1 {
		minAlt = 1
	}
	counts := make(PositionCounts)
	for src.Next() {
		p := src.Pile()
		n := p.Mutations(o)
		if n < minAlt {
			continue
		}
		pos := p.Pos
		if g != nil {
			var ok bool
			if pos, ok = g.Query(g.Strand, p.Chrom, p.Pos); !ok {
				continue
			}
		}
		counts[pos] += n
	}
	return counts, src.Error()
}
