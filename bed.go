package hotspot

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Gene holds the coding exons of a transcript from a BED12 line.
// Exons are 0-based half-open and have the UTRs removed.
type Gene struct {
	Name   string
	Chrom  string
	Start  int
	Strand byte
	Exons  [][2]int

	exonLens []int
	// CDSLen is the summed length of the coding exons.
	CDSLen    int
	fiveSSLen int
}

func atoi(s, field string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("hotspot: bad %s in bed line: %q", field, s)
	}
	return v, nil
}

func splitInts(s, field string) ([]int, error) {
	parts := strings.Split(strings.Trim(strings.TrimSpace(s), ","), ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := atoi(p, field)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ParseBed returns a Gene from a tab-delimited BED12 line.
func ParseBed(line string) (*Gene, error) {
	toks := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(toks) < 12 {
		return nil, fmt.Errorf("hotspot: expected 12 columns in bed line, got %d", len(toks))
	}
	g := &Gene{Name: toks[3], Chrom: toks[0]}
	if len(toks[5]) > 0 {
		g.Strand = toks[5][0]
	}
	var err error
	if g.Start, err = atoi(toks[1], "chromStart"); err != nil {
		return nil, err
	}
	thickStart, err := atoi(toks[6], "thickStart")
	if err != nil {
		return nil, err
	}
	thickEnd, err := atoi(toks[7], "thickEnd")
	if err != nil {
		return nil, err
	}
	sizes, err := splitInts(toks[10], "blockSizes")
	if err != nil {
		return nil, err
	}
	starts, err := splitInts(toks[11], "blockStarts")
	if err != nil {
		return nil, err
	}
	if len(sizes) != len(starts) {
		return nil, fmt.Errorf("hotspot: %s has %d blockSizes but %d blockStarts", g.Name, len(sizes), len(starts))
	}

	exons := make([][2]int, len(starts))
	for i, s := range starts {
		exons[i] = [2]int{g.Start + s, g.Start + s + sizes[i]}
	}
	g.Exons = codingExons(exons, thickStart, thickEnd)
	g.exonLens = make([]int, len(g.Exons))
	for i, e := range g.Exons {
		g.exonLens[i] = e[1] - e[0]
		g.CDSLen += g.exonLens[i]
	}
	if len(g.Exons) > 0 {
		g.fiveSSLen = 2 * (len(g.Exons) - 1)
	}
	return g, nil
}

// codingExons chops the UTRs out of exons using the coding region [cstart, cend].
// A coding region under one codon long means a non-coding transcript and gives no exons.
func codingExons(exons [][2]int, cstart, cend int) [][2]int {
	if cend-cstart < 3 {
		return nil
	}
	var out [][2]int
	for _, e := range exons {
		switch {
		case e[0] > cend && e[1] > cend, e[0] < cstart && e[1] < cstart:
			// UTR only
		case e[0] <= cstart && e[1] >= cend:
			out = append(out, [2]int{cstart, cend})
		case e[0] <= cstart && e[1] < cend:
			out = append(out, [2]int{cstart, e[1]})
		case e[0] > cstart && e[1] >= cend:
			out = append(out, [2]int{e[0], cend})
		default:
			out = append(out, e)
		}
	}
	// clipping can leave an exon that ends exactly where coding starts.
	kept := out[:0]
	for _, e := range out {
		if e[1] > e[0] {
			kept = append(kept, e)
		}
	}
	return kept
}

// Query returns the position along the coding sequence of the 0-based genome coordinate.
// Bases in the two splice site positions flanking each internal exon boundary are placed
// after the CDS: the 5' splice sites first, then the 3' splice sites, ordered by strand.
// ok is false for a different chromosome or a position outside the coding exons and splice sites.
func (g *Gene) Query(strand byte, chrom string, coord int) (pos int, ok bool) {
	if chrom != g.Chrom {
		return 0, false
	}
	n := len(g.Exons)
	prev := 0
	for i, e := range g.Exons {
		estart, eend := e[0], e[1]
		switch {
		case estart <= coord && coord < eend:
			return prev + coord - estart, true
		case eend <= coord && coord < eend+2 && i != n-1:
			if strand == '+' {
				pos, ok = g.CDSLen+2*i+(coord-eend), true
			} else if strand == '-' {
				pos, ok = g.CDSLen+g.fiveSSLen+2*(n-(i+2))+(coord-eend), true
			}
		case estart-2 <= coord && coord < estart && i != 0:
			if strand == '-' {
				pos, ok = g.CDSLen+2*(n-(i+1))+(coord-(estart-2)), true
			} else if strand == '+' {
				pos, ok = g.CDSLen+g.fiveSSLen+2*(i-1)+(coord-(estart-2)), true
			}
		}
		prev += g.exonLens[i]
	}
	return pos, ok
}

// Region returns the span covering the coding exons and their splice sites.
func (g *Gene) Region() Position {
	if len(g.Exons) == 0 {
		return Position{Chrom: g.Chrom}
	}
	start := g.Exons[0][0] - 2
	if start < 0 {
		start = 0
	}
	return Position{Chrom: g.Chrom, Start: start, End: g.Exons[len(g.Exons)-1][1] + 2}
}

func openText(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(f)
	magic, _ := br.Peek(2)
	if !bytes.Equal(magic, []byte{0x1f, 0x8b}) {
		return struct {
			io.Reader
			io.Closer
		}{br, f}, nil
	}
	gz, err := gzip.NewReader(br)
	if err != nil {
		f.Close()
		return nil, err
	}
	return struct {
		io.Reader
		io.Closer
	}{gz, f}, nil
}

// FindGene scans BED12 lines from r for the gene with the given name.
func FindGene(r io.Reader, name string) (*Gene, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for s.Scan() {
		line := s.Text()
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}
		toks := strings.SplitN(line, "\t", 5)
		if len(toks) < 4 || toks[3] != name {
			continue
		}
		return ParseBed(line)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("hotspot: gene %s not found", name)
}

// ReadGene finds the named gene in a BED12 file which may be gzipped.
func ReadGene(path, name string) (*Gene, error) {
	rdr, err := openText(path)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()
	return FindGene(rdr, name)
}
