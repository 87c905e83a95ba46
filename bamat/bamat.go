// Package bamat opens an indexed bam and queries it by region.
package bamat

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

// BamAt holds bam index and the Bam Reader.
// Because BamAt holds the underlying os.File open, it is not
// safe to query from multiple go routines.
type BamAt struct {
	*bam.Reader
	idx  *bam.Index
	fh   *os.File
	Refs map[string]*sam.Reference
}

// IsStdin reports whether path means the bam should be streamed from stdin.
func IsStdin(path string) bool {
	return path == "" || path == "-" || path == "stdin"
}

func readIndex(path string) (*bam.Index, error) {
	f, err := os.Open(path + ".bai")
	if err != nil && strings.HasSuffix(path, ".bam") {
		f, err = os.Open(strings.TrimSuffix(path, ".bam") + ".bai")
	}
	if err != nil {
		return nil, fmt.Errorf("bamat: no index for %s: %w", path, err)
	}
	defer f.Close()
	return bam.ReadIndex(bufio.NewReader(f))
}

// New returns a BamAt from the given path to the indexed bam
func New(path string) (*BamAt, error) {
	bamat := &BamAt{}
	if !IsStdin(path) {
		idx, err := readIndex(path)
		if err != nil {
			return nil, err
		}
		bamat.idx = idx
		bamat.fh, err = os.Open(path)
		if err != nil {
			return nil, err
		}
	} else {
		bamat.fh = os.Stdin
	}

	br, err := bam.NewReader(bamat.fh, 2)
	if err != nil {
		bamat.fh.Close()
		return nil, err
	}
	bamat.Reader = br
	hdr := br.Header()
	bamat.Refs = make(map[string]*sam.Reference, len(hdr.Refs()))
	for _, r := range hdr.Refs() {
		bamat.Refs[r.Name()] = r
	}
	return bamat, nil
}

// Len returns the length of the named reference from the bam header.
func (b *BamAt) Len(chrom string) (int, error) {
	ref, ok := b.Refs[chrom]
	if !ok {
		return 0, fmt.Errorf("bamat: reference %q not found in bam header", chrom)
	}
	return ref.Len(), nil
}

// Query the BamAt with 0-base half-open interval.
// When streaming from stdin the region is ignored and every record is returned.
func (b *BamAt) Query(chrom string, start int, end int) (*bam.Iterator, error) {
	if b.idx == nil || chrom == "" {
		return bam.NewIterator(b.Reader, nil)
	}
	ref, ok := b.Refs[chrom]
	if !ok {
		return nil, fmt.Errorf("bamat: reference %q not found in bam header", chrom)
	}
	if end <= 0 || end > ref.Len() {
		end = ref.Len()
	}
	chunks, err := b.idx.Chunks(ref, start, end)
	if err != nil {
		return nil, err
	}
	return bam.NewIterator(b.Reader, chunks)
}

// Close closes the underlying file and the Bam.Reader
func (b *BamAt) Close() error {
	if b == nil {
		return nil
	}
	if b.Reader != nil {
		b.Reader.Close()
	}
	if b.fh != nil && b.fh != os.Stdin {
		return b.fh.Close()
	}
	return nil
}
