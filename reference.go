package hotspot

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/fai"
)

// Reference gives random access to an indexed fasta.
type Reference struct {
	fh   io.Closer
	idx  fai.Index
	file *fai.File
}

// OpenReference opens the fasta at path using path.fai. If the .fai does not exist
// the index is built in memory.
func OpenReference(path string) (*Reference, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var idx fai.Index
	if f, err := os.Open(path + ".fai"); err == nil {
		idx, err = fai.ReadFrom(bufio.NewReader(f))
		f.Close()
		if err != nil {
			fh.Close()
			return nil, fmt.Errorf("hotspot: reading %s.fai: %w", path, err)
		}
	} else {
		fmt.Fprintf(os.Stderr, "warning: no index for %s; indexing in memory\n", path)
		idx, err = fai.NewIndex(bufio.NewReader(fh))
		if err != nil {
			fh.Close()
			return nil, fmt.Errorf("hotspot: indexing %s: %w", path, err)
		}
	}
	return NewReference(fh, idx), nil
}

// NewReference wraps an already opened fasta and its index. If r is an io.Closer it is
// closed by Close.
func NewReference(r io.ReaderAt, idx fai.Index) *Reference {
	ref := &Reference{idx: idx, file: fai.NewFile(r, idx)}
	if c, ok := r.(io.Closer); ok {
		ref.fh = c
	}
	return ref
}

// Len returns the length of chrom.
func (r *Reference) Len(chrom string) (int, error) {
	rec, ok := r.idx[chrom]
	if !ok {
		return 0, fmt.Errorf("hotspot: %q not found in reference", chrom)
	}
	return rec.Length, nil
}

// Fetch returns the upper-cased bases of chrom in the 0-based half-open interval [start, end).
// The interval is clipped to the sequence.
func (r *Reference) Fetch(chrom string, start, end int) ([]byte, error) {
	n, err := r.Len(chrom)
	if err != nil {
		return nil, err
	}
	if start < 0 {
		start = 0
	}
	if end <= 0 || end > n {
		end = n
	}
	if start >= end {
		return []byte{}, nil
	}
	seq, err := r.file.SeqRange(chrom, start, end)
	if err != nil {
		return nil, fmt.Errorf("hotspot: fetching %s:%d-%d: %w", chrom, start+1, end, err)
	}
	b, err := io.ReadAll(seq)
	if err != nil {
		return nil, err
	}
	return bytes.ToUpper(b), nil
}

// Close the underlying fasta.
func (r *Reference) Close() error {
	if r == nil || r.fh == nil {
		return nil
	}
	return r.fh.Close()
}
