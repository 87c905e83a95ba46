package main

import (
	"bufio"
	"fmt"
	"log"
	"os"

	arg "github.com/alexflint/go-arg"
	"github.com/biogo/hts/sam"
	"github.com/brentp/hotspot"
)

type cliarg struct {
	hotspot.Options
	Reference string `arg:"-r,--reference,required" help:"path to indexed reference fasta."`
	Bed       string `arg:"-b,--bed" help:"optional BED12 of transcripts; with --gene, positions are reported along the coding sequence."`
	Gene      string `arg:"-g,--gene" help:"name of the transcript in --bed to examine."`
	Piles     bool   `arg:"-p,--piles" help:"write each mutated pile to stderr."`
	BamPath   string `arg:"positional,required"`
	Region    string `arg:"positional" help:"region like chr1:1234-5678. not needed with --gene."`
}

func (c cliarg) Version() string {
	return "hotspot 0.1.0"
}

// verbose wraps the iterator to report the piles that have mutations.
type verbose struct {
	*hotspot.Iterator
	opts hotspot.Options
	w    *bufio.Writer
}

func (v verbose) Next() bool {
	if !v.Iterator.Next() {
		return false
	}
	if p := v.Pile(); p.Mutations(v.opts) > 0 {
		fmt.Fprintln(v.w, p.TabString())
	}
	return true
}

const header = "#name\tpositions\tmutations\thotspot\thotspot_count\trecurrent\tentropy_fraction\tdelta_entropy"

// row formats the summary line for header. genomic hotspots are reported 1-based;
// gene hotspots are already CDS positions.
func row(name string, counts hotspot.PositionCounts, st hotspot.Stats, genomic bool) string {
	total := 0
	for _, n := range counts {
		total += n
	}
	hpos, hcount := hotspot.Hotspot(counts)
	if genomic && hcount > 0 {
		hpos++
	}
	return fmt.Sprintf("%s\t%d\t%d\t%d\t%d\t%s", name, len(counts), total, hpos, hcount, st.TabString())
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("hotspot: ")

	cli := &cliarg{}
	cli.Options.MinBaseQuality = 10
	cli.Options.MinMappingQuality = 5
	cli.Options.MinAltReads = 1
	p := arg.MustParse(cli)
	if cli.ExcludeFlag == 0 {
		cli.ExcludeFlag = uint16(sam.Unmapped | sam.QCFail | sam.Duplicate | sam.Secondary)
	}

	var gene *hotspot.Gene
	var region hotspot.Position
	var err error
	switch {
	case cli.Gene != "":
		if cli.Bed == "" {
			p.Fail("--gene requires --bed")
		}
		if gene, err = hotspot.ReadGene(cli.Bed, cli.Gene); err != nil {
			log.Fatal(err)
		}
		if len(gene.Exons) == 0 {
			log.Fatalf("%s has no coding exons", gene.Name)
		}
		region = gene.Region()
	case cli.Region != "":
		if region, err = hotspot.ParseRegion(cli.Region); err != nil {
			log.Fatal(err)
		}
	default:
		p.Fail("either a region or --gene is required")
	}

	ref, err := hotspot.OpenReference(cli.Reference)
	if err != nil {
		log.Fatal(err)
	}
	defer ref.Close()

	stdout := bufio.NewWriter(os.Stdout)
	defer stdout.Flush()
	stderr := bufio.NewWriter(os.Stderr)
	defer stderr.Flush()

	it := hotspot.Up(cli.BamPath, cli.Options, region, ref)
	defer it.Close()

	var src hotspot.PileSource = it
	if cli.Piles {
		src = verbose{Iterator: it, opts: cli.Options, w: stderr}
	}
	counts, err := hotspot.Collect(src, cli.Options, gene)
	if err != nil {
		log.Fatal(err)
	}
	st, err := hotspot.PositionStatistics(counts)
	if err != nil {
		log.Fatal(err)
	}

	name := region.String()
	if gene != nil {
		name = gene.Name
	}
	fmt.Fprintln(stdout, header)
	fmt.Fprintln(stdout, row(name, counts, st, gene == nil))
}
