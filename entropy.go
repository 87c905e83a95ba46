package hotspot

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// PositionCounts maps a position (genomic or along a coding sequence) to the
// number of mutations observed there.
type PositionCounts map[int]int

// Stats holds the position-based statistics for a set of PositionCounts.
type Stats struct {
	// Recurrent is the total number of mutations at positions mutated more than once.
	// It is a count of mutations, not of positions.
	Recurrent int
	// EntropyFraction is the base-2 entropy of the distribution over positions divided
	// by log2 of the total number of mutations. 1 means uniform, lower means concentrated.
	EntropyFraction float64
	// DeltaEntropy is ln(number of mutated positions) minus the natural-log entropy.
	DeltaEntropy float64
}

// DomainError is returned when a position carries a negative count.
type DomainError struct {
	Pos   int
	Count int
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("hotspot: negative mutation count %d at position %d", e.Count, e.Pos)
}

// log2 is ln(x) * 1/ln(2); math.Log2E is 1/ln(2).
func log2(x float64) float64 {
	return math.Log(x) * math.Log2E
}

func sortedPositions(counts PositionCounts) []int {
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// PositionStatistics calculates the recurrent mutation count, the fraction of uniform entropy
// and the entropy deficit relative to uniform for the given counts.
// Empty input, or input where every count is 0, gives the default Stats
// {Recurrent: 0, EntropyFraction: 1, DeltaEntropy: 0}. counts is not modified.
func PositionStatistics(counts PositionCounts) (Stats, error) {
	st := Stats{EntropyFraction: 1}
	keys := sortedPositions(counts)

	// count total mutations
	total := 0
	for _, k := range keys {
		val := counts[k]
		if val < 0 {
			return Stats{}, &DomainError{Pos: k, Count: val}
		}
		if val > 1 {
			st.Recurrent += val
		}
		total += val
	}
	if total == 0 {
		return st, nil
	}

	// calculate entropy. terms are summed with compensation in position order
	// so the result does not depend on map iteration.
	sum := float64(total)
	ent2 := make([]float64, 0, len(keys))
	entE := make([]float64, 0, len(keys))
	for _, k := range keys {
		val := counts[k]
		if val == 0 {
			continue
		}
		p := float64(val) / sum
		ent2 = append(ent2, p*log2(p))
		entE = append(entE, p*math.Log(p))
	}
	numPos := len(entE)
	myent2 := 0 - floats.SumCompensated(ent2)
	myentE := 0 - floats.SumCompensated(entE)

	if numPos > 1 {
		st.DeltaEntropy = math.Log(float64(numPos)) - myentE
	}
	if total > 1 {
		st.EntropyFraction = myent2 / log2(sum)
	}
	return st, nil
}

// TabString returns the recurrent count, entropy fraction and delta entropy tab-delimited.
func (s Stats) TabString() string {
	return fmt.Sprintf("%d\t%.4f\t%.4f", s.Recurrent, s.EntropyFraction, s.DeltaEntropy)
}

// Hotspot returns the most frequently mutated position and its count.
// Ties go to the lowest position.
func Hotspot(counts PositionCounts) (int, int) {
	if len(counts) < 1 {
		return 0, 0
	}
	pos, most := 0, -1
	for _, k := range sortedPositions(counts) {
		if v := counts[k]; v > most {
			pos, most = k, v
		}
	}
	return pos, most
}
