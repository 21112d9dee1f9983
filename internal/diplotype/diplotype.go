// Package diplotype searches a prepared MatchData for candidate
// diplotypes: unordered pairs of named haplotypes whose combined
// coverage explains both sample strands, scored by specificity and
// ranked deterministically.
package diplotype

import (
	"sort"

	"github.com/starallele/diplocaller/internal/definition"
	"github.com/starallele/diplocaller/internal/matchdata"
	"github.com/starallele/diplocaller/internal/pattern"
)

// HaplotypeMatch is a named haplotype together with every distinct
// sample strand sequence it was found consistent with.
type HaplotypeMatch struct {
	Name      string
	Sequences []string
}

// DiplotypeMatch is an unordered pair of haplotype matches, scored and
// witnessed by one concrete strand-sequence pairing.
type DiplotypeMatch struct {
	Haplotype1 HaplotypeMatch
	Haplotype2 HaplotypeMatch
	Score      int

	WitnessStrandA string
	WitnessStrandB string
}

// Name returns the diplotype's display name, Haplotype1 then
// Haplotype2 in the gene's haplotype order, e.g. "*1/*4".
func (d DiplotypeMatch) Name() string {
	return d.Haplotype1.Name + "/" + d.Haplotype2.Name
}

// Search enumerates every unordered haplotype pair consistent with at
// least one sample permutation, scores it, and returns results sorted
// by descending score then lexicographic pair name. If topCandidateOnly
// is true, only the maximum-scoring diplotypes are returned.
func Search(md *matchdata.MatchData, positions []definition.VariantLocus, topCandidateOnly bool) []DiplotypeMatch {
	if len(md.SamplePermutations) == 0 || len(md.Haplotypes) == 0 {
		return nil
	}

	matcher := pattern.NewMatcher(md)
	patterns := matcher.Patterns()

	sequences := make([][]string, len(patterns))
	for i, p := range patterns {
		sequences[i] = pattern.ConsistentStrands(p, md.SamplePermutations)
	}

	scores := make([]int, len(patterns))
	for i, h := range md.Haplotypes {
		scores[i] = specificity(positions, h.Alleles)
	}

	var results []DiplotypeMatch
	for i := 0; i < len(patterns); i++ {
		for j := i; j < len(patterns); j++ {
			witnessA, witnessB, ok := findWitness(patterns[i], patterns[j], md.SamplePermutations)
			if !ok {
				continue
			}

			results = append(results, DiplotypeMatch{
				Haplotype1:     HaplotypeMatch{Name: md.Haplotypes[i].Name, Sequences: sequences[i]},
				Haplotype2:     HaplotypeMatch{Name: md.Haplotypes[j].Name, Sequences: sequences[j]},
				Score:          scores[i] + scores[j],
				WitnessStrandA: witnessA,
				WitnessStrandB: witnessB,
			})
		}
	}

	rank(results)

	if topCandidateOnly && len(results) > 0 {
		top := results[0].Score
		cut := 0
		for cut < len(results) && results[cut].Score == top {
			cut++
		}
		results = results[:cut]
	}

	return results
}

// findWitness returns the first sample permutation (in MatchData
// order) where p1 matches one strand and p2 matches the other,
// checking both assignments since the pair is unordered.
func findWitness(p1, p2 *pattern.Pattern, perms []matchdata.Permutation) (strandA, strandB string, ok bool) {
	for _, perm := range perms {
		if p1.Matches(perm.StrandA) && p2.Matches(perm.StrandB) {
			return perm.StrandA, perm.StrandB, true
		}
		if p1.Matches(perm.StrandB) && p2.Matches(perm.StrandA) {
			return perm.StrandB, perm.StrandA, true
		}
	}
	return "", "", false
}

// specificity sums, over every position, the count of definition-
// allowed alleles the haplotype's allele at that position rules out.
// A wildcard slot (the haplotype doesn't constrain the position) rules
// out nothing. A position with only the reference allele defined
// cannot be ruled out against, contributing zero.
func specificity(positions []definition.VariantLocus, alleles []string) int {
	total := 0
	for i, allele := range alleles {
		if allele == matchdata.AnyAllele {
			continue
		}
		if i >= len(positions) {
			continue
		}
		n := len(positions[i].Alleles)
		if n <= 1 {
			continue
		}
		total += n - 1
	}
	return total
}

// rank sorts results by descending score, then lexicographically by
// the pair's canonical (sorted) name, making order fully deterministic.
func rank(results []DiplotypeMatch) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return pairKey(results[i]) < pairKey(results[j])
	})
}

func pairKey(d DiplotypeMatch) string {
	a, b := d.Haplotype1.Name, d.Haplotype2.Name
	if a > b {
		a, b = b, a
	}
	return a + "/" + b
}
