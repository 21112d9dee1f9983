// Package matchdata turns a gene definition and a sample's observed
// alleles into a fully prepared per-gene search instance: positions
// aligned to sample data, haplotypes pruned or backfilled for missing
// positions, and the sample's strand permutations enumerated.
package matchdata

import (
	"fmt"
	"sort"
	"strings"

	"github.com/starallele/diplocaller/internal/definition"
	"github.com/starallele/diplocaller/internal/variantreader"
)

// AnyAllele is the wildcard token a resolved haplotype carries at a
// position it does not constrain. HaplotypePatternMatcher treats it as
// matching any sample allele.
const AnyAllele = ".?"

// ResolvedHaplotype is a NamedAllele after missing-position marshalling:
// every position has a concrete entry, either a real allele, the
// reference allele (assume-reference backfill), or AnyAllele.
type ResolvedHaplotype struct {
	Name    string
	Alleles []string
}

// Permutation is one concrete assignment of sample alleles to the two
// strands, rendered as canonical "index:allele;index:allele" strings
// covering only positions with sample data.
type Permutation struct {
	StrandA string
	StrandB string
}

// MatchData is the prepared, per-gene working set used by the
// downstream pattern matcher and diplotype search.
type MatchData struct {
	Gene       string
	Positions  []definition.VariantLocus
	SampleAt   []*variantreader.SampleAllele // aligned to Positions, nil where missing

	MissingPositions         []definition.VariantLocus
	Haplotypes               []ResolvedHaplotype
	UncallableHaplotypeNames []string
	SamplePermutations       []Permutation
}

// Prepare runs the full preparation algorithm (spec §4.3) for one gene
// against one sample's observed alleles.
func Prepare(gene *definition.Gene, sample map[string]variantreader.SampleAllele, assumeReference bool) *MatchData {
	md := &MatchData{
		Gene:      gene.Name,
		Positions: gene.Positions,
		SampleAt:  make([]*variantreader.SampleAllele, len(gene.Positions)),
	}

	missing := make([]bool, len(gene.Positions))
	for i, pos := range gene.Positions {
		if sa, ok := sample[pos.Key(gene.Chromosome)]; ok {
			saCopy := sa
			md.SampleAt[i] = &saCopy
		} else {
			missing[i] = true
			md.MissingPositions = append(md.MissingPositions, pos)
		}
	}

	md.Haplotypes, md.UncallableHaplotypeNames = marshalHaplotypes(gene, missing, assumeReference)
	md.SamplePermutations = generatePermutations(md.SampleAt)

	return md
}

// marshalHaplotypes implements steps 2-3 of spec §4.3: drop haplotypes
// invalidated by missing positions (with assume-reference on, only
// those declaring a non-reference allele there), then resolve every
// remaining slot to a concrete allele, the reference allele
// (assume-reference), or the wildcard token.
func marshalHaplotypes(gene *definition.Gene, missing []bool, assumeReference bool) ([]ResolvedHaplotype, []string) {
	var retained []ResolvedHaplotype
	var dropped []string

	for _, h := range gene.Haplotypes {
		alleles := make([]string, len(gene.Positions))
		drop := false

		for i, pos := range gene.Positions {
			declared, ok := h.AlleleAt(i)
			switch {
			case missing[i] && ok:
				if assumeReference && declared == pos.Ref {
					alleles[i] = pos.Ref
				} else {
					drop = true
				}
			case missing[i] && !ok:
				if assumeReference {
					alleles[i] = pos.Ref
				} else {
					alleles[i] = AnyAllele
				}
			case !missing[i] && ok:
				alleles[i] = declared
			default: // !missing[i] && !ok
				if assumeReference {
					alleles[i] = pos.Ref
				} else {
					alleles[i] = AnyAllele
				}
			}
			if drop {
				break
			}
		}

		if drop {
			dropped = append(dropped, h.Name)
			continue
		}
		retained = append(retained, ResolvedHaplotype{Name: h.Name, Alleles: alleles})
	}

	sort.Strings(dropped)
	return retained, dropped
}

// strandChoice is one position's contribution to a partial permutation:
// the allele assigned to strand A and to strand B.
type strandChoice struct {
	a, b string
}

// generatePermutations implements step 4 of spec §4.3: cross product
// over per-position strand choices, expanding unphased heterozygous
// sites into both orderings.
func generatePermutations(sampleAt []*variantreader.SampleAllele) []Permutation {
	type partial struct {
		a, b []string // "index:allele" tokens per strand, in position order
	}

	partials := []partial{{}}

	any := false
	for i, sa := range sampleAt {
		if sa == nil {
			continue
		}
		any = true

		var choices []strandChoice
		if sa.Phased || sa.StrandA == sa.StrandB {
			choices = []strandChoice{{sa.StrandA, sa.StrandB}}
		} else {
			choices = []strandChoice{
				{sa.StrandA, sa.StrandB},
				{sa.StrandB, sa.StrandA},
			}
		}

		next := make([]partial, 0, len(partials)*len(choices))
		for _, p := range partials {
			for _, c := range choices {
				na := append(append([]string{}, p.a...), fmt.Sprintf("%d:%s", i, c.a))
				nb := append(append([]string{}, p.b...), fmt.Sprintf("%d:%s", i, c.b))
				next = append(next, partial{a: na, b: nb})
			}
		}
		partials = next
	}

	if !any {
		return nil
	}

	seen := make(map[Permutation]bool, len(partials))
	out := make([]Permutation, 0, len(partials))
	for _, p := range partials {
		perm := Permutation{
			StrandA: strings.Join(p.a, ";"),
			StrandB: strings.Join(p.b, ";"),
		}
		if !seen[perm] {
			seen[perm] = true
			out = append(out, perm)
		}
	}
	return out
}
