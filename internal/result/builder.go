package result

import (
	"sort"
	"time"

	"github.com/starallele/diplocaller/internal/definition"
	"github.com/starallele/diplocaller/internal/diplotype"
	"github.com/starallele/diplocaller/internal/matchdata"
	"github.com/starallele/diplocaller/internal/pattern"
)

// Builder accumulates one GeneCall per gene processed during a call()
// invocation and assembles the final Result. A Builder is owned by a
// single call and discarded afterward; it holds no shared state.
type Builder struct {
	calls []GeneCall

	// alwaysShowUnmatched mirrors caller.Config.AlwaysShowUnmatchedHaplotypes:
	// when set, GeneCall.Haplotypes includes every haplotype MatchData
	// retained, not just the ones selected into a reported diplotype.
	alwaysShowUnmatched bool
}

// NewBuilder creates an empty result builder. alwaysShowUnmatched
// controls whether AddGene reports retained-but-unselected haplotypes
// alongside matched ones.
func NewBuilder(alwaysShowUnmatched bool) *Builder {
	return &Builder{alwaysShowUnmatched: alwaysShowUnmatched}
}

// AddGene records the outcome of matching one gene: its prepared
// MatchData and the diplotypes found against it (possibly empty).
func (b *Builder) AddGene(gene *definition.Gene, md *matchdata.MatchData, diplotypes []diplotype.DiplotypeMatch) {
	haplotypes := matchedHaplotypes(diplotypes)
	if b.alwaysShowUnmatched {
		haplotypes = withUnmatchedHaplotypes(haplotypes, md)
	}

	b.calls = append(b.calls, GeneCall{
		Gene:                 gene.Name,
		Chromosome:           gene.Chromosome,
		Diplotypes:           toDiplotypes(diplotypes),
		Haplotypes:           haplotypes,
		Variants:             toVariants(gene, md),
		MissingPositions:     toPositions(gene.Chromosome, md.MissingPositions),
		UncallableHaplotypes: md.UncallableHaplotypeNames,
	})
}

// Build assembles the final Result, stamping it with the input
// filename and timestamp supplied by the caller.
func (b *Builder) Build(inputFilename string, timestamp time.Time) *Result {
	return &Result{
		Metadata: Metadata{
			InputFilename: inputFilename,
			Timestamp:     timestamp,
			Version:       MatcherVersion,
		},
		GeneCalls: b.calls,
	}
}

func toDiplotypes(matches []diplotype.DiplotypeMatch) []Diplotype {
	out := make([]Diplotype, len(matches))
	for i, m := range matches {
		out[i] = Diplotype{
			Name:       m.Name(),
			Score:      m.Score,
			Haplotype1: m.Haplotype1.Name,
			Haplotype2: m.Haplotype2.Name,
		}
	}
	return out
}

// matchedHaplotypes returns the set of haplotypes that appear in any
// reported diplotype, sorted by name for deterministic output.
func matchedHaplotypes(matches []diplotype.DiplotypeMatch) []HaplotypeMatch {
	seen := make(map[string]diplotype.HaplotypeMatch)
	for _, m := range matches {
		seen[m.Haplotype1.Name] = m.Haplotype1
		seen[m.Haplotype2.Name] = m.Haplotype2
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]HaplotypeMatch, len(names))
	for i, name := range names {
		hm := seen[name]
		out[i] = HaplotypeMatch{Name: hm.Name, Sequences: hm.Sequences}
	}
	return out
}

// withUnmatchedHaplotypes appends every haplotype MatchData retained
// but that never ended up in matched (because no reported diplotype
// selected it), computing each one's own consistent sample sequences
// independently of pairing. The combined list is re-sorted by name.
func withUnmatchedHaplotypes(matched []HaplotypeMatch, md *matchdata.MatchData) []HaplotypeMatch {
	present := make(map[string]bool, len(matched))
	for _, hm := range matched {
		present[hm.Name] = true
	}

	out := append([]HaplotypeMatch{}, matched...)

	matcher := pattern.NewMatcher(md)
	patterns := matcher.Patterns()
	for i, h := range md.Haplotypes {
		if present[h.Name] {
			continue
		}
		out = append(out, HaplotypeMatch{
			Name:      h.Name,
			Sequences: pattern.ConsistentStrands(patterns[i], md.SamplePermutations),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func toVariants(gene *definition.Gene, md *matchdata.MatchData) []Variant {
	var out []Variant
	for i, sa := range md.SampleAt {
		if sa == nil {
			continue
		}
		out = append(out, Variant{
			Chromosome: sa.Chromosome,
			Position:   sa.Position,
			RSID:       gene.Positions[i].RSID,
			StrandA:    sa.StrandA,
			StrandB:    sa.StrandB,
			Phased:     sa.Phased,
			VCFAlleles: sa.VCFAlleles,
		})
	}
	return out
}

func toPositions(chromosome string, loci []definition.VariantLocus) []Position {
	out := make([]Position, len(loci))
	for i, l := range loci {
		out[i] = Position{Chromosome: chromosome, Position: l.VCFPosition, RSID: l.RSID}
	}
	return out
}
