package diplotype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starallele/diplocaller/internal/definition"
	"github.com/starallele/diplocaller/internal/matchdata"
	"github.com/starallele/diplocaller/internal/variantreader"
)

func ptr(s string) *string { return &s }

func TestSearch_ReferenceOnlySample(t *testing.T) {
	gene := &definition.Gene{
		Name:       "G",
		Chromosome: "1",
		Positions: []definition.VariantLocus{
			{VCFPosition: 100, Ref: "A", Alleles: []string{"A", "G"}},
			{VCFPosition: 200, Ref: "C", Alleles: []string{"C", "G"}},
		},
		Haplotypes: []*definition.NamedAllele{
			{Name: "*1", Alleles: []*string{ptr("A"), ptr("C")}},
			{Name: "*2", Alleles: []*string{ptr("G"), ptr("C")}},
		},
	}
	sample := map[string]variantreader.SampleAllele{
		"1:100": {Chromosome: "1", Position: 100, StrandA: "A", StrandB: "A", Phased: true},
		"1:200": {Chromosome: "1", Position: 200, StrandA: "C", StrandB: "C", Phased: true},
	}
	md := matchdata.Prepare(gene, sample, false)

	results := Search(md, gene.Positions, true)
	require.Len(t, results, 1)
	assert.Equal(t, "*1/*1", results[0].Name())
	assert.Equal(t, 4, results[0].Score) // *1 rules out 1 allele at each of 2 positions; paired with itself
}

func TestSearch_HeterozygousUnphasedUniqueDiplotype(t *testing.T) {
	gene := &definition.Gene{
		Name:       "G",
		Chromosome: "1",
		Positions:  []definition.VariantLocus{{VCFPosition: 100, Ref: "A", Alleles: []string{"A", "T"}}},
		Haplotypes: []*definition.NamedAllele{
			{Name: "*1", Alleles: []*string{ptr("A")}},
			{Name: "*2", Alleles: []*string{ptr("T")}},
		},
	}
	sample := map[string]variantreader.SampleAllele{
		"1:100": {Chromosome: "1", Position: 100, StrandA: "A", StrandB: "T", Phased: false},
	}
	md := matchdata.Prepare(gene, sample, false)

	results := Search(md, gene.Positions, true)
	require.Len(t, results, 1)
	assert.Equal(t, "*1/*2", results[0].Name())
}

func TestSearch_TopCandidateFiltering(t *testing.T) {
	gene := &definition.Gene{
		Name:       "G",
		Chromosome: "1",
		Positions: []definition.VariantLocus{
			{VCFPosition: 100, Ref: "A", Alleles: []string{"A", "C", "G", "T"}},
			{VCFPosition: 200, Ref: "A", Alleles: []string{"A", "C"}},
		},
		Haplotypes: []*definition.NamedAllele{
			{Name: "*1", Alleles: []*string{ptr("A"), ptr("A")}}, // rules out 3+1=4
			{Name: "*2", Alleles: []*string{nil, ptr("C")}},      // wildcard at 100; rules out 1, so *1/*2 scores 5
		},
	}
	sample := map[string]variantreader.SampleAllele{
		"1:100": {Chromosome: "1", Position: 100, StrandA: "A", StrandB: "A", Phased: true},
		"1:200": {Chromosome: "1", Position: 200, StrandA: "A", StrandB: "C", Phased: false},
	}
	md := matchdata.Prepare(gene, sample, false)

	all := Search(md, gene.Positions, false)
	require.NotEmpty(t, all)
	top := Search(md, gene.Positions, true)
	require.NotEmpty(t, top)

	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i].Score, all[i-1].Score)
	}
	maxScore := all[0].Score
	for _, d := range top {
		assert.Equal(t, maxScore, d.Score)
	}
	assert.LessOrEqual(t, len(top), len(all))
}

func TestSearch_EmptyPermutations(t *testing.T) {
	gene := &definition.Gene{
		Name:       "G",
		Chromosome: "1",
		Positions:  []definition.VariantLocus{{VCFPosition: 100, Ref: "A", Alleles: []string{"A"}}},
		Haplotypes: []*definition.NamedAllele{{Name: "*1", Alleles: []*string{ptr("A")}}},
	}
	md := matchdata.Prepare(gene, map[string]variantreader.SampleAllele{}, false)
	results := Search(md, gene.Positions, true)
	assert.Empty(t, results)
}

func TestSearch_ScoreTieBrokenByName(t *testing.T) {
	gene := &definition.Gene{
		Name:       "G",
		Chromosome: "1",
		Positions:  []definition.VariantLocus{{VCFPosition: 100, Ref: "A", Alleles: []string{"A"}}},
		Haplotypes: []*definition.NamedAllele{
			{Name: "*9", Alleles: []*string{nil}},
			{Name: "*1", Alleles: []*string{nil}},
		},
	}
	sample := map[string]variantreader.SampleAllele{
		"1:100": {Chromosome: "1", Position: 100, StrandA: "A", StrandB: "A", Phased: true},
	}
	md := matchdata.Prepare(gene, sample, false)
	results := Search(md, gene.Positions, false)
	require.Len(t, results, 3) // *1/*1, *1/*9, *9/*9 all score 0
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, pairKey(results[i-1]), pairKey(results[i]))
	}
}
