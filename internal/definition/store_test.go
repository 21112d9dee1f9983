package definition

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Load(t *testing.T) {
	s := NewStore(nil)
	require.NoError(t, s.Load("testdata"))

	assert.ElementsMatch(t, []string{"CYP2C19", "CYP2D6"}, s.Genes())
	assert.Equal(t, "22", s.ChromosomeOf("CYP2D6"))
	assert.Equal(t, "10", s.ChromosomeOf("CYP2C19"))

	positions := s.PositionsOf("CYP2D6")
	require.Len(t, positions, 2)
	assert.Equal(t, int64(100), positions[0].VCFPosition)
	assert.Equal(t, "rs1", positions[0].RSID)

	haplotypes := s.HaplotypesOf("CYP2D6")
	require.Len(t, haplotypes, 2)

	star1 := haplotypes[0]
	assert.Equal(t, "*1", star1.Name)
	a0, ok0 := star1.AlleleAt(0)
	assert.True(t, ok0)
	assert.Equal(t, "A", a0)

	star4 := haplotypes[1]
	_, ok1 := star4.AlleleAt(1)
	assert.False(t, ok1, "*4 declares no allele at position 2")
}

func TestStore_LocationsOfInterest(t *testing.T) {
	s := NewStore(nil)
	require.NoError(t, s.Load("testdata"))

	locs := s.LocationsOfInterest()
	assert.True(t, locs["22:100"])
	assert.True(t, locs["22:200"])
	assert.True(t, locs["10:300"])
	assert.Len(t, locs, 3)
}

func TestStore_Load_MissingDir(t *testing.T) {
	s := NewStore(nil)
	err := s.Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestStore_Load_MismatchedAlleleLength(t *testing.T) {
	dir := t.TempDir()
	bad := `{
		"gene": "BAD",
		"chromosome": "1",
		"variants": [{"position":1,"vcfPosition":10,"ref":"A","alleles":["A"]}],
		"namedAlleles": [{"name":"*1","alleles":["A","G"]}]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(bad), 0o644))

	s := NewStore(nil)
	err := s.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allele slots")
}

func TestStore_Load_DuplicateGene(t *testing.T) {
	dir := t.TempDir()
	gene := `{"gene":"DUP","chromosome":"1","variants":[],"namedAlleles":[]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_dup.json"), []byte(gene), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_dup.json"), []byte(gene), 0o644))

	s := NewStore(nil)
	err := s.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate gene")
}
