package variantreader

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func locations(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

func TestReader_ReadAll(t *testing.T) {
	r, err := NewReader(filepath.Join("testdata", "sample.vcf"))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "SAMPLE1", r.SampleName())

	alleles, err := r.ReadAll(locations("22:100", "22:200", "22:300", "22:400"))
	require.NoError(t, err)
	require.Len(t, alleles, 4)

	homRef := alleles["22:100"]
	assert.True(t, homRef.Phased, "homozygous ref should be phased")
	assert.Equal(t, "A", homRef.StrandA)
	assert.Equal(t, "A", homRef.StrandB)

	unphasedHet := alleles["22:200"]
	assert.False(t, unphasedHet.Phased, "unphased het should not be phased")
	assert.ElementsMatch(t, []string{"C", "T"}, []string{unphasedHet.StrandA, unphasedHet.StrandB})

	multiAllelic := alleles["22:300"]
	assert.Equal(t, []string{"T", "A", "G"}, multiAllelic.VCFAlleles)
	assert.Equal(t, "A", multiAllelic.StrandA)
	assert.Equal(t, "G", multiAllelic.StrandB)

	homAlt := alleles["22:400"]
	assert.True(t, homAlt.Phased, "homozygous alt is phased regardless of separator")
	assert.Equal(t, "C", homAlt.StrandA)
	assert.Equal(t, "C", homAlt.StrandB)
}

func TestReader_FiltersToLocationsOfInterest(t *testing.T) {
	r, err := NewReader(filepath.Join("testdata", "sample.vcf"))
	require.NoError(t, err)
	defer r.Close()

	alleles, err := r.ReadAll(locations("22:100"))
	require.NoError(t, err)
	assert.Len(t, alleles, 1)
	_, ok := alleles["22:100"]
	assert.True(t, ok)
}

func TestReader_EmptyLocationsOfInterest(t *testing.T) {
	r, err := NewReader(filepath.Join("testdata", "sample.vcf"))
	require.NoError(t, err)
	defer r.Close()

	alleles, err := r.ReadAll(nil)
	require.NoError(t, err)
	assert.Empty(t, alleles)
}

func TestReader_GzipInput(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "sample.vcf"))
	require.NoError(t, err)

	gzPath := filepath.Join(t.TempDir(), "sample.vcf.gz")
	f, err := os.Create(gzPath)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write(raw)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	r, err := NewReader(gzPath)
	require.NoError(t, err)
	defer r.Close()

	alleles, err := r.ReadAll(locations("22:100"))
	require.NoError(t, err)
	assert.Len(t, alleles, 1)
}

func TestReader_FromStdinLikeSource(t *testing.T) {
	content := `##fileformat=VCFv4.2
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	S
1	50	.	A	T	.	PASS	.	GT	0/1
`
	r, err := NewReaderFrom(bytes.NewReader([]byte(content)))
	require.NoError(t, err)

	alleles, err := r.ReadAll(locations("1:50"))
	require.NoError(t, err)
	require.Len(t, alleles, 1)
	assert.False(t, alleles["1:50"].Phased)
}

func TestReader_MultiSampleRejected(t *testing.T) {
	content := `##fileformat=VCFv4.2
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	S1	S2
`
	_, err := NewReaderFrom(strings.NewReader(content))
	require.Error(t, err)
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestReader_NoChromHeader(t *testing.T) {
	_, err := NewReaderFrom(strings.NewReader("##fileformat=VCFv4.2\n"))
	require.Error(t, err)
}
