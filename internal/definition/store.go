package definition

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// geneFile is the on-disk JSON shape of a single gene definition file.
type geneFile struct {
	Gene      string         `json:"gene"`
	Chrom     string         `json:"chromosome"`
	Variants  []variantJSON  `json:"variants"`
	Haplotype []namedAlleleJSON `json:"namedAlleles"`
}

type variantJSON struct {
	Position    int      `json:"position"`
	VCFPosition int64    `json:"vcfPosition"`
	RSID        string   `json:"rsid"`
	Ref         string   `json:"ref"`
	Alleles     []string `json:"alleles"`
}

type namedAlleleJSON struct {
	Name    string   `json:"name"`
	Alleles []*string `json:"alleles"`
}

// Store is an immutable, in-memory collection of gene definitions,
// built once via Load and shared read-only across concurrent calls.
type Store struct {
	genes map[string]*Gene
	order []string
	log   *zap.Logger
}

// NewStore creates an empty Store. A nil logger is replaced with a
// no-op logger so callers never need a nil check.
func NewStore(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		genes: make(map[string]*Gene),
		log:   log,
	}
}

// Load reads every *.json file in dir as a gene definition and adds it
// to the store. Genes are kept in the lexicographic order of their
// source filenames, giving callers a stable iteration order.
func (s *Store) Load(dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return &LoadError{Path: dir, Message: "glob definitions directory", Err: err}
	}
	sort.Strings(matches)

	if len(matches) == 0 {
		return &LoadError{Path: dir, Message: "no definition files found"}
	}

	for _, path := range matches {
		if err := s.loadFile(path); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &LoadError{Path: path, Message: "read file", Err: err}
	}

	var gf geneFile
	if err := json.Unmarshal(raw, &gf); err != nil {
		return &LoadError{Path: path, Message: "parse json", Err: err}
	}

	if gf.Gene == "" {
		return &LoadError{Path: path, Message: "missing gene name"}
	}
	if gf.Chrom == "" {
		return &LoadError{Path: path, Message: "missing chromosome"}
	}

	positions := make([]VariantLocus, len(gf.Variants))
	for i, v := range gf.Variants {
		positions[i] = VariantLocus{
			Position:    v.Position,
			RSID:        v.RSID,
			VCFPosition: v.VCFPosition,
			Ref:         v.Ref,
			Alleles:     v.Alleles,
		}
	}

	haplotypes := make([]*NamedAllele, len(gf.Haplotype))
	for i, h := range gf.Haplotype {
		if len(h.Alleles) != len(positions) {
			return &LoadError{
				Path: path,
				Message: fmt.Sprintf(
					"haplotype %s has %d allele slots, gene %s declares %d positions",
					h.Name, len(h.Alleles), gf.Gene, len(positions)),
			}
		}
		haplotypes[i] = &NamedAllele{Name: h.Name, Alleles: h.Alleles}
	}

	gene := &Gene{
		Name:       gf.Gene,
		Chromosome: gf.Chrom,
		Positions:  positions,
		Haplotypes: haplotypes,
	}

	if _, exists := s.genes[gene.Name]; exists {
		return &LoadError{Path: path, Message: fmt.Sprintf("duplicate gene %q", gene.Name)}
	}

	s.genes[gene.Name] = gene
	s.order = append(s.order, gene.Name)

	s.log.Debug("loaded gene definition",
		zap.String("gene", gene.Name),
		zap.String("chromosome", gene.Chromosome),
		zap.Int("positions", len(positions)),
		zap.Int("haplotypes", len(haplotypes)),
	)

	return nil
}

// Genes returns gene names in stable load order.
func (s *Store) Genes() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Gene returns the full definition for a gene, or nil if unknown.
func (s *Store) Gene(name string) *Gene {
	return s.genes[name]
}

// PositionsOf returns the ordered positions for a gene, or nil if the
// gene is unknown.
func (s *Store) PositionsOf(name string) []VariantLocus {
	g := s.genes[name]
	if g == nil {
		return nil
	}
	return g.Positions
}

// HaplotypesOf returns the named alleles for a gene, or nil if unknown.
func (s *Store) HaplotypesOf(name string) []*NamedAllele {
	g := s.genes[name]
	if g == nil {
		return nil
	}
	return g.Haplotypes
}

// ChromosomeOf returns the chromosome a gene's positions live on.
func (s *Store) ChromosomeOf(name string) string {
	g := s.genes[name]
	if g == nil {
		return ""
	}
	return g.Chromosome
}

// LocationsOfInterest returns the union of chromosome:vcfPosition keys
// across all loaded genes, used by the variant reader to filter the
// input file down to sites that matter.
func (s *Store) LocationsOfInterest() map[string]bool {
	locs := make(map[string]bool)
	for _, g := range s.genes {
		for _, p := range g.Positions {
			locs[p.Key(g.Chromosome)] = true
		}
	}
	return locs
}
