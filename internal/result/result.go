// Package result assembles per-gene diplotype calls into the final
// output container returned to callers of the matcher.
package result

import "time"

// MatcherVersion identifies the algorithm version that produced a
// Result, carried in its metadata for provenance.
const MatcherVersion = "1.0.0"

// Metadata describes the circumstances under which a Result was
// produced.
type Metadata struct {
	InputFilename string    `json:"inputFilename" yaml:"inputFilename"`
	Timestamp     time.Time `json:"timestamp" yaml:"timestamp"`
	Version       string    `json:"version" yaml:"version"`
}

// Diplotype is one candidate diplotype call for a gene.
type Diplotype struct {
	Name       string `json:"name" yaml:"name"`
	Score      int    `json:"score" yaml:"score"`
	Haplotype1 string `json:"haplotype1" yaml:"haplotype1"`
	Haplotype2 string `json:"haplotype2" yaml:"haplotype2"`
}

// HaplotypeMatch is a named haplotype that appeared in at least one
// reported diplotype (or, with AlwaysShowUnmatchedHaplotypes, any
// retained haplotype), together with the sample strand sequences it
// was found consistent with.
type HaplotypeMatch struct {
	Name      string   `json:"name" yaml:"name"`
	Sequences []string `json:"sequences" yaml:"sequences"`
}

// Variant is one position's observed genotype, in gene position order.
type Variant struct {
	Chromosome string   `json:"chromosome" yaml:"chromosome"`
	Position   int64    `json:"position" yaml:"position"`
	RSID       string   `json:"rsid,omitempty" yaml:"rsid,omitempty"`
	StrandA    string   `json:"strandA" yaml:"strandA"`
	StrandB    string   `json:"strandB" yaml:"strandB"`
	Phased     bool     `json:"phased" yaml:"phased"`
	VCFAlleles []string `json:"vcfAlleles" yaml:"vcfAlleles"`
}

// Position identifies a gene's locus for reporting purposes (e.g. a
// missing position), without an observed genotype.
type Position struct {
	Chromosome string `json:"chromosome" yaml:"chromosome"`
	Position   int64  `json:"position" yaml:"position"`
	RSID       string `json:"rsid,omitempty" yaml:"rsid,omitempty"`
}

// GeneCall is the full diplotype-calling outcome for one gene. A gene
// with no sample data or no matches is still reported, never omitted.
type GeneCall struct {
	Gene                 string           `json:"gene" yaml:"gene"`
	Chromosome           string           `json:"chromosome" yaml:"chromosome"`
	Diplotypes           []Diplotype      `json:"diplotypes" yaml:"diplotypes"`
	Haplotypes           []HaplotypeMatch `json:"haplotypes" yaml:"haplotypes"`
	Variants             []Variant        `json:"variants" yaml:"variants"`
	MissingPositions     []Position       `json:"missingPositions" yaml:"missingPositions"`
	UncallableHaplotypes []string         `json:"uncallableHaplotypes" yaml:"uncallableHaplotypes"`
}

// Result is the complete output of one call() invocation: matcher
// metadata plus every gene's call, in DefinitionStore iteration order.
type Result struct {
	Metadata  Metadata   `json:"metadata" yaml:"metadata"`
	GeneCalls []GeneCall `json:"geneCalls" yaml:"geneCalls"`
}
