// Package caller is the top-level orchestrator: it owns an immutable
// DefinitionStore and Config, and wires DefinitionStore + VariantReader
// through per-gene MatchData, HaplotypePatternMatcher, and
// DiplotypeMatcher into a ResultBuilder, matching the linear flow of
// spec.md §2.
package caller

import (
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/starallele/diplocaller/internal/definition"
	"github.com/starallele/diplocaller/internal/result"
	"github.com/starallele/diplocaller/internal/variantreader"
)

// Caller is immutable after construction and safe for concurrent Call
// invocations on distinct input files: each call owns its own
// MatchData and Builder and shares only the read-only store and config.
type Caller struct {
	store *definition.Store
	cfg   Config
	log   *zap.Logger
}

// New builds a Caller over an already-loaded DefinitionStore. A nil
// logger is replaced with a no-op logger.
func New(store *definition.Store, cfg Config, log *zap.Logger) (*Caller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Caller{store: store, cfg: cfg, log: log}, nil
}

// Call reads one single-sample variant file and returns a Result
// covering every gene in the store, in the store's stable iteration
// order. A gene with no sample data is reported with empty diplotypes
// rather than omitted or erroring.
func (c *Caller) Call(path string) (*result.Result, error) {
	if err := checkRegularFile(path); err != nil {
		return nil, err
	}

	reader, err := variantreader.NewReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	sample, err := reader.ReadAll(c.store.LocationsOfInterest())
	if err != nil {
		return nil, err
	}

	names := c.store.Genes()
	genes := make([]*definition.Gene, len(names))
	for i, name := range names {
		genes[i] = c.store.Gene(name)
	}

	builder := result.NewBuilder(c.cfg.AlwaysShowUnmatchedHaplotypes)
	results := parallelProcessGenes(genes, sample, c.cfg, 0)
	orderedCollectGenes(results, func(r geneWorkResult) {
		builder.AddGene(r.Gene, r.MatchData, r.Diplotypes)

		c.log.Debug("gene processed",
			zap.String("gene", r.Gene.Name),
			zap.Int("missingPositions", len(r.MatchData.MissingPositions)),
			zap.Int("uncallableHaplotypes", len(r.MatchData.UncallableHaplotypeNames)),
			zap.Int("diplotypes", len(r.Diplotypes)),
		)
	})

	return builder.Build(path, time.Now()), nil
}

func checkRegularFile(path string) error {
	if path == "-" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return &MissingInputError{Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return &MissingInputError{Path: path, Err: os.ErrInvalid}
	}
	return nil
}
