package caller

import (
	"runtime"
	"sync"

	"github.com/starallele/diplocaller/internal/definition"
	"github.com/starallele/diplocaller/internal/diplotype"
	"github.com/starallele/diplocaller/internal/matchdata"
	"github.com/starallele/diplocaller/internal/variantreader"
)

// geneWorkItem is one gene awaiting MatchData preparation and
// diplotype search.
type geneWorkItem struct {
	Seq  int
	Gene *definition.Gene
}

// geneWorkResult is the outcome of processing one gene.
type geneWorkResult struct {
	Seq        int
	Gene       *definition.Gene
	MatchData  *matchdata.MatchData
	Diplotypes []diplotype.DiplotypeMatch
}

// parallelProcessGenes runs MatchData.Prepare and diplotype.Search for
// every gene over a pool of workers. Genes are independent: each reads
// only the shared sample map and its own gene definition, so results
// may arrive out of order on the returned channel. Use
// orderedCollectGenes to consume them back in store order.
func parallelProcessGenes(genes []*definition.Gene, sample map[string]variantreader.SampleAllele, cfg Config, workers int) <-chan geneWorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(genes) {
		workers = len(genes)
	}
	if workers < 1 {
		workers = 1
	}

	items := make(chan geneWorkItem, len(genes))
	for i, gene := range genes {
		items <- geneWorkItem{Seq: i, Gene: gene}
	}
	close(items)

	results := make(chan geneWorkResult, len(genes))

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				md := matchdata.Prepare(item.Gene, sample, cfg.AssumeReference)
				diplotypes := diplotype.Search(md, item.Gene.Positions, cfg.TopCandidateOnly)
				results <- geneWorkResult{
					Seq:        item.Seq,
					Gene:       item.Gene,
					MatchData:  md,
					Diplotypes: diplotypes,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// orderedCollectGenes calls fn for each geneWorkResult in sequence
// order, buffering out-of-order arrivals until the next expected
// sequence number shows up. Blocks until results is closed.
func orderedCollectGenes(results <-chan geneWorkResult, fn func(geneWorkResult)) {
	pending := make(map[int]geneWorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			fn(rr)
		}
	}
}
