// Package segmenta provides the computational core of an audience
// segmentation service: relevance search over a large attribute catalog and
// capacity-constrained partitioning of record populations.
//
// # Quick Start
//
//	ctx := context.Background()
//	eng, _ := segmenta.New(ctx, []source.Source{
//	    source.NewLocalSource("./catalog.jsonl.gz"),
//	})
//	defer eng.Close()
//
//	// Rank catalog variables against a free-text audience description.
//	cands, _ := eng.Search(ctx, "environmentally conscious millennials with high income", 20)
//
//	// Split a record matrix into size-bounded segments.
//	res, _ := eng.Partition(ctx, matrix, cluster.Params{K: 10, Seed: 42})
//
// # Search Model
//
// Search blends three signals per catalog variable: curated keyword matches
// through a synonym table, fuzzy lexical overlap with the description text,
// and TF-IDF semantic similarity (or an external embedding service via
// WithEmbedder). The top results are re-ranked for category diversity, and
// variables matching the query's dominant intent categories receive a score
// boost.
//
// # Partition Model
//
// Partition runs a capacity-aware K-Medians under L1 distance: every segment
// ends within a configurable min/max share of the population whenever that
// band is feasible. Runs are deterministic for a given input and seed.
//
// # Catalog Lifecycle
//
// The catalog index is immutable once built. The engine holds it behind an
// atomic pointer; SwapCatalog installs a rebuilt index without blocking
// readers, and catalog.Watcher can drive swaps from file change events.
package segmenta
