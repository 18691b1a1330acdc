// Package indexer drives incremental workspace re-indexing: drain the
// dirty set, expand it to the transitive closure of dependents, re-index
// each file with bounded concurrency, then run a single batched link pass
// (§4.8).
package indexer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/depgraph"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/dirty"
)

// FileIndexer is the per-file work the Driver delegates to: read the file
// from disk, re-parse it, rebuild its symbol-table and pattern-index
// entries, update completion dictionaries, and replace the workspace
// cache entry. Implemented by workspace.State, which owns the cache,
// symtab, patindex, and completion dictionaries this touches; kept as an
// interface here so the driver's batching/concurrency/link-pass logic is
// testable without constructing a whole workspace.
type FileIndexer interface {
	// IndexFile re-indexes uri, returning the set of URIs uri now depends
	// on (its fresh outgoing edges, for the driver to record in the
	// dependency graph) or an error if indexing failed. A failure here is
	// isolated to uri: it must never abort the rest of the batch.
	IndexFile(ctx context.Context, uri string) (dependsOn []string, err error)

	// LinkSymbols runs the single batched cross-file symbol-linking pass
	// after every file in a re-index cycle has been processed.
	LinkSymbols(ctx context.Context)
}

// Result reports one file's outcome from a Run.
type Result struct {
	URI string
	Err error
}

// Driver owns the dirty tracker and dependency graph and runs re-index
// cycles against a FileIndexer. Concurrency (Go's native
// goroutines+errgroup in place of the source's tokio::spawn) is bounded by
// Concurrency.
type Driver struct {
	Dirty       *dirty.Tracker
	Graph       *depgraph.Graph
	Indexer     FileIndexer
	Concurrency int // 0 defaults to 8
}

// New constructs a Driver wired to tracker, graph, and idx.
func New(tracker *dirty.Tracker, graph *depgraph.Graph, idx FileIndexer) *Driver {
	return &Driver{Dirty: tracker, Graph: graph, Indexer: idx, Concurrency: 8}
}

// MaybeRun runs a cycle iff the dirty tracker's debounce window has
// elapsed, mirroring the source's should_reindex/incremental_reindex
// split. Returns nil, nil if nothing was due to flush.
func (d *Driver) MaybeRun(ctx context.Context) ([]Result, error) {
	if !d.Dirty.ShouldFlush() {
		return nil, nil
	}
	return d.Run(ctx)
}

// Run unconditionally drains the dirty set and re-indexes it (plus its
// transitive dependents), regardless of the debounce window. Returns nil,
// nil if the dirty set was empty.
func (d *Driver) Run(ctx context.Context) ([]Result, error) {
	dirtyEntries := d.Dirty.DrainDirty()
	if len(dirtyEntries) == 0 {
		return nil, nil
	}

	toReindex := make(map[string]struct{}, len(dirtyEntries))
	for _, e := range dirtyEntries {
		toReindex[e.URI] = struct{}{}
		for _, dependent := range d.Graph.GetDependents(e.URI) {
			toReindex[dependent] = struct{}{}
		}
	}

	uris := make([]string, 0, len(toReindex))
	for uri := range toReindex {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	results := d.reindexAll(ctx, uris)

	d.Indexer.LinkSymbols(ctx)

	return results, nil
}

func (d *Driver) reindexAll(ctx context.Context, uris []string) []Result {
	concurrency := d.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}

	results := make([]Result, len(uris))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, uri := range uris {
		i, uri := i, uri
		g.Go(func() error {
			dependsOn, err := d.Indexer.IndexFile(gctx, uri)
			if err != nil {
				mu.Lock()
				results[i] = Result{URI: uri, Err: fmt.Errorf("indexer: indexing %s: %w", uri, err)}
				mu.Unlock()
				return nil
			}

			d.Graph.RemoveEdgesFrom(uri)
			for _, dep := range dependsOn {
				d.Graph.AddEdge(uri, dep)
			}

			mu.Lock()
			results[i] = Result{URI: uri}
			mu.Unlock()
			return nil
		})
	}
	// errgroup.Go never returns a non-nil error above (failures are
	// recorded per-file in results), so Wait only ever reports context
	// cancellation.
	_ = g.Wait()

	return results
}
