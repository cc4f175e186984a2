// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"fmt"
	"io"

	"github.com/Ayden-Zhou/Scholar-Tool/pkg/types"
)

// RelationSource lists the complete neighbor set for a paper. The API
// client satisfies this.
type RelationSource interface {
	Relations(ctx context.Context, paperID string, kind types.RelationKind, filter types.RelationFilter) ([]types.RelationEntry, error)
}

// Fetcher is a write-through cache in front of a RelationSource. Hits
// never touch the network; misses fall through and the result is stored
// before returning. A storage failure on write-back is reported to Log
// but does not fail the fetch, since the caller already has its answer.
type Fetcher struct {
	Source RelationSource
	Store  *Store

	// Log receives cache warnings. nil discards them.
	Log io.Writer
}

// Relations returns the neighbor listing, from cache when present.
func (f *Fetcher) Relations(ctx context.Context, paperID string, kind types.RelationKind, filter types.RelationFilter) ([]types.RelationEntry, error) {
	entries, ok, err := f.Store.GetListing(ctx, paperID, kind, filter)
	if err != nil {
		f.warnf("cache read for %s/%s: %v", paperID, kind, err)
	} else if ok {
		return entries, nil
	}

	entries, err = f.Source.Relations(ctx, paperID, kind, filter)
	if err != nil {
		return nil, err
	}
	if err := f.Store.PutListing(ctx, paperID, kind, filter, entries); err != nil {
		f.warnf("cache write for %s/%s: %v", paperID, kind, err)
	}
	return entries, nil
}

func (f *Fetcher) warnf(format string, args ...any) {
	if f.Log != nil {
		fmt.Fprintf(f.Log, "warning: "+format+"\n", args...)
	}
}
