// Package lookup builds an index of photo fingerprints from previously exported GeoJSON documents.
package lookup

import (
	"context"
	"sync"
)

// LookerUpper is the interface for things that can populate a lookup map.
type LookerUpper interface {
	Append(context.Context, *sync.Map, ...AppendLookupFunc) error
}

// NewLookupMap returns a new map populated by each of 'looker_uppers' in turn, using 'append_funcs'.
func NewLookupMap(ctx context.Context, looker_uppers []LookerUpper, append_funcs []AppendLookupFunc) (*sync.Map, error) {

	lu := new(sync.Map)

	for _, l := range looker_uppers {

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			// pass
		}

		err := l.Append(ctx, lu, append_funcs...)

		if err != nil {
			return nil, err
		}
	}

	return lu, nil
}
