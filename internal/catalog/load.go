package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"itemdb/internal"
)

var ErrPrimaryLoad = errors.New("failed to load item data")

// Loader fetches the item dataset and the optional recipe dataset together.
type Loader struct {
	items   Source
	recipes Source
	warn    io.Writer
}

// NewLoader takes a nil recipes source when no recipe dataset is configured.
func NewLoader(items, recipes Source) *Loader {
	return &Loader{items: items, recipes: recipes, warn: os.Stderr}
}

// Load waits for both datasets. Only a failure of the item dataset is an
// error; a missing or malformed recipe dataset leaves the index empty.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	if l.items == nil {
		return nil, fmt.Errorf("%w: no item source configured", ErrPrimaryLoad)
	}

	var (
		itemRecords   []internal.RawRecord
		recipeRecords []internal.RawRecord
		recipeErr     error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := l.items.Records(gctx)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrPrimaryLoad, l.items.Name(), err)
		}
		itemRecords = recs
		return nil
	})
	if l.recipes != nil {
		g.Go(func() error {
			recs, err := l.recipes.Records(gctx)
			if err != nil {
				recipeErr = err
				return nil
			}
			recipeRecords = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if recipeErr != nil {
		fmt.Fprintf(l.warn, "recipes unavailable source=%s: %v\n", l.recipes.Name(), recipeErr)
	}

	return New(NormalizeItems(itemRecords), BuildRecipeIndex(recipeRecords)), nil
}
