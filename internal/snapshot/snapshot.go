package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"itemdb/internal"
	"itemdb/internal/catalog"
	"itemdb/internal/config"
	"itemdb/internal/pipeline"
	"itemdb/internal/storage"
)

const (
	MetaDataSource    = "snapshot.data_source"
	MetaRecipesSource = "snapshot.recipes_source"
)

var ErrStoreToStore = errors.New("snapshot source cannot be the snapshot store")

// Service copies the configured datasets into the snapshot store, once or on
// an interval.
type Service struct {
	db   *storage.DB
	cfg  config.Config
	warn io.Writer
}

type Result struct {
	Items   int
	Recipes int
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg, warn: os.Stderr}
}

func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.SnapshotIntervalSec) * time.Second
	if interval <= 0 {
		interval = time.Hour
	}
	for {
		if _, err := s.SaveOnce(ctx); err != nil {
			fmt.Printf("snapshot cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// SaveOnce fetches both datasets and replaces the stored snapshot. The item
// dataset must load; a failing recipe dataset is stored as empty.
func (s *Service) SaveOnce(ctx context.Context) (Result, error) {
	if catalog.NeedsStore(s.cfg.DataSource) || catalog.NeedsStore(s.cfg.RecipesSource) {
		return Result{}, ErrStoreToStore
	}

	itemSrc, err := catalog.OpenSource(ctx, s.cfg, s.cfg.DataSource, nil)
	if err != nil {
		return Result{}, err
	}
	if itemSrc == nil {
		return Result{}, fmt.Errorf("%w: no item source configured", catalog.ErrPrimaryLoad)
	}
	items, err := itemSrc.Records(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", catalog.ErrPrimaryLoad, itemSrc.Name(), err)
	}

	recipes := []internal.RawRecord{}
	recipeSrc, err := catalog.OpenSource(ctx, s.cfg, s.cfg.RecipesSource, nil)
	if err != nil {
		fmt.Fprintf(s.warn, "recipes unavailable source=%s: %v\n", s.cfg.RecipesSource, err)
	} else if recipeSrc != nil {
		recs, err := recipeSrc.Records(ctx)
		if err != nil {
			fmt.Fprintf(s.warn, "recipes unavailable source=%s: %v\n", recipeSrc.Name(), err)
		} else {
			recipes = recs
		}
	}

	meta := map[string]string{
		MetaDataSource:    s.cfg.DataSource,
		MetaRecipesSource: s.cfg.RecipesSource,
	}
	if err := s.db.SaveSnapshot(items, recipes, meta); err != nil {
		return Result{}, err
	}

	res := Result{Items: len(items), Recipes: len(recipes)}
	if s.cfg.SnapshotAutoExport {
		if err := s.export(items, recipes); err != nil {
			return res, err
		}
	}

	fmt.Printf("snapshot saved items=%d recipes=%d\n", res.Items, res.Recipes)
	return res, nil
}

func (s *Service) export(items, recipes []internal.RawRecord) error {
	cat := catalog.New(catalog.NormalizeItems(items), catalog.BuildRecipeIndex(recipes))
	results := pipeline.RunCatalog(cat, internal.ViewState{Sort: internal.ParseSortMode(s.cfg.DefaultSort)})

	filename := fmt.Sprintf("itemdb_%s.xlsx", time.Now().UTC().Format("20060102T150405Z"))
	return pipeline.ExportToXLSX(results, filepath.Join(s.cfg.OutputDir, "snapshot", filename))
}
