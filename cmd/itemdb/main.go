package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"itemdb/internal"
	"itemdb/internal/catalog"
	"itemdb/internal/config"
	"itemdb/internal/pipeline"
	"itemdb/internal/server"
	"itemdb/internal/snapshot"
	"itemdb/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := os.Args[1]
	switch cmd {
	case "serve":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		addr := fs.String("addr", cfg.ListenAddr, "listen address")
		_ = fs.Parse(os.Args[2:])

		cat, db, err := loadCatalog(ctx, cfg)
		if db != nil {
			defer db.Close()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "load failed: %v\n", err)
		}
		must(server.New(cfg, cat, err).ListenAndServe(ctx, *addr))
	case "search":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		view := viewFlags(fs, cfg)
		limit := fs.Int("limit", 0, "max results, 0 for all")
		_ = fs.Parse(os.Args[2:])

		cat := mustLoad(ctx, cfg)
		results := pipeline.RunCatalog(cat, view())
		fmt.Printf("%d items shown\n", len(results))
		if *limit > 0 && *limit < len(results) {
			results = results[:*limit]
		}
		for _, res := range results {
			item := res.Item
			fmt.Printf("%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				res.Score, item.Name, item.Tag, item.DIYText,
				item.Price.Display(), item.Profit.Display(), item.Margin.Display())
		}
	case "tags":
		cat := mustLoad(ctx, cfg)
		for _, tag := range cat.Tags() {
			fmt.Println(tag)
		}
	case "recipe":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		name := fs.String("name", "", "item name")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*name) == "" {
			must(fmt.Errorf("--name is required"))
		}

		cat := mustLoad(ctx, cfg)
		entry, ok := cat.Recipes().Lookup(*name)
		if !ok {
			must(fmt.Errorf("no recipe for %q", *name))
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		must(enc.Encode(entry))
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		view := viewFlags(fs, cfg)
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}

		cat := mustLoad(ctx, cfg)
		results := pipeline.RunCatalog(cat, view())
		must(pipeline.ExportToXLSX(results, *out))
		fmt.Printf("exported %d rows to %s\n", len(results), *out)
	case "snapshot:save":
		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		res, err := snapshot.NewService(db, cfg).SaveOnce(ctx)
		must(err)
		fmt.Printf("snapshot complete db=%s items=%d recipes=%d\n", cfg.DBPath, res.Items, res.Recipes)
	default:
		usage()
		os.Exit(1)
	}
}

func viewFlags(fs *flag.FlagSet, cfg config.Config) func() internal.ViewState {
	q := fs.String("q", "", "search query")
	tag := fs.String("tag", "", "exact tag filter")
	diy := fs.Bool("diy", false, "only DIY items")
	sort := fs.String("sort", cfg.DefaultSort, "name-az|name-za|price-asc|price-desc|profit-asc|profit-desc|margin-asc|margin-desc")
	return func() internal.ViewState {
		return internal.ViewState{
			Query:   strings.TrimSpace(*q),
			Tag:     strings.TrimSpace(*tag),
			DIYOnly: *diy,
			Sort:    internal.ParseSortMode(*sort),
		}
	}
}

// loadCatalog opens the snapshot store only when a source reads from it. The
// returned store, if any, is the caller's to close.
func loadCatalog(ctx context.Context, cfg config.Config) (*catalog.Catalog, *storage.DB, error) {
	var db *storage.DB
	if catalog.NeedsStore(cfg.DataSource) || catalog.NeedsStore(cfg.RecipesSource) {
		var err error
		db, err = storage.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
	}

	items, err := catalog.OpenSource(ctx, cfg, cfg.DataSource, db)
	if err != nil {
		return nil, db, fmt.Errorf("%w: %w", catalog.ErrPrimaryLoad, err)
	}
	recipes, err := catalog.OpenSource(ctx, cfg, cfg.RecipesSource, db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "recipes unavailable source=%s: %v\n", cfg.RecipesSource, err)
	}

	cat, err := catalog.NewLoader(items, recipes).Load(ctx)
	return cat, db, err
}

func mustLoad(ctx context.Context, cfg config.Config) *catalog.Catalog {
	cat, db, err := loadCatalog(ctx, cfg)
	if db != nil {
		defer db.Close()
	}
	must(err)
	return cat
}

func usage() {
	fmt.Println("usage: itemdb <command>")
	fmt.Println("commands:")
	fmt.Println("  serve [--addr=:8080]")
	fmt.Println("  search [--q=...] [--tag=...] [--diy] [--sort=name-az] [--limit=0]")
	fmt.Println("  tags")
	fmt.Println("  recipe --name=...")
	fmt.Println("  export:xlsx [--q=...] [--tag=...] [--diy] [--sort=name-az] --out=./out/items.xlsx")
	fmt.Println("  snapshot:save")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
