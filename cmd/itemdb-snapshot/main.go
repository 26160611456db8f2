package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"itemdb/internal/config"
	"itemdb/internal/snapshot"
	"itemdb/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	cfg, once, err := parseFlags(cfg, os.Args[1:])
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc := snapshot.NewService(db, cfg)
	if once {
		res, err := svc.SaveOnce(ctx)
		must(err)
		fmt.Printf("snapshot complete db=%s items=%d recipes=%d\n", cfg.DBPath, res.Items, res.Recipes)
		return
	}

	fmt.Printf("snapshot daemon db=%s source=%s interval=%ds export=%v\n",
		cfg.DBPath, cfg.DataSource, cfg.SnapshotIntervalSec, cfg.SnapshotAutoExport)
	must(svc.Run(ctx))
}

// parseFlags lets flags override the env config for this process.
func parseFlags(cfg config.Config, args []string) (config.Config, bool, error) {
	fs := flag.NewFlagSet("itemdb-snapshot", flag.ContinueOnError)
	once := fs.Bool("once", false, "save a single snapshot and exit")
	interval := fs.Int("interval", cfg.SnapshotIntervalSec, "seconds between snapshots")
	export := fs.Bool("export", cfg.SnapshotAutoExport, "write an xlsx export after each snapshot")
	if err := fs.Parse(args); err != nil {
		return cfg, false, err
	}

	if *interval <= 0 {
		return cfg, false, fmt.Errorf("--interval must be positive, got %d", *interval)
	}
	cfg.SnapshotIntervalSec = *interval
	cfg.SnapshotAutoExport = *export
	return cfg, *once, nil
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
