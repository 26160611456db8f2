package snapshot

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"itemdb/internal/catalog"
	"itemdb/internal/config"
	"itemdb/internal/storage"
)

func openDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "itemdb.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSaveOnce(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		DataSource:         writeFile(t, dir, "data.json", `[{"ITEM":"Carp","PRICE":"300"},{"ITEM":"Wood"}]`),
		RecipesSource:      writeFile(t, dir, "recipes.json", `[{"Name":"Chair","#1":4,"Material 1":"Wood"}]`),
		OutputDir:          filepath.Join(dir, "out"),
		SnapshotAutoExport: true,
	}
	db := openDB(t)

	res, err := NewService(db, cfg).SaveOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Items != 2 || res.Recipes != 1 {
		t.Fatalf("res=%+v", res)
	}

	src, err := catalog.OpenSource(context.Background(), cfg, "sqlite:items", db)
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := catalog.NewLoader(src, nil).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("len=%d", loaded.Len())
	}

	got, err := db.GetMetadata(MetaDataSource)
	if err != nil || got == nil || *got != cfg.DataSource {
		t.Fatalf("metadata=%v err=%v", got, err)
	}

	exports, _ := filepath.Glob(filepath.Join(cfg.OutputDir, "snapshot", "*.xlsx"))
	if len(exports) != 1 {
		t.Fatalf("exports=%v", exports)
	}
}

func TestSaveOnceRecipeFailureStoresEmpty(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		DataSource:    writeFile(t, dir, "data.json", `[{"ITEM":"Carp"}]`),
		RecipesSource: writeFile(t, dir, "recipes.json", `{"not":"an array"}`),
	}
	db := openDB(t)

	var warn bytes.Buffer
	svc := NewService(db, cfg)
	svc.warn = &warn

	res, err := svc.SaveOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Recipes != 0 {
		t.Fatalf("recipes=%d", res.Recipes)
	}
	if !strings.Contains(warn.String(), "recipes unavailable") {
		t.Fatalf("warn=%q", warn.String())
	}
	n, err := db.CountRecords(storage.KindRecipes)
	if err != nil || n != 0 {
		t.Fatalf("count=%d err=%v", n, err)
	}
}

func TestSaveOnceErrors(t *testing.T) {
	db := openDB(t)

	_, err := NewService(db, config.Config{DataSource: "sqlite:items"}).SaveOnce(context.Background())
	if !errors.Is(err, ErrStoreToStore) {
		t.Fatalf("err=%v", err)
	}

	_, err = NewService(db, config.Config{DataSource: filepath.Join(t.TempDir(), "missing.json")}).SaveOnce(context.Background())
	if !errors.Is(err, catalog.ErrPrimaryLoad) {
		t.Fatalf("err=%v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		DataSource:          writeFile(t, dir, "data.json", `[{"ITEM":"Carp"}]`),
		SnapshotIntervalSec: 3600,
	}
	db := openDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewService(db, cfg).Run(ctx); err != nil {
		t.Fatal(err)
	}
	n, err := db.CountRecords(storage.KindItems)
	if err != nil || n != 1 {
		t.Fatalf("count=%d err=%v", n, err)
	}
}

func TestSaveOnceReportsStoreFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{DataSource: writeFile(t, dir, "data.json", `[{"ITEM":"Carp"}]`)}

	db, err := storage.Open(filepath.Join(dir, "itemdb.db"))
	if err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	if _, err := NewService(db, cfg).SaveOnce(context.Background()); err == nil {
		t.Fatal("expected error when the store cannot be written")
	}
}

func TestSaveOnceRecordsSources(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		DataSource:    writeFile(t, dir, "data.json", `[{"ITEM":"Carp"}]`),
		RecipesSource: writeFile(t, dir, "recipes.json", `[]`),
	}
	db := openDB(t)

	if _, err := NewService(db, cfg).SaveOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetMetadata(MetaRecipesSource)
	if err != nil || got == nil || *got != cfg.RecipesSource {
		t.Fatalf("metadata=%v err=%v", got, err)
	}
}
