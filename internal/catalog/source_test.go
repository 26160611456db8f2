package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"google.golang.org/api/option"

	"itemdb/internal"
	"itemdb/internal/config"
	"itemdb/internal/storage"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestFileSourceJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(`[{"ITEM":"Carp","PRICE":"300"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	recs, err := (&FileSource{Path: path}).Records(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0]["ITEM"] != "Carp" {
		t.Fatalf("recs=%#v", recs)
	}
}

func TestFileSourceJSONC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.jsonc")
	body := `[
  // fish
  {"ITEM": "Carp", "PRICE": "300",},
]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	recs, err := (&FileSource{Path: path}).Records(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0]["PRICE"] != "300" {
		t.Fatalf("recs=%#v", recs)
	}
}

func mkXLSX(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	path := filepath.Join(t.TempDir(), "data.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileSourceXLSX(t *testing.T) {
	path := mkXLSX(t, [][]any{
		{"ITEM", "PRICE", "TAG", "DIY"},
		{"Wooden Chair", "1,200", "Furniture", "Yes"},
		{},
		{"Carp", 300, "Fish"},
	})

	recs, err := (&FileSource{Path: path}).Records(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("len=%d", len(recs))
	}

	items := NormalizeItems(recs)
	if items[0].Name != "Wooden Chair" || items[0].Price.Value != 1200 || !items[0].DIY {
		t.Fatalf("item 0: %+v", items[0])
	}
	if items[1].Name != "Carp" || items[1].Price.Value != 300 || items[1].DIY {
		t.Fatalf("item 1: %+v", items[1])
	}
}

func TestHTTPSourceSingleAttempt(t *testing.T) {
	attempts := 0
	src := NewHTTPSource(config.Config{FetchTimeoutMs: 1000}, "https://example.test/data.json")
	src.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			attempts++
			if r.Header.Get("Cache-Control") != "no-store" {
				t.Fatalf("cache header missing")
			}
			return &http.Response{
				StatusCode: http.StatusInternalServerError,
				Body:       io.NopCloser(strings.NewReader(`boom`)),
				Header:     make(http.Header),
			}, nil
		}),
	}

	if _, err := src.Records(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("attempts=%d", attempts)
	}
}

func TestHTTPSourceDecodes(t *testing.T) {
	src := NewHTTPSource(config.Config{FetchTimeoutMs: 1000}, "https://example.test/data.json")
	src.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`{"not":"an array"}`)),
				Header:     make(http.Header),
			}, nil
		}),
	}

	if _, err := src.Records(context.Background()); !errors.Is(err, ErrNotArray) {
		t.Fatalf("err=%v", err)
	}
}

func TestHTTPSourceBodyLimit(t *testing.T) {
	src := NewHTTPSource(config.Config{FetchTimeoutMs: 1000}, "https://example.test/data.json")
	src.maxBytes = 16
	src.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`[{"ITEM":"Carp"},{"ITEM":"Koi"}]`)),
				Header:     make(http.Header),
			}, nil
		}),
	}

	_, err := src.Records(context.Background())
	if err == nil || !strings.Contains(err.Error(), "exceeds 16 bytes") {
		t.Fatalf("err=%v", err)
	}

	src.maxBytes = 64
	recs, err := src.Records(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("recs=%d", len(recs))
	}
}

func TestSheetsSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/sheet123/values/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"range":"Items!A1:Z3","majorDimension":"ROWS","values":[
			["ITEM","PRICE","DIY"],
			["Carp","1,234","Yes"],
			["Koi"]
		]}`)
	}))
	defer srv.Close()

	ctx := context.Background()
	src, err := newSheetsSource(ctx, "sheet123!Items!A1:Z",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatal(err)
	}
	if src.Name() != "sheets:sheet123!Items!A1:Z" {
		t.Fatalf("name=%s", src.Name())
	}

	recs, err := src.Records(ctx)
	if err != nil {
		t.Fatal(err)
	}
	items := NormalizeItems(recs)
	if len(items) != 2 {
		t.Fatalf("len=%d", len(items))
	}
	if items[0].Price.Value != 1234 || !items[0].DIY || items[1].Name != "Koi" {
		t.Fatalf("items=%+v", items)
	}
}

func TestNewSheetsSourceNeedsCredentials(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{"none", config.Config{}, "GOOGLE_CLIENT_ID"},
		{"no secret", config.Config{GoogleClientID: "id"}, "GOOGLE_CLIENT_SECRET"},
		{"no token", config.Config{GoogleClientID: "id", GoogleClientSecret: "secret"}, "GOOGLE_REFRESH_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSheetsSource(context.Background(), tc.cfg, "sheet123")
			if err == nil || !strings.Contains(err.Error(), "missing required env var: "+tc.want) {
				t.Fatalf("err=%v", err)
			}
		})
	}
}

func TestNewSheetsSourceWithCredentials(t *testing.T) {
	cfg := config.Config{GoogleClientID: "id", GoogleClientSecret: "secret", GoogleRefreshToken: "token"}
	src, err := NewSheetsSource(context.Background(), cfg, "sheet123")
	if err != nil {
		t.Fatal(err)
	}
	if src.Name() != "sheets:sheet123!A1:Z" {
		t.Fatalf("name=%s", src.Name())
	}
}

func TestOpenSource(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{FetchTimeoutMs: 1000}

	src, err := OpenSource(ctx, cfg, "  ", nil)
	if err != nil || src != nil {
		t.Fatalf("blank descriptor: src=%v err=%v", src, err)
	}

	src, err = OpenSource(ctx, cfg, "https://example.test/data.json", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(*HTTPSource); !ok {
		t.Fatalf("got %T", src)
	}

	src, err = OpenSource(ctx, cfg, "./data.json", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(*FileSource); !ok {
		t.Fatalf("got %T", src)
	}

	if _, err := OpenSource(ctx, cfg, "sqlite:items", nil); err == nil {
		t.Fatal("sqlite without store should fail")
	}
	if !NeedsStore(" sqlite:recipes") || NeedsStore("data.json") {
		t.Fatal("NeedsStore mismatch")
	}
}

func TestStoreSource(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "itemdb.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := db.SaveSnapshot(
		[]internal.RawRecord{{"ITEM": "Carp"}},
		[]internal.RawRecord{{"Name": "Fish Bait", "Material 1": "Manila Clam", "#1": 1.0}},
		nil,
	); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if _, err := OpenSource(ctx, config.Config{}, "sqlite:bogus", db); err == nil {
		t.Fatal("unknown kind should fail")
	}
	items, err := OpenSource(ctx, config.Config{}, "sqlite:items", db)
	if err != nil {
		t.Fatal(err)
	}
	recipes, err := OpenSource(ctx, config.Config{}, "sqlite:recipes", db)
	if err != nil {
		t.Fatal(err)
	}

	cat, err := NewLoader(items, recipes).Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if cat.Len() != 1 || cat.Recipes().Len() != 1 {
		t.Fatalf("items=%d recipes=%d", cat.Len(), cat.Recipes().Len())
	}
}
