package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"itemdb/internal"
	"itemdb/internal/catalog"
	"itemdb/internal/config"
	"itemdb/internal/pipeline"
	"itemdb/internal/presenter"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Server exposes a loaded catalog. A non-nil loadErr means the item dataset
// failed to load; the page then shows the failure message and the API
// answers 503.
type Server struct {
	cfg     config.Config
	cat     *catalog.Catalog
	loadErr error
	router  chi.Router
}

type itemsResponse struct {
	Count   int               `json:"count"`
	Results []internal.Result `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func New(cfg config.Config, cat *catalog.Catalog, loadErr error) *Server {
	if cat == nil && loadErr == nil {
		loadErr = catalog.ErrPrimaryLoad
	}
	s := &Server{cfg: cfg, cat: cat, loadErr: loadErr}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.EnableCORS {
		r.Use(withCommonHeaders)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/", s.handleIndex)
	r.Get("/navigate", s.handleNavigate)
	r.Get("/export.xlsx", s.handleExport)
	r.Route("/api", func(r chi.Router) {
		r.Get("/items", s.handleItems)
		r.Get("/tags", s.handleTags)
		r.Get("/recipes/{name}", s.handleRecipe)
	})

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until ctx is cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("listening on %s items=%d\n", addr, s.itemCount())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) itemCount() int {
	if s.cat == nil {
		return 0
	}
	return s.cat.Len()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	view := s.viewFromQuery(r.URL.Query())

	var page presenter.Page
	if s.loadErr != nil {
		page = presenter.Failed(view)
	} else {
		page = presenter.Build(s.cat, view, r.URL.Query().Get("target"))
	}

	var buf bytes.Buffer
	if err := presenter.Render(&buf, page); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		fmt.Fprintf(os.Stderr, "error writing response: %v\n", err)
	}
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	view, target := presenter.Navigate(s.viewFromQuery(query), query.Get("item"))
	http.Redirect(w, r, indexURL(view, target), http.StatusSeeOther)
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	if !s.available(w) {
		return
	}
	query := r.URL.Query()
	results := pipeline.RunCatalog(s.cat, s.viewFromQuery(query))
	count := len(results)
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	writeJSON(w, http.StatusOK, itemsResponse{Count: count, Results: results})
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	if !s.available(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.cat.Tags())
}

func (s *Server) handleRecipe(w http.ResponseWriter, r *http.Request) {
	if !s.available(w) {
		return
	}
	name, err := recipeName(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid recipe name"})
		return
	}
	entry, ok := s.cat.Recipes().Lookup(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "recipe not found"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// recipeName reads the {name} param. chi matches on RawPath when the request
// has one, and the param is then still escaped.
func recipeName(r *http.Request) (string, error) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name, nil
	}
	return url.PathUnescape(name)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if !s.available(w) {
		return
	}
	results := pipeline.RunCatalog(s.cat, s.viewFromQuery(r.URL.Query()))

	var buf bytes.Buffer
	if err := pipeline.WriteXLSX(results, &buf); err != nil {
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="itemdb.xlsx"`)
	if _, err := w.Write(buf.Bytes()); err != nil {
		fmt.Fprintf(os.Stderr, "error writing response: %v\n", err)
	}
}

func (s *Server) available(w http.ResponseWriter) bool {
	if s.loadErr == nil {
		return true
	}
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: presenter.LoadFailedMessage})
	return false
}

func (s *Server) viewFromQuery(q url.Values) internal.ViewState {
	sort := q.Get("sort")
	if sort == "" {
		sort = s.cfg.DefaultSort
	}
	return internal.ViewState{
		Query:   strings.TrimSpace(q.Get("q")),
		Tag:     strings.TrimSpace(q.Get("tag")),
		DIYOnly: parseFlag(q.Get("diy")),
		Sort:    internal.ParseSortMode(sort),
	}
}

func indexURL(view internal.ViewState, target string) string {
	q := url.Values{}
	if view.Query != "" {
		q.Set("q", view.Query)
	}
	if view.Tag != "" {
		q.Set("tag", view.Tag)
	}
	if view.DIYOnly {
		q.Set("diy", "1")
	}
	if view.Sort != "" {
		q.Set("sort", string(view.Sort))
	}
	if target != "" {
		q.Set("target", target)
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}

func parseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "error encoding response: %v\n", err)
	}
}

func withCommonHeaders(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
