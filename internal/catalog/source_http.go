package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"itemdb/internal"
	"itemdb/internal/config"
)

const maxHTTPBodyBytes = 64 << 20

// HTTPSource fetches a JSON array with a single GET. There is no retry: a
// failed load is reported to the caller as is.
type HTTPSource struct {
	url        string
	httpClient *http.Client
	maxBytes   int64
}

func NewHTTPSource(cfg config.Config, url string) *HTTPSource {
	return &HTTPSource{
		url:        url,
		httpClient: &http.Client{Timeout: time.Duration(cfg.FetchTimeoutMs) * time.Millisecond},
		maxBytes:   maxHTTPBodyBytes,
	}
}

func (s *HTTPSource) Name() string { return s.url }

func (s *HTTPSource) Records(ctx context.Context) ([]internal.RawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if int64(len(body)) > s.maxBytes {
		return nil, fmt.Errorf("fetch %s: body exceeds %d bytes", s.url, s.maxBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: status=%d", s.url, resp.StatusCode)
	}
	return DecodeRecords(body)
}
