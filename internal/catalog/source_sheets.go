package catalog

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"itemdb/internal"
	"itemdb/internal/config"
)

const defaultSheetRange = "A1:Z"

// SheetsSource reads a published spreadsheet range; row one holds the headers.
type SheetsSource struct {
	service       *sheets.Service
	spreadsheetID string
	readRange     string
}

// NewSheetsSource accepts "<spreadsheetID>" or "<spreadsheetID>!<range>".
// An API key is preferred; otherwise refresh-token credentials are required.
func NewSheetsSource(ctx context.Context, cfg config.Config, ref string) (*SheetsSource, error) {
	if cfg.GoogleAPIKey != "" {
		return newSheetsSource(ctx, ref, option.WithAPIKey(cfg.GoogleAPIKey))
	}

	if err := cfg.Require("GOOGLE_CLIENT_ID", cfg.GoogleClientID); err != nil {
		return nil, err
	}
	if err := cfg.Require("GOOGLE_CLIENT_SECRET", cfg.GoogleClientSecret); err != nil {
		return nil, err
	}
	if err := cfg.Require("GOOGLE_REFRESH_TOKEN", cfg.GoogleRefreshToken); err != nil {
		return nil, err
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{sheets.SpreadsheetsReadonlyScope},
	}
	tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.GoogleRefreshToken})
	return newSheetsSource(ctx, ref, option.WithTokenSource(tokenSource))
}

func newSheetsSource(ctx context.Context, ref string, opts ...option.ClientOption) (*SheetsSource, error) {
	id, rng, _ := strings.Cut(strings.TrimSpace(ref), "!")
	if id == "" {
		return nil, errors.New("sheets source: missing spreadsheet id")
	}
	if rng == "" {
		rng = defaultSheetRange
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &SheetsSource{service: svc, spreadsheetID: id, readRange: rng}, nil
}

func (s *SheetsSource) Name() string { return sheetsPrefix + s.spreadsheetID + "!" + s.readRange }

func (s *SheetsSource) Records(ctx context.Context) ([]internal.RawRecord, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return tableToRecords(resp.Values), nil
}
