package sheet

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// maxBodyBytes caps how much of an upstream response is read. The feed
// is tens of rows; anything near this limit is not the feed.
const maxBodyBytes = 10 * 1024 * 1024

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads CSV exports of spreadsheet tabs. The upstream host
// is an uncontrolled third party, so every request carries the client's
// timeout in addition to any caller deadline.
type Fetcher struct {
	client  HTTPClient
	baseURL string
}

// NewFetcher creates a Fetcher with a default HTTP client.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: "https://docs.google.com/spreadsheets",
	}
}

// NewFetcherWith creates a Fetcher with a custom client and base URL.
// Both are optional; zero values fall back to the defaults.
func NewFetcherWith(client HTTPClient, baseURL string) *Fetcher {
	f := NewFetcher()
	if client != nil {
		f.client = client
	}
	if baseURL != "" {
		f.baseURL = baseURL
	}
	return f
}

// CSVURL builds the CSV export URL for one tab of a spreadsheet.
func (f *Fetcher) CSVURL(sheetID, gid string) string {
	return fmt.Sprintf("%s/d/%s/export?format=csv&gid=%s", f.baseURL, url.PathEscape(sheetID), url.QueryEscape(gid))
}

// FetchCSV downloads one tab of a spreadsheet as CSV text.
func (f *Fetcher) FetchCSV(ctx context.Context, sheetID, gid string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.CSVURL(sheetID, gid), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "sheetcal/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return string(body), nil
}

// FetchRows downloads and parses one tab in a single call.
func (f *Fetcher) FetchRows(ctx context.Context, sheetID, gid string) ([]RawRow, error) {
	body, err := f.FetchCSV(ctx, sheetID, gid)
	if err != nil {
		return nil, err
	}
	return ParseCSV(body), nil
}
