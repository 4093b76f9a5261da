// Package fetch retrieves the Lua class reference page over HTTP or from a
// local snapshot.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/PuerkitoBio/goquery"
	"github.com/dhamidi/luaref/luaref"
	"github.com/tliron/commonlog"
)

const (
	DefaultURL = "https://manual.ardour.org/lua-scripting/class_reference/"
	EnvURL     = "LUAREF_URL"
)

var log = commonlog.GetLogger("luaref.fetch")

type Fetcher struct {
	URL        string
	httpClient *http.Client
}

// NewFetcher returns a fetcher for url, falling back to $LUAREF_URL and then
// DefaultURL when url is empty.
func NewFetcher(url string) *Fetcher {
	if url == "" {
		url = os.Getenv(EnvURL)
	}
	if url == "" {
		url = DefaultURL
	}
	return &Fetcher{
		URL:        url,
		httpClient: &http.Client{},
	}
}

// Fetch downloads and parses the reference page.
func (f *Fetcher) Fetch(ctx context.Context) (*goquery.Document, error) {
	body, err := f.open(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := luaref.ParseDocument(body)
	if err != nil {
		return nil, fmt.Errorf("parse reference: %w", err)
	}
	return doc, nil
}

// Download saves the raw reference page to destPath so later runs can work
// offline with ReadFile.
func (f *Fetcher) Download(ctx context.Context, destPath string) error {
	body, err := f.open(ctx)
	if err != nil {
		return err
	}
	defer body.Close()

	if dir := filepath.Dir(destPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, body); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (f *Fetcher) open(ctx context.Context) (io.ReadCloser, error) {
	log.Infof("fetching %s", f.URL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch reference: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch reference: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch reference: HTTP %d for %s", resp.StatusCode, f.URL)
	}
	return resp.Body, nil
}

// ReadFile parses a reference page saved on disk.
func ReadFile(path string) (*goquery.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read reference: %w", err)
	}
	defer file.Close()

	doc, err := luaref.ParseDocument(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}
