package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// Source opens the raw bytes of one table.
type Source interface {
	Open(ctx context.Context, table TableID) (io.ReadCloser, error)
}

// maxTableSize caps a single table download or file read.
const maxTableSize = 200 * 1024 * 1024

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Minute,
		Transport: &http.Transport{
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// HTTPSource fetches <BaseURL>/<table file name>.
type HTTPSource struct {
	BaseURL         string
	AuthHeaderKey   string
	AuthHeaderValue string
	Client          *http.Client
}

func NewHTTPSource(baseURL, authKey, authValue string) *HTTPSource {
	return &HTTPSource{
		BaseURL:         strings.TrimSuffix(baseURL, "/"),
		AuthHeaderKey:   authKey,
		AuthHeaderValue: authValue,
		Client:          newHTTPClient(),
	}
}

func (s *HTTPSource) Open(ctx context.Context, table TableID) (io.ReadCloser, error) {
	return s.get(ctx, s.BaseURL+"/"+table.FileName())
}

func (s *HTTPSource) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating feed request: %w", err)
	}
	if s.AuthHeaderKey != "" && s.AuthHeaderValue != "" {
		req.Header.Set(s.AuthHeaderKey, s.AuthHeaderValue)
	}

	client := s.Client
	if client == nil {
		client = newHTTPClient()
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("failed to download %s: received HTTP status %s", url, resp.Status)
	}
	return resp.Body, nil
}

// DirSource reads tables from a directory. A missing table falls back to a
// gzip-compressed "<file>.gz" sibling.
type DirSource struct {
	Dir string
}

func (s DirSource) Open(_ context.Context, table TableID) (io.ReadCloser, error) {
	p := filepath.Join(s.Dir, table.FileName())
	f, err := os.Open(p)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	gz, gzErr := os.Open(p + ".gz")
	if gzErr != nil {
		return nil, err
	}
	zr, err := gzip.NewReader(gz)
	if err != nil {
		_ = gz.Close()
		return nil, fmt.Errorf("error opening %s.gz: %w", p, err)
	}
	return &stackedCloser{Reader: zr, closers: []io.Closer{zr, gz}}, nil
}

// ZipSource reads tables out of a zip archive. Entries may sit in a
// subdirectory; the first entry whose base name matches wins.
type ZipSource struct {
	Path string
}

func (s ZipSource) Open(_ context.Context, table TableID) (io.ReadCloser, error) {
	archive, err := zip.OpenReader(s.Path)
	if err != nil {
		return nil, fmt.Errorf("error opening feed archive: %w", err)
	}
	for _, f := range archive.File {
		if path.Base(f.Name) != table.FileName() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			_ = archive.Close()
			return nil, fmt.Errorf("error opening %s in archive: %w", f.Name, err)
		}
		return &stackedCloser{Reader: rc, closers: []io.Closer{rc, archive}}, nil
	}
	_ = archive.Close()
	return nil, fmt.Errorf("%s not found in %s: %w", table.FileName(), s.Path, fs.ErrNotExist)
}

type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedCloser) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
