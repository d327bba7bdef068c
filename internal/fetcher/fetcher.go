// Package fetcher downloads raw source files over HTTP or FTP and reads the
// tabular formats they arrive in (CSV, XLSX, ZIP archives).
package fetcher

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// ForURL returns the fetcher matching the URL scheme.
func ForURL(rawURL string, h *HTTPFetcher, f *FTPFetcher) (Fetcher, error) {
	switch {
	case strings.HasPrefix(rawURL, "ftp://"):
		if f == nil {
			return nil, eris.Errorf("fetcher: no ftp fetcher for %s", rawURL)
		}
		return f, nil
	case strings.HasPrefix(rawURL, "http://"), strings.HasPrefix(rawURL, "https://"):
		if h == nil {
			return nil, eris.Errorf("fetcher: no http fetcher for %s", rawURL)
		}
		return h, nil
	}
	return nil, eris.Errorf("fetcher: unsupported scheme in %s", rawURL)
}

// copyToFile drains rc into a new file at path.
func copyToFile(rc io.ReadCloser, path string) (int64, error) {
	defer rc.Close() //nolint:errcheck

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, eris.Wrap(err, "create parent dir")
	}
	file, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrap(err, "create file")
	}
	defer file.Close() //nolint:errcheck

	n, err := io.Copy(file, rc)
	if err != nil {
		return n, eris.Wrap(err, "write file")
	}
	return n, nil
}
