package tiger

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/equity-report/internal/fetcher"
)

// Download fetches a cartographic boundary ZIP and extracts it into destDir.
// An archive already present with content is reused. Returns the path of
// the extracted .shp file.
func Download(ctx context.Context, f fetcher.Fetcher, url, destDir string) (string, error) {
	log := zap.L().With(
		zap.String("component", "tiger.download"),
		zap.String("url", url),
	)

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", eris.Wrap(err, "tiger: create dest dir")
	}

	zipName := url[strings.LastIndex(url, "/")+1:]
	zipPath := filepath.Join(destDir, zipName)

	if info, err := os.Stat(zipPath); err == nil && info.Size() > 0 {
		log.Debug("zip already exists, skipping download", zap.String("path", zipPath))
	} else {
		log.Info("downloading boundary shapefile")
		if _, err := f.DownloadToFile(ctx, url, zipPath); err != nil {
			return "", eris.Wrap(err, "tiger: download shapefile")
		}
	}

	extractDir := filepath.Join(destDir, strings.TrimSuffix(zipName, ".zip"))
	files, err := fetcher.ExtractZIP(zipPath, extractDir)
	if err != nil {
		return "", eris.Wrap(err, "tiger: extract ZIP")
	}

	shpPath, ok := fetcher.FindByExt(files, ".shp")
	if !ok {
		return "", eris.Errorf("tiger: no .shp file in %s", zipName)
	}
	return shpPath, nil
}

// FetchOptions configures FetchAll.
type FetchOptions struct {
	Year        int
	Resolution  string
	Protocol    string
	DestDir     string
	Concurrency int
	Products    []Product // empty = all
}

// FetchAll downloads every requested product in parallel and returns the
// extracted .shp path per product name.
func FetchAll(ctx context.Context, httpF *fetcher.HTTPFetcher, ftpF *fetcher.FTPFetcher, opts FetchOptions) (map[string]string, error) {
	if opts.Year == 0 {
		opts.Year = 2022
	}
	if opts.Resolution == "" {
		opts.Resolution = "500k"
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 3
	}
	products := opts.Products
	if len(products) == 0 {
		products = Products
	}

	paths := make([]string, len(products))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, p := range products {
		g.Go(func() error {
			url := DownloadURL(p, opts.Year, opts.Resolution, opts.Protocol)
			f, err := fetcher.ForURL(url, httpF, ftpF)
			if err != nil {
				return err
			}
			path, err := Download(gCtx, f, url, filepath.Join(opts.DestDir, strings.ToLower(p.Name)))
			if err != nil {
				return eris.Wrapf(err, "tiger: fetch %s", p.Name)
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(products))
	for i, p := range products {
		out[p.Name] = paths[i]
	}
	return out, nil
}
