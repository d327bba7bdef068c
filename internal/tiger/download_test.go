package tiger

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/equity-report/internal/fetcher"
)

func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDownload_ExtractsAndCaches(t *testing.T) {
	payload := zipBytes(t, map[string]string{
		"cb_2022_us_state_500k.shp": "shp",
		"cb_2022_us_state_500k.prj": "prj",
	})
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{RatePerSec: 1000})
	dest := t.TempDir()
	url := srv.URL + "/geo/tiger/GENZ2022/shp/cb_2022_us_state_500k.zip"

	path, err := Download(context.Background(), f, url, dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "cb_2022_us_state_500k", "cb_2022_us_state_500k.shp"), path)

	_, err = Download(context.Background(), f, url, dest)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "existing archive is reused")
}

func TestDownload_NoShapefile(t *testing.T) {
	payload := zipBytes(t, map[string]string{"readme.txt": "x"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{RatePerSec: 1000})
	_, err := Download(context.Background(), f, srv.URL+"/a.zip", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .shp")
}
