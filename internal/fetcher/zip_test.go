package fetcher

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestZIP(t *testing.T, files map[string]string) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "test.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return zipPath
}

func TestExtractZIP_ShapefileBundle(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"cb_2022_us_county_500k.shp": "shp",
		"cb_2022_us_county_500k.dbf": "dbf",
		"cb_2022_us_county_500k.prj": "prj",
	})

	destDir := t.TempDir()
	extracted, err := ExtractZIP(zipPath, destDir)
	require.NoError(t, err)
	assert.Len(t, extracted, 3)

	shp, ok := FindByExt(extracted, ".SHP")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(destDir, "cb_2022_us_county_500k.shp"), shp)

	data, err := os.ReadFile(shp)
	require.NoError(t, err)
	assert.Equal(t, "shp", string(data))
}

func TestExtractZIP_ZipSlip(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{"../evil.txt": "x"})
	_, err := ExtractZIP(zipPath, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zip slip")
}

func TestExtractZIP_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.zip")
	require.NoError(t, writeTestFile(path, "not a zip"))
	_, err := ExtractZIP(path, t.TempDir())
	assert.Error(t, err)
}

func TestFindByExt_Missing(t *testing.T) {
	_, ok := FindByExt([]string{"a.dbf", "b.prj"}, ".shp")
	assert.False(t, ok)
}
