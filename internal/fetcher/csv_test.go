package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV_HeaderKeyed(t *testing.T) {
	input := "\ufeffProperty Name,City, Zip Code \nOak Villas,San Diego,92101\nPine Court,Chula Vista\n"
	header, records, err := ReadCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Property Name", "City", "Zip Code"}, header)
	require.Len(t, records, 2)
	assert.Equal(t, "Oak Villas", records[0].Get("Property Name"))
	assert.Equal(t, "92101", records[0].Get("Zip Code"))
	assert.Equal(t, 2, records[0].Line)
	// short row
	assert.Equal(t, "", records[1].Get("Zip Code"))
	assert.Equal(t, 3, records[1].Line)
}

func TestReadCSV_PipeDelimitedTrim(t *testing.T) {
	input := "a|b\n 1 | 2 \n"
	_, records, err := ReadCSV(context.Background(), strings.NewReader(input), CSVOptions{Delimiter: '|', TrimSpace: true})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1", records[0].Values["a"])
	assert.Equal(t, "2", records[0].Values["b"])
}

func TestReadCSV_DuplicateHeaderKeepsFirst(t *testing.T) {
	input := "id,id\n1,2\n"
	_, records, err := ReadCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, "1", records[0].Get("id"))
}

func TestReadCSV_Empty(t *testing.T) {
	header, records, err := ReadCSV(context.Background(), strings.NewReader(""), CSVOptions{})
	require.NoError(t, err)
	assert.Nil(t, header)
	assert.Empty(t, records)
}

func TestReadCSV_Malformed(t *testing.T) {
	input := "a,b\n\"unterminated,2\n"
	_, _, err := ReadCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	assert.Error(t, err)
}

func TestStreamCSV_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var b strings.Builder
	b.WriteString("a\n")
	for range 200 {
		b.WriteString("1\n")
	}
	_, recCh, errCh := StreamCSV(ctx, strings.NewReader(b.String()), CSVOptions{})
	for range recCh {
	}
	err := <-errCh
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
}
