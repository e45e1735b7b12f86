package pricing

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitter_Split(t *testing.T) {
	dir := t.TempDir()
	full := writeFile(t, dir, FullCatalogFile, oregonCatalog)
	skuPath := filepath.Join(dir, SKUIndexFile)
	termsPath := filepath.Join(dir, TermsIndexFile)

	require.NoError(t, NewSplitter(zerolog.Nop()).Split(full, skuPath, termsPath))

	var products map[string]struct {
		Sku           string            `json:"sku"`
		ProductFamily string            `json:"productFamily"`
		Attributes    map[string]string `json:"attributes"`
	}
	raw, err := os.ReadFile(skuPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &products))
	require.Contains(t, products, "ABC123")
	assert.Equal(t, "t3.micro", products["ABC123"].Attributes["instanceType"])

	var terms map[string]json.RawMessage
	raw, err = os.ReadFile(termsPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &terms))
	assert.Len(t, terms, 1)
	assert.Contains(t, string(terms["ABC123"]), "0.0104")
	assert.NotContains(t, string(raw), "Reserved", "only on-demand terms are kept")
}

func TestSplitter_Idempotent(t *testing.T) {
	dir := t.TempDir()
	full := writeFile(t, dir, FullCatalogFile, oregonCatalog)
	skuPath := filepath.Join(dir, SKUIndexFile)
	termsPath := filepath.Join(dir, TermsIndexFile)
	s := NewSplitter(zerolog.Nop())

	require.NoError(t, s.Split(full, skuPath, termsPath))

	// With the full catalog gone a second parse would fail, so success
	// proves the split was skipped.
	require.NoError(t, os.Remove(full))
	require.NoError(t, s.Split(full, skuPath, termsPath))
}

func TestSplitter_ResplitsWhenOneOutputMissing(t *testing.T) {
	dir := t.TempDir()
	full := writeFile(t, dir, FullCatalogFile, oregonCatalog)
	skuPath := filepath.Join(dir, SKUIndexFile)
	termsPath := filepath.Join(dir, TermsIndexFile)
	s := NewSplitter(zerolog.Nop())

	require.NoError(t, s.Split(full, skuPath, termsPath))
	require.NoError(t, os.Remove(termsPath))
	require.NoError(t, s.Split(full, skuPath, termsPath))

	_, err := os.Stat(termsPath)
	assert.NoError(t, err)
}

func TestSplitter_Errors(t *testing.T) {
	tests := []struct {
		name      string
		catalog   string
		malformed bool
	}{
		{
			name:    "invalid json",
			catalog: `{"products":`,
		},
		{
			name:      "missing products",
			catalog:   `{"terms":{"OnDemand":{}}}`,
			malformed: true,
		},
		{
			name:      "null products",
			catalog:   `{"products":null,"terms":{"OnDemand":{}}}`,
			malformed: true,
		},
		{
			name:      "missing on-demand terms",
			catalog:   `{"products":{},"terms":{"Reserved":{}}}`,
			malformed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			full := writeFile(t, dir, FullCatalogFile, tt.catalog)
			skuPath := filepath.Join(dir, SKUIndexFile)
			termsPath := filepath.Join(dir, TermsIndexFile)

			err := NewSplitter(zerolog.Nop()).Split(full, skuPath, termsPath)
			require.Error(t, err)
			assert.Equal(t, tt.malformed, errors.Is(err, ErrMalformedCatalog))
		})
	}
}

func TestSplitter_MissingCatalog(t *testing.T) {
	dir := t.TempDir()
	err := NewSplitter(zerolog.Nop()).Split(
		filepath.Join(dir, FullCatalogFile),
		filepath.Join(dir, SKUIndexFile),
		filepath.Join(dir, TermsIndexFile),
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
