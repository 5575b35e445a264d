package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eczema-mitten/mittenpost/internal/model"
)

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeCatalogFile(t, `
materials:
  BAMBOO: Bamboo
overrides:
  - item: Mystery gift set
    material: Cotton
    size: S (150-160cm)
    bundle: true
`)

	c := New()
	require.NoError(t, c.LoadFile(path))

	got := c.Classify("Bamboo mitten L (170-180cm)")
	assert.Equal(t, model.Material("Bamboo"), got.Material)

	got = c.Classify("Mystery gift set")
	assert.Equal(t, model.Product{
		Material: model.MaterialCotton,
		Size:     model.SizeS,
		Bundle:   true,
	}, got)
}

func TestLoadFile_OverrideWithoutClassification(t *testing.T) {
	path := writeCatalogFile(t, `
overrides:
  - item: Plain voucher
`)

	c := New()
	require.NoError(t, c.LoadFile(path))

	got := c.Classify("Plain voucher")
	assert.Equal(t, model.MaterialUnknown, got.Material)
	assert.Equal(t, model.SizeUnknown, got.Size)
}

func TestLoadFile_RejectsUnknownSizeBand(t *testing.T) {
	path := writeCatalogFile(t, `
overrides:
  - item: Bad entry
    size: XXL (190-200cm)
`)

	err := New().LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown size band")
}

func TestLoadFile_MissingFile(t *testing.T) {
	err := New().LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestParseFile_BadYAML(t *testing.T) {
	_, err := ParseFile([]byte("materials: ["))
	assert.Error(t, err)
}
