package terminology

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefault(t *testing.T) {
	cat, err := Load("")
	require.NoError(t, err)

	concept, ok := cat.Lookup("GFR")
	require.True(t, ok)
	assert.Equal(t, "33914-3", concept.LOINC)
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := []byte(`concepts:
  Serum_Creatinine:
    display: Creatinine
    loinc: "2160-0"
    unit: umol/L
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cat, err := Load(path)
	require.NoError(t, err)

	concept, ok := cat.Lookup("serum_creatinine")
	require.True(t, ok)
	assert.Equal(t, "umol/L", concept.Unit)
	_, ok = cat.Lookup("gfr")
	assert.False(t, ok)
}

func TestLoadEmptyCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("concepts: {}\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	cat, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	_, ok := cat.Lookup("bun")
	assert.True(t, ok)
}

func TestAnnotate(t *testing.T) {
	gfr, custom := 52.5, 3.0
	values := map[string]*float64{"gfr": &gfr, "bun": nil, "extra": &custom}

	obs := DefaultCatalog().Annotate([]string{"serum_creatinine", "gfr", "bun", "extra"}, values)
	require.Len(t, obs, 2)
	assert.Equal(t, "gfr", obs[0].Field)
	assert.Equal(t, "33914-3", obs[0].LOINC)
	assert.Equal(t, 52.5, obs[0].Value)
	assert.Equal(t, "extra", obs[1].Display)
	assert.Empty(t, obs[1].LOINC)
}
