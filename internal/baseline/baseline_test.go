package baseline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/model"
)

func TestDefault_CoversAllSystemTypes(t *testing.T) {
	tbl := Default()
	for _, st := range model.AllSystemTypes {
		v, err := tbl.Variant(st, "")
		require.NoError(t, err, string(st))
		assert.Greater(t, v.Lifespan.MedianYears, 0.0, string(st))
		assert.Greater(t, v.Lifespan.StdDevYears, 0.0, string(st))
		assert.Greater(t, v.Cost.High, v.Cost.Low, string(st))
	}
}

func TestVariant_MaterialFallback(t *testing.T) {
	tbl := Default()

	metal, err := tbl.Variant(model.SystemRoof, "metal")
	require.NoError(t, err)
	assert.Equal(t, 45.0, metal.Lifespan.MedianYears)

	// Unlisted material falls back to the system default.
	slate, err := tbl.Variant(model.SystemRoof, "slate")
	require.NoError(t, err)
	assert.Equal(t, 20.0, slate.Lifespan.MedianYears)
}

func TestVariant_UnknownSystemType(t *testing.T) {
	tbl := Default()
	_, err := tbl.Variant("pool_pump", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown system type")
}

func TestClimateFactor(t *testing.T) {
	tbl := Default()

	assert.Equal(t, 0.88, tbl.ClimateFactor("hot_humid", model.SystemHVAC))
	// Unlisted system in a listed zone is neutral.
	assert.Equal(t, 1.0, tbl.ClimateFactor("hot_humid", model.SystemPlumbing))
	// Unknown zone is neutral.
	assert.Equal(t, 1.0, tbl.ClimateFactor("arctic", model.SystemRoof))
	assert.Equal(t, 1.0, tbl.ClimateFactor("", model.SystemRoof))
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "baseline.yaml")
	override := `
systems:
  hvac:
    default:
      lifespan:
        median_years: 15
        stddev_years: 3
      cost:
        low: 7000
        high: 14000
  roof:
    materials:
      slate:
        lifespan:
          median_years: 75
          stddev_years: 15
        cost:
          low: 30000
          high: 80000
climate:
  marine:
    roof: 0.9
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0o644))

	tbl, err := Load(path)
	require.NoError(t, err)

	hvac, err := tbl.Variant(model.SystemHVAC, "")
	require.NoError(t, err)
	assert.Equal(t, 15.0, hvac.Lifespan.MedianYears)

	// New material row merged in; existing rows untouched.
	slate, err := tbl.Variant(model.SystemRoof, "slate")
	require.NoError(t, err)
	assert.Equal(t, 75.0, slate.Lifespan.MedianYears)
	metal, err := tbl.Variant(model.SystemRoof, "metal")
	require.NoError(t, err)
	assert.Equal(t, 45.0, metal.Lifespan.MedianYears)

	// Systems absent from the override keep their defaults.
	wh, err := tbl.Variant(model.SystemWaterHeater, "tank")
	require.NoError(t, err)
	assert.Equal(t, 10.0, wh.Lifespan.MedianYears)

	assert.Equal(t, 0.9, tbl.ClimateFactor("marine", model.SystemRoof))
	assert.Equal(t, 0.88, tbl.ClimateFactor("hot_humid", model.SystemHVAC))
}

func TestLoad_RejectsUnknownSystemType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "baseline.yaml")
	override := `
systems:
  pool_pump:
    default:
      lifespan:
        median_years: 8
        stddev_years: 2
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown system type")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
