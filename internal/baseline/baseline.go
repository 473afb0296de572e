// Package baseline holds the service-life and replacement-cost tables the
// hazard calculator is driven by. New system types and material variants are
// added as table rows, never as branches in the hazard math.
package baseline

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/model"
)

// Lifespan is the baseline service-life distribution for one system variant.
type Lifespan struct {
	MedianYears float64 `yaml:"median_years"`
	StdDevYears float64 `yaml:"stddev_years"`
}

// Cost is the replacement cost range for one system variant, in dollars.
type Cost struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// Variant is one material/type row: e.g. roof/asphalt, water_heater/tankless.
type Variant struct {
	Lifespan Lifespan `yaml:"lifespan"`
	Cost     Cost     `yaml:"cost"`
}

// SystemBaseline holds the default variant plus any material-specific rows.
type SystemBaseline struct {
	Default   Variant            `yaml:"default"`
	Materials map[string]Variant `yaml:"materials,omitempty"`
}

// Table is the full baseline table: per-system rows plus climate stress
// factors keyed by zone then system type.
type Table struct {
	Systems map[model.SystemType]SystemBaseline     `yaml:"systems"`
	Climate map[string]map[model.SystemType]float64 `yaml:"climate"`
}

// Default returns the compiled-in baseline table. Values follow common
// industry service-life guidance (e.g. InterNACHI life expectancy charts).
func Default() *Table {
	return &Table{
		Systems: map[model.SystemType]SystemBaseline{
			model.SystemHVAC: {
				Default: Variant{
					Lifespan: Lifespan{MedianYears: 13, StdDevYears: 2.5},
					Cost:     Cost{Low: 6000, High: 12500},
				},
				Materials: map[string]Variant{
					"heat_pump": {
						Lifespan: Lifespan{MedianYears: 12, StdDevYears: 2.5},
						Cost:     Cost{Low: 7000, High: 14000},
					},
				},
			},
			model.SystemRoof: {
				Default: Variant{
					Lifespan: Lifespan{MedianYears: 20, StdDevYears: 4},
					Cost:     Cost{Low: 9000, High: 24000},
				},
				Materials: map[string]Variant{
					"asphalt": {
						Lifespan: Lifespan{MedianYears: 20, StdDevYears: 4},
						Cost:     Cost{Low: 9000, High: 24000},
					},
					"metal": {
						Lifespan: Lifespan{MedianYears: 45, StdDevYears: 8},
						Cost:     Cost{Low: 18000, High: 42000},
					},
					"tile": {
						Lifespan: Lifespan{MedianYears: 40, StdDevYears: 8},
						Cost:     Cost{Low: 22000, High: 50000},
					},
				},
			},
			model.SystemWaterHeater: {
				Default: Variant{
					Lifespan: Lifespan{MedianYears: 10, StdDevYears: 2},
					Cost:     Cost{Low: 1300, High: 3500},
				},
				Materials: map[string]Variant{
					"tank": {
						Lifespan: Lifespan{MedianYears: 10, StdDevYears: 2},
						Cost:     Cost{Low: 1300, High: 3500},
					},
					"tankless": {
						Lifespan: Lifespan{MedianYears: 18, StdDevYears: 3},
						Cost:     Cost{Low: 2800, High: 5500},
					},
				},
			},
			model.SystemElectrical: {
				Default: Variant{
					Lifespan: Lifespan{MedianYears: 35, StdDevYears: 8},
					Cost:     Cost{Low: 2000, High: 4500},
				},
			},
			model.SystemPlumbing: {
				Default: Variant{
					Lifespan: Lifespan{MedianYears: 50, StdDevYears: 10},
					Cost:     Cost{Low: 8000, High: 20000},
				},
			},
			model.SystemWindows: {
				Default: Variant{
					Lifespan: Lifespan{MedianYears: 25, StdDevYears: 6},
					Cost:     Cost{Low: 7000, High: 18000},
				},
			},
		},
		Climate: map[string]map[model.SystemType]float64{
			"hot_humid": {
				model.SystemHVAC:        0.88,
				model.SystemRoof:        0.92,
				model.SystemWaterHeater: 0.95,
			},
			"hot_dry": {
				model.SystemHVAC: 0.92,
				model.SystemRoof: 0.90,
			},
			"cold": {
				model.SystemRoof:     0.93,
				model.SystemPlumbing: 0.95,
				model.SystemWindows:  0.95,
			},
			"temperate": {},
		},
	}
}

// Load reads a YAML override file and merges it over the compiled-in
// defaults. Only rows present in the file are replaced.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "baseline: read %s", path)
	}

	var override Table
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, eris.Wrap(err, "baseline: parse override")
	}

	tbl := Default()
	for st, sb := range override.Systems {
		if _, ok := model.ParseSystemType(string(st)); !ok {
			return nil, eris.Errorf("baseline: unknown system type %q in override", st)
		}
		existing := tbl.Systems[st]
		if sb.Default.Lifespan.MedianYears > 0 {
			existing.Default = sb.Default
		}
		for mat, v := range sb.Materials {
			if existing.Materials == nil {
				existing.Materials = map[string]Variant{}
			}
			existing.Materials[mat] = v
		}
		tbl.Systems[st] = existing
	}
	for zone, factors := range override.Climate {
		tbl.Climate[zone] = factors
	}
	return tbl, nil
}

// Variant returns the baseline row for a system type and material, falling
// back to the system default when the material has no dedicated row.
// Returns an error for unknown system types; callers must not default it.
func (t *Table) Variant(st model.SystemType, material string) (Variant, error) {
	sb, ok := t.Systems[st]
	if !ok {
		return Variant{}, eris.Errorf("baseline: unknown system type %q", st)
	}
	if material != "" {
		if v, ok := sb.Materials[material]; ok {
			return v, nil
		}
	}
	return sb.Default, nil
}

// ClimateFactor returns the lifespan multiplier for a climate zone and system
// type. Unlisted combinations are neutral (1.0).
func (t *Table) ClimateFactor(zone string, st model.SystemType) float64 {
	if factors, ok := t.Climate[zone]; ok {
		if f, ok := factors[st]; ok {
			return f
		}
	}
	return 1.0
}
