package report

import (
	_ "embed"
	"math"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/equity-report/internal/model"
)

//go:embed indicators.yaml
var defaultCatalog []byte

// Catalog lists the indicators drawn on detailed tract pages.
type Catalog struct {
	Threshold  float64        `yaml:"threshold"`
	BarScale   float64        `yaml:"bar_scale"`
	Indicators []CatalogEntry `yaml:"indicators"`
}

// CatalogEntry binds a display label to an indicator column.
type CatalogEntry struct {
	Column string `yaml:"column"`
	Label  string `yaml:"label"`
}

// IndicatorValue is one rendered indicator bar.
type IndicatorValue struct {
	Label   string
	Value   *float64
	Bar     float64 // bar width in percent of the available width
	Flagged bool
}

// DefaultCatalog returns the embedded indicator catalog.
func DefaultCatalog() *Catalog {
	c, err := parseCatalog(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

// LoadCatalog reads an indicator catalog from a YAML file. An empty path
// returns the embedded catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "report: read catalog %s", path)
	}
	return parseCatalog(data)
}

func parseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrap(err, "report: parse catalog")
	}
	if c.Threshold == 0 {
		c.Threshold = 50
	}
	if c.BarScale == 0 {
		c.BarScale = 0.93
	}
	if len(c.Indicators) == 0 {
		return nil, eris.New("report: catalog has no indicators")
	}
	for _, e := range c.Indicators {
		if _, ok := model.IndicatorByColumn(e.Column); !ok {
			return nil, eris.Errorf("report: catalog column %q is not an indicator", e.Column)
		}
	}
	return &c, nil
}

// Values evaluates the catalog against one tract.
func (c *Catalog) Values(t *model.Tract) []IndicatorValue {
	out := make([]IndicatorValue, 0, len(c.Indicators))
	for _, e := range c.Indicators {
		v := t.Indicators.Get(e.Column)
		iv := IndicatorValue{Label: e.Label, Value: v}
		if v != nil {
			iv.Bar = math.Round(c.BarScale * *v)
			iv.Flagged = *v > c.Threshold
		}
		out = append(out, iv)
	}
	return out
}

// Flagged reports whether a ranking value is above the catalog threshold.
func (c *Catalog) Flagged(v *float64) bool {
	return v != nil && *v > c.Threshold
}
