// Package tiger fetches and reads Census cartographic boundary shapefiles
// (states, counties, American Indian/Alaska Native/Native Hawaiian areas).
package tiger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/equity-report/internal/model"
)

// Product describes a national cartographic boundary shapefile.
type Product struct {
	Name    string      // e.g., "COUNTY"
	Table   string      // file token, e.g., "county"
	Level   model.Level // boundary level the product feeds
	Columns []string    // attribute columns read from the .dbf
}

// Products lists the boundary products the report needs.
var Products = []Product{
	{
		Name:  "STATE",
		Table: "state",
		Level: model.LevelState,
		Columns: []string{
			"statefp", "statens", "geoid", "stusps", "name", "lsad", "aland", "awater",
		},
	},
	{
		Name:  "COUNTY",
		Table: "county",
		Level: model.LevelCounty,
		Columns: []string{
			"statefp", "countyfp", "countyns", "geoid", "name", "namelsad",
			"stusps", "state_name", "lsad", "aland", "awater",
		},
	},
	{
		Name:  "AIANNH",
		Table: "aiannh",
		Level: model.LevelTribeOrTerritory,
		Columns: []string{
			"aiannhce", "aiannhns", "geoid", "name", "namelsad", "lsad", "aland", "awater",
		},
	},
}

// ProductByName looks up a product by its name, case-insensitively.
func ProductByName(name string) (Product, bool) {
	for _, p := range Products {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Product{}, false
}

// FileName returns the archive name, e.g. cb_2022_us_county_500k.zip.
func FileName(product Product, year int, resolution string) string {
	return fmt.Sprintf("cb_%d_us_%s_%s.zip", year, product.Table, resolution)
}

// DownloadURL builds the Census Bureau URL for a cartographic boundary
// archive. protocol is "https" or "ftp"; the FTP mirror shares the path.
func DownloadURL(product Product, year int, resolution, protocol string) string {
	host := "https://www2.census.gov"
	if protocol == "ftp" {
		host = "ftp://ftp2.census.gov"
	}
	return fmt.Sprintf("%s/geo/tiger/GENZ%d/shp/%s", host, year, FileName(product, year, resolution))
}

// FIPSCodes maps state and territory abbreviation to 2-digit FIPS code.
var FIPSCodes = map[string]string{
	"AL": "01", "AK": "02", "AZ": "04", "AR": "05", "CA": "06",
	"CO": "08", "CT": "09", "DE": "10", "DC": "11", "FL": "12",
	"GA": "13", "HI": "15", "ID": "16", "IL": "17", "IN": "18",
	"IA": "19", "KS": "20", "KY": "21", "LA": "22", "ME": "23",
	"MD": "24", "MA": "25", "MI": "26", "MN": "27", "MS": "28",
	"MO": "29", "MT": "30", "NE": "31", "NV": "32", "NH": "33",
	"NJ": "34", "NM": "35", "NY": "36", "NC": "37", "ND": "38",
	"OH": "39", "OK": "40", "OR": "41", "PA": "42", "RI": "44",
	"SC": "45", "SD": "46", "TN": "47", "TX": "48", "UT": "49",
	"VT": "50", "VA": "51", "WA": "53", "WV": "54", "WI": "55",
	"WY": "56",
	"AS": "60", "GU": "66", "MP": "69", "PR": "72", "VI": "78",
}

// TerritoryFIPS lists the FIPS codes of the inhabited territories.
var TerritoryFIPS = []string{"60", "66", "69", "72", "78"}

var abbrByFIPS = func() map[string]string {
	m := make(map[string]string, len(FIPSCodes))
	for abbr, fips := range FIPSCodes {
		m[fips] = abbr
	}
	return m
}()

// AbbrFromFIPS returns the postal abbreviation for a FIPS code.
func AbbrFromFIPS(fips string) (string, bool) {
	abbr, ok := abbrByFIPS[fips]
	return abbr, ok
}

// IsTerritory reports whether fips belongs to a territory.
func IsTerritory(fips string) bool {
	for _, t := range TerritoryFIPS {
		if t == fips {
			return true
		}
	}
	return false
}

// AllStateFIPS returns the sorted FIPS codes of the 50 states and DC.
func AllStateFIPS() []string {
	codes := make([]string, 0, len(FIPSCodes))
	for _, fips := range FIPSCodes {
		if !IsTerritory(fips) {
			codes = append(codes, fips)
		}
	}
	sort.Strings(codes)
	return codes
}
