package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Level is the geography granularity a report is requested at.
type Level int

const (
	LevelTractID Level = iota + 1
	LevelCity
	LevelCounty
	LevelState
	LevelTribeOrTerritory
)

// Levels lists every level in presentation order.
var Levels = []Level{LevelTractID, LevelCity, LevelCounty, LevelState, LevelTribeOrTerritory}

// String returns the human-readable label used by the report UI.
func (l Level) String() string {
	switch l {
	case LevelTractID:
		return "Census Tract ID"
	case LevelCity:
		return "City"
	case LevelCounty:
		return "County"
	case LevelState:
		return "State"
	case LevelTribeOrTerritory:
		return "Tribe and Territory"
	default:
		return "unknown"
	}
}

// Key returns the short machine key used in query strings and config.
func (l Level) Key() string {
	switch l {
	case LevelTractID:
		return "tract"
	case LevelCity:
		return "city"
	case LevelCounty:
		return "county"
	case LevelState:
		return "state"
	case LevelTribeOrTerritory:
		return "tribe"
	default:
		return ""
	}
}

// ParseLevel accepts either the short key ("county") or the display label ("County").
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)
	for _, l := range Levels {
		if strings.EqualFold(s, l.Key()) || strings.EqualFold(s, l.String()) {
			return l, nil
		}
	}
	switch strings.ToLower(s) {
	case "tractid", "tract_id", "geoid":
		return LevelTractID, nil
	case "tribeorterritory", "tribe_or_territory", "territory":
		return LevelTribeOrTerritory, nil
	}
	return 0, eris.Errorf("unknown level: %q (valid: tract, city, county, state, tribe)", s)
}
