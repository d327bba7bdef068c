package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelString(t *testing.T) {
	assert.Equal(t, "Census Tract ID", LevelTractID.String())
	assert.Equal(t, "City", LevelCity.String())
	assert.Equal(t, "County", LevelCounty.String())
	assert.Equal(t, "State", LevelState.String())
	assert.Equal(t, "Tribe and Territory", LevelTribeOrTerritory.String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"tract", LevelTractID},
		{"Census Tract ID", LevelTractID},
		{"geoid", LevelTractID},
		{"CITY", LevelCity},
		{"county", LevelCounty},
		{"State", LevelState},
		{"tribe", LevelTribeOrTerritory},
		{"Tribe and Territory", LevelTribeOrTerritory},
		{"territory", LevelTribeOrTerritory},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLevel_Unknown(t *testing.T) {
	_, err := ParseLevel("zipcode")
	assert.Error(t, err)
}

func TestParseLevel_RoundTripsKeys(t *testing.T) {
	for _, l := range Levels {
		got, err := ParseLevel(l.Key())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}
}
