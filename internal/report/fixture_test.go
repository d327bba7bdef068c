package report

import (
	"github.com/twpayne/go-geom"

	"github.com/sells-group/equity-report/internal/artifact"
	"github.com/sells-group/equity-report/internal/geo"
	"github.com/sells-group/equity-report/internal/model"
)

func f(v float64) *float64 { return &v }

func box(minX, minY, size float64) *geom.MultiPolygon {
	return geo.PolygonFromBounds(minX, minY, minX+size, minY+size, geo.SRIDNAD83)
}

func point(lon, lat float64) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{lon, lat}).SetSRID(geo.SRIDNAD83)
}

// degenerate is a multipolygon whose only ring has three coordinates.
func degenerate() *geom.MultiPolygon {
	p := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{{-110, 35}, {-109, 35}, {-110, 35}}})
	mp := geom.NewMultiPolygon(geom.XY)
	_ = mp.Push(p)
	return mp
}

func fixtureTracts() []model.Tract {
	sdHigh := model.Tract{
		GEOID: "060730001", City: "San Diego", County: "San Diego County",
		Population: f(4200), DACIndicator: "1",
		DACStatus: model.StatusDisadvantaged, QCTStatus: model.StatusEligible,
		NationalPercentile: f(91.5), StatePercentile: f(40),
		Geometry: box(-117.2, 32.7, 0.1),
	}
	sdHigh.Indicators.EnergyBurden = f(55.5)
	sdHigh.Indicators.Nonwhite = f(60)
	sdHigh.Indicators.HousingBurden = f(48.2)

	sdLow := model.Tract{
		GEOID: "060730002", City: "San Diego", County: "San Diego County",
		Population: f(3100), DACIndicator: "1",
		DACStatus: model.StatusDisadvantaged, QCTStatus: model.StatusNotEligible,
		Geometry: box(-117.1, 32.7, 0.1),
	}
	sdLow.Indicators.EnergyBurden = f(11.11)
	sdLow.Indicators.Nonwhite = f(20)

	sdNoData := model.Tract{
		GEOID: "060730003", City: "Chula Vista", County: "San Diego County",
		DACStatus: model.StatusNotDisadvantaged, QCTStatus: model.StatusNotEligible,
		Geometry: box(-117.0, 32.6, 0.1),
	}

	sf := model.Tract{
		GEOID: "060750001", City: "San Francisco", County: "San Francisco County",
		DACStatus: model.StatusNotDisadvantaged, QCTStatus: model.StatusEligible,
		Geometry: box(-122.5, 37.7, 0.1),
	}
	sf.Indicators.EnergyBurden = f(70)

	navajo := model.Tract{
		GEOID: "04001940100", County: "Apache County",
		DACStatus: model.StatusDisadvantaged, QCTStatus: model.StatusNotEligible,
		Geometry: box(-109.8, 36.1, 0.2),
	}
	navajo.Indicators.EnergyBurden = f(88)

	return []model.Tract{sdHigh, sdLow, sdNoData, sf, navajo}
}

func fixtureHousing() []model.Property {
	return []model.Property{
		{
			Name: "Harbor View", Address: "5 Bay Rd", City: "San Diego", State: "CA", Zip: "92101",
			SubsidyName: "Section 8", SubsidySubname: "PRAC", Owner: "Harbor LLC",
			AssistedUnits: f(20.7), TotalUnits: f(24),
			Location: point(-117.15, 32.75),
		},
		{
			Name: "Café Apartments", Address: "1 Main St", City: "San Diego", State: "CA", Zip: "92102",
			SubsidyName: "LIHTC", AssistedUnits: f(15.6),
			Location: point(-117.05, 32.72),
		},
		{
			Name: "Mission Homes", Address: "9 Mission St", City: "San Francisco", State: "CA", Zip: "94103",
			AssistedUnits: f(50),
			Location: point(-122.45, 37.75),
		},
		{Name: "Nowhere", Address: "0 Unknown"},
	}
}

func fixtureContext() *artifact.Context {
	counties := []model.Boundary{
		{
			Level: model.LevelCounty, Name: "San Diego County, CA", GEOID: "06073",
			County: "San Diego County", State: "California", StateFP: "06", CountyFP: "073", STUSPS: "CA",
			Geometry: geo.PolygonFromBounds(-117.6, 32.5, -116.1, 33.5, geo.SRIDNAD83), SRID: geo.SRIDNAD83,
		},
		{
			Level: model.LevelCounty, Name: "Imperial County, CA", GEOID: "06025",
			County: "Imperial County", State: "California", StateFP: "06", CountyFP: "025", STUSPS: "CA",
			Geometry: box(-116, 32.6, 1), SRID: geo.SRIDNAD83,
		},
	}
	states := []model.Boundary{
		{
			Level: model.LevelState, Name: "California", GEOID: "06", StateFP: "06", STUSPS: "CA",
			Geometry: geo.PolygonFromBounds(-124.5, 32.5, -114, 42, geo.SRIDNAD83), SRID: geo.SRIDNAD83,
		},
	}
	tribes := []model.Boundary{
		{
			Level: model.LevelTribeOrTerritory, Name: "Navajo Nation Reservation", GEOID: "2430",
			Geometry: geo.PolygonFromBounds(-111, 35.5, -109, 37, geo.SRIDNAD83), SRID: geo.SRIDNAD83,
		},
		{
			Level: model.LevelTribeOrTerritory, Name: "Broken Reservation", GEOID: "04001940100",
			Geometry: degenerate(), SRID: geo.SRIDNAD83,
		},
	}
	return artifact.New(geo.SRIDNAD83, fixtureTracts(), fixtureHousing(), counties, states, tribes)
}

func geoids(ts []*model.Tract) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.GEOID
	}
	return out
}

func rowGEOIDs(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.GEOID
	}
	return out
}

func names(ps []*model.Property) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}
