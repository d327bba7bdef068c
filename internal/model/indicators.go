package model

// Indicators holds the national-percentile burden indicators of a tract.
// Every value is a 0-100 percentile rounded to 2 decimals; nil means no data.
type Indicators struct {
	LinguisticIsolation *float64
	Over64              *float64
	LeadPaint           *float64
	DieselIndex         *float64
	CancerIndex         *float64
	TrafficIndex        *float64
	WaterIndex          *float64
	NPLIndex            *float64
	RemediationIndex    *float64
	TSDFIndex           *float64
	PM25Index           *float64
	LongCommute         *float64
	NoCar               *float64
	EnergyBurden        *float64
	FossilEmployment    *float64
	CoalEmployment      *float64
	GridOutages         *float64
	GridOutageDuration  *float64
	FoodDesert          *float64
	JobAccess           *float64
	HousingBurden       *float64
	Renters             *float64
	TransportBurden     *float64
	NoInternet          *float64
	GreenSpace          *float64
	Unhoused            *float64
	Uninsured           *float64
	Unemployed          *float64
	Disability          *float64
	IncompletePlumbing  *float64
	SingleParent        *float64
	MobileHome          *float64
	Nonwhite            *float64
	NongridHeat         *float64
	LessHS              *float64
	LowIncomeFPL        *float64
	Population          *float64
	LowIncomeAMI        *float64
	FEMALossOfLife      *float64
}

// IndicatorColumn binds a source column name to its Indicators field.
type IndicatorColumn struct {
	Column string
	Field  func(*Indicators) **float64
}

// Source column names of the indicators that the report reads directly.
const (
	ColEnergyBurden       = "avg_energy_burden_natl_pctile"
	ColHousingBurden      = "avg_housing_burden_natl_pctile"
	ColTransportBurden    = "avg_transport_burden_natl_pctile"
	ColNonwhite           = "nonwhite_pct_natl_pctile"
	ColIncompletePlumbing = "incomplete_plumbing_pct_natl_pctile"
	ColNongridHeat        = "nongrid_heat_pct_natl_pctile"
	ColLeadPaint          = "lead_paint_pct_natl_pctile"
	ColLowIncomeAMI       = "lowincome_ami_pct_natl_pctile"
)

// IndicatorColumns lists the indicator columns in canonical artifact order.
var IndicatorColumns = []IndicatorColumn{
	{"linguistic_isolation_pct_natl_pctile", func(i *Indicators) **float64 { return &i.LinguisticIsolation }},
	{"over64_pct_natl_pctile", func(i *Indicators) **float64 { return &i.Over64 }},
	{ColLeadPaint, func(i *Indicators) **float64 { return &i.LeadPaint }},
	{"ej_index_diesel_natl_pctile", func(i *Indicators) **float64 { return &i.DieselIndex }},
	{"ej_index_cancer_natl_pctile", func(i *Indicators) **float64 { return &i.CancerIndex }},
	{"ej_index_traffic_natl_pctile", func(i *Indicators) **float64 { return &i.TrafficIndex }},
	{"ej_index_water_natl_pctile", func(i *Indicators) **float64 { return &i.WaterIndex }},
	{"ej_index_npl_natl_pctile", func(i *Indicators) **float64 { return &i.NPLIndex }},
	{"ej_index_remediation_natl_pctile", func(i *Indicators) **float64 { return &i.RemediationIndex }},
	{"ej_index_tsdf_natl_pctile", func(i *Indicators) **float64 { return &i.TSDFIndex }},
	{"ej_index_pm25_natl_pctile", func(i *Indicators) **float64 { return &i.PM25Index }},
	{"over_30min_commute_pct_natl_pctile", func(i *Indicators) **float64 { return &i.LongCommute }},
	{"no_car_pct_natl_pctile", func(i *Indicators) **float64 { return &i.NoCar }},
	{ColEnergyBurden, func(i *Indicators) **float64 { return &i.EnergyBurden }},
	{"fossil_emp_rank_natl_pctile", func(i *Indicators) **float64 { return &i.FossilEmployment }},
	{"coal_emp_rank_natl_pctile", func(i *Indicators) **float64 { return &i.CoalEmployment }},
	{"grid_outages_county_natl_pctile", func(i *Indicators) **float64 { return &i.GridOutages }},
	{"grid_outage_duration_natl_pctile", func(i *Indicators) **float64 { return &i.GridOutageDuration }},
	{"food_desert_pct_natl_pctile", func(i *Indicators) **float64 { return &i.FoodDesert }},
	{"job_access_natl_pctile", func(i *Indicators) **float64 { return &i.JobAccess }},
	{ColHousingBurden, func(i *Indicators) **float64 { return &i.HousingBurden }},
	{"renters_pct_natl_pctile", func(i *Indicators) **float64 { return &i.Renters }},
	{ColTransportBurden, func(i *Indicators) **float64 { return &i.TransportBurden }},
	{"no_internet_pct_natl_pctile", func(i *Indicators) **float64 { return &i.NoInternet }},
	{"green_space_natl_pctile", func(i *Indicators) **float64 { return &i.GreenSpace }},
	{"unhoused_pct_natl_pctile", func(i *Indicators) **float64 { return &i.Unhoused }},
	{"uninsured_pct_natl_pctile", func(i *Indicators) **float64 { return &i.Uninsured }},
	{"unemployed_pct_natl_pctile", func(i *Indicators) **float64 { return &i.Unemployed }},
	{"disability_pct_natl_pctile", func(i *Indicators) **float64 { return &i.Disability }},
	{ColIncompletePlumbing, func(i *Indicators) **float64 { return &i.IncompletePlumbing }},
	{"single_parent_pct_natl_pctile", func(i *Indicators) **float64 { return &i.SingleParent }},
	{"mobile_home_pct_natl_pctile", func(i *Indicators) **float64 { return &i.MobileHome }},
	{ColNonwhite, func(i *Indicators) **float64 { return &i.Nonwhite }},
	{ColNongridHeat, func(i *Indicators) **float64 { return &i.NongridHeat }},
	{"lessHS_pct_natl_pctile", func(i *Indicators) **float64 { return &i.LessHS }},
	{"lowincome_fpl_pct_natl_pctile", func(i *Indicators) **float64 { return &i.LowIncomeFPL }},
	{"population_natl_pctile", func(i *Indicators) **float64 { return &i.Population }},
	{ColLowIncomeAMI, func(i *Indicators) **float64 { return &i.LowIncomeAMI }},
	{"fema_loss_of_life_natl_pctile", func(i *Indicators) **float64 { return &i.FEMALossOfLife }},
}

var indicatorIndex = func() map[string]IndicatorColumn {
	m := make(map[string]IndicatorColumn, len(IndicatorColumns))
	for _, c := range IndicatorColumns {
		m[c.Column] = c
	}
	return m
}()

// IndicatorByColumn looks up an indicator by its source column name.
func IndicatorByColumn(column string) (IndicatorColumn, bool) {
	c, ok := indicatorIndex[column]
	return c, ok
}

// Get returns the value of the named indicator column, or nil when the
// column is unknown or has no data.
func (i *Indicators) Get(column string) *float64 {
	c, ok := indicatorIndex[column]
	if !ok {
		return nil
	}
	return *c.Field(i)
}

// Set stores v under the named indicator column. Unknown columns are ignored
// and reported as false.
func (i *Indicators) Set(column string, v *float64) bool {
	c, ok := indicatorIndex[column]
	if !ok {
		return false
	}
	*c.Field(i) = v
	return true
}
