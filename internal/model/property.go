package model

import (
	"github.com/twpayne/go-geom"
)

// Property is one federally assisted housing property from the NHPD inventory.
type Property struct {
	Name           string
	Address        string
	City           string
	State          string
	Zip            string
	SubsidyStatus  string
	SubsidyName    string
	SubsidySubname string
	StartDate      string
	EndDate        string
	Owner          string
	OwnerType      string

	AssistedUnits *float64
	TotalUnits    *float64
	Units01       *float64
	Units2        *float64
	Units3Plus    *float64
	RentToFMR     *float64

	TargetPopulation     string
	EarliestConstruction string
	LatestConstruction   string
	InactiveStatus       string

	Latitude  float64
	Longitude float64
	Location  *geom.Point
}

// Key is the name+address identity of a property.
func (p *Property) Key() string { return p.Name + "|" + p.Address }

// NHPD column headers shared by the raw export and the housing artifact.
const (
	ColPropertyName  = "Property Name"
	ColStreetAddress = "Street Address"
	ColSubsidyStatus = "Subsidy Status"
	ColAssistedUnits = "Assisted Units"
	ColKnownTotal    = "Known Total Units"
	ColLatitude      = "Latitude"
	ColLongitude     = "Longitude"
)

// TextColumns binds the NHPD text columns to Property fields, in export order.
var TextColumns = []struct {
	Column string
	Field  func(*Property) *string
}{
	{ColPropertyName, func(p *Property) *string { return &p.Name }},
	{ColStreetAddress, func(p *Property) *string { return &p.Address }},
	{"City", func(p *Property) *string { return &p.City }},
	{"State", func(p *Property) *string { return &p.State }},
	{"Zip Code", func(p *Property) *string { return &p.Zip }},
	{ColSubsidyStatus, func(p *Property) *string { return &p.SubsidyStatus }},
	{"Subsidy Name", func(p *Property) *string { return &p.SubsidyName }},
	{"Subsidy Subname", func(p *Property) *string { return &p.SubsidySubname }},
	{"Start Date", func(p *Property) *string { return &p.StartDate }},
	{"End Date", func(p *Property) *string { return &p.EndDate }},
	{"Owner Name", func(p *Property) *string { return &p.Owner }},
	{"Owner Type", func(p *Property) *string { return &p.OwnerType }},
	{"Target Population", func(p *Property) *string { return &p.TargetPopulation }},
	{"Earliest Construction Date", func(p *Property) *string { return &p.EarliestConstruction }},
	{"Latest Construction Date", func(p *Property) *string { return &p.LatestConstruction }},
	{"Inactive Status Description", func(p *Property) *string { return &p.InactiveStatus }},
}

// NumericColumns binds the NHPD numeric columns to Property fields.
var NumericColumns = []struct {
	Column string
	Field  func(*Property) **float64
}{
	{ColAssistedUnits, func(p *Property) **float64 { return &p.AssistedUnits }},
	{"0-1 Bedroom Units", func(p *Property) **float64 { return &p.Units01 }},
	{"Two Bedroom Units", func(p *Property) **float64 { return &p.Units2 }},
	{"Three+ Bedroom Units", func(p *Property) **float64 { return &p.Units3Plus }},
	{"Rent to FMR Ratio", func(p *Property) **float64 { return &p.RentToFMR }},
	{ColKnownTotal, func(p *Property) **float64 { return &p.TotalUnits }},
}
