// internal/models/listing.go
package models

// ListingCore is the normalized listing record produced by the external
// parsing collaborators. Optional fields use pointers: present-and-valid or
// explicitly absent, never zero-by-default.
type ListingCore struct {
	Price             *float64 `json:"price,omitempty"`
	Address           string   `json:"address,omitempty"`
	Beds              *float64 `json:"beds,omitempty"`
	Baths             *float64 `json:"baths,omitempty"`
	Sqft              *float64 `json:"sqft,omitempty"`
	LotSize           *float64 `json:"lotSize,omitempty"`
	YearBuilt         *int     `json:"yearBuilt,omitempty"`
	PropertyTypeLabel string   `json:"propertyType,omitempty"`
	ZoningCode        string   `json:"zoningCode,omitempty"`
	NumUnits          *int     `json:"numUnits,omitempty"`
	Source            string   `json:"source,omitempty"`
	SourceURL         string   `json:"sourceUrl,omitempty"`
}

// SalesComp is a single comparable sale.
type SalesComp struct {
	Price         float64  `json:"price"`
	Sqft          float64  `json:"sqft"`
	DistanceMiles float64  `json:"distanceMiles"`
	Adjustment    *float64 `json:"adjustment,omitempty"`
}

// RentComp is an in-request rental comparable used to back out a market rent
// when the caller did not supply one.
type RentComp struct {
	MonthlyRent float64  `json:"monthlyRent"`
	Beds        *float64 `json:"beds,omitempty"`
	Sqft        *float64 `json:"sqft,omitempty"`
}
