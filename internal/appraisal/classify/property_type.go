// internal/appraisal/classify/property_type.go

// Package classify normalizes raw listing attributes into the standardized
// property-type and rent-control signals the appraisal stages key off.
package classify

import "strings"

// Classification is the standardized property type with the grid bucket used
// for cap-rate lookup.
type Classification struct {
	PropertyType string `json:"propertyType"`
	Category     string `json:"category"`
	GridBucket   string `json:"gridBucket"`
	Reason       string `json:"reason"`
}

// PropertyType classifies by unit count first, then the listing label, then
// the zoning code. An empty GridBucket means the caller must supply the
// cap-rate inputs explicitly.
func PropertyType(numUnits *int, label, zoningCode string) Classification {
	if numUnits != nil && *numUnits > 0 {
		c := byUnitCount(*numUnits)
		c.Reason = "classified by unit count"
		return c
	}
	if c, ok := byLabel(label); ok {
		c.Reason = "classified by listing label"
		return c
	}
	if c, ok := byZoning(zoningCode); ok {
		c.Reason = "classified by zoning code"
		return c
	}
	return Classification{
		PropertyType: "unknown",
		Category:     "unknown",
		Reason:       "insufficient data to classify",
	}
}

func byUnitCount(units int) Classification {
	switch {
	case units == 1:
		return Classification{PropertyType: "sfr", Category: "residential", GridBucket: "sfr"}
	case units == 2:
		return Classification{PropertyType: "duplex", Category: "residential_income", GridBucket: "2-4"}
	case units == 3:
		return Classification{PropertyType: "triplex", Category: "residential_income", GridBucket: "2-4"}
	case units == 4:
		return Classification{PropertyType: "fourplex", Category: "residential_income", GridBucket: "2-4"}
	default:
		return Classification{PropertyType: "multifamily_5plus", Category: "residential_income", GridBucket: "5+"}
	}
}

func byLabel(label string) (Classification, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case l == "":
		return Classification{}, false
	case strings.Contains(l, "single"):
		return Classification{PropertyType: "sfr", Category: "residential", GridBucket: "sfr"}, true
	case strings.Contains(l, "condo"):
		return Classification{PropertyType: "condo", Category: "residential", GridBucket: "sfr"}, true
	case strings.Contains(l, "townhome"), strings.Contains(l, "townhouse"):
		return Classification{PropertyType: "townhome", Category: "residential", GridBucket: "sfr"}, true
	case strings.Contains(l, "apartment"):
		return Classification{PropertyType: "multifamily_5plus", Category: "residential_income", GridBucket: "5+"}, true
	case strings.Contains(l, "duplex"):
		return Classification{PropertyType: "duplex", Category: "residential_income", GridBucket: "2-4"}, true
	case strings.Contains(l, "triplex"):
		return Classification{PropertyType: "triplex", Category: "residential_income", GridBucket: "2-4"}, true
	case strings.Contains(l, "fourplex"), strings.Contains(l, "quadplex"):
		return Classification{PropertyType: "fourplex", Category: "residential_income", GridBucket: "2-4"}, true
	case strings.Contains(l, "mixed"):
		return Classification{PropertyType: "mixed_use", Category: "mixed_use", GridBucket: "mixed_use"}, true
	case strings.Contains(l, "multi"):
		return Classification{PropertyType: "multifamily_5plus", Category: "residential_income", GridBucket: "5+"}, true
	case strings.Contains(l, "retail"), strings.Contains(l, "commercial"):
		return Classification{PropertyType: "commercial", Category: "commercial", GridBucket: "retail"}, true
	case strings.Contains(l, "office"):
		return Classification{PropertyType: "office", Category: "commercial", GridBucket: "office"}, true
	case strings.Contains(l, "industrial"), strings.Contains(l, "warehouse"):
		return Classification{PropertyType: "industrial", Category: "commercial", GridBucket: "industrial"}, true
	case strings.Contains(l, "land"), strings.Contains(l, "lot"):
		return Classification{PropertyType: "land", Category: "land", GridBucket: "land"}, true
	default:
		return Classification{}, false
	}
}

func byZoning(code string) (Classification, bool) {
	z := strings.ToUpper(strings.TrimSpace(code))
	switch {
	case z == "":
		return Classification{}, false
	case strings.HasPrefix(z, "R1"), strings.HasPrefix(z, "RS"), strings.HasPrefix(z, "RE"):
		return Classification{PropertyType: "sfr", Category: "residential", GridBucket: "sfr"}, true
	case strings.HasPrefix(z, "R2"):
		return Classification{PropertyType: "duplex", Category: "residential_income", GridBucket: "2-4"}, true
	case strings.HasPrefix(z, "RD"), strings.HasPrefix(z, "R3"):
		return Classification{PropertyType: "small_multifamily", Category: "residential_income", GridBucket: "2-4"}, true
	case strings.HasPrefix(z, "R4"), strings.HasPrefix(z, "R5"):
		return Classification{PropertyType: "multifamily_5plus", Category: "residential_income", GridBucket: "5+"}, true
	case strings.HasPrefix(z, "C"):
		return Classification{PropertyType: "commercial", Category: "commercial", GridBucket: "retail"}, true
	case strings.HasPrefix(z, "M"):
		return Classification{PropertyType: "industrial", Category: "commercial", GridBucket: "industrial"}, true
	default:
		return Classification{}, false
	}
}
