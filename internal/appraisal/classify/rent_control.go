// internal/appraisal/classify/rent_control.go
package classify

import "strings"

// RentControlResult is a tri-state assessment: Applies is nil when the
// available data cannot support a call either way. This is a screening
// heuristic over published LA-area ordinance rules, not a legal determination.
type RentControlResult struct {
	Applies      *bool  `json:"applies"`
	Jurisdiction string `json:"jurisdiction"`
	Reason       string `json:"reason"`
}

// RentControl screens for LA City and LA County rent stabilization coverage.
func RentControl(yearBuilt *int, propertyType, jurisdiction string, numUnits *int) RentControlResult {
	j := strings.ToLower(strings.TrimSpace(jurisdiction))
	units := 0
	if numUnits != nil {
		units = *numUnits
	}

	if j == "" || j == "unknown" {
		return RentControlResult{Jurisdiction: "Unknown", Reason: "insufficient jurisdiction data"}
	}

	newConstruction := yearBuilt != nil && *yearBuilt >= 1979
	exemptType := isExemptType(propertyType)

	switch {
	case isLACity(j):
		switch {
		case newConstruction:
			return RentControlResult{Applies: no(), Jurisdiction: "LA City", Reason: "post-1978 construction exempt"}
		case exemptType:
			return RentControlResult{Applies: no(), Jurisdiction: "LA City", Reason: "SFR or condo exempt from LA City RSO"}
		case units >= 2:
			return RentControlResult{Applies: yes(), Jurisdiction: "LA City", Reason: "pre-1978 multifamily subject to LA City RSO"}
		default:
			return RentControlResult{Jurisdiction: "LA City", Reason: "unable to classify property type"}
		}
	case isLACounty(j):
		switch {
		case newConstruction:
			return RentControlResult{Applies: no(), Jurisdiction: "LA County", Reason: "newer construction generally exempt"}
		case exemptType:
			return RentControlResult{Applies: no(), Jurisdiction: "LA County", Reason: "SFR/condo generally exempt under County RSO"}
		case units >= 2:
			return RentControlResult{Applies: yes(), Jurisdiction: "LA County", Reason: "multifamily may fall under LA County RSO"}
		default:
			return RentControlResult{Jurisdiction: "LA County", Reason: "insufficient data for County classification"}
		}
	default:
		return RentControlResult{Applies: no(), Jurisdiction: "Other City", Reason: "most other cities in LA County have no RSO"}
	}
}

func isLACity(j string) bool {
	switch j {
	case "la city", "city of la", "los angeles":
		return true
	}
	return false
}

func isLACounty(j string) bool {
	switch j {
	case "la county", "los angeles county", "unincorporated la":
		return true
	}
	return false
}

func isExemptType(propertyType string) bool {
	switch strings.ToLower(strings.TrimSpace(propertyType)) {
	case "sfr", "single_family", "condo", "townhome":
		return true
	}
	return false
}

func yes() *bool { v := true; return &v }

func no() *bool { v := false; return &v }
