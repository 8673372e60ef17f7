package models

import "fmt"

// ComplianceResult is advisory: pre-allocation failures block a run,
// post-allocation failures are surfaced as warnings next to a committed
// result.
type ComplianceResult struct {
	IsCompliant bool     `json:"isCompliant"`
	Issues      []string `json:"issues"`
}

// ExternalComplianceFlags carry preconditions that do not derive from unit
// data (construction progress sign-off, signed distribution agreement).
// A deployment sources these from configuration or an admin panel.
type ExternalComplianceFlags struct {
	ConstructionComplete bool
	AgreementSigned      bool
}

func DefaultExternalComplianceFlags() ExternalComplianceFlags {
	return ExternalComplianceFlags{ConstructionComplete: true, AgreementSigned: true}
}

// capCheckOrder keeps issue messages in a stable order.
var capCheckOrder = []UnitTypology{UnitTypologyStudio, UnitTypologyOneBR, UnitTypologyTwoBR, UnitTypologyThreeBR}

// capTolerancePoints is the slack, in percentage points, granted on every
// typology cap to absorb float rounding.
const capTolerancePoints = 0.1

func sumGrossArea(units []*Unit) float64 {
	var total float64
	for _, u := range units {
		total += u.GrossArea
	}
	return total
}

func filterResidential(units []*Unit) []*Unit {
	var out []*Unit
	for _, u := range units {
		if u.Typology != UnitTypologyShop {
			out = append(out, u)
		}
	}
	return out
}

func filterCommercial(units []*Unit) []*Unit {
	var out []*Unit
	for _, u := range units {
		if u.Typology == UnitTypologyShop {
			out = append(out, u)
		}
	}
	return out
}

func typologyGrossArea(units []*Unit, typology UnitTypology) float64 {
	var total float64
	for _, u := range units {
		if u.Typology == typology {
			total += u.GrossArea
		}
	}
	return total
}

// CheckPreAllocationCompliance inspects the submitted pool before any
// distribution runs. A non-compliant result here is the one hard stop in
// the allocation pipeline.
func CheckPreAllocationCompliance(units []*Unit, flags ExternalComplianceFlags) ComplianceResult {
	var issues []string

	totalGrossArea := sumGrossArea(units)
	if totalGrossArea == 0 {
		issues = append(issues, "No units submitted for allocation.")
	}

	// Typology mix of the overall submission. The lottery engine enforces
	// the same caps per-unit while it allocates.
	residential := filterResidential(units)
	totalResidentialArea := sumGrossArea(residential)
	if totalResidentialArea > 0 {
		for _, typology := range capCheckOrder {
			limit := TypologyCaps[typology]
			share := typologyGrossArea(residential, typology) / totalResidentialArea * 100
			if share > limit*100+capTolerancePoints {
				issues = append(issues, fmt.Sprintf(
					"Overall %s typology exceeds %g%% of residential gross area.", typology, limit*100))
			}
		}
	}

	commercial := filterCommercial(units)
	if len(commercial) > 0 && sumGrossArea(commercial)*0.3 == 0 {
		issues = append(issues,
			"Commercial units submitted but impossible to meet 30% AAHDC share for shops (area too small).")
	}

	if !flags.ConstructionComplete {
		issues = append(issues, "Clause 7.9 violation: 30% physical construction is not yet complete.")
	}
	if !flags.AgreementSigned {
		issues = append(issues, "Schedule 7 violation: Distribution agreement has not been signed.")
	}

	return ComplianceResult{IsCompliant: len(issues) == 0, Issues: issues}
}

// CheckPostAllocationCompliance evaluates a finished split. The 29.9
// boundaries deliberately sit a tenth of a point under the statutory 30%
// to absorb float drift.
func CheckPostAllocationCompliance(aahdcUnits []*Unit, devUnits []*Unit) ComplianceResult {
	var issues []string

	allUnits := make([]*Unit, 0, len(aahdcUnits)+len(devUnits))
	allUnits = append(allUnits, aahdcUnits...)
	allUnits = append(allUnits, devUnits...)

	totalGrossArea := sumGrossArea(allUnits)
	aahdcGrossArea := sumGrossArea(aahdcUnits)

	if totalGrossArea > 0 && aahdcGrossArea/totalGrossArea*100 < 29.9 {
		issues = append(issues, fmt.Sprintf(
			"Clause 5.6 violation: AAHDC's allocated gross area is less than 30%%. Current: %.2f%%",
			aahdcGrossArea/totalGrossArea*100))
	}

	aahdcResidential := filterResidential(aahdcUnits)
	aahdcResidentialArea := sumGrossArea(aahdcResidential)
	if aahdcResidentialArea > 0 {
		for _, typology := range capCheckOrder {
			limit := TypologyCaps[typology]
			share := typologyGrossArea(aahdcResidential, typology) / aahdcResidentialArea * 100
			if share > limit*100+capTolerancePoints {
				issues = append(issues, fmt.Sprintf(
					"AAHDC %s typology allocation exceeds %g%% of residential gross area: %.2f%%",
					typology, limit*100, share))
			}
		}
	}

	aahdcCommercialArea := sumGrossArea(filterCommercial(aahdcUnits))
	totalCommercialArea := sumGrossArea(filterCommercial(allUnits))
	if totalCommercialArea > 0 && aahdcCommercialArea/totalCommercialArea*100 < 29.9 {
		issues = append(issues, fmt.Sprintf(
			"AAHDC Shop allocation is less than 30%% of total commercial area. Current: %.2f%%",
			aahdcCommercialArea/totalCommercialArea*100))
	}

	return ComplianceResult{IsCompliant: len(issues) == 0, Issues: issues}
}
