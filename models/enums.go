package models

import "strings"

type UnitTypology string

const (
	UnitTypologyStudio  UnitTypology = "Studio"
	UnitTypologyOneBR   UnitTypology = "1BR"
	UnitTypologyTwoBR   UnitTypology = "2BR"
	UnitTypologyThreeBR UnitTypology = "3BR"
	UnitTypologyShop    UnitTypology = "Shop"
)

// TypologyCaps holds the statutory maximum share of AAHDC residential gross
// area per typology. Shop has no residential cap; its 30% rule is applied to
// commercial area separately.
var TypologyCaps = map[UnitTypology]float64{
	UnitTypologyStudio:  0.15,
	UnitTypologyOneBR:   0.40,
	UnitTypologyTwoBR:   0.25,
	UnitTypologyThreeBR: 0.20,
}

func (t UnitTypology) IsValid() bool {
	switch t {
	case UnitTypologyStudio, UnitTypologyOneBR, UnitTypologyTwoBR, UnitTypologyThreeBR, UnitTypologyShop:
		return true
	}
	return false
}

func (t UnitTypology) IsResidential() bool {
	return t.IsValid() && t != UnitTypologyShop
}

// NormalizeTypology folds case-insensitive input ("studio", "1br", "SHOP")
// onto the canonical typology spelling. Unknown values pass through
// unchanged so callers can report them.
func NormalizeTypology(raw string) UnitTypology {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToUpper(trimmed) {
	case "1BR":
		return UnitTypologyOneBR
	case "2BR":
		return UnitTypologyTwoBR
	case "3BR":
		return UnitTypologyThreeBR
	case "STUDIO":
		return UnitTypologyStudio
	case "SHOP":
		return UnitTypologyShop
	}
	return UnitTypology(trimmed)
}

type UserRole string

const (
	UserRoleAdmin     UserRole = "admin"
	UserRoleDeveloper UserRole = "developer"
	UserRoleViewer    UserRole = "viewer"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleDeveloper, UserRoleViewer:
		return true
	}
	return false
}

// Unit owners before a candidate name is assigned.
const (
	OwnerAahdc     = "AAHDC"
	OwnerDeveloper = "Developer"
)

// DistributionMethod names accepted by RunAllocation. The strings are part
// of the API contract with the admin frontend.
const (
	DistributionMethodFullLottery       = "Full Lottery"
	DistributionMethodHybridLottery     = "Hybrid Lottery"
	DistributionMethodBlockByBlock      = "Block-by-Block Assignment"
	DistributionMethodFloorBased        = "Lottery Based on Floor Number"
	DistributionMethodCandidateMatching = "Assign Candidates by Typology"
)

func KnownDistributionMethods() []string {
	return []string{
		DistributionMethodFullLottery,
		DistributionMethodHybridLottery,
		DistributionMethodBlockByBlock,
		DistributionMethodFloorBased,
		DistributionMethodCandidateMatching,
	}
}
