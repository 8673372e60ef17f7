package models

import (
	"math/rand"
	"sort"
)

// AahdcTargetShare is the statutory share of gross area owed to the public
// authority by every distribution method.
const AahdcTargetShare = 0.3

// AreaTolerance is the absolute slack used for "target met" and
// shortfall-fill comparisons.
const AreaTolerance = 0.01

// BlockOvershootFactor lets Block-by-Block overshoot the 30% target by up
// to 5% because blocks transfer whole or not at all.
const BlockOvershootFactor = 1.05

// DistributionResult is the common shape returned by every distribution
// method. The candidate matching method fills AssignedDetails and leaves
// DevUnits empty: matched units have no developer counterpart.
type DistributionResult struct {
	AahdcUnits                    []*Unit                `json:"aahdcUnits"`
	DevUnits                      []*Unit                `json:"devUnits"`
	AllocatedAahdcArea            float64                `json:"allocatedAahdcArea"`
	AllocatedAahdcResidentialArea float64                `json:"allocatedAahdcResidentialArea,omitempty"`
	AllocatedAahdcCommercialArea  float64                `json:"allocatedAahdcCommercialArea,omitempty"`
	AssignedDetails               []*CandidateAssignment `json:"assignedDetails,omitempty"`
}

// CandidateAssignment records one unit/candidate pairing from the typology
// matching method.
type CandidateAssignment struct {
	UnitId         string       `json:"unitId"`
	Typology       UnitTypology `json:"typology"`
	CandidateId    int          `json:"candidateId"`
	CandidateName  string       `json:"candidateName"`
	CandidatePhone *string      `json:"candidatePhone"`
}

// canAddToAahdc reports whether handing the candidate unit to AAHDC would
// push its typology past the statutory cap, measured against the projected
// AAHDC residential area after the addition. Shops are exempt; they are
// gated by area targets only. The projected ratio is strict: a lone
// residential unit is 100% of its own typology, so residential allocation
// only grows through the cap-exempt paths.
func canAddToAahdc(currentAahdcUnits []*Unit, unitToAdd *Unit) bool {
	limit, capped := TypologyCaps[unitToAdd.Typology]
	if !capped {
		return true
	}

	currentResidential := filterResidential(currentAahdcUnits)
	projectedTypologyArea := typologyGrossArea(currentResidential, unitToAdd.Typology) + unitToAdd.GrossArea
	projectedResidentialArea := sumGrossArea(currentResidential) + unitToAdd.GrossArea

	if projectedResidentialArea > 0 && projectedTypologyArea/projectedResidentialArea > limit {
		return false
	}
	return true
}

func shuffledCopy(units []*Unit, rng *rand.Rand) []*Unit {
	out := make([]*Unit, len(units))
	copy(out, units)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// FullLottery shuffles the whole pool and greedily assigns units to AAHDC
// while its cumulative area stays within 30% of total gross area and the
// typology caps hold. A second pass moves the smallest developer units
// over until the target is met within tolerance or nothing fits.
func FullLottery(units []*Unit, rng *rand.Rand) *DistributionResult {
	totalGrossArea := sumGrossArea(units)
	targetAahdcArea := totalGrossArea * AahdcTargetShare

	var aahdcUnits, devUnits []*Unit
	var allocatedAahdcArea float64

	for _, unit := range shuffledCopy(units, rng) {
		fits := allocatedAahdcArea+unit.GrossArea <= targetAahdcArea
		if unit.Typology != UnitTypologyShop {
			fits = fits && canAddToAahdc(aahdcUnits, unit)
		}
		if fits {
			aahdcUnits = append(aahdcUnits, unit)
			allocatedAahdcArea += unit.GrossArea
		} else {
			devUnits = append(devUnits, unit)
		}
	}

	// Shortfall fill: take the smallest developer units that still fit the
	// remaining gap and the caps.
	remainingTarget := targetAahdcArea - allocatedAahdcArea
	if remainingTarget > 0 {
		sort.SliceStable(devUnits, func(i, j int) bool {
			return devUnits[i].GrossArea < devUnits[j].GrossArea
		})
		for i := 0; i < len(devUnits); i++ {
			unit := devUnits[i]
			if remainingTarget-unit.GrossArea >= -AreaTolerance && canAddToAahdc(aahdcUnits, unit) {
				aahdcUnits = append(aahdcUnits, unit)
				allocatedAahdcArea += unit.GrossArea
				devUnits = append(devUnits[:i], devUnits[i+1:]...)
				i--
				remainingTarget = targetAahdcArea - allocatedAahdcArea
				if remainingTarget <= AreaTolerance {
					break
				}
			}
		}
	}

	return &DistributionResult{
		AahdcUnits:         aahdcUnits,
		DevUnits:           devUnits,
		AllocatedAahdcArea: allocatedAahdcArea,
	}
}

// HybridLottery splits the pool up front: residential units run the same
// capped lottery against 30% of residential area, commercial units are
// filled smallest-first to 30% of commercial area.
func HybridLottery(units []*Unit, rng *rand.Rand) *DistributionResult {
	residentialUnits := filterResidential(units)
	commercialUnits := filterCommercial(units)

	totalResidentialArea := sumGrossArea(residentialUnits)
	targetResidentialArea := totalResidentialArea * AahdcTargetShare
	var allocatedResidentialArea float64
	var aahdcResidential, devResidential []*Unit

	for _, unit := range shuffledCopy(residentialUnits, rng) {
		if allocatedResidentialArea+unit.GrossArea <= targetResidentialArea &&
			canAddToAahdc(aahdcResidential, unit) {
			aahdcResidential = append(aahdcResidential, unit)
			allocatedResidentialArea += unit.GrossArea
		} else {
			devResidential = append(devResidential, unit)
		}
	}

	// Shops are negotiated separately: ascending by area to land close to
	// the commercial target.
	totalCommercialArea := sumGrossArea(commercialUnits)
	targetCommercialArea := totalCommercialArea * AahdcTargetShare
	var allocatedCommercialArea float64
	var aahdcCommercial, devCommercial []*Unit

	sortedCommercial := make([]*Unit, len(commercialUnits))
	copy(sortedCommercial, commercialUnits)
	sort.SliceStable(sortedCommercial, func(i, j int) bool {
		return sortedCommercial[i].GrossArea < sortedCommercial[j].GrossArea
	})
	for _, unit := range sortedCommercial {
		if allocatedCommercialArea+unit.GrossArea <= targetCommercialArea {
			aahdcCommercial = append(aahdcCommercial, unit)
			allocatedCommercialArea += unit.GrossArea
		} else {
			devCommercial = append(devCommercial, unit)
		}
	}

	return &DistributionResult{
		AahdcUnits:                    append(append([]*Unit{}, aahdcResidential...), aahdcCommercial...),
		DevUnits:                      append(append([]*Unit{}, devResidential...), devCommercial...),
		AllocatedAahdcArea:            allocatedResidentialArea + allocatedCommercialArea,
		AllocatedAahdcResidentialArea: allocatedResidentialArea,
		AllocatedAahdcCommercialArea:  allocatedCommercialArea,
	}
}

// BlockByBlockAssignment is the only deterministic method: blocks are
// considered in alphabetical order and transfer to AAHDC whole, as long as
// the cumulative area stays within 105% of the target and no unit in the
// block breaks a typology cap against the allocation so far.
func BlockByBlockAssignment(units []*Unit) *DistributionResult {
	blocks := make(map[string][]*Unit)
	for _, unit := range units {
		blocks[unit.BlockName] = append(blocks[unit.BlockName], unit)
	}
	blockNames := make([]string, 0, len(blocks))
	for name := range blocks {
		blockNames = append(blockNames, name)
	}
	sort.Strings(blockNames)

	totalGrossArea := sumGrossArea(units)
	targetAahdcArea := totalGrossArea * AahdcTargetShare

	var aahdcUnits, devUnits []*Unit
	var allocatedAahdcArea float64

	for _, blockName := range blockNames {
		blockUnits := blocks[blockName]
		blockGrossArea := sumGrossArea(blockUnits)

		if allocatedAahdcArea+blockGrossArea <= targetAahdcArea*BlockOvershootFactor {
			canAllocateBlock := true
			for _, unit := range blockUnits {
				if unit.Typology == UnitTypologyShop {
					continue
				}
				if !canAddToAahdc(aahdcUnits, unit) {
					canAllocateBlock = false
					break
				}
			}
			if canAllocateBlock {
				aahdcUnits = append(aahdcUnits, blockUnits...)
				allocatedAahdcArea += blockGrossArea
				continue
			}
		}
		devUnits = append(devUnits, blockUnits...)
	}

	return &DistributionResult{
		AahdcUnits:         aahdcUnits,
		DevUnits:           devUnits,
		AllocatedAahdcArea: allocatedAahdcArea,
	}
}

// FloorBasedLottery walks floors from the lowest up, shuffling units within
// each floor and applying the same greedy area/cap rules as FullLottery.
func FloorBasedLottery(units []*Unit, rng *rand.Rand) *DistributionResult {
	unitsByFloor := make(map[int][]*Unit)
	for _, unit := range units {
		unitsByFloor[unit.FloorNumber] = append(unitsByFloor[unit.FloorNumber], unit)
	}
	floors := make([]int, 0, len(unitsByFloor))
	for floor := range unitsByFloor {
		floors = append(floors, floor)
	}
	sort.Ints(floors)

	totalGrossArea := sumGrossArea(units)
	targetAahdcArea := totalGrossArea * AahdcTargetShare

	var aahdcUnits, devUnits []*Unit
	var allocatedAahdcArea float64

	for _, floor := range floors {
		for _, unit := range shuffledCopy(unitsByFloor[floor], rng) {
			if allocatedAahdcArea+unit.GrossArea <= targetAahdcArea &&
				canAddToAahdc(aahdcUnits, unit) {
				aahdcUnits = append(aahdcUnits, unit)
				allocatedAahdcArea += unit.GrossArea
			} else {
				devUnits = append(devUnits, unit)
			}
		}
	}

	return &DistributionResult{
		AahdcUnits:         aahdcUnits,
		DevUnits:           devUnits,
		AllocatedAahdcArea: allocatedAahdcArea,
	}
}

// CandidatePairing couples one unit with one candidate of the same
// typology.
type CandidatePairing struct {
	Unit      *Unit
	Candidate *Candidate
}

// PairCandidatesByTypology buckets units and candidates by normalized
// typology, shuffles both sides and pairs them index for index up to the
// smaller bucket size. Pure: the caller applies the resulting ownership
// changes.
func PairCandidatesByTypology(units []*Unit, candidates []*Candidate, rng *rand.Rand) []CandidatePairing {
	unitsByTypology := make(map[UnitTypology][]*Unit)
	for _, unit := range units {
		unitsByTypology[unit.Typology] = append(unitsByTypology[unit.Typology], unit)
	}
	candidatesByTypology := make(map[UnitTypology][]*Candidate)
	for _, candidate := range candidates {
		key := NormalizeTypology(string(candidate.Typology))
		candidatesByTypology[key] = append(candidatesByTypology[key], candidate)
	}

	typologies := make([]string, 0, len(candidatesByTypology))
	for typology := range candidatesByTypology {
		typologies = append(typologies, string(typology))
	}
	sort.Strings(typologies)

	var pairings []CandidatePairing
	for _, typology := range typologies {
		poolUnits := shuffledCopy(unitsByTypology[UnitTypology(typology)], rng)
		poolCandidates := make([]*Candidate, len(candidatesByTypology[UnitTypology(typology)]))
		copy(poolCandidates, candidatesByTypology[UnitTypology(typology)])
		rng.Shuffle(len(poolCandidates), func(i, j int) {
			poolCandidates[i], poolCandidates[j] = poolCandidates[j], poolCandidates[i]
		})

		count := len(poolUnits)
		if len(poolCandidates) < count {
			count = len(poolCandidates)
		}
		for i := 0; i < count; i++ {
			pairings = append(pairings, CandidatePairing{Unit: poolUnits[i], Candidate: poolCandidates[i]})
		}
	}
	return pairings
}
