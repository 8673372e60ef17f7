package models

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"bitbucket.org/aahdc/lottery_backend/config"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllocationOutcome is the result of one allocation run. ComplianceIssues
// are the post-allocation warnings: the run commits regardless, a human
// judges their severity.
type AllocationOutcome struct {
	RunId            string                 `json:"runId"`
	Message          string                 `json:"message"`
	AahdcUnits       []*Unit                `json:"aahdcUnits"`
	DeveloperUnits   []*Unit                `json:"developerUnits"`
	ComplianceIssues []string               `json:"complianceIssues"`
	AssignedDetails  []*CandidateAssignment `json:"assignedDetails,omitempty"`
}

// ComplianceError blocks a run at the pre-allocation stage (HTTP 403).
type ComplianceError struct {
	Issues []string
}

func (e *ComplianceError) Error() string { return "Pre-allocation compliance failed." }

// One allocation run at a time. Concurrent runs over the same unallocated
// pool would double-allocate.
var allocationMu sync.Mutex

// RunAllocation executes the named distribution method over the current
// unallocated pool and commits the outcome. Randomized methods are seeded
// from the wall clock; tests use RunAllocationWithRand.
func RunAllocation(ctx context.Context, distributionMethod string) (*AllocationOutcome, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return RunAllocationWithRand(ctx, distributionMethod, rng)
}

// RunAllocationWithRand is RunAllocation with an injectable randomness
// source so shuffle-based methods are reproducible under a fixed seed.
func RunAllocationWithRand(ctx context.Context, distributionMethod string, rng *rand.Rand) (*AllocationOutcome, error) {
	if distributionMethod == "" {
		return nil, &ValidationError{Message: "Distribution method is required."}
	}
	if !allocationMu.TryLock() {
		return nil, &ConflictError{Message: "Another allocation run is already in progress."}
	}
	defer allocationMu.Unlock()

	runId := uuid.NewString()
	logger := config.GetLogger()

	unitsToAllocate, err := GetUnallocatedUnits(ctx)
	if err != nil {
		return nil, err
	}
	if len(unitsToAllocate) == 0 {
		return nil, &ValidationError{Message: "No unallocated units available for distribution."}
	}

	preCompliance := CheckPreAllocationCompliance(unitsToAllocate, DefaultExternalComplianceFlags())
	if !preCompliance.IsCompliant {
		return nil, &ComplianceError{Issues: preCompliance.Issues}
	}

	var result *DistributionResult
	switch distributionMethod {
	case DistributionMethodFullLottery:
		result = FullLottery(unitsToAllocate, rng)
	case DistributionMethodHybridLottery:
		result = HybridLottery(unitsToAllocate, rng)
	case DistributionMethodBlockByBlock:
		result = BlockByBlockAssignment(unitsToAllocate)
	case DistributionMethodFloorBased:
		result = FloorBasedLottery(unitsToAllocate, rng)
	case DistributionMethodCandidateMatching:
		result, err = matchCandidates(ctx, unitsToAllocate, rng)
		if err != nil {
			return nil, err
		}
	default:
		return nil, &ValidationError{Message: "Invalid distribution method specified."}
	}

	// Post-allocation check is informational: issues ride along with the
	// committed result.
	postCompliance := CheckPostAllocationCompliance(result.AahdcUnits, result.DevUnits)

	if err := commitAllocation(ctx, result); err != nil {
		config.LogError(logger, "allocation.go", "RunAllocationWithRand", "commitAllocation",
			map[string]any{"runId": runId, "method": distributionMethod}, err)
		return nil, err
	}

	logger.WithField("runId", runId).
		WithField("method", distributionMethod).
		WithField("aahdcUnits", len(result.AahdcUnits)).
		WithField("developerUnits", len(result.DevUnits)).
		Info("allocation run committed")

	return &AllocationOutcome{
		RunId:            runId,
		Message:          fmt.Sprintf("%s executed successfully.", distributionMethod),
		AahdcUnits:       result.AahdcUnits,
		DeveloperUnits:   result.DevUnits,
		ComplianceIssues: postCompliance.Issues,
		AssignedDetails:  result.AssignedDetails,
	}, nil
}

// matchCandidates builds the distribution result for the candidate
// typology run. All matched units land on the AAHDC side carrying the
// candidate's name; there is no developer counterpart in this method.
func matchCandidates(ctx context.Context, units []*Unit, rng *rand.Rand) (*DistributionResult, error) {
	candidates, err := GetUnassignedCandidates(ctx)
	if err != nil {
		return nil, err
	}

	pairings := PairCandidatesByTypology(units, candidates, rng)

	result := &DistributionResult{}
	for _, p := range pairings {
		result.AahdcUnits = append(result.AahdcUnits, p.Unit)
		result.AllocatedAahdcArea += p.Unit.GrossArea
		var phone *string
		if p.Candidate.Phone != "" {
			phoneCopy := p.Candidate.Phone
			phone = &phoneCopy
		}
		result.AssignedDetails = append(result.AssignedDetails, &CandidateAssignment{
			UnitId:         p.Unit.UnitId,
			Typology:       p.Unit.Typology,
			CandidateId:    p.Candidate.CandidateId,
			CandidateName:  p.Candidate.Name,
			CandidatePhone: phone,
		})
	}
	return result, nil
}

// commitAllocation applies every ownership change and snapshot of a run in
// one transaction. A unit the algorithm saw but that no longer exists in
// the units table is skipped, not an error. Any write failure rolls back
// the whole run.
func commitAllocation(ctx context.Context, result *DistributionResult) error {
	type ownedUnit struct {
		unitId string
		owner  string
	}

	detailByUnit := make(map[string]*CandidateAssignment, len(result.AssignedDetails))
	for _, d := range result.AssignedDetails {
		detailByUnit[d.UnitId] = d
	}

	owned := make([]ownedUnit, 0, len(result.AahdcUnits)+len(result.DevUnits))
	for _, u := range result.AahdcUnits {
		owner := OwnerAahdc
		if d, ok := detailByUnit[u.UnitId]; ok {
			owner = d.CandidateName
		}
		owned = append(owned, ownedUnit{unitId: u.UnitId, owner: owner})
	}
	for _, u := range result.DevUnits {
		owned = append(owned, ownedUnit{unitId: u.UnitId, owner: OwnerDeveloper})
	}

	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]string, 0, len(owned))
		for _, o := range owned {
			ids = append(ids, o.unitId)
		}
		var liveUnits []Unit
		if err := tx.Where("unit_id IN ?", ids).Find(&liveUnits).Error; err != nil {
			return err
		}
		liveByID := make(map[string]*Unit, len(liveUnits))
		for i := range liveUnits {
			liveByID[liveUnits[i].UnitId] = &liveUnits[i]
		}

		allocatedAt := time.Now()
		for _, o := range owned {
			unit, ok := liveByID[o.unitId]
			if !ok {
				continue
			}

			snapshot := AllocatedUnit{
				UnitId:                 unit.UnitId,
				Typology:               unit.Typology,
				NetArea:                unit.NetArea,
				GrossArea:              unit.GrossArea,
				FloorNumber:            unit.FloorNumber,
				BlockName:              unit.BlockName,
				TotalBuildingGrossArea: unit.TotalBuildingGrossArea,
				Owner:                  o.owner,
				Allocated:              true,
				AllocatedAt:            allocatedAt,
			}
			if d, ok := detailByUnit[unit.UnitId]; ok {
				id := d.CandidateId
				name := d.CandidateName
				snapshot.CandidateId = &id
				snapshot.CandidateName = &name
				snapshot.CandidatePhone = d.CandidatePhone
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "unit_id"}},
				UpdateAll: true,
			}).Create(&snapshot).Error; err != nil {
				return err
			}

			if err := tx.Model(&Unit{}).
				Where("unit_id = ?", unit.UnitId).
				Updates(map[string]interface{}{"owner": o.owner, "allocated": true}).Error; err != nil {
				return err
			}

			if d, ok := detailByUnit[unit.UnitId]; ok {
				if err := tx.Model(&Candidate{}).
					Where("candidate_id = ?", d.CandidateId).
					Update("assigned_unit_id", unit.UnitId).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
