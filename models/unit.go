package models

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"bitbucket.org/aahdc/lottery_backend/config"
)

type Unit struct {
	UnitId                 string       `gorm:"primaryKey;size:64" json:"unitId"`
	Typology               UnitTypology `gorm:"size:10;not null" json:"typology"`
	NetArea                float64      `gorm:"not null" json:"netArea"`
	GrossArea              float64      `gorm:"not null" json:"grossArea"`
	FloorNumber            int          `gorm:"not null" json:"floorNumber"`
	BlockName              string       `gorm:"size:100;not null;index" json:"blockName"`
	TotalBuildingGrossArea float64      `gorm:"not null" json:"totalBuildingGrossArea"`
	Owner                  string       `gorm:"size:100;not null;default:Developer" json:"owner"`
	Allocated              bool         `gorm:"not null;default:false;index" json:"allocated"`
	CreatedAt              time.Time    `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt              time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`
}

type NewUnit struct {
	UnitId                 string  `json:"unitId" binding:"required"`
	Typology               string  `json:"typology" binding:"required,typology"`
	NetArea                float64 `json:"netArea" binding:"required,gt=0"`
	GrossArea              float64 `json:"grossArea" binding:"required,gt=0"`
	FloorNumber            *int    `json:"floorNumber" binding:"required,gte=0"`
	BlockName              string  `json:"blockName" binding:"required"`
	TotalBuildingGrossArea float64 `json:"totalBuildingGrossArea" binding:"required,gt=0"`
}

// BlockAreaTolerance is the allowed float drift between a block's declared
// total gross area and the sum of its units' gross areas.
const BlockAreaTolerance = 0.01

// ValidationError marks a client input problem (HTTP 400).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError marks a collision with existing records (HTTP 409).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

type blockArea struct {
	declaredTotal   float64
	calculatedTotal float64
}

// validateSubmission checks a developer batch before anything is written:
// typologies, duplicate IDs within the batch, and the per-block invariant
// that unit gross areas sum to the declared building total.
func validateSubmission(inputs []*NewUnit) error {
	seen := make(map[string]bool, len(inputs))
	blocks := make(map[string]*blockArea)

	for _, input := range inputs {
		typology := NormalizeTypology(input.Typology)
		if !typology.IsValid() {
			return &ValidationError{Message: fmt.Sprintf("Invalid typology %q for unit %s.", input.Typology, input.UnitId)}
		}
		if seen[input.UnitId] {
			return &ValidationError{Message: fmt.Sprintf("Duplicate Unit ID found: %s", input.UnitId)}
		}
		seen[input.UnitId] = true

		if _, ok := blocks[input.BlockName]; !ok {
			blocks[input.BlockName] = &blockArea{declaredTotal: input.TotalBuildingGrossArea}
		}
		blocks[input.BlockName].calculatedTotal += input.GrossArea
	}

	for blockName, area := range blocks {
		if math.Abs(area.declaredTotal-area.calculatedTotal) > BlockAreaTolerance {
			return &ValidationError{Message: fmt.Sprintf(
				"Gross area mismatch for block %s: Declared total %.2f, Calculated sum of units %.2f.",
				blockName, area.declaredTotal, area.calculatedTotal)}
		}
	}
	return nil
}

// SubmitUnits validates and stores a developer's unit batch. Units enter the
// pool unallocated and owned by the developer.
func SubmitUnits(ctx context.Context, inputs []*NewUnit) ([]*Unit, error) {
	if len(inputs) == 0 {
		return nil, &ValidationError{Message: "Invalid or empty unit submission."}
	}

	if err := validateSubmission(inputs); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(inputs))
	for _, input := range inputs {
		ids = append(ids, input.UnitId)
	}

	db := config.GetDB()
	var existing []Unit
	if err := db.WithContext(ctx).Where("unit_id IN ?", ids).Find(&existing).Error; err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		existingIds := make([]string, 0, len(existing))
		for _, u := range existing {
			existingIds = append(existingIds, u.UnitId)
		}
		return nil, &ConflictError{Message: fmt.Sprintf(
			"One or more units already exist in the database: %s", strings.Join(existingIds, ", "))}
	}

	units := make([]*Unit, 0, len(inputs))
	for _, input := range inputs {
		units = append(units, &Unit{
			UnitId:                 input.UnitId,
			Typology:               NormalizeTypology(input.Typology),
			NetArea:                input.NetArea,
			GrossArea:              input.GrossArea,
			FloorNumber:            *input.FloorNumber,
			BlockName:              input.BlockName,
			TotalBuildingGrossArea: input.TotalBuildingGrossArea,
			Owner:                  OwnerDeveloper,
			Allocated:              false,
		})
	}

	if err := db.WithContext(ctx).Create(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

func GetUnits(ctx context.Context) ([]*Unit, error) {
	db := config.GetDB()
	var units []*Unit
	if err := db.WithContext(ctx).Order("unit_id").Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// GetUnallocatedUnits returns the pool an allocation run draws from.
func GetUnallocatedUnits(ctx context.Context) ([]*Unit, error) {
	db := config.GetDB()
	var units []*Unit
	if err := db.WithContext(ctx).
		Where("allocated = ? AND owner = ?", false, OwnerDeveloper).
		Order("unit_id").Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

