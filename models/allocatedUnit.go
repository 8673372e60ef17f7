package models

import (
	"context"
	"time"

	"bitbucket.org/aahdc/lottery_backend/config"
)

// AllocatedUnit is a denormalized snapshot of a unit at allocation time,
// one row per unit, overwritten on every run. It is the source table for
// all reporting.
type AllocatedUnit struct {
	UnitId                 string       `gorm:"primaryKey;size:64" json:"unitId"`
	CandidateId            *int         `json:"candidateId"`
	CandidateName          *string      `gorm:"size:150" json:"candidateName"`
	CandidatePhone         *string      `gorm:"size:30" json:"candidatePhone"`
	Typology               UnitTypology `gorm:"size:10;not null" json:"typology"`
	NetArea                float64      `gorm:"not null" json:"netArea"`
	GrossArea              float64      `gorm:"not null" json:"grossArea"`
	FloorNumber            int          `gorm:"not null" json:"floorNumber"`
	BlockName              string       `gorm:"size:100;not null" json:"blockName"`
	TotalBuildingGrossArea float64      `gorm:"not null" json:"totalBuildingGrossArea"`
	Owner                  string       `gorm:"size:150;not null" json:"owner"`
	Allocated              bool         `gorm:"not null;default:true" json:"allocated"`
	AllocatedAt            time.Time    `gorm:"not null" json:"allocatedAt"`
}

// GetAllocatedUnits returns the snapshot rows. Rows written before a
// candidate was matched lack candidate info; those are enriched from the
// candidates table, and the generic AAHDC owner is swapped for the candidate
// name for display.
func GetAllocatedUnits(ctx context.Context) ([]*AllocatedUnit, error) {
	db := config.GetDB()
	var rows []*AllocatedUnit
	if err := db.WithContext(ctx).Order("unit_id").Find(&rows).Error; err != nil {
		return nil, err
	}

	var missing []string
	for _, r := range rows {
		if r.CandidateName == nil || r.CandidatePhone == nil {
			missing = append(missing, r.UnitId)
		}
	}
	if len(missing) == 0 {
		return rows, nil
	}

	var candidates []*Candidate
	if err := db.WithContext(ctx).
		Where("assigned_unit_id IN ?", missing).
		Find(&candidates).Error; err != nil {
		return nil, err
	}
	byUnit := make(map[string]*Candidate, len(candidates))
	for _, c := range candidates {
		if c.AssignedUnitId != nil {
			byUnit[*c.AssignedUnitId] = c
		}
	}
	for _, r := range rows {
		c, ok := byUnit[r.UnitId]
		if !ok {
			continue
		}
		if r.CandidateId == nil {
			id := c.CandidateId
			r.CandidateId = &id
		}
		if r.CandidateName == nil {
			name := c.Name
			r.CandidateName = &name
		}
		if r.CandidatePhone == nil && c.Phone != "" {
			phone := c.Phone
			r.CandidatePhone = &phone
		}
		if r.Owner == OwnerAahdc && r.CandidateName != nil {
			r.Owner = *r.CandidateName
		}
	}
	return rows, nil
}
