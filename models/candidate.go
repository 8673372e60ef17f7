package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/aahdc/lottery_backend/config"
	"bitbucket.org/aahdc/lottery_backend/utils"
	"gorm.io/gorm"
)

type Candidate struct {
	CandidateId    int          `gorm:"primaryKey;autoIncrement" json:"candidateId"`
	Name           string       `gorm:"size:150;not null" json:"name"`
	Email          string       `gorm:"size:150" json:"email"`
	Phone          string       `gorm:"size:30" json:"phone"`
	Typology       UnitTypology `gorm:"size:10" json:"typology"`
	AssignedUnitId *string      `gorm:"size:64;index" json:"assignedUnitId"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`
}

type NewCandidate struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Typology string `json:"typology" binding:"omitempty,typology"`
}

func (input *NewCandidate) validate() error {
	if input.Name == "" {
		return &ValidationError{Message: "Name is required."}
	}
	if input.Typology != "" && !NormalizeTypology(input.Typology).IsValid() {
		return &ValidationError{Message: "Invalid typology: " + input.Typology}
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return &ValidationError{Message: "Invalid email: " + input.Email}
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.DefaultPhoneRegion); err != nil {
			return &ValidationError{Message: "Invalid phone number: " + input.Phone}
		}
	}
	return nil
}

func CreateCandidate(ctx context.Context, input *NewCandidate) (*Candidate, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	candidate := Candidate{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Typology: NormalizeTypology(input.Typology),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&candidate).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

// CreateCandidates batch-creates candidates. The whole batch is validated
// first; one bad entry rejects the request.
func CreateCandidates(ctx context.Context, inputs []*NewCandidate) ([]*Candidate, error) {
	if len(inputs) == 0 {
		return nil, &ValidationError{Message: "Empty candidate batch."}
	}
	candidates := make([]*Candidate, 0, len(inputs))
	for _, input := range inputs {
		if err := input.validate(); err != nil {
			return nil, err
		}
		candidates = append(candidates, &Candidate{
			Name:     input.Name,
			Email:    input.Email,
			Phone:    input.Phone,
			Typology: NormalizeTypology(input.Typology),
		})
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&candidates).Error; err != nil {
		return nil, err
	}
	return candidates, nil
}

func GetCandidates(ctx context.Context) ([]*Candidate, error) {
	db := config.GetDB()
	var candidates []*Candidate
	if err := db.WithContext(ctx).Order("candidate_id").Find(&candidates).Error; err != nil {
		return nil, err
	}
	return candidates, nil
}

// GetUnassignedCandidates returns candidates without a unit, the input pool
// for the typology matching run.
func GetUnassignedCandidates(ctx context.Context) ([]*Candidate, error) {
	db := config.GetDB()
	var candidates []*Candidate
	if err := db.WithContext(ctx).
		Where("assigned_unit_id IS NULL").
		Order("candidate_id").Find(&candidates).Error; err != nil {
		return nil, err
	}
	return candidates, nil
}

func GetCandidate(ctx context.Context, id int) (*Candidate, error) {
	db := config.GetDB()
	var candidate Candidate
	err := db.WithContext(ctx).First(&candidate, "candidate_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &candidate, nil
}
