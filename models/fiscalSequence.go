package models

import (
	"context"
	"time"

	"github.com/caribesoft/pos_backend/utils"
	"gorm.io/gorm"
)

// FiscalSequence is the single source of truth for fiscal numbering state.
// Numbers issued from it run current_number+1 .. end_number (inclusive);
// current_number never moves except through AllocateNextNumber.
type FiscalSequence struct {
	ID             int       `gorm:"primary_key" json:"id"`
	BusinessId     string    `gorm:"size:36;not null;index" json:"business_id"`
	SequenceType   string    `gorm:"size:20;not null;index" json:"sequence_type"`
	Prefix         string    `gorm:"size:10;not null" json:"prefix"`
	CurrentNumber  int64     `gorm:"not null;default:0" json:"current_number"`
	EndNumber      int64     `gorm:"not null" json:"end_number"`
	IsActive       *bool     `gorm:"not null;default:false" json:"is_active"`
	ExpirationDate time.Time `gorm:"not null" json:"expiration_date"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewFiscalSequence struct {
	SequenceType   string    `json:"sequence_type" binding:"required"`
	Prefix         string    `json:"prefix" binding:"required"`
	CurrentNumber  int64     `json:"current_number"`
	EndNumber      int64     `json:"end_number" binding:"required"`
	IsActive       *bool     `json:"is_active"`
	ExpirationDate time.Time `json:"expiration_date" binding:"required"`
}

func (input *NewFiscalSequence) validate() error {
	if input.CurrentNumber < 0 {
		return utils.NewError(utils.ErrorKindValidation, "current number must not be negative")
	}
	if input.EndNumber <= input.CurrentNumber {
		return utils.NewError(utils.ErrorKindValidation, "end number must be greater than current number")
	}
	return nil
}

func CreateFiscalSequence(ctx context.Context, db *gorm.DB, businessId string, input *NewFiscalSequence) (*FiscalSequence, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	seq := FiscalSequence{
		BusinessId:     businessId,
		SequenceType:   input.SequenceType,
		Prefix:         input.Prefix,
		CurrentNumber:  input.CurrentNumber,
		EndNumber:      input.EndNumber,
		IsActive:       input.IsActive,
		ExpirationDate: input.ExpirationDate,
	}
	if err := db.WithContext(ctx).Create(&seq).Error; err != nil {
		return nil, err
	}
	return &seq, nil
}

// UpdateFiscalSequence edits provisioning fields. current_number is deliberately
// NOT writable here; only the allocator advances it, so the new end_number is
// validated against the row's live counter, not the input's.
func UpdateFiscalSequence(ctx context.Context, db *gorm.DB, businessId string, id int, input *NewFiscalSequence) (*FiscalSequence, error) {
	seq, err := GetFiscalSequence(ctx, db, businessId, id)
	if err != nil {
		return nil, err
	}

	if input.EndNumber <= seq.CurrentNumber {
		return nil, utils.NewError(utils.ErrorKindValidation,
			"end number %d must be greater than the current number %d", input.EndNumber, seq.CurrentNumber)
	}

	updates := map[string]interface{}{
		"SequenceType":   input.SequenceType,
		"Prefix":         input.Prefix,
		"EndNumber":      input.EndNumber,
		"ExpirationDate": input.ExpirationDate,
	}
	if input.IsActive != nil {
		updates["IsActive"] = input.IsActive
	}

	if err := db.WithContext(ctx).Model(seq).Updates(updates).Error; err != nil {
		return nil, err
	}
	return seq, nil
}

func GetFiscalSequence(ctx context.Context, db *gorm.DB, businessId string, id int) (*FiscalSequence, error) {
	var seq FiscalSequence
	err := db.WithContext(ctx).Where("business_id = ?", businessId).First(&seq, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.WrapError(utils.ErrorKindNotFound, nil, "fiscal sequence %d not found", id)
		}
		return nil, err
	}
	return &seq, nil
}

func GetFiscalSequences(ctx context.Context, db *gorm.DB, businessId string) ([]*FiscalSequence, error) {
	var results []*FiscalSequence
	err := db.WithContext(ctx).Where("business_id = ?", businessId).
		Order("sequence_type, created_at").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// AllocatedNumber is the result of one successful allocation. AuditId points
// at the ISSUED audit row the caller must confirm once the number is bound to
// a persisted document.
type AllocatedNumber struct {
	DocumentNumber string
	Number         int64
	SequenceId     int
	AuditId        int
}

// maxAllocationRetries bounds the compare-and-swap retry loop. Each retry
// re-reads the row, so a loser never commits against a stale number.
const maxAllocationRetries = 5

// AllocateNextNumber issues the next number from the active sequence for
// (businessId, sequenceType).
//
// The advance is a conditional UPDATE keyed on the previously observed
// current_number: two concurrent callers can both read N, but only one can
// commit N+1; the other sees zero rows affected and retries from a fresh read.
// The ISSUED audit row is written in the same transaction as the advance, so a
// number can never be consumed without a durable trace.
func AllocateNextNumber(ctx context.Context, db *gorm.DB, businessId string, sequenceType string) (*AllocatedNumber, error) {
	for attempt := 0; attempt < maxAllocationRetries; attempt++ {
		var active []FiscalSequence
		err := db.WithContext(ctx).
			Where("business_id = ? AND sequence_type = ? AND is_active = ?", businessId, sequenceType, true).
			Find(&active).Error
		if err != nil {
			return nil, err
		}
		switch {
		case len(active) == 0:
			return nil, utils.NewError(utils.ErrorKindNotFound,
				"no active fiscal sequence for business %s type %s", businessId, sequenceType)
		case len(active) > 1:
			return nil, utils.NewError(utils.ErrorKindValidation,
				"business %s has %d active %s sequences; exactly one is required", businessId, len(active), sequenceType)
		}
		seq := active[0]

		if time.Now().After(seq.ExpirationDate) {
			return nil, utils.NewError(utils.ErrorKindExhaustion,
				"fiscal sequence %d has expired (%s)", seq.ID, seq.ExpirationDate.Format(time.RFC3339))
		}
		if seq.CurrentNumber >= seq.EndNumber {
			return nil, utils.NewError(utils.ErrorKindExhaustion,
				"fiscal sequence %d has reached its limit (%d)", seq.ID, seq.EndNumber)
		}

		next := seq.CurrentNumber + 1
		formatted := utils.FormatSequenceNumber(seq.Prefix, next)

		var allocated *AllocatedNumber
		swapped := false
		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&FiscalSequence{}).
				Where("id = ? AND current_number = ?", seq.ID, seq.CurrentNumber).
				Update("current_number", next)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Lost the race; nothing to roll back, retry from a fresh read.
				return nil
			}
			swapped = true

			audit := FiscalNumberAudit{
				BusinessId:     businessId,
				SequenceId:     seq.ID,
				DocumentNumber: formatted,
				Number:         next,
				Status:         FiscalAuditStatusIssued,
			}
			if err := tx.Create(&audit).Error; err != nil {
				return err
			}
			allocated = &AllocatedNumber{
				DocumentNumber: formatted,
				Number:         next,
				SequenceId:     seq.ID,
				AuditId:        audit.ID,
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		if swapped {
			return allocated, nil
		}
	}

	return nil, utils.NewError(utils.ErrorKindConflict,
		"fiscal sequence allocation for business %s type %s lost %d consecutive races", businessId, sequenceType, maxAllocationRetries)
}
