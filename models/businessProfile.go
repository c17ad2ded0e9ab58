package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BusinessProfile is the owner entity. Every product, sale, tax configuration
// and fiscal sequence is scoped to exactly one business.
type BusinessProfile struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Rnc       string    `gorm:"size:20" json:"rnc"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b *BusinessProfile) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

type NewBusinessProfile struct {
	Name string `json:"name" binding:"required"`
	Rnc  string `json:"rnc"`
}

func CreateBusinessProfile(ctx context.Context, db *gorm.DB, input *NewBusinessProfile) (*BusinessProfile, error) {
	profile := BusinessProfile{
		Name: input.Name,
		Rnc:  input.Rnc,
	}
	if err := db.WithContext(ctx).Create(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

