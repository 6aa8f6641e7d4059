package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionType string

const (
	SubscriptionFree    SubscriptionType = "free"
	SubscriptionPremium SubscriptionType = "premium"
)

// UserProfile is created together with its user.
type UserProfile struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex;column:user_id" json:"user_id"`
	SubscriptionType  SubscriptionType `gorm:"not null;column:subscription_type;size:20" json:"subscription_type"`
	SubscriptionStart time.Time        `gorm:"not null;column:subscription_start" json:"subscription_start"`
	SubscriptionEnd   *time.Time       `gorm:"column:subscription_end" json:"subscription_end,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profile" }

func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.SubscriptionType == "" {
		p.SubscriptionType = SubscriptionFree
	}
	if p.SubscriptionStart.IsZero() {
		p.SubscriptionStart = time.Now().UTC()
	}
	return nil
}

// IsActiveSubscription is always true on the free tier.
func (p *UserProfile) IsActiveSubscription(now time.Time) bool {
	if p == nil {
		return false
	}
	if p.SubscriptionType == SubscriptionFree || p.SubscriptionType == "" {
		return true
	}
	return p.SubscriptionEnd == nil || now.Before(*p.SubscriptionEnd)
}
