package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/dentest-backend/internal/domain"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

type UserProfileRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserProfile, error)
	// EnsureForUser creates a free profile when the user has none yet.
	EnsureForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserProfile, error)
	UpdateSubscription(ctx context.Context, tx *gorm.DB, userID uuid.UUID, subscriptionType types.SubscriptionType, end *time.Time) error
}

type userProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserProfileRepo(db *gorm.DB, baseLog *logger.Logger) UserProfileRepo {
	repoLog := baseLog.With("repo", "UserProfileRepo")
	return &userProfileRepo{db: db, log: repoLog}
}

func (r *userProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.UserProfile
	err := transaction.WithContext(ctx).Where("user_id = ?", userID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userProfileRepo) EnsureForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserProfile, error) {
	existing, err := r.GetByUserID(ctx, tx, userID)
	if err != nil || existing != nil {
		return existing, err
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	p := &types.UserProfile{UserID: userID, SubscriptionType: types.SubscriptionFree}
	if err := transaction.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *userProfileRepo) UpdateSubscription(ctx context.Context, tx *gorm.DB, userID uuid.UUID, subscriptionType types.SubscriptionType, end *time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.UserProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"subscription_type": subscriptionType,
			"subscription_end":  end,
		}).Error
}
