package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/dentest-backend/internal/data/repos"
	types "github.com/yungbote/dentest-backend/internal/domain"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

type ProfileView struct {
	UserID               uuid.UUID              `json:"user_id"`
	Username             string                 `json:"username"`
	Email                *string                `json:"email,omitempty"`
	SubscriptionType     types.SubscriptionType `json:"subscription_type"`
	SubscriptionStart    time.Time              `json:"subscription_start"`
	SubscriptionEnd      *time.Time             `json:"subscription_end,omitempty"`
	IsActiveSubscription bool                   `json:"is_active_subscription"`
}

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	Profile(ctx context.Context) (*ProfileView, error)
	// HasActiveSubscription backs the subscription guard.
	HasActiveSubscription(ctx context.Context, userID uuid.UUID) (bool, error)
	ChangePassword(ctx context.Context, current, next string) error
}

type userService struct {
	db          *gorm.DB
	log         *logger.Logger
	userRepo    repos.UserRepo
	profileRepo repos.UserProfileRepo
	now         func() time.Time
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, profileRepo repos.UserProfileRepo) UserService {
	return &userService{
		db:          db,
		log:         log.With("service", "UserService"),
		userRepo:    userRepo,
		profileRepo: profileRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, unauthorized("authentication required")
	}
	return users[0], nil
}

func (us *userService) Profile(ctx context.Context) (*ProfileView, error) {
	u, err := us.GetMe(ctx)
	if err != nil {
		return nil, err
	}
	profile := u.Profile
	if profile == nil {
		// Accounts created outside signup get the free tier on first read.
		if profile, err = us.profileRepo.EnsureForUser(ctx, nil, u.ID); err != nil {
			return nil, err
		}
	}
	return &ProfileView{
		UserID:               u.ID,
		Username:             u.Username,
		Email:                u.Email,
		SubscriptionType:     profile.SubscriptionType,
		SubscriptionStart:    profile.SubscriptionStart,
		SubscriptionEnd:      profile.SubscriptionEnd,
		IsActiveSubscription: profile.IsActiveSubscription(us.now()),
	}, nil
}

func (us *userService) HasActiveSubscription(ctx context.Context, userID uuid.UUID) (bool, error) {
	profile, err := us.profileRepo.EnsureForUser(ctx, nil, userID)
	if err != nil {
		return false, err
	}
	return profile.IsActiveSubscription(us.now()), nil
}

func (us *userService) ChangePassword(ctx context.Context, current, next string) error {
	u, err := us.GetMe(ctx)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(current)) != nil {
		return invalidField("current_password", "current password is incorrect")
	}
	if len(next) < minPasswordLength {
		return invalidField("new_password", "password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := us.userRepo.UpdatePassword(ctx, nil, u.ID, string(hash)); err != nil {
		return err
	}
	us.log.Info("Password changed", "user_id", u.ID)
	return nil
}
