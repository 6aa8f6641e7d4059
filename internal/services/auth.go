package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/dentest-backend/internal/data/dberr"
	"github.com/yungbote/dentest-backend/internal/data/repos"
	types "github.com/yungbote/dentest-backend/internal/domain"
	"github.com/yungbote/dentest-backend/internal/normalization"
	"github.com/yungbote/dentest-backend/internal/platform/ctxutil"
	"github.com/yungbote/dentest-backend/internal/platform/dbctx"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

const minPasswordLength = 8

type JWTClaims struct {
	SessionID string `json:"sid"`
	Username  string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

type SignupInput struct {
	Username string
	Email    string
	Password string
}

// Tokens is the credential pair of one login session.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	SessionID    uuid.UUID
	ExpiresAt    time.Time
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*types.User, *Tokens, error)
	Login(ctx context.Context, username, password string) (*types.User, *Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (*Tokens, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*types.User, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
	GetRefreshTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	profileRepo   repos.UserProfileRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	profileRepo repos.UserProfileRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (as *authService) Signup(ctx context.Context, in SignupInput) (*types.User, *Tokens, error) {
	username := normalization.ParseInputString(in.Username)
	email := normalization.ParseInputString(in.Email)
	password := in.Password

	fields := map[string]string{}
	if username == "" {
		fields["username"] = "username is required"
	}
	if strings.TrimSpace(password) == "" {
		fields["password"] = "password is required"
	} else if len(password) < minPasswordLength {
		fields["password"] = fmt.Sprintf("password must be at least %d characters", minPasswordLength)
	}
	if email != "" && !strings.Contains(email, "@") {
		fields["email"] = "email is not valid"
	}
	if len(fields) > 0 {
		return nil, nil, invalid("invalid_request", "signup details are incomplete", fields)
	}

	if taken, err := as.userRepo.UsernameExists(ctx, nil, username); err != nil {
		return nil, nil, fmt.Errorf("check username: %w", err)
	} else if taken {
		return nil, nil, conflict("username_taken", "username", "username is already taken")
	}
	if email != "" {
		if taken, err := as.userRepo.EmailExists(ctx, nil, email); err != nil {
			return nil, nil, fmt.Errorf("check email: %w", err)
		} else if taken {
			return nil, nil, conflict("email_taken", "email", "email is already registered")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := &types.User{
		Username: username,
		Password: string(hash),
		Profile:  &types.UserProfile{SubscriptionType: types.SubscriptionFree},
	}
	if email != "" {
		user.Email = &email
	}

	var tokens *Tokens
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := as.userRepo.Create(ctx, tx, []*types.User{user}); err != nil {
			return err
		}
		var tErr error
		tokens, tErr = as.issueTokens(ctx, tx, user)
		return tErr
	})
	if err != nil {
		if dberr.IsDuplicate(err) {
			if strings.Contains(strings.ToLower(dberr.DuplicateConstraint(err)), "email") {
				return nil, nil, conflict("email_taken", "email", "email is already registered")
			}
			return nil, nil, conflict("username_taken", "username", "username is already taken")
		}
		as.log.Error("Signup failed", "error", err)
		return nil, nil, fmt.Errorf("signup: %w", err)
	}
	as.log.Info("User signed up", "user_id", user.ID)
	return user, tokens, nil
}

func (as *authService) Login(ctx context.Context, username, password string) (*types.User, *Tokens, error) {
	username = normalization.ParseInputString(username)
	fields := map[string]string{}
	if username == "" {
		fields["username"] = "username is required"
	}
	if password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return nil, nil, invalid("invalid_request", "username and password are required", fields)
	}

	user, err := as.userRepo.GetByUsername(ctx, nil, username)
	if err != nil {
		return nil, nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, nil, unauthorized("invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, unauthorized("invalid username or password")
	}

	var tokens *Tokens
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tErr error
		tokens, tErr = as.issueTokens(ctx, tx, user)
		return tErr
	})
	if err != nil {
		as.log.Warn("Create user token failed", "error", err)
		return nil, nil, fmt.Errorf("login: %w", err)
	}
	return user, tokens, nil
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, invalidField("refresh_token", "refresh_token is required")
	}

	var out *Tokens
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := as.userTokenRepo.GetByRefreshToken(dbc, refreshToken)
		if err != nil {
			return err
		}
		if existing == nil {
			return unauthorized("refresh token is not valid")
		}
		if rd := ctxutil.GetRequestData(ctx); rd != nil && rd.UserID != uuid.Nil && rd.UserID != existing.UserID {
			return unauthorized("refresh token is not valid")
		}
		if existing.ExpiresAt.Before(as.now()) {
			return unauthorized("refresh token expired")
		}
		users, err := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existing.UserID})
		if err != nil {
			return err
		}
		if len(users) == 0 {
			return unauthorized("refresh token is not valid")
		}

		access, expiresAt, err := as.generateAccessToken(users[0], existing.ID)
		if err != nil {
			return err
		}
		existing.AccessToken = access
		existing.RefreshToken = uuid.NewString()
		existing.ExpiresAt = as.now().Add(as.refreshTTL)
		if err := as.userTokenRepo.Rotate(dbc, existing); err != nil {
			return err
		}
		out = &Tokens{
			AccessToken:  existing.AccessToken,
			RefreshToken: existing.RefreshToken,
			SessionID:    existing.ID,
			ExpiresAt:    expiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (as *authService) Logout(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.SessionID == uuid.Nil {
		return unauthorized("not logged in")
	}
	if err := as.userTokenRepo.DeleteByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{rd.SessionID}); err != nil {
		as.log.Warn("Error deleting user token", "error", err)
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (as *authService) CurrentUser(ctx context.Context) (*types.User, error) {
	userID := ctxutil.UserID(ctx)
	if userID == uuid.Nil {
		return nil, unauthorized("authentication required")
	}
	users, err := as.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, unauthorized("authentication required")
	}
	return users[0], nil
}

// SetContextFromToken validates the JWT and its backing user_token row, then
// stores the caller in ctx. A revoked session fails even with a valid
// signature.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, errors.New("invalid or expired JWT token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return ctx, fmt.Errorf("invalid session id in token: %w", err)
	}
	row, err := as.userTokenRepo.GetByID(dbctx.Context{Ctx: ctx}, sessionID)
	if err != nil {
		return ctx, fmt.Errorf("load session: %w", err)
	}
	if row == nil || row.UserID != userID || row.AccessToken != tokenString {
		return ctx, errors.New("session has been revoked")
	}
	rd := &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		SessionID:   sessionID,
		Username:    claims.Username,
	}
	if prev := ctxutil.GetRequestData(ctx); prev != nil {
		rd.ViaCookie = prev.ViaCookie
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration { return as.accessTTL }

func (as *authService) GetRefreshTTL() time.Duration { return as.refreshTTL }

func (as *authService) issueTokens(ctx context.Context, tx *gorm.DB, user *types.User) (*Tokens, error) {
	sessionID := uuid.New()
	access, expiresAt, err := as.generateAccessToken(user, sessionID)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	row := &types.UserToken{
		ID:           sessionID,
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    as.now().Add(as.refreshTTL),
	}
	if _, err := as.userTokenRepo.Create(dbctx.Context{Ctx: ctx, Tx: tx}, []*types.UserToken{row}); err != nil {
		return nil, err
	}
	return &Tokens{
		AccessToken:  access,
		RefreshToken: row.RefreshToken,
		SessionID:    sessionID,
		ExpiresAt:    expiresAt,
	}, nil
}

func (as *authService) generateAccessToken(user *types.User, sessionID uuid.UUID) (string, time.Time, error) {
	now := as.now()
	expiresAt := now.Add(as.accessTTL)
	claims := JWTClaims{
		SessionID: sessionID.String(),
		Username:  user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
