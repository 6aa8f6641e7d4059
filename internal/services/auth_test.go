package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/dentest-backend/internal/platform/apierr"
	"github.com/yungbote/dentest-backend/internal/platform/ctxutil"
)

func TestSignupLoginAndTokenContext(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, tokens, err := env.auth.Signup(ctx, SignupInput{Username: " Dana ", Email: "dana@example.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if user.Username != "dana" || tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("unexpected signup result: %+v %+v", user, tokens)
	}

	authed, err := env.auth.SetContextFromToken(ctx, tokens.AccessToken)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(authed)
	if rd == nil || rd.UserID != user.ID || rd.SessionID != tokens.SessionID {
		t.Fatalf("request data not populated: %+v", rd)
	}

	me, err := env.auth.CurrentUser(authed)
	if err != nil || me.ID != user.ID {
		t.Fatalf("CurrentUser: %v %v", me, err)
	}
	profile, err := env.users.Profile(authed)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.SubscriptionType != "free" || !profile.IsActiveSubscription {
		t.Fatalf("new accounts start on an active free tier: %+v", profile)
	}

	if _, _, err := env.auth.Login(ctx, "dana", "wrong-password"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("bad password: expected ErrUnauthorized, got %v", err)
	}
	if _, _, err := env.auth.Login(ctx, "DANA", "longenough"); err != nil {
		t.Fatalf("Login: %v", err)
	}
}

func TestSignupConflictsAndValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, _, err := env.auth.Signup(ctx, SignupInput{Username: "sam", Email: "sam@example.com", Password: "longenough"}); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	cases := []struct {
		name string
		in   SignupInput
		code string
	}{
		{"username taken", SignupInput{Username: "SAM", Password: "longenough"}, "username_taken"},
		{"email taken", SignupInput{Username: "other", Email: "SAM@example.com", Password: "longenough"}, "email_taken"},
		{"missing password", SignupInput{Username: "x"}, "invalid_request"},
		{"short password", SignupInput{Username: "x", Password: "short"}, "invalid_request"},
	}
	for _, tc := range cases {
		_, _, err := env.auth.Signup(ctx, tc.in)
		var ae *apierr.Error
		if !errors.As(err, &ae) {
			t.Fatalf("%s: expected api error, got %v", tc.name, err)
		}
		if ae.Status != 400 || ae.Code != tc.code {
			t.Fatalf("%s: want 400/%s got %d/%s", tc.name, tc.code, ae.Status, ae.Code)
		}
	}
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, tokens, err := env.auth.Signup(ctx, SignupInput{Username: "kai", Password: "longenough"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	rotated, err := env.auth.Refresh(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rotated.SessionID != tokens.SessionID || rotated.RefreshToken == tokens.RefreshToken {
		t.Fatalf("refresh must rotate within the same login session")
	}
	if _, err := env.auth.Refresh(ctx, tokens.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("reused refresh token: expected ErrUnauthorized, got %v", err)
	}
	if _, err := env.auth.SetContextFromToken(ctx, tokens.AccessToken); err == nil {
		t.Fatalf("the replaced access token must be rejected")
	}

	authed, err := env.auth.SetContextFromToken(ctx, rotated.AccessToken)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if err := env.auth.Logout(authed); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := env.auth.SetContextFromToken(ctx, rotated.AccessToken); err == nil {
		t.Fatalf("token must be revoked after logout")
	}
}
