package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/dentest-backend/internal/data/repos/testutil"
	types "github.com/yungbote/dentest-backend/internal/domain"
	"github.com/yungbote/dentest-backend/internal/platform/dbctx"
)

func TestUserTokenRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewUserTokenRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, db, "usertokenrepo")

	makeToken := func(access, refresh string) *types.UserToken {
		return &types.UserToken{
			ID:           uuid.New(),
			UserID:       u.ID,
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresAt:    time.Now().Add(1 * time.Hour),
		}
	}

	t1 := makeToken("access-1", "refresh-1")
	if _, err := repo.Create(dbc, []*types.UserToken{t1}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if row, err := repo.GetByID(dbc, t1.ID); err != nil || row == nil {
		t.Fatalf("GetByID: err=%v row=%v", err, row)
	}
	if rows, err := repo.GetByUserIDs(dbc, []uuid.UUID{u.ID}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByUserIDs: err=%v len=%d", err, len(rows))
	}
	if row, err := repo.GetByAccessToken(dbc, t1.AccessToken); err != nil || row == nil || row.ID != t1.ID {
		t.Fatalf("GetByAccessToken: err=%v row=%v", err, row)
	}
	if row, err := repo.GetByRefreshToken(dbc, "nope"); err != nil || row != nil {
		t.Fatalf("GetByRefreshToken(missing): err=%v row=%v", err, row)
	}

	t1.AccessToken, t1.RefreshToken = "access-1b", "refresh-1b"
	if err := repo.Rotate(dbc, t1); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if row, err := repo.GetByRefreshToken(dbc, "refresh-1b"); err != nil || row == nil || row.ID != t1.ID {
		t.Fatalf("after Rotate GetByRefreshToken: err=%v row=%v", err, row)
	}
	if err := repo.Rotate(dbc, makeToken("x", "y")); err == nil {
		t.Fatalf("Rotate of unknown row must fail")
	}

	if err := repo.DeleteByIDs(dbc, []uuid.UUID{t1.ID}); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	if row, err := repo.GetByID(dbc, t1.ID); err != nil || row != nil {
		t.Fatalf("after DeleteByIDs GetByID: err=%v row=%v", err, row)
	}

	t2 := makeToken("access-2", "refresh-2")
	t3 := makeToken("access-3", "refresh-3")
	if _, err := repo.Create(dbc, []*types.UserToken{t2, t3}); err != nil {
		t.Fatalf("seed tokens: %v", err)
	}
	if err := repo.DeleteByUserIDs(dbc, []uuid.UUID{u.ID}); err != nil {
		t.Fatalf("DeleteByUserIDs: %v", err)
	}
	if rows, err := repo.GetByUserIDs(dbc, []uuid.UUID{u.ID}); err != nil || len(rows) != 0 {
		t.Fatalf("after DeleteByUserIDs: err=%v len=%d", err, len(rows))
	}
}
