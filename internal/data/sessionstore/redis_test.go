package sessionstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/dentest-backend/internal/domain/quizsession"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

func newRedisTestStore(t *testing.T) (*redisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewRedisStore(rdb, time.Minute, log).(*redisStore), mr
}

func TestRedisStoreOwnership(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisTestStore(t)
	owner := uuid.New()
	qs := newTestSession(t, owner)

	if err := store.Save(ctx, qs); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Get(ctx, owner, qs.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.QuestionIDs) != 2 || got.Status != quizsession.StatusNotStarted || got.Answers == nil {
		t.Fatalf("round trip lost state: %+v", got)
	}
	if _, err := store.Get(ctx, uuid.New(), qs.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other user must see ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, qs.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, owner, qs.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted session must be gone, got %v", err)
	}
}

func TestRedisStoreClaimAnswerOnce(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisTestStore(t)
	owner := uuid.New()
	qs := newTestSession(t, owner)
	if err := store.Save(ctx, qs); err != nil {
		t.Fatalf("Save: %v", err)
	}
	q := qs.QuestionIDs[0]

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		claimed int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, ok, err := store.ClaimAnswer(ctx, qs.ID, quizsession.Answer{QuestionID: q, Selected: "option1", IsCorrect: i%2 == 0})
			if err != nil {
				t.Errorf("ClaimAnswer: %v", err)
				return
			}
			if ok {
				mu.Lock()
				claimed++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if claimed != 1 {
		t.Fatalf("exactly one claim must win, got %d", claimed)
	}
	if ttl := mr.TTL(store.answersKey(qs.ID)); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("answers hash must carry the session ttl, got %v", ttl)
	}

	first, _ := store.Get(ctx, owner, qs.ID)
	again, ok, err := store.ClaimAnswer(ctx, qs.ID, quizsession.Answer{QuestionID: q, Selected: "option4"})
	if err != nil || ok {
		t.Fatalf("repeat claim must lose: ok=%v err=%v", ok, err)
	}
	if again != first.Answers[q] || again.Selected != "option1" {
		t.Fatalf("repeat claim must return the stored answer: %+v vs %+v", again, first.Answers[q])
	}

	if err := store.ReleaseAnswer(ctx, qs.ID, q); err != nil {
		t.Fatalf("ReleaseAnswer: %v", err)
	}
	if _, ok, _ := store.ClaimAnswer(ctx, qs.ID, quizsession.Answer{QuestionID: q}); !ok {
		t.Fatalf("released answer must be claimable again")
	}
}

func TestRedisStoreClaimNeedsLiveSession(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisTestStore(t)
	qs := newTestSession(t, uuid.New())
	_ = store.Save(ctx, qs)
	_ = store.Delete(ctx, qs.ID)

	if _, _, err := store.ClaimAnswer(ctx, qs.ID, quizsession.Answer{QuestionID: qs.QuestionIDs[0]}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("claim on a deleted session: expected ErrNotFound, got %v", err)
	}
	if mr.Exists(store.answersKey(qs.ID)) {
		t.Fatalf("a refused claim must not create the answers hash")
	}
	if err := store.Update(ctx, qs); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update of a deleted session: expected ErrNotFound, got %v", err)
	}
	if mr.Exists(store.sessionKey(qs.ID)) {
		t.Fatalf("update must not bring the session back")
	}
}

func TestRedisStoreUpdateRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisTestStore(t)
	owner := uuid.New()
	qs := newTestSession(t, owner)
	_ = store.Save(ctx, qs)
	if _, _, err := store.ClaimAnswer(ctx, qs.ID, quizsession.Answer{QuestionID: qs.QuestionIDs[0]}); err != nil {
		t.Fatalf("ClaimAnswer: %v", err)
	}

	mr.FastForward(40 * time.Second)
	if err := qs.Open(qs.QuestionIDs[1]); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Update(ctx, qs); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if ttl := mr.TTL(store.sessionKey(qs.ID)); ttl != time.Minute {
		t.Fatalf("session ttl not refreshed: %v", ttl)
	}
	if ttl := mr.TTL(store.answersKey(qs.ID)); ttl != time.Minute {
		t.Fatalf("answers ttl not refreshed: %v", ttl)
	}
	got, err := store.Get(ctx, owner, qs.ID)
	if err != nil || got.Index != 1 || len(got.Answers) != 1 {
		t.Fatalf("updated session: %+v err=%v", got, err)
	}
}

func TestRedisStoreSkipsUndecodableAnswers(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisTestStore(t)
	owner := uuid.New()
	qs := newTestSession(t, owner)
	_ = store.Save(ctx, qs)
	mr.HSet(store.answersKey(qs.ID), qs.QuestionIDs[0].String(), "not json")

	got, err := store.Get(ctx, owner, qs.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Answers) != 0 {
		t.Fatalf("broken answer must be skipped: %+v", got.Answers)
	}
}

func TestRedisStoreActivePointer(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisTestStore(t)
	login := uuid.New()
	first, second := uuid.New(), uuid.New()

	if id, err := store.GetActive(ctx, login); err != nil || id != uuid.Nil {
		t.Fatalf("empty pointer: id=%s err=%v", id, err)
	}
	_ = store.SetActive(ctx, login, first)
	_ = store.SetActive(ctx, login, second)
	if err := store.ClearActive(ctx, login, first); err != nil {
		t.Fatalf("ClearActive: %v", err)
	}
	if id, _ := store.GetActive(ctx, login); id != second {
		t.Fatalf("stale clear must not drop the newer pointer, got %s", id)
	}
	if err := store.ClearActive(ctx, login, second); err != nil {
		t.Fatalf("ClearActive: %v", err)
	}
	if id, _ := store.GetActive(ctx, login); id != uuid.Nil {
		t.Fatalf("pointer should be cleared, got %s", id)
	}

	mr.Set(store.activeKey(login), "garbage")
	if id, err := store.GetActive(ctx, login); err != nil || id != uuid.Nil {
		t.Fatalf("unparsable pointer: id=%s err=%v", id, err)
	}
}

func TestRedisStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisTestStore(t)
	owner := uuid.New()
	qs := newTestSession(t, owner)
	_ = store.Save(ctx, qs)

	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, owner, qs.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired session must be gone, got %v", err)
	}
}
