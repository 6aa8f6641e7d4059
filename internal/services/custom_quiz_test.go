package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/dentest-backend/internal/data/repos/testutil"
	"github.com/yungbote/dentest-backend/internal/platform/apierr"
)

func intPtr(v int) *int { return &v }

func TestGenerateNeverPads(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t, 3)

	qs, err := env.custom.Generate(context.Background(), GenerateInput{
		SubjectIDs: []uuid.UUID{f.subject.ID},
		Filter:     "all",
		Limit:      intPtr(5),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(qs) != 3 {
		t.Fatalf("expected exactly 3 questions, got %d", len(qs))
	}
	seen := map[uuid.UUID]bool{}
	for _, q := range qs {
		if seen[q.ID] {
			t.Fatalf("question %s sampled twice", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestGenerateTruncatesToLimit(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t, 6)

	ids, err := env.custom.GenerateIDs(context.Background(), GenerateInput{
		SubjectIDs: []uuid.UUID{f.subject.ID},
		Limit:      intPtr(4),
	})
	if err != nil {
		t.Fatalf("GenerateIDs: %v", err)
	}
	if len(ids) != 4 {
		t.Fatalf("expected 4 ids, got %d", len(ids))
	}
}

func TestGenerateGuestCannotFilterByHistory(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t, 2)

	qs, err := env.custom.Generate(context.Background(), GenerateInput{
		SubjectIDs: []uuid.UUID{f.subject.ID},
		Filter:     "correct",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(qs) != 0 {
		t.Fatalf("no questions may be returned, got %d", len(qs))
	}
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != 403 {
		t.Fatalf("expected a 403 api error, got %#v", err)
	}
}

func TestGenerateValidation(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t, 1)
	ctx := as(f.user)

	if _, err := env.custom.Generate(ctx, GenerateInput{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing subject_ids: expected ErrValidation, got %v", err)
	}
	_, err := env.custom.Generate(ctx, GenerateInput{SubjectIDs: []uuid.UUID{f.subject.ID}, Filter: "sometimes"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown filter: expected ErrValidation, got %v", err)
	}
}

func TestGenerateFilters(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t, 3)
	ctx := as(f.user)
	q0, q1, q2 := f.questions[0], f.questions[1], f.questions[2]
	testutil.SeedStatus(t, context.Background(), env.db, f.user.ID, q0.ID, testutil.PtrBool(true))
	testutil.SeedStatus(t, context.Background(), env.db, f.user.ID, q1.ID, testutil.PtrBool(false))
	// A row without a checked answer still counts as unanswered for the
	// correct/incorrect filters but not for the unanswered filter.
	testutil.SeedStatus(t, context.Background(), env.db, f.user.ID, q2.ID, nil)

	cases := []struct {
		filter string
		want   []uuid.UUID
	}{
		{"correct", []uuid.UUID{q0.ID}},
		{"incorrect", []uuid.UUID{q1.ID}},
		{"all", []uuid.UUID{q0.ID, q1.ID, q2.ID}},
	}
	for _, tc := range cases {
		ids, err := env.custom.GenerateIDs(ctx, GenerateInput{SubjectIDs: []uuid.UUID{f.subject.ID}, Filter: tc.filter})
		if err != nil {
			t.Fatalf("%s: %v", tc.filter, err)
		}
		if len(ids) != len(tc.want) {
			t.Fatalf("%s: want %d ids got %d", tc.filter, len(tc.want), len(ids))
		}
		got := map[uuid.UUID]bool{}
		for _, id := range ids {
			got[id] = true
		}
		for _, id := range tc.want {
			if !got[id] {
				t.Fatalf("%s: missing %s", tc.filter, id)
			}
		}
	}

	_, err := env.custom.GenerateIDs(ctx, GenerateInput{SubjectIDs: []uuid.UUID{f.subject.ID}, Filter: "unanswered"})
	if !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("unanswered with a row for every question: expected ErrEmptyPool, got %v", err)
	}
}

func TestGenerateUnansweredExcludesAnswered(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t, 2)
	ctx := as(f.user)
	if _, _, err := env.status.RecordAnswer(ctx, f.questions[0].ID, "option2"); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}
	ids, err := env.custom.GenerateIDs(ctx, GenerateInput{SubjectIDs: []uuid.UUID{f.subject.ID}, Filter: "unanswered"})
	if err != nil {
		t.Fatalf("GenerateIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != f.questions[1].ID {
		t.Fatalf("expected only the unanswered question, got %v", ids)
	}
}

func TestClampLimit(t *testing.T) {
	cases := []struct {
		in   *int
		want int
	}{
		{nil, DefaultQuizLimit},
		{intPtr(0), 1},
		{intPtr(-3), 1},
		{intPtr(7), 7},
		{intPtr(5000), MaxQuizLimit},
	}
	for _, tc := range cases {
		if got := clampLimit(tc.in); got != tc.want {
			t.Fatalf("clampLimit(%v): want %d got %d", tc.in, tc.want, got)
		}
	}
}

func TestSaveCustomQuizKeepsOrder(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t, 3)
	ctx := as(f.user)
	order := []uuid.UUID{f.questions[2].ID, f.questions[0].ID, f.questions[1].ID}

	saved, err := env.custom.Save(ctx, SaveCustomQuizInput{Title: "  Weak spots ", QuestionIDs: order})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Title != "Weak spots" {
		t.Fatalf("title not trimmed: %q", saved.Title)
	}
	got, err := env.custom.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	ids := got.QuestionIDs()
	for i := range order {
		if ids[i] != order[i] {
			t.Fatalf("position %d: want %s got %s", i, order[i], ids[i])
		}
	}

	other := env.seed(t, 0)
	if _, err := env.custom.Get(as(other.user), saved.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other user: expected ErrNotFound, got %v", err)
	}
	if _, err := env.custom.Save(ctx, SaveCustomQuizInput{Title: "x", QuestionIDs: []uuid.UUID{uuid.New()}}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown question: expected ErrNotFound, got %v", err)
	}
}
