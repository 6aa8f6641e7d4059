package quiz

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/dentest-backend/internal/data/repos/testutil"
	types "github.com/yungbote/dentest-backend/internal/domain"
	"github.com/yungbote/dentest-backend/internal/platform/dbctx"
)

func TestRecordAttemptBumpsCounters(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewUserQuestionStatusRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, db, "status-user")
	sec := testutil.SeedSection(t, ctx, db, types.ExamTypeINBDE, "Biomedical")
	sub := testutil.SeedSubject(t, ctx, db, sec.ID, "Anatomy")
	q := testutil.SeedQuestion(t, ctx, db, sub.ID, "q1")

	now := time.Now().UTC()
	row, err := repo.RecordAttempt(dbc, u.ID, q.ID, "option1", true, now)
	if err != nil {
		t.Fatalf("RecordAttempt #1: %v", err)
	}
	if row.TimesSeen != 1 || row.TimesCorrect != 1 || row.LastWasCorrect == nil || !*row.LastWasCorrect {
		t.Fatalf("unexpected row after first attempt: %+v", row)
	}

	row, err = repo.RecordAttempt(dbc, u.ID, q.ID, "option3", false, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("RecordAttempt #2: %v", err)
	}
	if row.TimesSeen != 2 || row.TimesCorrect != 1 {
		t.Fatalf("counters: seen=%d correct=%d", row.TimesSeen, row.TimesCorrect)
	}
	if row.LastAnswer != "option3" || *row.LastWasCorrect {
		t.Fatalf("last answer fields not overwritten: %+v", row)
	}
}

func TestCountBySubjectIgnoresUncheckedRows(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewUserQuestionStatusRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, db, "count-user")
	sec := testutil.SeedSection(t, ctx, db, types.ExamTypeINBDE, "Biomedical")
	s1 := testutil.SeedSubject(t, ctx, db, sec.ID, "Anatomy")
	s2 := testutil.SeedSubject(t, ctx, db, sec.ID, "Biochem")

	q1 := testutil.SeedQuestion(t, ctx, db, s1.ID, "q1")
	q2 := testutil.SeedQuestion(t, ctx, db, s1.ID, "q2")
	q3 := testutil.SeedQuestion(t, ctx, db, s1.ID, "q3")
	q4 := testutil.SeedQuestion(t, ctx, db, s2.ID, "q4")

	testutil.SeedStatus(t, ctx, db, u.ID, q1.ID, testutil.PtrBool(true))
	testutil.SeedStatus(t, ctx, db, u.ID, q2.ID, testutil.PtrBool(false))
	testutil.SeedStatus(t, ctx, db, u.ID, q3.ID, nil)
	testutil.SeedStatus(t, ctx, db, u.ID, q4.ID, nil)

	counts, err := repo.CountBySubject(dbc, u.ID, nil)
	if err != nil {
		t.Fatalf("CountBySubject: %v", err)
	}
	if len(counts) != 1 {
		t.Fatalf("expected only the subject with checked rows, got %+v", counts)
	}
	if counts[0].SubjectID != s1.ID || counts[0].Correct != 1 || counts[0].Total != 2 {
		t.Fatalf("unexpected tally: %+v", counts[0])
	}

	none, err := repo.CountBySubject(dbc, u.ID, []uuid.UUID{})
	if err != nil || len(none) != 0 {
		t.Fatalf("empty subject list: err=%v len=%d", err, len(none))
	}

	rows, err := repo.ListBySubject(dbc, u.ID, s1.ID)
	if err != nil || len(rows) != 3 {
		t.Fatalf("ListBySubject: err=%v len=%d", err, len(rows))
	}
	if rows[0].Question == nil {
		t.Fatalf("question not preloaded")
	}
}

func TestQuizAttemptSubjectCounters(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewQuizAttemptRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, db, "attempt-user")
	sec := testutil.SeedSection(t, ctx, db, types.ExamTypeINBDE, "Biomedical")
	sub := testutil.SeedSubject(t, ctx, db, sec.ID, "Anatomy")

	attempt := &types.QuizAttempt{UserID: u.ID, SubjectID: &sub.ID, Kind: types.AttemptKindSubject}
	if _, err := repo.Create(dbc, attempt); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.IncrementSubject(dbc, attempt.ID, sub.ID, true); err != nil {
		t.Fatalf("IncrementSubject #1: %v", err)
	}
	if err := repo.IncrementSubject(dbc, attempt.ID, sub.ID, false); err != nil {
		t.Fatalf("IncrementSubject #2: %v", err)
	}
	rows, err := repo.ListSubjects(dbc, attempt.ID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListSubjects: err=%v len=%d", err, len(rows))
	}
	if rows[0].Score != 1 || rows[0].Total != 2 {
		t.Fatalf("counters: %+v", rows[0])
	}

	other := testutil.SeedSubject(t, ctx, db, sec.ID, "Histology")
	if err := repo.SetSubjectTotals(dbc, attempt.ID, map[uuid.UUID]int{sub.ID: 5, other.ID: 3}); err != nil {
		t.Fatalf("SetSubjectTotals: %v", err)
	}
	rows, err = repo.ListSubjects(dbc, attempt.ID)
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListSubjects after totals: err=%v len=%d", err, len(rows))
	}
	for _, row := range rows {
		switch row.SubjectID {
		case sub.ID:
			if row.Score != 1 || row.Total != 5 {
				t.Fatalf("topped up row lost its score: %+v", row)
			}
		case other.ID:
			if row.Score != 0 || row.Total != 3 {
				t.Fatalf("new row: %+v", row)
			}
		}
	}

	open, err := repo.HoldOpen(dbc, attempt.ID)
	if err != nil || !open {
		t.Fatalf("HoldOpen before close: open=%v err=%v", open, err)
	}
	closed, err := repo.Close(dbc, attempt.ID, time.Now().UTC())
	if err != nil || !closed {
		t.Fatalf("Close #1: closed=%v err=%v", closed, err)
	}
	closed, err = repo.Close(dbc, attempt.ID, time.Now().UTC())
	if err != nil || closed {
		t.Fatalf("Close #2 must be a no-op: closed=%v err=%v", closed, err)
	}
	open, err = repo.HoldOpen(dbc, attempt.ID)
	if err != nil || open {
		t.Fatalf("HoldOpen after close: open=%v err=%v", open, err)
	}
	if err := repo.SetScore(dbc, attempt.ID, 1, 8, 12.5); err != nil {
		t.Fatalf("SetScore: %v", err)
	}

	got, err := repo.GetForUser(dbc, u.ID, attempt.ID)
	if err != nil || got == nil || got.CompletedAt == nil || got.Total != 8 {
		t.Fatalf("GetForUser: err=%v got=%+v", err, got)
	}
	stranger, err := repo.GetForUser(dbc, uuid.New(), attempt.ID)
	if err != nil || stranger != nil {
		t.Fatalf("attempt must be invisible to other users: err=%v got=%v", err, stranger)
	}
}
