package content

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/dentest-backend/internal/data/dberr"
	"github.com/yungbote/dentest-backend/internal/data/repos/testutil"
	types "github.com/yungbote/dentest-backend/internal/domain"
	"github.com/yungbote/dentest-backend/internal/platform/dbctx"
)

func TestQuestionRepoRejectsNormalizedDuplicate(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewQuestionRepo(db, testutil.Logger(t))

	sec := testutil.SeedSection(t, ctx, db, types.ExamTypeINBDE, "Biomedical")
	sub := testutil.SeedSubject(t, ctx, db, sec.ID, "Anatomy")

	first := &types.Question{SubjectID: sub.ID, Text: "What is the pulp?", Option1: "a", Option2: "b", Option3: "c", Option4: "d", CorrectOption: "option2"}
	if _, err := repo.Create(dbc, []*types.Question{first}); err != nil {
		t.Fatalf("Create first: %v", err)
	}
	second := &types.Question{SubjectID: sub.ID, Text: "what is the pulp?  ", Option1: "a", Option2: "b", Option3: "c", Option4: "d", CorrectOption: "option2"}
	_, err := repo.Create(dbc, []*types.Question{second})
	if err == nil {
		t.Fatalf("expected duplicate to be rejected")
	}
	if !dberr.IsDuplicate(err) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	ids, err := repo.ListIDsBySubject(dbc, sub.ID)
	if err != nil || len(ids) != 1 {
		t.Fatalf("ListIDsBySubject: err=%v len=%d", err, len(ids))
	}

	other := testutil.SeedSubject(t, ctx, db, sec.ID, "Histology")
	third := &types.Question{SubjectID: other.ID, Text: "What is the pulp?", Option1: "a", Option2: "b", Option3: "c", Option4: "d", CorrectOption: "option1"}
	if _, err := repo.Create(dbc, []*types.Question{third}); err != nil {
		t.Fatalf("same text in another subject must be allowed: %v", err)
	}
}

func TestQuestionRepoUpsertMergesByNormalizedText(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewQuestionRepo(db, testutil.Logger(t))

	sec := testutil.SeedSection(t, ctx, db, types.ExamTypeADAT, "Perceptual")
	sub := testutil.SeedSubject(t, ctx, db, sec.ID, "Angles")
	orig := testutil.SeedQuestion(t, ctx, db, sub.ID, "Which angle is largest?")

	updated, err := repo.Upsert(dbc, &types.Question{
		SubjectID: sub.ID, Text: "which angle is LARGEST", Option1: "w", Option2: "x", Option3: "y", Option4: "z", CorrectOption: "option4",
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if updated.ID != orig.ID {
		t.Fatalf("expected upsert to reuse %s, got %s", orig.ID, updated.ID)
	}
	got, err := repo.GetByIDs(dbc, []uuid.UUID{orig.ID})
	if err != nil || len(got) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(got))
	}
	if got[0].CorrectOption != "option4" || got[0].Option1 != "w" {
		t.Fatalf("upsert did not overwrite fields: %+v", got[0])
	}
}

func TestQuestionRepoPoolFilters(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewQuestionRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, db, "pool-user")
	sec := testutil.SeedSection(t, ctx, db, types.ExamTypeINBDE, "Clinical")
	s1 := testutil.SeedSubject(t, ctx, db, sec.ID, "Endo")
	s2 := testutil.SeedSubject(t, ctx, db, sec.ID, "Perio")

	qCorrect := testutil.SeedQuestion(t, ctx, db, s1.ID, "q correct")
	qWrong := testutil.SeedQuestion(t, ctx, db, s1.ID, "q wrong")
	qSeen := testutil.SeedQuestion(t, ctx, db, s2.ID, "q seen only")
	qFresh := testutil.SeedQuestion(t, ctx, db, s2.ID, "q fresh")

	testutil.SeedStatus(t, ctx, db, u.ID, qCorrect.ID, testutil.PtrBool(true))
	testutil.SeedStatus(t, ctx, db, u.ID, qWrong.ID, testutil.PtrBool(false))
	testutil.SeedStatus(t, ctx, db, u.ID, qSeen.ID, nil)

	subjects := []uuid.UUID{s1.ID, s2.ID}
	cases := []struct {
		filter string
		want   []uuid.UUID
	}{
		{FilterAll, []uuid.UUID{qCorrect.ID, qWrong.ID, qSeen.ID, qFresh.ID}},
		{FilterUnanswered, []uuid.UUID{qFresh.ID}},
		{FilterCorrect, []uuid.UUID{qCorrect.ID}},
		{FilterIncorrect, []uuid.UUID{qWrong.ID}},
	}
	for _, tc := range cases {
		t.Run(tc.filter, func(t *testing.T) {
			ids, err := repo.ListIDsForPool(dbc, u.ID, subjects, tc.filter)
			if err != nil {
				t.Fatalf("ListIDsForPool: %v", err)
			}
			if len(ids) != len(tc.want) {
				t.Fatalf("want %d ids, got %d", len(tc.want), len(ids))
			}
			got := map[uuid.UUID]bool{}
			for _, id := range ids {
				got[id] = true
			}
			for _, id := range tc.want {
				if !got[id] {
					t.Fatalf("missing %s in %v", id, ids)
				}
			}
		})
	}
}

func TestSectionRepoWithSubjects(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewSectionRepo(db, testutil.Logger(t))

	sec := testutil.SeedSection(t, ctx, db, types.ExamTypeINBDE, "Biomedical")
	testutil.SeedSection(t, ctx, db, types.ExamTypeADAT, "Quantitative")
	testutil.SeedSubject(t, ctx, db, sec.ID, "Physiology")
	testutil.SeedSubject(t, ctx, db, sec.ID, "Anatomy")

	list, err := repo.ListByExamType(dbc, types.ExamTypeINBDE)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByExamType: err=%v len=%d", err, len(list))
	}
	got, err := repo.GetByIDWithSubjects(dbc, sec.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByIDWithSubjects: err=%v got=%v", err, got)
	}
	if len(got.Subjects) != 2 || got.Subjects[0].Name != "Anatomy" {
		t.Fatalf("subjects not loaded in name order: %+v", got.Subjects)
	}
	missing, err := repo.GetByID(dbc, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("GetByID(missing): err=%v got=%v", err, missing)
	}
}
