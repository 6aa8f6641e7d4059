package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/dentest-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Username: username,
		Password: "pw",
		Profile:  &types.UserProfile{},
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedSection(tb testing.TB, ctx context.Context, tx *gorm.DB, examType types.ExamType, name string) *types.Section {
	tb.Helper()
	s := &types.Section{ID: uuid.New(), Name: name, ExamType: examType}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed section: %v", err)
	}
	return s
}

func SeedSubject(tb testing.TB, ctx context.Context, tx *gorm.DB, sectionID uuid.UUID, name string) *types.Subject {
	tb.Helper()
	s := &types.Subject{ID: uuid.New(), SectionID: sectionID, Name: name}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed subject: %v", err)
	}
	return s
}

// SeedQuestion creates a question whose correct answer is option1.
func SeedQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, subjectID uuid.UUID, text string) *types.Question {
	tb.Helper()
	q := &types.Question{
		ID:            uuid.New(),
		SubjectID:     subjectID,
		Text:          text,
		Option1:       "a",
		Option2:       "b",
		Option3:       "c",
		Option4:       "d",
		CorrectOption: "option1",
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return q
}

func SeedStatus(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, questionID uuid.UUID, correct *bool) *types.UserQuestionStatus {
	tb.Helper()
	s := &types.UserQuestionStatus{
		ID:             uuid.New(),
		UserID:         userID,
		QuestionID:     questionID,
		LastWasCorrect: correct,
		LastSeenAt:     time.Now().UTC(),
	}
	if correct != nil {
		s.TimesSeen = 1
		if *correct {
			s.TimesCorrect = 1
		}
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed status: %v", err)
	}
	return s
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }

func PtrBool(v bool) *bool { return &v }
