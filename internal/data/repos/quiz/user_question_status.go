package quiz

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/dentest-backend/internal/domain"
	"github.com/yungbote/dentest-backend/internal/platform/dbctx"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

// SubjectCount is the answered/correct tally of one subject.
type SubjectCount struct {
	SubjectID uuid.UUID
	Correct   int
	Total     int
}

type UserQuestionStatusRepo interface {
	// RecordAttempt atomically creates or bumps the (user, question) row.
	RecordAttempt(dbc dbctx.Context, userID, questionID uuid.UUID, selected string, correct bool, at time.Time) (*types.UserQuestionStatus, error)
	Get(dbc dbctx.Context, userID, questionID uuid.UUID) (*types.UserQuestionStatus, error)
	GetByQuestionIDs(dbc dbctx.Context, userID uuid.UUID, questionIDs []uuid.UUID) ([]*types.UserQuestionStatus, error)
	ListBySubject(dbc dbctx.Context, userID, subjectID uuid.UUID) ([]*types.UserQuestionStatus, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserQuestionStatus, error)
	// CountBySubject tallies answered rows; a nil subjectIDs means every subject.
	CountBySubject(dbc dbctx.Context, userID uuid.UUID, subjectIDs []uuid.UUID) ([]SubjectCount, error)
}

type userQuestionStatusRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserQuestionStatusRepo(db *gorm.DB, baseLog *logger.Logger) UserQuestionStatusRepo {
	repoLog := baseLog.With("repo", "UserQuestionStatusRepo")
	return &userQuestionStatusRepo{db: db, log: repoLog}
}

func (r *userQuestionStatusRepo) RecordAttempt(dbc dbctx.Context, userID, questionID uuid.UUID, selected string, correct bool, at time.Time) (*types.UserQuestionStatus, error) {
	inc := 0
	if correct {
		inc = 1
	}
	wasCorrect := correct
	row := &types.UserQuestionStatus{
		UserID:         userID,
		QuestionID:     questionID,
		TimesSeen:      1,
		TimesCorrect:   inc,
		LastAnswer:     selected,
		LastWasCorrect: &wasCorrect,
		LastSeenAt:     at,
	}
	err := dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"times_seen":       gorm.Expr("user_question_status.times_seen + 1"),
			"times_correct":    gorm.Expr("user_question_status.times_correct + ?", inc),
			"last_answer":      selected,
			"last_was_correct": correct,
			"last_seen_at":     at,
		}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}
	return r.Get(dbc, userID, questionID)
}

func (r *userQuestionStatusRepo) Get(dbc dbctx.Context, userID, questionID uuid.UUID) (*types.UserQuestionStatus, error) {
	var results []*types.UserQuestionStatus
	if err := dbc.DB(r.db).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *userQuestionStatusRepo) GetByQuestionIDs(dbc dbctx.Context, userID uuid.UUID, questionIDs []uuid.UUID) ([]*types.UserQuestionStatus, error) {
	var results []*types.UserQuestionStatus
	if len(questionIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ? AND question_id IN ?", userID, questionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userQuestionStatusRepo) ListBySubject(dbc dbctx.Context, userID, subjectID uuid.UUID) ([]*types.UserQuestionStatus, error) {
	var results []*types.UserQuestionStatus
	if err := dbc.DB(r.db).
		Preload("Question").
		Joins("JOIN question q ON q.id = user_question_status.question_id").
		Where("user_question_status.user_id = ? AND q.subject_id = ?", userID, subjectID).
		Order("user_question_status.last_seen_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userQuestionStatusRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserQuestionStatus, error) {
	var results []*types.UserQuestionStatus
	if err := dbc.DB(r.db).
		Preload("Question").
		Where("user_id = ?", userID).
		Order("last_seen_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userQuestionStatusRepo) CountBySubject(dbc dbctx.Context, userID uuid.UUID, subjectIDs []uuid.UUID) ([]SubjectCount, error) {
	out := []SubjectCount{}
	if subjectIDs != nil && len(subjectIDs) == 0 {
		return out, nil
	}
	q := dbc.DB(r.db).
		Table("user_question_status AS s").
		Select("q.subject_id AS subject_id, "+
			"SUM(CASE WHEN s.last_was_correct = ? THEN 1 ELSE 0 END) AS correct, "+
			"COUNT(*) AS total", true).
		Joins("JOIN question q ON q.id = s.question_id").
		Where("s.user_id = ? AND s.last_was_correct IS NOT NULL", userID)
	if subjectIDs != nil {
		q = q.Where("q.subject_id IN ?", subjectIDs)
	}
	if err := q.Group("q.subject_id").Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
