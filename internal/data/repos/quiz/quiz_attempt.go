package quiz

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/dentest-backend/internal/domain"
	"github.com/yungbote/dentest-backend/internal/platform/dbctx"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

type QuizAttemptRepo interface {
	Create(dbc dbctx.Context, attempt *types.QuizAttempt) (*types.QuizAttempt, error)
	// GetForUser returns nil when the attempt is missing or owned by someone else.
	GetForUser(dbc dbctx.Context, userID, attemptID uuid.UUID) (*types.QuizAttempt, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.QuizAttempt, error)
	IncrementSubject(dbc dbctx.Context, attemptID, subjectID uuid.UUID, correct bool) error
	SetSubjectTotals(dbc dbctx.Context, attemptID uuid.UUID, totals map[uuid.UUID]int) error
	ListSubjects(dbc dbctx.Context, attemptID uuid.UUID) ([]*types.QuizAttemptSubject, error)
	// HoldOpen locks an open attempt row for the rest of the transaction. It
	// reports false once the attempt is completed.
	HoldOpen(dbc dbctx.Context, attemptID uuid.UUID) (bool, error)
	// Close stamps completed_at once; it reports false when the attempt was
	// already completed.
	Close(dbc dbctx.Context, attemptID uuid.UUID, at time.Time) (bool, error)
	SetScore(dbc dbctx.Context, attemptID uuid.UUID, correct, total int, score float64) error
}

type quizAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	repoLog := baseLog.With("repo", "QuizAttemptRepo")
	return &quizAttemptRepo{db: db, log: repoLog}
}

func (r *quizAttemptRepo) Create(dbc dbctx.Context, attempt *types.QuizAttempt) (*types.QuizAttempt, error) {
	if err := dbc.DB(r.db).Omit(clause.Associations).Create(attempt).Error; err != nil {
		return nil, err
	}
	return attempt, nil
}

func (r *quizAttemptRepo) GetForUser(dbc dbctx.Context, userID, attemptID uuid.UUID) (*types.QuizAttempt, error) {
	var out types.QuizAttempt
	err := dbc.DB(r.db).
		Preload("Subjects").
		Where("id = ? AND user_id = ?", attemptID, userID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *quizAttemptRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.QuizAttempt, error) {
	var results []*types.QuizAttempt
	q := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizAttemptRepo) IncrementSubject(dbc dbctx.Context, attemptID, subjectID uuid.UUID, correct bool) error {
	inc := 0
	if correct {
		inc = 1
	}
	row := &types.QuizAttemptSubject{
		AttemptID: attemptID,
		SubjectID: subjectID,
		Score:     inc,
		Total:     1,
	}
	return dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "attempt_id"}, {Name: "subject_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"score": gorm.Expr("quiz_attempt_subject.score + ?", inc),
			"total": gorm.Expr("quiz_attempt_subject.total + 1"),
		}),
	}).Create(row).Error
}

// SetSubjectTotals overwrites per-subject totals with the full question
// counts so unanswered questions weigh on the snapshot.
func (r *quizAttemptRepo) SetSubjectTotals(dbc dbctx.Context, attemptID uuid.UUID, totals map[uuid.UUID]int) error {
	if len(totals) == 0 {
		return nil
	}
	rows := make([]*types.QuizAttemptSubject, 0, len(totals))
	for subjectID, n := range totals {
		rows = append(rows, &types.QuizAttemptSubject{
			AttemptID: attemptID,
			SubjectID: subjectID,
			Total:     n,
		})
	}
	return dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "subject_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"total"}),
	}).Create(&rows).Error
}

func (r *quizAttemptRepo) ListSubjects(dbc dbctx.Context, attemptID uuid.UUID) ([]*types.QuizAttemptSubject, error) {
	var results []*types.QuizAttemptSubject
	if err := dbc.DB(r.db).
		Where("attempt_id = ?", attemptID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizAttemptRepo) HoldOpen(dbc dbctx.Context, attemptID uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).
		Model(&types.QuizAttempt{}).
		Where("id = ? AND completed_at IS NULL", attemptID).
		UpdateColumn("correct", gorm.Expr("correct"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *quizAttemptRepo) Close(dbc dbctx.Context, attemptID uuid.UUID, at time.Time) (bool, error) {
	res := dbc.DB(r.db).
		Model(&types.QuizAttempt{}).
		Where("id = ? AND completed_at IS NULL", attemptID).
		UpdateColumn("completed_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *quizAttemptRepo) SetScore(dbc dbctx.Context, attemptID uuid.UUID, correct, total int, score float64) error {
	return dbc.DB(r.db).
		Model(&types.QuizAttempt{}).
		Where("id = ?", attemptID).
		UpdateColumns(map[string]any{
			"correct": correct,
			"total":   total,
			"score":   score,
		}).Error
}
