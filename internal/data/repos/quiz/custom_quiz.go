package quiz

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/dentest-backend/internal/domain"
	"github.com/yungbote/dentest-backend/internal/platform/dbctx"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

type CustomQuizRepo interface {
	// Create stores the quiz with its ordered question rows.
	Create(dbc dbctx.Context, quiz *types.CustomQuiz) (*types.CustomQuiz, error)
	GetForUser(dbc dbctx.Context, userID, quizID uuid.UUID) (*types.CustomQuiz, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.CustomQuiz, error)
}

type customQuizRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCustomQuizRepo(db *gorm.DB, baseLog *logger.Logger) CustomQuizRepo {
	repoLog := baseLog.With("repo", "CustomQuizRepo")
	return &customQuizRepo{db: db, log: repoLog}
}

func (r *customQuizRepo) Create(dbc dbctx.Context, quiz *types.CustomQuiz) (*types.CustomQuiz, error) {
	if err := dbc.DB(r.db).Create(quiz).Error; err != nil {
		return nil, err
	}
	return quiz, nil
}

func (r *customQuizRepo) GetForUser(dbc dbctx.Context, userID, quizID uuid.UUID) (*types.CustomQuiz, error) {
	var out types.CustomQuiz
	err := dbc.DB(r.db).
		Preload("Questions", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Where("id = ? AND user_id = ?", quizID, userID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *customQuizRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.CustomQuiz, error) {
	var results []*types.CustomQuiz
	if err := dbc.DB(r.db).
		Preload("Questions", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
