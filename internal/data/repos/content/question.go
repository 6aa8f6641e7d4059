package content

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/dentest-backend/internal/domain"
	"github.com/yungbote/dentest-backend/internal/normalization"
	"github.com/yungbote/dentest-backend/internal/platform/dbctx"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

// Pool filters accepted by ListIDsForPool.
const (
	FilterAll        = "all"
	FilterUnanswered = "unanswered"
	FilterCorrect    = "correct"
	FilterIncorrect  = "incorrect"
)

type QuestionRepo interface {
	Create(dbc dbctx.Context, questions []*types.Question) ([]*types.Question, error)
	// Upsert inserts or updates by (subject_id, normalized_text_key).
	Upsert(dbc dbctx.Context, question *types.Question) (*types.Question, error)
	GetByIDs(dbc dbctx.Context, questionIDs []uuid.UUID) ([]*types.Question, error)
	ListBySubject(dbc dbctx.Context, subjectID uuid.UUID) ([]*types.Question, error)
	ListIDsBySubject(dbc dbctx.Context, subjectID uuid.UUID) ([]uuid.UUID, error)
	ListIDsForPool(dbc dbctx.Context, userID uuid.UUID, subjectIDs []uuid.UUID, filter string) ([]uuid.UUID, error)
	SubjectIDsFor(dbc dbctx.Context, questionIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	repoLog := baseLog.With("repo", "QuestionRepo")
	return &questionRepo{db: db, log: repoLog}
}

func (r *questionRepo) Create(dbc dbctx.Context, questions []*types.Question) ([]*types.Question, error) {
	if len(questions) == 0 {
		return []*types.Question{}, nil
	}
	if err := dbc.DB(r.db).Create(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepo) Upsert(dbc dbctx.Context, question *types.Question) (*types.Question, error) {
	if question == nil {
		return nil, nil
	}
	key := normalization.QuestionKey(question.Text)
	var existing []*types.Question
	if err := dbc.DB(r.db).
		Where("subject_id = ? AND normalized_text_key = ?", question.SubjectID, key).
		Limit(1).
		Find(&existing).Error; err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		if err := dbc.DB(r.db).Create(question).Error; err != nil {
			return nil, err
		}
		return question, nil
	}
	question.ID = existing[0].ID
	question.CreatedAt = existing[0].CreatedAt
	if err := dbc.DB(r.db).Omit(clause.Associations).Save(question).Error; err != nil {
		return nil, err
	}
	return question, nil
}

func (r *questionRepo) GetByIDs(dbc dbctx.Context, questionIDs []uuid.UUID) ([]*types.Question, error) {
	var results []*types.Question
	if len(questionIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).
		Preload("Images").
		Preload("ChartData").
		Where("id IN ?", questionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListBySubject preloads images, chart data and the subject with its section.
func (r *questionRepo) ListBySubject(dbc dbctx.Context, subjectID uuid.UUID) ([]*types.Question, error) {
	var results []*types.Question
	if err := dbc.DB(r.db).
		Preload("Images").
		Preload("ChartData").
		Preload("Subject.Section").
		Where("subject_id = ?", subjectID).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *questionRepo) ListIDsBySubject(dbc dbctx.Context, subjectID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := dbc.DB(r.db).
		Model(&types.Question{}).
		Where("subject_id = ?", subjectID).
		Order("created_at ASC, id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListIDsForPool returns the ids of questions in subjectIDs matching filter
// against userID's status rows. Unknown filters behave like FilterAll; the
// caller validates them.
func (r *questionRepo) ListIDsForPool(dbc dbctx.Context, userID uuid.UUID, subjectIDs []uuid.UUID, filter string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(subjectIDs) == 0 {
		return ids, nil
	}
	q := dbc.DB(r.db).
		Model(&types.Question{}).
		Where("question.subject_id IN ?", subjectIDs)

	switch filter {
	case FilterUnanswered:
		q = q.Where(
			"NOT EXISTS (SELECT 1 FROM user_question_status s WHERE s.question_id = question.id AND s.user_id = ?)",
			userID,
		)
	case FilterCorrect, FilterIncorrect:
		q = q.Joins(
			"JOIN user_question_status s ON s.question_id = question.id AND s.user_id = ?",
			userID,
		).Where("s.last_was_correct = ?", filter == FilterCorrect)
	}

	if err := q.Order("question.id ASC").Pluck("question.id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// SubjectIDsFor maps each existing question id to its subject id.
func (r *questionRepo) SubjectIDsFor(dbc dbctx.Context, questionIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	out := make(map[uuid.UUID]uuid.UUID, len(questionIDs))
	if len(questionIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ID        uuid.UUID
		SubjectID uuid.UUID
	}
	if err := dbc.DB(r.db).
		Model(&types.Question{}).
		Select("id, subject_id").
		Where("id IN ?", questionIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.SubjectID
	}
	return out, nil
}
