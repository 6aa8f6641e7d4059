package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/dentest-backend/internal/data/repos"
	types "github.com/yungbote/dentest-backend/internal/domain"
	"github.com/yungbote/dentest-backend/internal/domain/content"
	"github.com/yungbote/dentest-backend/internal/normalization"
	"github.com/yungbote/dentest-backend/internal/platform/ctxutil"
	"github.com/yungbote/dentest-backend/internal/platform/dbctx"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

type StatusService interface {
	// RecordAnswer grades selected against the question and upserts the
	// caller's status row in one transaction.
	RecordAnswer(ctx context.Context, questionID uuid.UUID, selected string) (*types.UserQuestionStatus, bool, error)
	ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]*types.UserQuestionStatus, error)
	ListAll(ctx context.Context) ([]*types.UserQuestionStatus, error)
	// Labels maps every id in questionIDs to correct, incorrect or unanswered.
	Labels(ctx context.Context, userID uuid.UUID, questionIDs []uuid.UUID) (map[uuid.UUID]string, error)
}

type statusService struct {
	db           *gorm.DB
	log          *logger.Logger
	statusRepo   repos.UserQuestionStatusRepo
	questionRepo repos.QuestionRepo
	subjectRepo  repos.SubjectRepo
	now          func() time.Time
}

func NewStatusService(
	db *gorm.DB,
	log *logger.Logger,
	statusRepo repos.UserQuestionStatusRepo,
	questionRepo repos.QuestionRepo,
	subjectRepo repos.SubjectRepo,
) StatusService {
	return &statusService{
		db:           db,
		log:          log.With("service", "StatusService"),
		statusRepo:   statusRepo,
		questionRepo: questionRepo,
		subjectRepo:  subjectRepo,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func parseOption(raw string) (content.Option, error) {
	opt := content.Option(normalization.ParseInputString(raw))
	if !opt.Valid() {
		return "", invalidField("selected", "must be one of option1, option2, option3, option4")
	}
	return opt, nil
}

func requireUser(ctx context.Context) (uuid.UUID, error) {
	userID := ctxutil.UserID(ctx)
	if userID == uuid.Nil {
		return uuid.Nil, unauthorized("authentication required")
	}
	return userID, nil
}

func (ss *statusService) RecordAnswer(ctx context.Context, questionID uuid.UUID, selected string) (*types.UserQuestionStatus, bool, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, false, err
	}
	opt, err := parseOption(selected)
	if err != nil {
		return nil, false, err
	}
	questions, err := ss.questionRepo.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{questionID})
	if err != nil {
		return nil, false, err
	}
	if len(questions) == 0 {
		return nil, false, notFound("question not found")
	}
	correct := questions[0].IsCorrect(opt)

	var row *types.UserQuestionStatus
	err = ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rErr error
		row, rErr = ss.statusRepo.RecordAttempt(dbctx.Context{Ctx: ctx, Tx: tx}, userID, questionID, string(opt), correct, ss.now())
		return rErr
	})
	if err != nil {
		ss.log.Error("Record attempt failed", "question_id", questionID, "error", err)
		return nil, false, err
	}
	return row, correct, nil
}

func (ss *statusService) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]*types.UserQuestionStatus, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	sub, err := ss.subjectRepo.GetByID(dbc, subjectID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, notFound("subject not found")
	}
	return ss.statusRepo.ListBySubject(dbc, userID, subjectID)
}

func (ss *statusService) ListAll(ctx context.Context) ([]*types.UserQuestionStatus, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return ss.statusRepo.ListByUser(dbctx.Context{Ctx: ctx}, userID)
}

func (ss *statusService) Labels(ctx context.Context, userID uuid.UUID, questionIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(questionIDs))
	for _, id := range questionIDs {
		out[id] = types.StatusUnanswered
	}
	if userID == uuid.Nil || len(questionIDs) == 0 {
		return out, nil
	}
	rows, err := ss.statusRepo.GetByQuestionIDs(dbctx.Context{Ctx: ctx}, userID, questionIDs)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.QuestionID] = row.Label()
	}
	return out, nil
}
