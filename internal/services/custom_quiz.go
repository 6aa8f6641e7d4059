package services

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/dentest-backend/internal/data/repos"
	types "github.com/yungbote/dentest-backend/internal/domain"
	"github.com/yungbote/dentest-backend/internal/normalization"
	"github.com/yungbote/dentest-backend/internal/observability"
	"github.com/yungbote/dentest-backend/internal/platform/ctxutil"
	"github.com/yungbote/dentest-backend/internal/platform/dbctx"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

const (
	DefaultQuizLimit = 20
	MaxQuizLimit     = 200
	maxTitleLength   = 150
)

// GenerateInput selects questions for a custom quiz. A nil Limit means
// DefaultQuizLimit.
type GenerateInput struct {
	SubjectIDs []uuid.UUID
	Filter     string
	Limit      *int
}

type SaveCustomQuizInput struct {
	Title       string
	QuestionIDs []uuid.UUID
	// Generate is used when QuestionIDs is empty.
	Generate *GenerateInput
}

type CustomQuizService interface {
	// Generate returns up to Limit questions in random order, never padded.
	Generate(ctx context.Context, in GenerateInput) ([]*types.Question, error)
	GenerateIDs(ctx context.Context, in GenerateInput) ([]uuid.UUID, error)
	Save(ctx context.Context, in SaveCustomQuizInput) (*types.CustomQuiz, error)
	List(ctx context.Context) ([]*types.CustomQuiz, error)
	Get(ctx context.Context, quizID uuid.UUID) (*types.CustomQuiz, error)
}

type customQuizService struct {
	db             *gorm.DB
	log            *logger.Logger
	questionRepo   repos.QuestionRepo
	customQuizRepo repos.CustomQuizRepo
	shuffle        func(n int, swap func(i, j int))
}

func NewCustomQuizService(
	db *gorm.DB,
	log *logger.Logger,
	questionRepo repos.QuestionRepo,
	customQuizRepo repos.CustomQuizRepo,
) CustomQuizService {
	return &customQuizService{
		db:             db,
		log:            log.With("service", "CustomQuizService"),
		questionRepo:   questionRepo,
		customQuizRepo: customQuizRepo,
		shuffle:        rand.Shuffle,
	}
}

func clampLimit(limit *int) int {
	if limit == nil {
		return DefaultQuizLimit
	}
	switch n := *limit; {
	case n < 1:
		return 1
	case n > MaxQuizLimit:
		return MaxQuizLimit
	default:
		return n
	}
}

func parseFilter(raw string) (string, error) {
	f := normalization.ParseInputString(raw)
	if f == "" {
		return repos.FilterAll, nil
	}
	switch f {
	case repos.FilterAll, repos.FilterUnanswered, repos.FilterCorrect, repos.FilterIncorrect:
		return f, nil
	}
	return "", invalidField("filter", "must be one of all, unanswered, correct, incorrect")
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (cs *customQuizService) GenerateIDs(ctx context.Context, in GenerateInput) (_ []uuid.UUID, err error) {
	ctx, span := observability.StartSpan(ctx, "quiz.generate", attribute.String("quiz.filter", in.Filter))
	defer func() { observability.EndSpan(span, err) }()

	subjectIDs := dedupe(in.SubjectIDs)
	if len(subjectIDs) == 0 {
		return nil, invalidField("subject_ids", "at least one subject is required")
	}
	filter, err := parseFilter(in.Filter)
	if err != nil {
		return nil, err
	}
	userID := ctxutil.UserID(ctx)
	if userID == uuid.Nil && filter != repos.FilterAll {
		return nil, forbidden("log in to filter questions by your answer history")
	}

	pool, err := cs.questionRepo.ListIDsForPool(dbctx.Context{Ctx: ctx}, userID, subjectIDs, filter)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		observability.Current().IncQuizGenerated(filter, "empty")
		return nil, emptyPool()
	}
	observability.Current().IncQuizGenerated(filter, "ok")
	cs.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if limit := clampLimit(in.Limit); len(pool) > limit {
		pool = pool[:limit]
	}
	return pool, nil
}

func (cs *customQuizService) Generate(ctx context.Context, in GenerateInput) ([]*types.Question, error) {
	ids, err := cs.GenerateIDs(ctx, in)
	if err != nil {
		return nil, err
	}
	return cs.loadOrdered(ctx, ids)
}

// loadOrdered returns the questions for ids in the order of ids, skipping
// ids that no longer exist.
func (cs *customQuizService) loadOrdered(ctx context.Context, ids []uuid.UUID) ([]*types.Question, error) {
	rows, err := cs.questionRepo.GetByIDs(dbctx.Context{Ctx: ctx}, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*types.Question, len(rows))
	for _, q := range rows {
		byID[q.ID] = q
	}
	out := make([]*types.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (cs *customQuizService) Save(ctx context.Context, in SaveCustomQuizInput) (*types.CustomQuiz, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalidField("title", "title is required")
	}
	if len([]rune(title)) > maxTitleLength {
		return nil, invalidField("title", "title is too long")
	}

	ids := dedupe(in.QuestionIDs)
	if len(ids) == 0 {
		if in.Generate == nil {
			return nil, invalidField("question_ids", "question_ids or subject_ids is required")
		}
		ids, err = cs.GenerateIDs(ctx, *in.Generate)
		if err != nil {
			return nil, err
		}
	} else {
		existing, err := cs.questionRepo.SubjectIDsFor(dbctx.Context{Ctx: ctx}, ids)
		if err != nil {
			return nil, err
		}
		if len(existing) != len(ids) {
			return nil, notFound("one or more questions do not exist")
		}
	}

	quiz := &types.CustomQuiz{UserID: userID, Title: title}
	for i, id := range ids {
		quiz.Questions = append(quiz.Questions, types.CustomQuizQuestion{QuestionID: id, Order: i})
	}
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, cErr := cs.customQuizRepo.Create(dbctx.Context{Ctx: ctx, Tx: tx}, quiz)
		return cErr
	})
	if err != nil {
		return nil, err
	}
	cs.log.Info("Custom quiz saved", "user_id", userID, "custom_quiz_id", quiz.ID, "questions", len(ids))
	return quiz, nil
}

func (cs *customQuizService) List(ctx context.Context) ([]*types.CustomQuiz, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return cs.customQuizRepo.ListByUser(dbctx.Context{Ctx: ctx}, userID)
}

func (cs *customQuizService) Get(ctx context.Context, quizID uuid.UUID) (*types.CustomQuiz, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	quiz, err := cs.customQuizRepo.GetForUser(dbctx.Context{Ctx: ctx}, userID, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, notFound("custom quiz not found")
	}
	return quiz, nil
}
