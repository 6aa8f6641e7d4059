package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/dentest-backend/internal/data/dberr"
	"github.com/yungbote/dentest-backend/internal/data/repos"
	"github.com/yungbote/dentest-backend/internal/data/sessionstore"
	types "github.com/yungbote/dentest-backend/internal/domain"
	"github.com/yungbote/dentest-backend/internal/domain/quizsession"
	"github.com/yungbote/dentest-backend/internal/observability"
	"github.com/yungbote/dentest-backend/internal/platform/ctxutil"
	"github.com/yungbote/dentest-backend/internal/platform/dbctx"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

const defaultAttemptListLimit = 50

type SidebarEntry struct {
	QuestionID uuid.UUID `json:"question_id"`
	Status     string    `json:"status"`
}

// QuestionView is one step of a running quiz. The correct option and the
// explanation are withheld until the question is answered.
type QuestionView struct {
	SessionID uuid.UUID           `json:"session_id"`
	Kind      string              `json:"kind"`
	Status    quizsession.Status  `json:"status"`
	Index     int                 `json:"index"`
	Total     int                 `json:"total"`
	IsLast    bool                `json:"is_last"`
	Question  *types.Question     `json:"question"`
	Answer    *quizsession.Answer `json:"answer,omitempty"`
	Sidebar   []SidebarEntry      `json:"sidebar"`
}

type CheckResult struct {
	QuestionID      uuid.UUID `json:"question_id"`
	Selected        string    `json:"selected"`
	CorrectOption   string    `json:"correct_option"`
	IsCorrect       bool      `json:"is_correct"`
	AlreadyAnswered bool      `json:"already_answered"`
	Explanation     *string   `json:"explanation,omitempty"`
	IsLast          bool      `json:"is_last"`
}

// QuizResult is the outcome of a completed attempt. Subjects is the attempt
// snapshot and Cumulative the user's overall progress on the same subjects.
type QuizResult struct {
	Attempt       *types.QuizAttempt `json:"attempt"`
	QuestionOrder []uuid.UUID        `json:"question_order"`
	Correct       int                `json:"correct"`
	Total         int                `json:"total"`
	Percentage    float64            `json:"percentage"`
	Subjects      []SubjectProgress  `json:"subjects"`
	Cumulative    []SubjectProgress  `json:"cumulative"`
}

// StepResult is returned by Next: either the following question or the
// final result.
type StepResult struct {
	Completed bool          `json:"completed"`
	View      *QuestionView `json:"view,omitempty"`
	Result    *QuizResult   `json:"result,omitempty"`
}

type QuizSessionService interface {
	StartSubject(ctx context.Context, subjectID uuid.UUID) (*QuestionView, error)
	StartCustom(ctx context.Context, in GenerateInput) (*QuestionView, error)
	StartSaved(ctx context.Context, customQuizID uuid.UUID) (*QuestionView, error)
	// View opens questionID, or the current question for uuid.Nil.
	View(ctx context.Context, sessionID, questionID uuid.UUID) (*QuestionView, error)
	// Active resumes the attempt bound to the caller's login session.
	Active(ctx context.Context) (*QuestionView, error)
	Check(ctx context.Context, sessionID, questionID uuid.UUID, selected string) (*CheckResult, error)
	Next(ctx context.Context, sessionID uuid.UUID) (*StepResult, error)
	Finish(ctx context.Context, sessionID uuid.UUID) (*QuizResult, error)
	ListAttempts(ctx context.Context, limit int) ([]*types.QuizAttempt, error)
	GetAttempt(ctx context.Context, attemptID uuid.UUID) (*QuizResult, error)
}

type quizSessionService struct {
	db           *gorm.DB
	log          *logger.Logger
	store        sessionstore.Store
	subjectRepo  repos.SubjectRepo
	questionRepo repos.QuestionRepo
	statusRepo   repos.UserQuestionStatusRepo
	attemptRepo  repos.QuizAttemptRepo
	status       StatusService
	customQuiz   CustomQuizService
	progress     ProgressService
	now          func() time.Time
}

func NewQuizSessionService(
	db *gorm.DB,
	log *logger.Logger,
	store sessionstore.Store,
	subjectRepo repos.SubjectRepo,
	questionRepo repos.QuestionRepo,
	statusRepo repos.UserQuestionStatusRepo,
	attemptRepo repos.QuizAttemptRepo,
	status StatusService,
	customQuiz CustomQuizService,
	progress ProgressService,
) QuizSessionService {
	return &quizSessionService{
		db:           db,
		log:          log.With("service", "QuizSessionService"),
		store:        store,
		subjectRepo:  subjectRepo,
		questionRepo: questionRepo,
		statusRepo:   statusRepo,
		attemptRepo:  attemptRepo,
		status:       status,
		customQuiz:   customQuiz,
		progress:     progress,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func loginSession(ctx context.Context) uuid.UUID {
	if rd := ctxutil.GetRequestData(ctx); rd != nil {
		return rd.SessionID
	}
	return uuid.Nil
}

func (qs *quizSessionService) StartSubject(ctx context.Context, subjectID uuid.UUID) (*QuestionView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	subject, err := qs.subjectRepo.GetByID(dbc, subjectID)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, notFound("subject not found")
	}
	ids, err := qs.questionRepo.ListIDsBySubject(dbc, subjectID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, emptyPool()
	}
	attempt := &types.QuizAttempt{
		UserID:    userID,
		SubjectID: &subject.ID,
		Kind:      types.AttemptKindSubject,
	}
	return qs.start(ctx, attempt, ids)
}

func (qs *quizSessionService) StartCustom(ctx context.Context, in GenerateInput) (*QuestionView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := qs.customQuiz.GenerateIDs(ctx, in)
	if err != nil {
		return nil, err
	}
	attempt := &types.QuizAttempt{UserID: userID, Kind: types.AttemptKindCustom}
	return qs.start(ctx, attempt, ids)
}

func (qs *quizSessionService) StartSaved(ctx context.Context, customQuizID uuid.UUID) (*QuestionView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	quiz, err := qs.customQuiz.Get(ctx, customQuizID)
	if err != nil {
		return nil, err
	}
	ids := quiz.QuestionIDs()
	if len(ids) == 0 {
		return nil, emptyPool()
	}
	attempt := &types.QuizAttempt{
		UserID:       userID,
		CustomQuizID: &quiz.ID,
		Kind:         types.AttemptKindCustom,
	}
	return qs.start(ctx, attempt, ids)
}

func (qs *quizSessionService) start(ctx context.Context, attempt *types.QuizAttempt, ids []uuid.UUID) (_ *QuestionView, err error) {
	ctx, span := observability.StartSpan(ctx, "quiz.start",
		attribute.String("quiz.kind", string(attempt.Kind)),
		attribute.Int("quiz.questions", len(ids)),
	)
	defer func() { observability.EndSpan(span, err) }()

	attempt.StartedAt = qs.now()
	if err := attempt.SetQuestionIDs(ids); err != nil {
		return nil, err
	}
	if _, err := qs.attemptRepo.Create(dbctx.Context{Ctx: ctx}, attempt); err != nil {
		qs.log.Error("Create quiz attempt failed", "user_id", attempt.UserID, "error", err)
		return nil, err
	}

	sess, err := quizsession.New(attempt.ID, attempt.UserID, loginSession(ctx), string(attempt.Kind), ids, attempt.StartedAt)
	if err != nil {
		return nil, emptyPool()
	}
	sess.SubjectID = attempt.SubjectID
	sess.CustomQuizID = attempt.CustomQuizID
	if err := sess.Open(uuid.Nil); err != nil {
		return nil, err
	}
	if err := qs.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	if sess.LoginSessionID != uuid.Nil {
		if err := qs.store.SetActive(ctx, sess.LoginSessionID, sess.ID); err != nil {
			qs.log.Warn("Set active quiz failed", "session_id", sess.ID, "error", err)
		}
	}
	observability.Current().IncQuizStarted(string(attempt.Kind))
	qs.log.Info("Quiz started", "user_id", attempt.UserID, "attempt_id", attempt.ID, "kind", attempt.Kind, "questions", len(ids))
	return qs.view(ctx, sess)
}

// load fetches an owned session and maps store misses and completed sessions
// to not-found.
func (qs *quizSessionService) load(ctx context.Context, sessionID uuid.UUID) (*quizsession.Session, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := qs.store.Get(ctx, userID, sessionID)
	if errors.Is(err, sessionstore.ErrNotFound) {
		return nil, notFound("quiz session not found")
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// update rewrites a loaded session without bringing back one that was
// finished or expired in the meantime.
func (qs *quizSessionService) update(ctx context.Context, sess *quizsession.Session) error {
	err := qs.store.Update(ctx, sess)
	if errors.Is(err, sessionstore.ErrNotFound) {
		return notFound("quiz session not found")
	}
	return err
}

func (qs *quizSessionService) View(ctx context.Context, sessionID, questionID uuid.UUID) (*QuestionView, error) {
	sess, err := qs.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Open(questionID); err != nil {
		return nil, sessionError(err)
	}
	if err := qs.update(ctx, sess); err != nil {
		return nil, err
	}
	return qs.view(ctx, sess)
}

func (qs *quizSessionService) Active(ctx context.Context) (*QuestionView, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	login := loginSession(ctx)
	if login == uuid.Nil {
		return nil, notFound("no active quiz")
	}
	sessionID, err := qs.store.GetActive(ctx, login)
	if err != nil {
		return nil, err
	}
	if sessionID == uuid.Nil {
		return nil, notFound("no active quiz")
	}
	return qs.View(ctx, sessionID, uuid.Nil)
}

func (qs *quizSessionService) view(ctx context.Context, sess *quizsession.Session) (*QuestionView, error) {
	current := sess.Current()
	var (
		question *types.Question
		labels   map[uuid.UUID]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := qs.questionRepo.GetByIDs(dbctx.Context{Ctx: gctx}, []uuid.UUID{current})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return notFound("question not found")
		}
		question = rows[0]
		return nil
	})
	g.Go(func() error {
		var err error
		labels, err = qs.status.Labels(gctx, sess.UserID, sess.QuestionIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	v := &QuestionView{
		SessionID: sess.ID,
		Kind:      sess.Kind,
		Status:    sess.Status,
		Index:     sess.Index,
		Total:     len(sess.QuestionIDs),
		IsLast:    sess.IsLast(),
		Sidebar:   make([]SidebarEntry, 0, len(sess.QuestionIDs)),
	}
	if a, ok := sess.IsAnswered(current); ok {
		v.Answer = &a
		v.Question = question
	} else {
		v.Question = withheld(question)
	}
	for _, id := range sess.QuestionIDs {
		v.Sidebar = append(v.Sidebar, SidebarEntry{QuestionID: id, Status: labels[id]})
	}
	return v, nil
}

func withheld(q *types.Question) *types.Question {
	cp := *q
	cp.CorrectOption = ""
	cp.Explanation = nil
	cp.ExplanationImageURL = nil
	return &cp
}

func (qs *quizSessionService) Check(ctx context.Context, sessionID, questionID uuid.UUID, selected string) (_ *CheckResult, err error) {
	ctx, span := observability.StartSpan(ctx, "quiz.check", attribute.String("quiz.session_id", sessionID.String()))
	defer func() { observability.EndSpan(span, err) }()

	sess, err := qs.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	opt, err := parseOption(selected)
	if err != nil {
		return nil, err
	}
	if questionID == uuid.Nil {
		questionID = sess.Current()
	}
	if _, ok := sess.PositionOf(questionID); !ok {
		return nil, notFound("question is not part of this quiz")
	}
	if sess.Status == quizsession.StatusCompleted {
		return nil, sessionError(quizsession.ErrCompleted)
	}
	rows, err := qs.questionRepo.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{questionID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFound("question not found")
	}
	question := rows[0]

	answer := quizsession.Answer{
		QuestionID: questionID,
		SubjectID:  question.SubjectID,
		Selected:   string(opt),
		IsCorrect:  question.IsCorrect(opt),
		AnsweredAt: qs.now(),
	}
	stored, claimed, err := qs.store.ClaimAnswer(ctx, sess.ID, answer)
	if errors.Is(err, sessionstore.ErrNotFound) {
		return nil, notFound("quiz session not found")
	}
	if err != nil {
		observability.Current().IncSessionStoreError("claim_answer")
		return nil, err
	}
	if claimed {
		err = withRetry(ctx, func() error {
			return qs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				dbc := dbctx.Context{Ctx: ctx, Tx: tx}
				open, err := qs.attemptRepo.HoldOpen(dbc, sess.ID)
				if err != nil {
					return err
				}
				if !open {
					return quizsession.ErrCompleted
				}
				if _, err := qs.statusRepo.RecordAttempt(dbc, sess.UserID, questionID, answer.Selected, answer.IsCorrect, answer.AnsweredAt); err != nil {
					return err
				}
				return qs.attemptRepo.IncrementSubject(dbc, sess.ID, question.SubjectID, answer.IsCorrect)
			})
		})
		if err != nil {
			if rErr := qs.store.ReleaseAnswer(ctx, sess.ID, questionID); rErr != nil {
				qs.log.Error("Release answer failed", "session_id", sess.ID, "question_id", questionID, "error", rErr)
			}
			if errors.Is(err, quizsession.ErrCompleted) {
				return nil, sessionError(err)
			}
			qs.log.Error("Record answer failed", "session_id", sess.ID, "question_id", questionID, "error", err)
			return nil, err
		}
		observability.Current().IncAnswerChecked(answer.IsCorrect)
	}

	if _, _, err := sess.RecordAnswer(stored); err != nil {
		return nil, sessionError(err)
	}
	// A finish that raced this check already counted the answer from the
	// attempt rows, so a vanished session is not an error here.
	if err := qs.store.Update(ctx, sess); err != nil && !errors.Is(err, sessionstore.ErrNotFound) {
		return nil, err
	}
	return &CheckResult{
		QuestionID:      questionID,
		Selected:        stored.Selected,
		CorrectOption:   string(question.CorrectOption),
		IsCorrect:       stored.IsCorrect,
		AlreadyAnswered: !claimed,
		Explanation:     question.Explanation,
		IsLast:          sess.IsLast(),
	}, nil
}

func (qs *quizSessionService) Next(ctx context.Context, sessionID uuid.UUID) (*StepResult, error) {
	sess, err := qs.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	completed, err := sess.Next(qs.now())
	if err != nil {
		return nil, sessionError(err)
	}
	if completed {
		res, err := qs.finalize(ctx, sess)
		if err != nil {
			return nil, err
		}
		return &StepResult{Completed: true, Result: res}, nil
	}
	if err := qs.update(ctx, sess); err != nil {
		return nil, err
	}
	v, err := qs.view(ctx, sess)
	if err != nil {
		return nil, err
	}
	return &StepResult{View: v}, nil
}

func (qs *quizSessionService) Finish(ctx context.Context, sessionID uuid.UUID) (*QuizResult, error) {
	sess, err := qs.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Finish(qs.now()); err != nil {
		return nil, sessionError(err)
	}
	return qs.finalize(ctx, sess)
}

// finalize closes the attempt, tops up per-subject totals with unanswered
// questions, scores it from the per-subject rows and drops the ephemeral
// session. Closing first makes concurrent checks see a completed attempt.
func (qs *quizSessionService) finalize(ctx context.Context, sess *quizsession.Session) (_ *QuizResult, err error) {
	ctx, span := observability.StartSpan(ctx, "quiz.finalize", attribute.String("quiz.session_id", sess.ID.String()))
	defer func() { observability.EndSpan(span, err) }()

	completedAt := qs.now()
	if sess.CompletedAt != nil {
		completedAt = *sess.CompletedAt
	}
	var (
		correct int
		total   = len(sess.QuestionIDs)
		score   float64
		closed  bool
	)
	err = withRetry(ctx, func() error {
		return qs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			dbc := dbctx.Context{Ctx: ctx, Tx: tx}
			var err error
			closed, err = qs.attemptRepo.Close(dbc, sess.ID, completedAt)
			if err != nil {
				return err
			}
			if !closed {
				qs.log.Warn("Quiz attempt already completed", "attempt_id", sess.ID)
				return nil
			}
			subjectOf, err := qs.questionRepo.SubjectIDsFor(dbc, sess.QuestionIDs)
			if err != nil {
				return err
			}
			totals := map[uuid.UUID]int{}
			for _, qid := range sess.QuestionIDs {
				if sid, ok := subjectOf[qid]; ok {
					totals[sid]++
				}
			}
			if err := qs.attemptRepo.SetSubjectTotals(dbc, sess.ID, totals); err != nil {
				return err
			}
			rows, err := qs.attemptRepo.ListSubjects(dbc, sess.ID)
			if err != nil {
				return err
			}
			correct = 0
			for _, row := range rows {
				correct += row.Score
			}
			score = 0
			if total > 0 {
				score = roundPercent(float64(correct) / float64(total) * 100)
			}
			return qs.attemptRepo.SetScore(dbc, sess.ID, correct, total, score)
		})
	})
	if err != nil {
		qs.log.Error("Finalize quiz failed", "attempt_id", sess.ID, "error", err)
		return nil, err
	}

	if err := qs.store.Delete(ctx, sess.ID); err != nil {
		observability.Current().IncSessionStoreError("delete")
		qs.log.Warn("Delete quiz session failed", "session_id", sess.ID, "error", err)
	}
	if sess.LoginSessionID != uuid.Nil {
		if err := qs.store.ClearActive(ctx, sess.LoginSessionID, sess.ID); err != nil {
			qs.log.Warn("Clear active quiz failed", "session_id", sess.ID, "error", err)
		}
	}
	if closed {
		observability.Current().ObserveQuizCompleted(sess.Kind, score)
		qs.log.Info("Quiz completed", "user_id", sess.UserID, "attempt_id", sess.ID, "correct", correct, "total", total)
	}
	return qs.result(ctx, sess.UserID, sess.ID)
}

func (qs *quizSessionService) result(ctx context.Context, userID, attemptID uuid.UUID) (*QuizResult, error) {
	attempt, err := qs.attemptRepo.GetForUser(dbctx.Context{Ctx: ctx}, userID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, notFound("quiz attempt not found")
	}
	subjects, err := qs.progress.AttemptProgress(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	subjectIDs := make([]uuid.UUID, 0, len(subjects))
	for _, s := range subjects {
		subjectIDs = append(subjectIDs, s.SubjectID)
	}
	cumulative, err := qs.progress.ForUser(ctx, userID, subjectIDs)
	if err != nil {
		return nil, err
	}
	order, err := attempt.DecodeQuestionIDs()
	if err != nil {
		return nil, err
	}
	return &QuizResult{
		Attempt:       attempt,
		QuestionOrder: order,
		Correct:       attempt.Correct,
		Total:         attempt.Total,
		Percentage:    attempt.Score,
		Subjects:      subjects,
		Cumulative:    cumulative,
	}, nil
}

func (qs *quizSessionService) ListAttempts(ctx context.Context, limit int) ([]*types.QuizAttempt, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxQuizLimit {
		limit = defaultAttemptListLimit
	}
	return qs.attemptRepo.ListByUser(dbctx.Context{Ctx: ctx}, userID, limit)
}

func (qs *quizSessionService) GetAttempt(ctx context.Context, attemptID uuid.UUID) (*QuizResult, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return qs.result(ctx, userID, attemptID)
}

const maxTxAttempts = 3

// withRetry reruns fn while it fails with a transient database error such as
// a deadlock or a locked SQLite file.
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	for i := 0; i < maxTxAttempts; i++ {
		err = fn()
		if err == nil || !dberr.IsRetryable(err) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

func sessionError(err error) error {
	switch {
	case errors.Is(err, quizsession.ErrQuestionNotInSession):
		return notFound("question is not part of this quiz")
	case errors.Is(err, quizsession.ErrCompleted):
		return conflict("quiz_completed", "session_id", "this quiz is already completed")
	default:
		return err
	}
}
