package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/dentest-backend/internal/data/repos"
	"github.com/yungbote/dentest-backend/internal/data/repos/testutil"
	"github.com/yungbote/dentest-backend/internal/data/sessionstore"
	types "github.com/yungbote/dentest-backend/internal/domain"
	"github.com/yungbote/dentest-backend/internal/platform/ctxutil"
)

type testEnv struct {
	db      *gorm.DB
	store   sessionstore.Store
	auth    AuthService
	content ContentService
	status  StatusService
	custom  CustomQuizService
	prog    ProgressService
	quiz    QuizSessionService
	users   UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, nil)
}

// newTestEnvWithStore lets a test wrap the session store, for example to
// interleave another request with a store call.
func newTestEnvWithStore(t *testing.T, wrap func(sessionstore.Store) sessionstore.Store) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	userRepo := repos.NewUserRepo(db, log)
	profileRepo := repos.NewUserProfileRepo(db, log)
	tokenRepo := repos.NewUserTokenRepo(db, log)
	sectionRepo := repos.NewSectionRepo(db, log)
	subjectRepo := repos.NewSubjectRepo(db, log)
	questionRepo := repos.NewQuestionRepo(db, log)
	statusRepo := repos.NewUserQuestionStatusRepo(db, log)
	attemptRepo := repos.NewQuizAttemptRepo(db, log)
	customRepo := repos.NewCustomQuizRepo(db, log)

	store := sessionstore.NewMemoryStore(time.Hour)
	if wrap != nil {
		store = wrap(store)
	}
	env := &testEnv{db: db, store: store}
	env.auth = NewAuthService(db, log, userRepo, profileRepo, tokenRepo, "test-secret", 15*time.Minute, 24*time.Hour)
	env.content = NewContentService(db, log, sectionRepo, subjectRepo, questionRepo)
	env.status = NewStatusService(db, log, statusRepo, questionRepo, subjectRepo)
	env.custom = NewCustomQuizService(db, log, questionRepo, customRepo)
	env.prog = NewProgressService(log, statusRepo, attemptRepo, subjectRepo, sectionRepo)
	env.quiz = NewQuizSessionService(db, log, store, subjectRepo, questionRepo, statusRepo, attemptRepo,
		env.status, env.custom, env.prog)
	env.users = NewUserService(db, log, userRepo, profileRepo)
	return env
}

// as returns a context authenticated as u with a fresh login session id.
func as(u *types.User) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		UserID:    u.ID,
		SessionID: uuid.New(),
		Username:  u.Username,
	})
}

type fixture struct {
	user      *types.User
	section   *types.Section
	subject   *types.Subject
	questions []*types.Question
}

func (env *testEnv) seed(t *testing.T, nQuestions int) fixture {
	t.Helper()
	ctx := context.Background()
	f := fixture{}
	f.user = testutil.SeedUser(t, ctx, env.db, "user_"+uuid.NewString()[:8])
	f.section = testutil.SeedSection(t, ctx, env.db, types.ExamTypeINBDE, "Biomedical")
	f.subject = testutil.SeedSubject(t, ctx, env.db, f.section.ID, "Anatomy")
	for i := 0; i < nQuestions; i++ {
		f.questions = append(f.questions, testutil.SeedQuestion(t, ctx, env.db, f.subject.ID, "Question "+uuid.NewString()))
	}
	return f
}
