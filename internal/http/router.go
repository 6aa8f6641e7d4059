package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/dentest-backend/internal/http/handlers"
	httpMW "github.com/yungbote/dentest-backend/internal/http/middleware"
	"github.com/yungbote/dentest-backend/internal/http/response"
	"github.com/yungbote/dentest-backend/internal/observability"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	Metrics     *observability.Metrics

	CORSOrigins    []string
	RequestTimeout time.Duration

	AuthMiddleware *httpMW.AuthMiddleware
	// SubscriptionGuard is mounted on the quiz-session routes when non-nil.
	SubscriptionGuard gin.HandlerFunc

	HealthHandler      *httpH.HealthHandler
	AuthHandler        *httpH.AuthHandler
	UserHandler        *httpH.UserHandler
	ContentHandler     *httpH.ContentHandler
	StatusHandler      *httpH.StatusHandler
	ProgressHandler    *httpH.ProgressHandler
	CustomQuizHandler  *httpH.CustomQuizHandler
	QuizSessionHandler *httpH.QuizSessionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	response.UseJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	if cfg.RequestTimeout > 0 {
		r.Use(httpMW.RequestTimeout(cfg.RequestTimeout))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	api.Use(httpMW.CSRF())
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.GET("/csrf", cfg.AuthHandler.CSRF)
			api.POST("/signup", cfg.AuthHandler.Signup)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}

		// Content (public)
		if cfg.ContentHandler != nil {
			api.GET("/sections/:section", cfg.ContentHandler.ListSections)
			api.GET("/sections/:section/subjects", cfg.ContentHandler.ListSubjects)
			api.GET("/sections/:section/with-subjects", cfg.ContentHandler.SectionWithSubjects)
			api.GET("/questions/subject/:id", cfg.ContentHandler.ListQuestionsBySubject)
		}

		// Custom quiz generation, guests limited to filter=all
		if cfg.CustomQuizHandler != nil {
			optional := api.Group("/")
			if cfg.AuthMiddleware != nil {
				optional.Use(cfg.AuthMiddleware.OptionalAuth())
			}
			optional.POST("/custom-quiz", cfg.CustomQuizHandler.Generate)
		}
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
			protected.GET("/current-user", cfg.AuthHandler.CurrentUser)
		}

		// User
		if cfg.UserHandler != nil {
			protected.GET("/profile", cfg.UserHandler.Profile)
			protected.POST("/change-password", cfg.UserHandler.ChangePassword)
		}

		// Answer history
		if cfg.StatusHandler != nil {
			protected.POST("/user-question-status/update", cfg.StatusHandler.Update)
			protected.GET("/user-question-status/subject/:id", cfg.StatusHandler.ListBySubject)
			protected.GET("/user-question-status/all", cfg.StatusHandler.ListAll)
		}

		// Progress
		if cfg.ProgressHandler != nil {
			protected.GET("/user-progress", cfg.ProgressHandler.UserProgress)
			protected.GET("/sections/:section/progress", cfg.ProgressHandler.SectionProgress)
			protected.POST("/subjects/progress", cfg.ProgressHandler.SubjectsProgress)
		}

		// Saved custom quizzes
		if cfg.CustomQuizHandler != nil {
			protected.POST("/custom-quizzes", cfg.CustomQuizHandler.Save)
			protected.GET("/custom-quizzes", cfg.CustomQuizHandler.List)
			protected.GET("/custom-quizzes/:id", cfg.CustomQuizHandler.Get)
		}

		// Quiz sessions
		if cfg.QuizSessionHandler != nil {
			quiz := protected.Group("/")
			if cfg.SubscriptionGuard != nil {
				quiz.Use(cfg.SubscriptionGuard)
			}
			quiz.POST("/quiz-sessions/subject/:id", cfg.QuizSessionHandler.StartSubject)
			quiz.POST("/quiz-sessions/custom", cfg.QuizSessionHandler.StartCustom)
			quiz.GET("/quiz-sessions/active", cfg.QuizSessionHandler.Active)
			quiz.GET("/quiz-sessions/:id", cfg.QuizSessionHandler.View)
			quiz.POST("/quiz-sessions/:id/check", cfg.QuizSessionHandler.Check)
			quiz.POST("/quiz-sessions/:id/next", cfg.QuizSessionHandler.Next)
			quiz.POST("/quiz-sessions/:id/finish", cfg.QuizSessionHandler.Finish)
			quiz.GET("/quiz-attempts", cfg.QuizSessionHandler.ListAttempts)
			quiz.GET("/quiz-attempts/:id", cfg.QuizSessionHandler.GetAttempt)
			if cfg.CustomQuizHandler != nil {
				quiz.POST("/custom-quizzes/:id/sessions", cfg.CustomQuizHandler.StartSession)
			}
		}
	}

	return r
}
