package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/dentest-backend/internal/data/db"
	"github.com/yungbote/dentest-backend/internal/http"
	httpH "github.com/yungbote/dentest-backend/internal/http/handlers"
	httpMW "github.com/yungbote/dentest-backend/internal/http/middleware"
	"github.com/yungbote/dentest-backend/internal/observability"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
	// Subscription is nil unless SUBSCRIPTION_REQUIRED is set.
	Subscription gin.HandlerFunc
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	User        *httpH.UserHandler
	Content     *httpH.ContentHandler
	Status      *httpH.StatusHandler
	Progress    *httpH.ProgressHandler
	CustomQuiz  *httpH.CustomQuizHandler
	QuizSession *httpH.QuizSessionHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services, database *db.DatabaseService) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(database),
		Auth: httpH.NewAuthHandler(services.Auth, httpH.CookieConfig{
			Secure: cfg.CookieSecure,
			Domain: cfg.CookieDomain,
		}),
		User:        httpH.NewUserHandler(services.User),
		Content:     httpH.NewContentHandler(services.Content),
		Status:      httpH.NewStatusHandler(services.Status),
		Progress:    httpH.NewProgressHandler(services.Progress),
		CustomQuiz:  httpH.NewCustomQuizHandler(services.CustomQuiz, services.QuizSession),
		QuizSession: httpH.NewQuizSessionHandler(services.QuizSession),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services) Middleware {
	log.Info("Wiring middleware...")
	mw := Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
	if cfg.SubscriptionRequired {
		mw.Subscription = httpMW.RequireActiveSubscription(log, services.User)
	}
	return mw
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *gin.Engine {
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	return http.NewRouter(http.RouterConfig{
		Log:                log,
		ServiceName:        cfg.Otel.ServiceName,
		Metrics:            metrics,
		CORSOrigins:        cfg.CORSOrigins,
		RequestTimeout:     cfg.RequestTimeout,
		AuthMiddleware:     middleware.Auth,
		SubscriptionGuard:  middleware.Subscription,
		HealthHandler:      handlers.Health,
		AuthHandler:        handlers.Auth,
		UserHandler:        handlers.User,
		ContentHandler:     handlers.Content,
		StatusHandler:      handlers.Status,
		ProgressHandler:    handlers.Progress,
		CustomQuizHandler:  handlers.CustomQuiz,
		QuizSessionHandler: handlers.QuizSession,
	})
}
