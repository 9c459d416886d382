package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"authrelay/internal/auth"
	"authrelay/internal/cache"
	"authrelay/internal/config"
	"authrelay/internal/httpserver/handlers"
	"authrelay/internal/models"
	"authrelay/internal/queue"
	"authrelay/internal/services"
)

func NewRouter(db *gorm.DB, cfg config.Config, c *cache.Cache, q *queue.Queue, lg *zap.SugaredLogger) http.Handler {
	users := services.NewUserService(db, c, lg)
	authSvc := services.NewAuthService(db, users, cfg.SecretKey, cfg.Algorithm, cfg.AccessTokenExpire, lg)
	apiKeys := services.NewApiKeyService(db, c, lg)
	actions := services.NewActionService(db, c, lg)
	webhooks := services.NewWebHookService(db, c, q, lg)
	d := handlers.Deps{Cfg: cfg, Cache: c, Log: lg}

	jwtAuth := auth.JWTAuth(db, cfg.SecretKey, cfg.Algorithm)
	modOrSelf := auth.Authorize(true, models.RoleModerator, models.RoleAdmin)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)
	r.Use(metricsMiddleware)

	r.Route("/v1", func(v1 chi.Router) {
		v1.Route("/auth", func(a chi.Router) {
			a.Post("/sign-up", handlers.SignUp(authSvc, d))
			a.Post("/sign-in", handlers.SignIn(authSvc, d))
			a.Group(func(p chi.Router) {
				p.Use(jwtAuth)
				p.Post("/refresh_token", handlers.RefreshToken(authSvc, d))
				p.Get("/me", handlers.Me(d))
			})
		})

		v1.Route("/user", func(u chi.Router) {
			u.Post("/", handlers.CreateUser(users, d))
			u.Group(func(p chi.Router) {
				p.Use(jwtAuth)
				p.Get("/", handlers.ListUsers(users, d))
				p.With(modOrSelf).Get("/{id}", handlers.GetUser(users, d))
				p.With(modOrSelf).Put("/{id}", handlers.UpdateUser(users, d))
				p.With(modOrSelf).Patch("/enable_user/{id}", handlers.SetUserActive(users, d, true))
				p.With(modOrSelf).Patch("/disable/{id}", handlers.SetUserActive(users, d, false))
				p.With(auth.Authorize(false, models.RoleAdmin)).Delete("/{id}", handlers.DeleteUser(users, d))
			})
		})

		v1.Route("/action", func(a chi.Router) {
			a.Use(jwtAuth)
			a.Get("/", handlers.ListActions(actions, d))
			a.Post("/", handlers.CreateAction(actions, d))
			a.Get("/{id}", handlers.GetAction(actions, d))
			a.Post("/{id}/upload", handlers.UploadActionFile(actions, d))
			a.Put("/{id}", handlers.UpdateAction(actions, d))
			a.With(auth.Authorize(true, models.RoleAdmin)).Delete("/{id}", handlers.DeleteAction(actions, d))
		})

		v1.Route("/api-key", func(k chi.Router) {
			k.Use(jwtAuth)
			k.Get("/", handlers.ListApiKeys(apiKeys, d))
			k.Post("/", handlers.CreateApiKey(apiKeys, d))
			k.Get("/{id}", handlers.GetApiKey(apiKeys, d))
			k.Put("/{id}", handlers.UpdateApiKey(apiKeys, d))
			k.Delete("/{id}", handlers.DeleteApiKey(apiKeys, d))
		})

		v1.Route("/webhooks", func(wh chi.Router) {
			// Trigger authenticates with x-api-key instead of a session token.
			wh.Post("/{id}", handlers.TriggerWebHook(webhooks, apiKeys, d))
			wh.Group(func(p chi.Router) {
				p.Use(jwtAuth)
				p.Get("/", handlers.ListWebHooks(webhooks, d))
				p.Post("/", handlers.CreateWebHook(webhooks, d))
				p.Get("/{id}", handlers.GetWebHook(webhooks, d))
				p.Put("/{id}", handlers.UpdateWebHook(webhooks, d))
				p.Delete("/{id}", handlers.DeleteWebHook(webhooks, d))
			})
		})
		v1.Get("/webhooks-status/{task_id}", handlers.WebHookStatus(webhooks, d))

		v1.Post("/background/send-email/", handlers.SendEmail(d))
		v1.Get("/passwords/", handlers.FetchPassword(d))
	})

	r.Get("/health", handlers.Health())
	r.Handle("/metrics", promhttp.Handler())
	return r
}
