package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"jobboard/internal/common"
	"jobboard/internal/domain/user"
	"jobboard/internal/http/handlers"
	"jobboard/internal/http/metrics"
	httpmw "jobboard/internal/http/middleware"
	"jobboard/internal/http/response"
	"jobboard/internal/observability"
	"jobboard/internal/ratelimit"
)

const (
	maxBodyBytes = 1 << 20

	authRateLimit  = 20
	apiRateLimit   = 300
	rateLimitSlice = time.Minute
)

type RouterDependencies struct {
	AuthHandler        *handlers.AuthHandler
	UserHandler        *handlers.UserHandler
	JobHandler         *handlers.JobHandler
	CompanyHandler     *handlers.CompanyHandler
	ApplicationHandler *handlers.ApplicationHandler
	UploadHandler      *handlers.UploadHandler
	SystemHandler      *handlers.SystemHandler
	AuthMiddleware     *httpmw.AuthMiddleware
	Limiter            ratelimit.Limiter
	Metrics            *metrics.Collector
	Logger             *slog.Logger
	RequestTimeout     time.Duration
	CORSOrigins        []string
	// UploadBodyLimit caps multipart submissions; JSON bodies use maxBodyBytes.
	UploadBodyLimit int64
}

func NewRouter(deps RouterDependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(httpmw.RequestID, httpmw.Logging(logger), httpmw.Recover(logger), httpmw.Metrics(deps.Metrics), httpmw.Timeout(deps.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", observability.RequestIDHeader},
		ExposedHeaders:   []string{observability.RequestIDHeader},
		AllowCredentials: len(deps.CORSOrigins) > 0,
		MaxAge:           300,
	}))
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, common.NewError(common.CodeNotFound, "route not found", nil))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, common.NewError(common.CodeNotFound, "route not found", nil))
	})

	r.Get("/health", deps.SystemHandler.Health)
	r.Get("/metrics", deps.SystemHandler.Metrics)
	r.Get("/uploads/{dir}/{filename}", deps.UploadHandler.Serve)

	auth := deps.AuthMiddleware
	employers := httpmw.RequireRole(user.RoleEmployer, user.RoleAdmin)
	candidates := httpmw.RequireRole(user.RoleCandidate, user.RoleAdmin)

	r.Group(func(r chi.Router) {
		r.Use(httpmw.RateLimit(deps.Limiter, httpmw.ByIP("api"), apiRateLimit, rateLimitSlice))

		r.Route("/applications", func(r chi.Router) {
			r.Use(auth.Authenticate)
			// Multipart submissions carry their own, larger, body limit.
			r.With(httpmw.BodyLimit(deps.UploadBodyLimit), candidates).Post("/", deps.ApplicationHandler.Submit)
			r.Group(func(r chi.Router) {
				r.Use(httpmw.BodyLimit(maxBodyBytes))
				r.Get("/", deps.ApplicationHandler.List)
				r.Get("/stats", deps.ApplicationHandler.Stats)
				r.With(candidates).Get("/my", deps.ApplicationHandler.ListMine)
				r.With(candidates).Put("/{id}/withdraw", deps.ApplicationHandler.Withdraw)
				r.With(employers).Get("/job/{jobId}", deps.ApplicationHandler.ListByJob)
				r.With(employers).Put("/{id}/status", deps.ApplicationHandler.UpdateStatus)
				r.With(employers).Post("/{id}/interviews", deps.ApplicationHandler.ScheduleInterview)
				r.Get("/{id}", deps.ApplicationHandler.Get)
				r.Post("/{id}/notes", deps.ApplicationHandler.AddNote)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(httpmw.BodyLimit(maxBodyBytes))

			r.Route("/auth", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(httpmw.RateLimit(deps.Limiter, httpmw.ByIP("auth"), authRateLimit, rateLimitSlice))
					r.Post("/register", deps.AuthHandler.Register)
					r.Post("/login", deps.AuthHandler.Login)
					r.Post("/forgot-password", deps.AuthHandler.ForgotPassword)
					r.Post("/reset-password", deps.AuthHandler.ResetPassword)
				})
				r.Post("/refresh-token", deps.AuthHandler.Refresh)
				r.Group(func(r chi.Router) {
					r.Use(auth.Authenticate)
					r.Get("/me", deps.AuthHandler.Me)
					r.Post("/logout", deps.AuthHandler.Logout)
					r.Put("/change-password", deps.AuthHandler.ChangePassword)
				})
			})

			r.Route("/jobs", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(auth.Optional)
					r.Get("/", deps.JobHandler.List)
					r.Get("/recommended", deps.JobHandler.Recommended)
					r.Get("/stats", deps.JobHandler.Stats)
					r.Get("/{id}", deps.JobHandler.Get)
				})
				r.Group(func(r chi.Router) {
					r.Use(auth.Authenticate, employers)
					r.Get("/my/jobs", deps.JobHandler.Mine)
					r.Post("/", deps.JobHandler.Create)
					r.Put("/{id}", deps.JobHandler.Update)
					r.Delete("/{id}", deps.JobHandler.Delete)
				})
				r.Group(func(r chi.Router) {
					r.Use(auth.Authenticate, httpmw.RequireRole(user.RoleCandidate))
					r.Post("/{id}/save", deps.UserHandler.SaveJob)
					r.Delete("/{id}/save", deps.UserHandler.UnsaveJob)
				})
			})

			r.Route("/companies", func(r chi.Router) {
				r.Get("/", deps.CompanyHandler.List)
				r.Group(func(r chi.Router) {
					r.Use(auth.Authenticate, employers)
					r.Get("/me", deps.CompanyHandler.Mine)
					r.Post("/", deps.CompanyHandler.Create)
					r.Put("/{id}", deps.CompanyHandler.Update)
					r.Delete("/{id}", deps.CompanyHandler.Delete)
				})
				r.Get("/{id}", deps.CompanyHandler.Get)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.With(httpmw.RequireRole(user.RoleCandidate)).Get("/me/saved-jobs", deps.UserHandler.SavedJobs)
				r.Get("/{id}", deps.UserHandler.Get)
				r.Put("/{id}", deps.UserHandler.UpdateProfile)
				r.With(httpmw.RequireRole(user.RoleAdmin)).Put("/{id}/status", deps.UserHandler.SetActive)
			})
		})
	})

	return r
}
