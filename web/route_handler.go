package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/RezaEskandarii/cronfire/client"
	"github.com/RezaEskandarii/cronfire/internal/auth"
	"github.com/RezaEskandarii/cronfire/internal/store"
	"github.com/RezaEskandarii/cronfire/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Authenticator registers users and exchanges credentials for session tokens.
type Authenticator interface {
	Register(ctx context.Context, username, email, password string) (*types.User, error)
	Authenticate(ctx context.Context, username, password string) (auth.Session, error)
}

// TokenVerifier resolves a session token to its user id.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// JobService creates and lists reminders for an owner.
type JobService interface {
	CreateJob(ctx context.Context, ownerID int64, message, schedule string) (*types.CronJob, error)
	ListJobs(ctx context.Context, ownerID int64) ([]types.CronJob, error)
}

type RouteConfig struct {
	CookieSecure       bool
	LoginRatePerMinute int
	LoginBurst         int
	// Gatherer backs /metrics; the endpoint is not mounted when nil.
	Gatherer prometheus.Gatherer
	// Health is called by /healthz; nil always reports healthy.
	Health func(ctx context.Context) error
	Logger zerolog.Logger
}

type HttpRouteHandler struct {
	authenticator Authenticator
	tokens        TokenVerifier
	jobs          JobService
	cfg           RouteConfig
	loginLimiter  *ipRateLimiter
	logger        zerolog.Logger
}

func NewRouteHandler(authenticator Authenticator, tokens TokenVerifier, jobs JobService, cfg RouteConfig) *HttpRouteHandler {
	if cfg.LoginRatePerMinute < 1 {
		cfg.LoginRatePerMinute = 10
	}
	if cfg.LoginBurst < 1 {
		cfg.LoginBurst = 5
	}
	return &HttpRouteHandler{
		authenticator: authenticator,
		tokens:        tokens,
		jobs:          jobs,
		cfg:           cfg,
		loginLimiter:  newIPRateLimiter(cfg.LoginRatePerMinute, cfg.LoginBurst),
		logger:        cfg.Logger.With().Str("component", "http").Logger(),
	}
}

// Router builds the chi mux with all routes wired.
func (handler *HttpRouteHandler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(handler.requestLogger)

	r.Get("/healthz", handler.handleHealth)
	if handler.cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(handler.cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/signup", handler.handleSignup)
		r.With(handler.loginLimiter.middleware).Post("/login", handler.handleLogin)
		r.Post("/logout", handler.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(handler.tokens))
			r.Get("/jobs", handler.handleListJobs)
			r.Post("/jobs", handler.handleCreateJob)
		})
	})

	return r
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type createJobRequest struct {
	Message  string `json:"message"`
	Schedule string `json:"schedule"`
}

func (handler *HttpRouteHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeBody(r, &req, func(get func(string) string) {
		req.Username, req.Email, req.Password = get("username"), get("email"), get("password")
	}); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := handler.authenticator.Register(r.Context(), req.Username, req.Email, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, user)
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "username, email and password are required")
	case errors.Is(err, auth.ErrConflict):
		writeError(w, http.StatusConflict, "username or email already registered")
	default:
		handler.logger.Error().Err(err).Msg("signup failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (handler *HttpRouteHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req, func(get func(string) string) {
		req.Username, req.Password = get("username"), get("password")
	}); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := handler.authenticator.Authenticate(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		setTokenCookie(w, session.Token, handler.cfg.CookieSecure)
		writeJSON(w, http.StatusOK, loginResponse{Token: session.Token, ExpiresAt: session.ExpiresAt})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	default:
		handler.logger.Error().Err(err).Msg("login failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (handler *HttpRouteHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearTokenCookie(w, handler.cfg.CookieSecure)
	w.WriteHeader(http.StatusNoContent)
}

func (handler *HttpRouteHandler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := UserIDFromContext(r.Context())

	jobs, err := handler.jobs.ListJobs(r.Context(), ownerID)
	if err != nil {
		handler.logger.Error().Err(err).Int64("user_id", ownerID).Msg("failed to list jobs")
		writeError(w, http.StatusInternalServerError, "failed to fetch jobs")
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (handler *HttpRouteHandler) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := UserIDFromContext(r.Context())

	var req createJobRequest
	if err := decodeBody(r, &req, func(get func(string) string) {
		req.Message, req.Schedule = get("message"), get("schedule")
	}); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	job, err := handler.jobs.CreateJob(r.Context(), ownerID, req.Message, req.Schedule)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, job)
	case errors.Is(err, store.ErrInvalidSchedule), errors.Is(err, client.ErrInvalidExpression):
		writeError(w, http.StatusBadRequest, "invalid cron expression")
	case errors.Is(err, store.ErrOwnerNotFound):
		// the token outlived its user
		writeError(w, http.StatusUnauthorized, "unauthorized")
	default:
		handler.logger.Error().Err(err).Int64("user_id", ownerID).Msg("failed to create job")
		writeError(w, http.StatusInternalServerError, "failed to create job")
	}
}

func (handler *HttpRouteHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if handler.cfg.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := handler.cfg.Health(ctx); err != nil {
			handler.logger.Warn().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (handler *HttpRouteHandler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		handler.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}
