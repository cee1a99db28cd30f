// Package httpapi serves read-only operational endpoints: health, prometheus
// metrics, the test catalog and per-user statistics.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/abhisek/proctor/internal/bank"
	"github.com/abhisek/proctor/internal/exam"
	"github.com/abhisek/proctor/internal/session"
)

// Options configures the router.
type Options struct {
	// CORSOrigins enables CORS for the listed origins. Empty disables it.
	CORSOrigins []string

	// Gatherer backs /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer

	Logger *zap.Logger
}

// NewRouter builds the HTTP handler.
func NewRouter(svc *exam.Service, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	h := &handlers{svc: svc, logger: opts.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(opts.Logger), middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			ExposedHeaders: []string{"Content-Length"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(api chi.Router) {
		api.Get("/tests", h.listTests)
		api.Get("/tests/{testID}", h.getTest)
		api.Route("/users/{userID}", func(u chi.Router) {
			u.Get("/stats", h.userStats)
			u.Get("/achievements", h.userAchievements)
			u.Get("/session", h.userSession)
		})
		api.Get("/admin/stats", h.aggregate)
	})
	return r
}

// Serve runs an HTTP server on addr until ctx is done, then shuts it down.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type handlers struct {
	svc    *exam.Service
	logger *zap.Logger
}

type testDetail struct {
	bank.Summary
	HasOptions bool   `json:"has_options"`
	Booklet    string `json:"booklet,omitempty"`
}

type sessionView struct {
	SessionID        string  `json:"session_id"`
	TestID           string  `json:"test_id"`
	State            string  `json:"state"`
	TimedOut         bool    `json:"timed_out"`
	Answered         int     `json:"answered"`
	QuestionCount    int     `json:"question_count"`
	StartedAt        string  `json:"started_at"`
	Deadline         string  `json:"deadline"`
	RemainingSeconds float64 `json:"remaining_seconds"`
}

func (h *handlers) listTests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Tests())
}

func (h *handlers) getTest(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Test(chi.URLParam(r, "testID"))
	if errors.Is(err, bank.ErrTestNotFound) {
		respondError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, testDetail{Summary: t.Summary(), HasOptions: t.HasOptions(), Booklet: t.PDFFile})
}

func (h *handlers) userStats(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	sum, err := h.svc.RequestStats(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *handlers) userAchievements(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	list, err := h.svc.RequestAchievements(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handlers) userSession(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	v, err := h.svc.Status(id)
	if errors.Is(err, session.ErrNoActiveSession) {
		respondError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView{
		SessionID:        v.SessionID,
		TestID:           v.TestID,
		State:            v.State.String(),
		TimedOut:         v.TimedOut,
		Answered:         v.AnsweredCount(),
		QuestionCount:    v.QuestionCount,
		StartedAt:        v.StartedAt.Format(time.RFC3339),
		Deadline:         v.Deadline.Format(time.RFC3339),
		RemainingSeconds: v.Remaining.Seconds(),
	})
}

func (h *handlers) aggregate(w http.ResponseWriter, r *http.Request) {
	agg, err := h.svc.AggregateStats(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("user id must be an integer"))
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// requestLogger logs one line per request with zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
