package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	authmw "github.com/mind-engage/mindengage-course/internal/auth/middleware"
	"github.com/mind-engage/mindengage-course/internal/course"
	"github.com/mind-engage/mindengage-course/internal/logger"
)

// MountCourse registers the student course routes on r. Every route
// requires a bearer token.
func MountCourse(r chi.Router, svc CourseService, authSvc *authmw.AuthService, log *logger.Logger) {
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(authSvc))
		pr.Use(ensureUser(svc))

		pr.Get("/progress", ProgressHandler(svc, log))
		pr.Get("/modules", ModulesHandler(svc, log))
		pr.Post("/modules/{moduleID}/quiz", SubmitQuizHandler(svc, log))
		pr.Get("/certificate", CertificateHandler(svc, log))
		pr.Get("/certificate/download", DownloadCertificateHandler(svc, log))
	})
}

// ensureUser records the caller's profile before the handler runs.
func ensureUser(svc CourseService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, found := authmw.IdentityFromContext(r.Context()); found {
				svc.EnsureUser(r.Context(), course.User{ID: id.Subject, Email: id.Email, FullName: id.FullName})
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AccessLog writes one line per request through log.
func AccessLog(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("http request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		})
	}
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// MountHealth registers unauthenticated liveness and readiness probes.
func MountHealth(r chi.Router, db Pinger) {
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ok(w, map[string]string{"status": "ok"}, "")
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			fail(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		ok(w, map[string]string{"status": "ready"}, "")
	})
}
