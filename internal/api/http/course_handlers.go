package http

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	authmw "github.com/mind-engage/mindengage-course/internal/auth/middleware"
	"github.com/mind-engage/mindengage-course/internal/certificate"
	"github.com/mind-engage/mindengage-course/internal/course"
	"github.com/mind-engage/mindengage-course/internal/grading"
	"github.com/mind-engage/mindengage-course/internal/logger"
	"github.com/mind-engage/mindengage-course/internal/progress"
	"github.com/mind-engage/mindengage-course/internal/service"
)

// MsgNotCompleted accompanies a null certificate.
const MsgNotCompleted = "Course not completed yet"

// CourseService is what the handlers need from service.Course.
type CourseService interface {
	GradeQuizSubmission(ctx context.Context, userID string, moduleID int64, subs []grading.Submission) (grading.QuizResult, error)
	ResolveModuleStatuses(ctx context.Context, userID string) ([]service.ModuleView, error)
	SummarizeProgress(ctx context.Context, userID string) (progress.Summary, error)
	GetOrIssueCertificate(ctx context.Context, userID string) (*course.Certificate, error)
	DownloadCertificate(ctx context.Context, userID string) (certificate.Document, error)
	EnsureUser(ctx context.Context, u course.User)
}

type quizReq struct {
	Answers []json.RawMessage `json:"answers" validate:"required"`
}

var validate = validator.New()

// GET /progress
func ProgressHandler(svc CourseService, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		sum, err := svc.SummarizeProgress(r.Context(), sub)
		if err != nil {
			serverError(w, log, "summarize progress", sub, err)
			return
		}
		ok(w, sum, "")
	}
}

// GET /modules
func ModulesHandler(svc CourseService, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		views, err := svc.ResolveModuleStatuses(r.Context(), sub)
		if err != nil {
			serverError(w, log, "resolve module statuses", sub, err)
			return
		}
		ok(w, views, "")
	}
}

// POST /modules/{moduleID}/quiz
func SubmitQuizHandler(svc CourseService, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		moduleID, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "moduleID")), 10, 64)
		if err != nil || moduleID <= 0 {
			fail(w, http.StatusBadRequest, "invalid module id")
			return
		}
		var req quizReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			fail(w, http.StatusBadRequest, "bad json: "+err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			fail(w, http.StatusBadRequest, "answers required")
			return
		}

		subs, skipped := grading.NormalizeSubmissions(req.Answers)
		res, err := svc.GradeQuizSubmission(r.Context(), sub, moduleID, subs)
		if err != nil {
			if status := statusFor(err); status != http.StatusInternalServerError {
				fail(w, status, err.Error())
				return
			}
			serverError(w, log, "grade quiz", sub, err)
			return
		}
		if len(skipped) > 0 {
			res.Skipped = append(skipped, res.Skipped...)
		}
		ok(w, res, "")
	}
}

// GET /certificate
func CertificateHandler(svc CourseService, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		cert, err := svc.GetOrIssueCertificate(r.Context(), sub)
		if err != nil {
			serverError(w, log, "get certificate", sub, err)
			return
		}
		if cert == nil {
			ok(w, nil, MsgNotCompleted)
			return
		}
		ok(w, cert, "")
	}
}

// GET /certificate/download[?user_id=]
func DownloadCertificateHandler(svc CourseService, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		if uid := strings.TrimSpace(r.URL.Query().Get("user_id")); uid != "" && uid != sub {
			fail(w, http.StatusForbidden, "forbidden")
			return
		}
		doc, err := svc.DownloadCertificate(r.Context(), sub)
		if err != nil {
			if statusFor(err) == http.StatusNotFound {
				fail(w, http.StatusNotFound, "certificate not found")
				return
			}
			serverError(w, log, "download certificate", sub, err)
			return
		}
		w.Header().Set("Content-Type", doc.ContentType)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
		w.Header().Set("Content-Length", strconv.Itoa(len(doc.Content)))
		_, _ = w.Write(doc.Content)
	}
}

// serverError logs the cause and keeps it out of the response.
func serverError(w http.ResponseWriter, log *logger.Logger, op, userID string, err error) {
	log.Error(op+" failed", "user_id", userID, "error", err)
	fail(w, http.StatusInternalServerError, "internal error")
}
