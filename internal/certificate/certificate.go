package certificate

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-course/internal/course"
)

const (
	DefaultDownloadPath = "/api/course/certificate/download"
	DefaultCourseTitle  = "OSINT (Open Source Intelligence) Course"
	ContentType         = "text/plain"
)

type Config struct {
	DownloadPath string // URL path the certificate_url points at
	CourseTitle  string
}

func DefaultConfig() Config {
	return Config{DownloadPath: DefaultDownloadPath, CourseTitle: DefaultCourseTitle}
}

// Eligible reports whether every module has a passing row. A course with
// no modules is never completed.
func Eligible(rows []course.Progress, totalModules int) bool {
	if totalModules <= 0 {
		return false
	}
	passed := make(map[int64]struct{}, len(rows))
	for _, p := range rows {
		if p.Passed {
			passed[p.ModuleID] = struct{}{}
		}
	}
	return len(passed) >= totalModules
}

// Issuer builds certificate records and their downloadable content.
type Issuer struct {
	cfg Config
}

func NewIssuer(cfg Config) *Issuer {
	if cfg.DownloadPath == "" {
		cfg.DownloadPath = DefaultDownloadPath
	}
	if cfg.CourseTitle == "" {
		cfg.CourseTitle = DefaultCourseTitle
	}
	return &Issuer{cfg: cfg}
}

// DownloadURL is deterministic per user.
func (i *Issuer) DownloadURL(userID string) string {
	return i.cfg.DownloadPath + "?user_id=" + url.QueryEscape(userID)
}

// Issue creates a new, unsaved certificate. Whether one already exists is
// the caller's concern.
func (i *Issuer) Issue(userID string, now time.Time) course.Certificate {
	return course.Certificate{
		ID:       uuid.NewString(),
		UserID:   userID,
		URL:      i.DownloadURL(userID),
		IssuedAt: now.UTC(),
	}
}

// Document is a rendered certificate ready to be framed as a download.
type Document struct {
	Content     []byte
	Filename    string
	ContentType string
}

func (i *Issuer) RenderContent(userName string, cert course.Certificate) string {
	return fmt.Sprintf(`
CERTIFICATE OF COMPLETION

This is to certify that

%s

has successfully completed the

%s

Date: %s
Certificate ID: %s
`, userName, i.cfg.CourseTitle, cert.IssuedAt.UTC().Format(time.DateOnly), cert.ID)
}

func (i *Issuer) Document(userName string, cert course.Certificate) Document {
	return Document{
		Content:     []byte(i.RenderContent(userName, cert)),
		Filename:    fmt.Sprintf("osint_certificate_%s.txt", cert.UserID),
		ContentType: ContentType,
	}
}
