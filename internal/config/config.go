package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode      Mode
	HTTPAddr  string
	PublicURL string
	APIPrefix string // course routes are mounted here

	DBDriver string
	DBDSN    string

	// Identity provider tokens (HS256 shared secret).
	JWTSecret   string
	JWTAudience string

	PassThreshold int
	CourseTitle   string

	CORSOrigins []string

	LogMode  string // dev|prod
	SeedFile string // optional YAML course content loaded at startup
}

// Load reads an optional .env file and then the environment. It reports
// whether a .env file was found so the caller can log it.
func Load(files ...string) (Config, bool) {
	found := godotenv.Load(files...) == nil
	return FromEnv(), found
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	defOrigins := "http://localhost:3000"
	defLog := "dev"
	if mode == ModeOnline {
		defOrigins = ""
		defLog = "prod"
	}
	return Config{
		Mode:          mode,
		HTTPAddr:      envOr("HTTP_ADDR", ":8080"),
		PublicURL:     os.Getenv("PUBLIC_URL"),
		APIPrefix:     strings.TrimSuffix(envOr("API_PREFIX", "/api/course"), "/"),
		DBDriver:      envOr("DB_DRIVER", "sqlite"),
		DBDSN:         envOr("DB_DSN", ""),
		JWTSecret:     envOr("JWT_SECRET", devSecret(mode)),
		JWTAudience:   os.Getenv("JWT_AUDIENCE"),
		PassThreshold: envInt("PASS_THRESHOLD", 70),
		CourseTitle:   envOr("COURSE_TITLE", "OSINT (Open Source Intelligence) Course"),
		CORSOrigins:   csvOr("CORS_ORIGINS", defOrigins),
		LogMode:       envOr("LOG_MODE", defLog),
		SeedFile:      os.Getenv("SEED_FILE"),
	}
}

// CertificateDownloadPath is the path embedded in issued certificate URLs.
func (c Config) CertificateDownloadPath() string {
	return strings.TrimSuffix(c.PublicURL, "/") + c.APIPrefix + "/certificate/download"
}

func (c Config) Validate() error {
	var errs []error
	if c.Mode != ModeOffline && c.Mode != ModeOnline {
		errs = append(errs, fmt.Errorf("MODE must be offline or online, got %q", c.Mode))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in online mode"))
	}
	if c.Mode == ModeOnline && len(c.CORSOrigins) == 0 {
		// go-chi/cors treats an empty origin list as "allow all"
		errs = append(errs, errors.New("CORS_ORIGINS is required in online mode"))
	}
	if c.PassThreshold < 1 || c.PassThreshold > 100 {
		errs = append(errs, fmt.Errorf("PASS_THRESHOLD must be within 1..100, got %d", c.PassThreshold))
	}
	if c.APIPrefix != "" && !strings.HasPrefix(c.APIPrefix, "/") {
		errs = append(errs, fmt.Errorf("API_PREFIX must start with /, got %q", c.APIPrefix))
	}
	return errors.Join(errs...)
}

// devSecret lets offline mode run without configuration.
func devSecret(mode Mode) string {
	if mode == ModeOffline {
		return "supersecret-dev-key"
	}
	return ""
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envInt(k string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return v
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
