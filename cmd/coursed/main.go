package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/mind-engage/mindengage-course/internal/api/http"
	auth "github.com/mind-engage/mindengage-course/internal/auth/middleware"
	"github.com/mind-engage/mindengage-course/internal/certificate"
	"github.com/mind-engage/mindengage-course/internal/config"
	"github.com/mind-engage/mindengage-course/internal/db"
	"github.com/mind-engage/mindengage-course/internal/grading"
	"github.com/mind-engage/mindengage-course/internal/logger"
	"github.com/mind-engage/mindengage-course/internal/seed"
	"github.com/mind-engage/mindengage-course/internal/service"
	"github.com/mind-engage/mindengage-course/internal/store"
)

func main() {
	seedFile := flag.String("seed", "", "YAML course content to load at startup (overrides SEED_FILE)")
	devToken := flag.String("dev-token", "", "offline mode only: print a bearer token for this user id and exit")
	flag.Parse()

	cfg, dotenv := config.Load()
	if *seedFile != "" {
		cfg.SeedFile = *seedFile
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogMode, "coursed")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	if !dotenv {
		log.Debug("no .env file loaded")
	}

	authSvc := auth.NewAuthService(cfg.JWTSecret, cfg.JWTAudience)
	if *devToken != "" {
		if cfg.Mode != config.ModeOffline {
			log.Fatal("dev tokens are only available in offline mode")
		}
		tok, err := authSvc.IssueJWT(*devToken, "", "", 24*time.Hour)
		if err != nil {
			log.Fatal("issue dev token", "error", err)
		}
		fmt.Println(tok)
		return
	}

	// --- DB ---
	openCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatal("db open failed", "driver", cfg.DBDriver, "error", err)
	}
	defer dbh.Close()
	st := store.NewSQLStore(dbh, cfg.DBDriver)

	if cfg.SeedFile != "" {
		f, err := seed.ParseFile(cfg.SeedFile)
		if err != nil {
			log.Fatal("load seed", "file", cfg.SeedFile, "error", err)
		}
		if err := seed.Apply(openCtx, st, f); err != nil {
			log.Fatal("apply seed", "file", cfg.SeedFile, "error", err)
		}
		log.Info("course content seeded", "file", cfg.SeedFile, "modules", len(f.Modules))
	}

	// --- Course engine ---
	grader := grading.NewQuizGrader(grading.Config{PassThreshold: cfg.PassThreshold})
	issuer := certificate.NewIssuer(certificate.Config{
		DownloadPath: cfg.CertificateDownloadPath(),
		CourseTitle:  cfg.CourseTitle,
	})
	svc := service.New(st, grader, issuer, log)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, api.AccessLog(log), middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api.MountHealth(r, dbh)
	r.Route(cfg.APIPrefix, func(cr chi.Router) {
		api.MountCourse(cr, svc, authSvc, log)
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", cfg.DBDriver, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
