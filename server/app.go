package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"innkeep/config"
	"innkeep/internal/auth"
	"innkeep/internal/db"
	"innkeep/internal/devapi"
	"innkeep/internal/health"
	"innkeep/internal/logs"
	"innkeep/internal/media"
	"innkeep/internal/middleware"
	"innkeep/internal/models"
	"innkeep/internal/registry"
	"innkeep/internal/reports"
	"innkeep/internal/web"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type App struct {
	cfg        *config.Config
	Router     *mux.Router
	httpServer *http.Server

	db     *gorm.DB
	ctx    context.Context
	cancel context.CancelFunc
}

func (a *App) Initialize(cfg *config.Config) {
	a.cfg = cfg

	// 1) Логи
	logs.Init(logs.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		File:   a.cfg.Logging.File,
	})

	// 2) БД (опционально; без БД поднимаются только публичные страницы)
	if drv := a.cfg.Database.Driver; drv != "" {
		d, err := db.Open(drv, a.cfg.Database.DSN)
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		a.db = d
	}

	// ---- DB migrations (only if DB is connected) ----
	if a.db != nil {
		// 1) One-off rename of reserved columns (MySQL/MariaDB safe)
		if err := db.MigrateLegacyColumns(a.db); err != nil {
			logs.Logger.Warnf("legacy columns migration: %v", err)
		}

		// 2) AutoMigrate all domain models
		if err := a.db.AutoMigrate(
			&models.Report{},
			&models.ReportPhoto{},
			&models.ReportHistory{},
			&models.Device{},
			&models.Setting{},
		); err != nil {
			logs.Logger.Errorf("automigrate: %v", err)
		}
	}

	// 3) Роутер + middleware
	a.Router = mux.NewRouter()
	a.Router.Use(middleware.RequestID)
	a.Router.Use(middleware.Recoverer)
	a.Router.Use(middleware.LoggerMW)

	a.RegisterStatic("/static/")

	// 4) Health маршруты
	if a.db != nil {
		health.RegisterRoutesWithDB(a.Router, a.db) // /healthz и /readyz
	} else {
		health.RegisterRoutes(a.Router) // только /healthz
	}

	// 5) Рендерер и авторизация
	render, err := web.NewRenderer(a.cfg.Hotel.Name, a.cfg.Hotel.AppVersion)
	if err != nil {
		log.Fatalf("templates: %v", err)
	}
	sessions := auth.NewSessions(a.cfg.Admin.SessionSecret, a.cfg.Admin.SessionTTLMinutes)
	creds := auth.NewCredentials(a.db, a.cfg.Admin)
	limiter := auth.NewLimiter(a.cfg.RateLimit.PerMinute, a.cfg.RateLimit.Burst)
	storage := media.NewStorage(a.cfg.Media.Root)

	// 6) Доменные ручки (всё, что ходит в БД)
	if a.db != nil {
		reportRepo := reports.NewRepo(a.db)
		deviceRepo := registry.NewRepo(a.db)

		web.NewPages(a.cfg, render, sessions, deviceRepo).RegisterRoutes(a.Router)
		web.NewAdmin(render, sessions, creds, limiter, reportRepo, deviceRepo).RegisterRoutes(a.Router)
		reports.NewHandler(a.cfg, reportRepo, render, sessions, storage).RegisterRoutes(a.Router)
		registry.NewHandler(deviceRepo, render, sessions, limiter).RegisterRoutes(a.Router)
		media.NewHandler(storage, reportRepo, sessions).RegisterRoutes(a.Router)
		devapi.NewHandler(a.cfg.Device.SharedSecret, deviceRepo).RegisterRoutes(a.Router)
	} else {
		web.NewPages(a.cfg, render, sessions, nil).RegisterRoutes(a.Router)
		web.NewAdmin(render, sessions, creds, limiter, nil, nil).RegisterRoutes(a.Router)
	}

	a.Router.Walk(func(rt *mux.Route, r *mux.Router, ancestors []*mux.Route) error {
		path, _ := rt.GetPathTemplate()
		methods, _ := rt.GetMethods()
		log.Printf("route: %-6v %s", methods, path)
		return nil
	})
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return ErrNotInitialized
	}
	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigs; a.cancel() }()

	a.httpServer = &http.Server{
		Addr:         bind,
		Handler:      a.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-a.ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.httpServer.Shutdown(ctx)
	return nil
}

var ErrNotInitialized = &initError{"server not initialized (call Initialize(cfg) first)"}

type initError struct{ s string }

func (e *initError) Error() string { return e.s }
