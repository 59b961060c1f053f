package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/config"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/delivery"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
	appHTTP "github.com/cmlabs-hris/leave-dashboard-go/internal/handler/http"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/asana"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/chart"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/cron"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/database"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/email"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/pdf"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/sse"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/storage"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/repository/memory"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/repository/postgresql"
	deliveryService "github.com/cmlabs-hris/leave-dashboard-go/internal/service/delivery"
	leaveService "github.com/cmlabs-hris/leave-dashboard-go/internal/service/leave"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	asanaClient := asana.NewClient(cfg.Asana.BaseURL, cfg.Asana.AccessToken, cfg.Asana.PageLimit)

	var roster leave.RosterSource
	if cfg.Roster.UseGoogleSheet() {
		roster = spreadsheet.NewGoogleSheetRoster(ctx,
			cfg.Roster.ServiceAccountEmail,
			cfg.Roster.PrivateKey,
			cfg.Roster.SheetID,
			cfg.Roster.SheetTitle,
		)
	} else {
		roster = spreadsheet.NewWorkbookRoster(cfg.Roster.XLSXPath, cfg.Roster.SheetTitle)
	}

	reportService := leaveService.NewReportService(
		asanaClient,
		asanaClient,
		roster,
		leaveService.NewQuotaCalculator(),
		cfg.Asana.ProjectGID,
		cfg.Asana.WorkspaceGID,
	)

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		log.Fatal("Failed to initialize local storage:", err)
	}

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service:", err)
	}
	if cfg.SMTP.Host == "" {
		slog.Warn("SMTP_HOST not set, leave summaries will not be mailed")
	}

	var deliveryRepo delivery.Repository
	if cfg.Database.Enabled() {
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			log.Fatal("Error connecting to database:", err)
		}
		defer db.Close()

		if err := postgresql.EnsureDeliverySchema(ctx, db); err != nil {
			log.Fatal("Failed to prepare delivery log:", err)
		}
		deliveryRepo = postgresql.NewDeliveryRepository(db)
	} else {
		slog.Info("DB_HOST not set, keeping delivery log in memory")
		deliveryRepo = memory.NewDeliveryRepository(0)
	}

	progressHub := sse.NewHub()
	mode := delivery.ModeProduction
	if cfg.App.IsDevelopment() {
		mode = delivery.ModeDevelopment
	}
	mailer := deliveryService.NewDeliveryService(
		reportService,
		chart.NewQuickChart(cfg.Mail.QuickChartURL),
		emailService,
		pdf.LeaveSummary,
		fileStorage,
		deliveryRepo,
		deliveryService.Config{
			Mode:           mode,
			TestReceiver:   cfg.Mail.TestReceiver,
			RequiredDomain: cfg.Mail.RequiredDomain,
			Pacing:         cfg.Mail.Pacing,
			Events:         progressHub,
		},
	)

	var JWTService jwt.Service
	if cfg.JWT.Secret != "" {
		JWTService = jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	} else {
		slog.Warn("JWT_SECRET_KEY not set, API is served without authentication")
	}

	router := appHTTP.NewRouter(
		cfg.App,
		JWTService,
		appHTTP.NewLeaveHandler(reportService),
		appHTTP.NewDeliveryHandler(mailer, progressHub),
		appHTTP.NewFileHandler(fileStorage),
	)

	scheduler := cron.NewScheduler()
	cron.NewMailJobs(mailer, cfg.Mail.MonthlyDay, cfg.Mail.MonthlyHour).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Server running", "addr", "http://localhost"+server.Addr, "env", cfg.App.Env)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
	}
}
