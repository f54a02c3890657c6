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

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/config"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/leave"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/task"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/user"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/hris-whatsapp-bot/internal/handler/http"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/database"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/twilio"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/repository/memory"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/repository/postgresql"
	serviceAuth "github.com/cmlabs-hris/hris-whatsapp-bot/internal/service/auth"
	serviceChat "github.com/cmlabs-hris/hris-whatsapp-bot/internal/service/chat"
)

const (
	appName    = "hris-whatsapp-bot"
	appVersion = "v1.0.0"
)

type repositories struct {
	users    user.UserRepository
	leaves   leave.LeaveRequestRepository
	projects task.ProjectRepository
	tasks    task.TaskRepository
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	appLogger, logCloser, err := logger.New(logger.Options{
		App:     appName,
		Version: appVersion,
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		File:    cfg.App.LogFile,
	})
	if err != nil {
		log.Fatal("Error creating logger: ", err)
	}
	defer logCloser.Close()
	slog.SetDefault(appLogger)

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLogger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer repos.close()

	if cfg.Seed.Enabled {
		_, err := fixtures.Seed(ctx, repos.users, repos.projects, fixtures.Defaults{
			AdminPhone: cfg.Seed.AdminPhone,
			AdminName:  cfg.Seed.AdminName,
			Projects:   cfg.Seed.Projects,
		}, appLogger)
		if err != nil {
			return fmt.Errorf("seed defaults: %w", err)
		}
	}

	authService := serviceAuth.NewAuthService(repos.users, appLogger, cfg.Session.MaxLoginAttempts)
	chatService := serviceChat.NewChatService(
		repos.users,
		repos.leaves,
		repos.projects,
		repos.tasks,
		authService,
		appLogger,
		cfg.Session.Timeout,
	)

	scheduler := cron.NewScheduler(appLogger)
	sessionJobs := cron.NewSessionJobs(repos.users, cfg.Session.Timeout, appLogger)
	if err := sessionJobs.RegisterJobs(scheduler, cfg.Session.SweepSchedule); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	var verifier *twilio.WebhookVerifier
	if cfg.Twilio.AuthToken != "" {
		verifier = twilio.NewWebhookVerifier(cfg.Twilio.AuthToken, cfg.Twilio.WebhookURL)
	} else {
		appLogger.Warn("TWILIO_AUTH_TOKEN not set, webhook signatures are not verified")
	}

	webhookHandler := appHTTP.NewWebhookHandler(chatService, appLogger)
	router := appHTTP.NewRouter(appLogger, webhookHandler, verifier)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Server running", "addr", server.Addr, "db_driver", cfg.Database.Driver)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openRepositories(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) (repositories, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		appLogger.Warn("Using in-memory store, data is lost on restart")
		store := memory.NewStore()
		return repositories{
			users:    store.Users(),
			leaves:   store.LeaveRequests(),
			projects: store.Projects(),
			tasks:    store.Tasks(),
			close:    func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return repositories{}, fmt.Errorf("connect database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return repositories{}, err
		}
		appLogger.Info("Database schema applied")
	}

	return repositories{
		users:    postgresql.NewUserRepository(db),
		leaves:   postgresql.NewLeaveRequestRepository(db),
		projects: postgresql.NewProjectRepository(db),
		tasks:    postgresql.NewTaskRepository(db),
		close:    db.Close,
	}, nil
}
