package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/waterline/internal/api"
	"github.com/terraincognita07/waterline/internal/config"
	"github.com/terraincognita07/waterline/internal/hydration"
	"github.com/terraincognita07/waterline/internal/i18n"
	"github.com/terraincognita07/waterline/internal/metrics"
	"github.com/terraincognita07/waterline/internal/reminders"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	app      *fiber.App
	registry *hydration.Registry
	port     int
}

func newServeCommand(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, options)
		},
	}
}

func runServe(cmd *cobra.Command, options *rootOptions) error {
	sigCtx, stopSignals := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	env, err := loadEnvironment(sigCtx, options)
	if err != nil {
		return err
	}
	defer env.close()

	srv, err := newServer(sigCtx, env.cfg, env.backend, env.location, env.logger)
	if err != nil {
		return err
	}
	defer srv.registry.Close()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.app.ShutdownWithContext(shutdownCtx); err != nil {
			env.logger.Error("server shutdown failed", zap.Error(err))
		}
	}()

	env.logger.Info("waterline listening",
		zap.Int("port", srv.port),
		zap.String("store", env.cfg.Store.Driver),
		zap.String("tz", env.location.String()),
	)
	if err := srv.app.Listen(fmt.Sprintf(":%d", srv.port)); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func newServer(ctx context.Context, cfg *config.Config, backend Backend, location *time.Location, zapLogger *zap.Logger) (*server, error) {
	secretKey, err := cfg.ResolveSecretKey()
	if err != nil {
		return nil, err
	}
	port, err := config.ParsePort(cfg.Server.Port)
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.ReminderTimeout()
	if err != nil {
		return nil, err
	}

	i18nManager, err := i18n.NewEmbeddedManager(cfg.Server.DefaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("i18n init failed: %w", err)
	}

	generator, err := newReminderGenerator(ctx, cfg.Reminders, zapLogger)
	if err != nil {
		return nil, err
	}

	appMetrics := metrics.New()
	coordinator := reminders.NewCoordinator(generator, reminders.CoordinatorOptions{
		Timeout:  timeout,
		Logger:   zapLogger,
		Observer: appMetrics,
	})
	registry := hydration.NewRegistry(backend, appMetrics, hydration.Options{
		Location: location,
		Logger:   zapLogger,
		Observer: appMetrics,
		IdleTTL:  hydration.DefaultIdleTTL,
		OnEvict:  coordinator.Forget,
	})

	handler, err := api.NewHandler(registry, coordinator, i18nManager, api.Options{
		SecretKey:          secretKey,
		Location:           location,
		CookieSecure:       cfg.Server.CookieSecure,
		RemindersPerMinute: cfg.Reminders.RatePerMinute,
		Logger:             zapLogger,
		Metrics:            appMetrics,
	})
	if err != nil {
		registry.Close()
		return nil, fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Waterline",
		DisableStartupMessage: true,
		BodyLimit:             8 << 20,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(appMetrics.Middleware())
	app.Use(handler.LanguageMiddleware)
	api.RegisterRoutes(app, handler)

	return &server{app: app, registry: registry, port: port}, nil
}

func newReminderGenerator(ctx context.Context, cfg config.RemindersConfig, zapLogger *zap.Logger) (reminders.Generator, error) {
	if cfg.GeminiAPIKey == "" {
		zapLogger.Info("GEMINI_API_KEY not set, using the offline reminder schedule")
		return reminders.ScheduleGenerator{}, nil
	}
	model := cfg.GeminiModel
	if model == "" {
		model = reminders.DefaultGeminiModel
	}
	generator, err := reminders.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, model)
	if err != nil {
		return nil, fmt.Errorf("gemini init failed: %w", err)
	}
	return generator, nil
}
