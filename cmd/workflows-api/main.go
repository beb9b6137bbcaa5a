package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/workflows-api/pkg/auth"
	"github.com/dukex/workflows-api/pkg/channels/kafka"
	"github.com/dukex/workflows-api/pkg/cmd"
	"github.com/dukex/workflows-api/pkg/eventbus"
	"github.com/dukex/workflows-api/pkg/log"
	"github.com/dukex/workflows-api/pkg/otelhelper"
	cli "github.com/urfave/cli/v3"
)

const (
	defaultPort = 9091
	serviceName = "workflows-api"
)

func main() {
	command := &cli.Command{
		Name:                  serviceName,
		Usage:                 "Create and manage workflow definitions",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL (postgres://... or file://...)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:     "jwt-secret",
				Usage:    "Secret used to sign access tokens",
				Required: true,
				Sources:  cli.EnvVars("JWT_SECRET_KEY"),
			},
			&cli.StringFlag{
				Name:     "jwt-refresh-secret",
				Usage:    "Secret used to sign refresh tokens",
				Required: true,
				Sources:  cli.EnvVars("JWT_REFRESH_SECRET_KEY"),
			},
			&cli.StringFlag{
				Name:    "jwt-algorithm",
				Usage:   "HMAC algorithm for tokens (HS256, HS384, HS512)",
				Value:   auth.DefaultAlgorithm,
				Sources: cli.EnvVars("HASH_NAME_ALGORITHM"),
			},
			&cli.DurationFlag{
				Name:    "access-token-ttl",
				Usage:   "Lifetime of access tokens",
				Value:   auth.DefaultAccessTTL,
				Sources: cli.EnvVars("ACCESS_TOKEN_TTL"),
			},
			&cli.DurationFlag{
				Name:    "refresh-token-ttl",
				Usage:   "Lifetime of refresh tokens",
				Value:   auth.DefaultRefreshTTL,
				Sources: cli.EnvVars("REFRESH_TOKEN_TTL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka, none)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers, used by the kafka event bus",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.BoolFlag{
				Name:    "log-events",
				Usage:   "Write every published domain event to the log",
				Value:   true,
				Sources: cli.EnvVars("LOG_EVENTS"),
			},
			&cli.BoolFlag{
				Name:    "otel-enabled",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("api")
			logger.InfoContext(ctx, "Initializing Workflows API")

			if command.Bool("otel-enabled") {
				tracerProvider, err := otelhelper.Setup(ctx, serviceName)
				if err != nil {
					return fmt.Errorf("failed to initialize tracer: %w", err)
				}

				defer func() {
					if err := tracerProvider.Shutdown(context.Background()); err != nil {
						logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
					}
				}()
			}

			authConfig := auth.DefaultConfig()
			authConfig.Algorithm = command.String("jwt-algorithm")
			authConfig.AccessSecret = []byte(command.String("jwt-secret"))
			authConfig.RefreshSecret = []byte(command.String("jwt-refresh-secret"))
			authConfig.AccessTTL = command.Duration("access-token-ttl")
			authConfig.RefreshTTL = command.Duration("refresh-token-ttl")

			authProvider, err := auth.NewProvider(authConfig)
			if err != nil {
				return err
			}

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return fmt.Errorf("failed to initialize persistence: %w", err)
			}

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), kafka.ParseBrokers(command.String("kafka-brokers")), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			if command.Bool("log-events") {
				if err := eventbus.LogEvents(eventBus, log.WithModule("events")); err != nil {
					return err
				}

				if err := eventBus.Subscribe(ctx); err != nil {
					return fmt.Errorf("failed to subscribe to events: %w", err)
				}
			}

			api := NewAPI(
				logger,
				persistence,
				eventBus,
				authProvider,
			)

			err = api.Start(ctx, int(command.Int("port")))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API", "error", err)
			}

			return err
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := command.Run(ctx, os.Args)
	if err != nil {
		slog.Error("API exited with error", "error", err)
		os.Exit(1)
	}
}
