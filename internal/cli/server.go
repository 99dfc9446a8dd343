package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"journey-quiz-service/internal/app"
	"journey-quiz-service/internal/config"
	"journey-quiz-service/internal/infra/kafka"
	"journey-quiz-service/internal/infra/memory"
	"journey-quiz-service/internal/infra/postgres"
	infraredis "journey-quiz-service/internal/infra/redis"
	"journey-quiz-service/internal/questionbank"
	"journey-quiz-service/internal/scoring"
	transport "journey-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, logger); err != nil {
			return err
		}
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	service, closeFn, err := buildService(cfg, logger, pool, redisClient)
	if err != nil {
		return err
	}
	defer closeFn()

	handler := transport.NewHandler(service, logger)
	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting quiz service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildService picks a backing store for each concern: Postgres for the
// question pool and completed games when configured, Redis for caches and
// sessions, memory otherwise.
func buildService(cfg config.Config, logger *slog.Logger, pool *pgxpool.Pool, redisClient *redis.Client) (*app.GameService, func(), error) {
	var loader memory.QuestionLoader = questionbank.NewLoader(cfg.Quiz.QuestionsFile)
	if pool != nil {
		loader = postgres.NewQuestionLoader(pool)
	}

	poolTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 2*time.Hour)

	var questions app.QuestionRepository
	var sessions app.SessionRepository
	var games app.GameRepository
	if redisClient != nil {
		questions = infraredis.NewQuestionRepository(redisClient, loader, poolTTL)
		sessions = infraredis.NewSessionStore(redisClient, sessionTTL)
		games = infraredis.NewGameStore(redisClient)
	} else {
		questions = memory.NewQuestionRepository(loader, poolTTL)
		sessions = memory.NewSessionStore()
		games = memory.NewGameStore()
	}
	if pool != nil {
		games = postgres.NewGameRepository(pool)
	}

	opts := []app.Option{app.WithLogger(logger)}
	closeFn := func() {}
	if cfg.Kafka.Enabled {
		publisher, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, app.WithPublisher(publisher))
		closeFn = func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("failed to close kafka producer", "error", err)
			}
		}
	}

	return app.NewGameService(questions, sessions, games, settingsFrom(cfg), opts...), closeFn, nil
}

func settingsFrom(cfg config.Config) app.Settings {
	q := cfg.Quiz
	return app.Settings{
		Rules: scoring.Rules{
			QuizLength:          q.Length,
			TimeLimitSeconds:    q.TimeLimitSeconds,
			MaxBonusPerQuestion: q.MaxBonusPerQuestion,
			MaxAccuracyPoints:   q.MaxAccuracyPoints,
			Denominator:         scoring.Denominator(q.AccuracyDenominator),
		},
		VerifyAttempts:   q.VerifyAttempts,
		PenanceCount:     q.PenanceCount,
		Locations:        q.Locations,
		LeaderboardLimit: cfg.Leaderboard.DefaultLimit,
		MaxLeaderboard:   cfg.Leaderboard.MaxLimit,
	}
}
