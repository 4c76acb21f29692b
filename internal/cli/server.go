package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"lesson-quiz-service/internal/app"
	"lesson-quiz-service/internal/config"
	"lesson-quiz-service/internal/domain"
	"lesson-quiz-service/internal/infra/memory"
	pgstore "lesson-quiz-service/internal/infra/postgres"
	redisstore "lesson-quiz-service/internal/infra/redis"
	transport "lesson-quiz-service/internal/transport/http"
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
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pgstore.NewQuizLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var bank app.QuestionBank
	if redisClient != nil {
		bank = redisstore.NewQuestionBank(redisClient, loader, quizTTL)
	} else {
		bank = memory.NewQuestionBank(loader, quizTTL)
	}

	var attempts app.AttemptStore = memory.NewAttemptStore()
	if pool != nil {
		attempts = pgstore.NewAttemptStore(pool)
	}
	if redisClient != nil {
		rankingTTL := config.TTLDuration(cfg.Redis.RankingTTL, 30*time.Second)
		attempts = redisstore.NewRankingCache(redisClient, attempts, rankingTTL)
	}

	rankingLimit := cfg.Quiz.RankingLimit
	if rankingLimit == 0 {
		rankingLimit = 10
	}

	service := app.NewQuizService(bank, attempts)
	wsHandler := transport.NewWSHandler(service, rankingLimit)
	rankingHandler := transport.NewRankingHandler(service, rankingLimit)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.Handle("/ranking", rankingHandler)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting lesson quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes seeds one demo week; swap the loader for Postgres in production.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"week-01": {
			ID:    "week-01",
			Title: "Week 1: Creation",
			Days:  []string{"sunday", "monday", "tuesday"},
			Questions: []domain.Question{
				{
					ID:            "q1",
					Day:           "sunday",
					Prompt:        "On which day were the lights in the firmament made?",
					Options:       []string{"First", "Second", "Fourth"},
					CorrectOption: 2,
				},
				{
					ID:            "q2",
					Day:           "monday",
					Prompt:        "What was created on the fifth day?",
					Options:       []string{"Land animals", "Sea creatures and birds", "Plants"},
					CorrectOption: 1,
				},
				{
					ID:            "q3",
					Day:           "tuesday",
					Prompt:        "What did God do on the seventh day?",
					Options:       []string{"Rested", "Planted a garden", "Made the stars"},
					CorrectOption: 0,
				},
			},
		},
	}
}
