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

	"ballknowledge-game-service/internal/app"
	"ballknowledge-game-service/internal/chat"
	"ballknowledge-game-service/internal/config"
	"ballknowledge-game-service/internal/content"
	"ballknowledge-game-service/internal/infra/memory"
	pgstore "ballknowledge-game-service/internal/infra/postgres"
	redisstore "ballknowledge-game-service/internal/infra/redis"
	transport "ballknowledge-game-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
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

	var replier chat.Replier
	var generator app.Generator
	if cfg.Gemini.APIKey != "" {
		client := content.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.ImageModel)
		generator = client
		replier = client
	} else {
		log.Println("no Gemini API key configured, serving fixture questions")
		generator = content.NewFixture()
	}
	cacheTTL := config.Duration(cfg.Game.QuestionCacheTTL, 10*time.Minute)
	generator = content.NewCache(generator, cacheTTL)

	var scores app.ScoreStore = memory.NewScoreStore()
	var chatHistory chat.HistoryStore
	switch {
	case pool != nil:
		scores = pgstore.NewScoreStore(pool)
	case redisClient != nil:
		scores = redisstore.NewScoreStore(redisClient)
	}
	if redisClient != nil {
		chatHistory = redisstore.NewChatHistoryStore(redisClient)
	}

	engineCfg := app.EngineConfig{
		QuestionTime:     config.Seconds(cfg.Game.QuestionTime, 10),
		GameDuration:     config.Seconds(cfg.Game.PlayerGuessTime, 60),
		AdvanceDelay:     config.Duration(cfg.Game.AdvanceDelay, 1200*time.Millisecond),
		PointsMultiplier: config.Seconds(cfg.Game.PointsMultiplier, 100),
	}

	wsHandler := transport.NewWSHandler(transport.Deps{
		Generator:   generator,
		Scores:      scores,
		Engine:      engineCfg,
		Replier:     replier,
		ChatHistory: chatHistory,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting game service on :%s", finalPort)
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
