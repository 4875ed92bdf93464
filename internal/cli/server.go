package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trivia-arena-service/internal/app"
	"trivia-arena-service/internal/config"
	"trivia-arena-service/internal/idgen"
	"trivia-arena-service/internal/infra/memory"
	pgstore "trivia-arena-service/internal/infra/postgres"
	redisinfra "trivia-arena-service/internal/infra/redis"
	transport "trivia-arena-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the arena server",
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
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 24*time.Hour)
	winnersTTL := config.TTLDuration(cfg.Arena.WinnersTTL, 24*time.Hour)
	closeDelay := config.TTLDuration(cfg.Arena.CloseDelay, 4*time.Second)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var durable *pgstore.WinnerStore
	if pool != nil {
		durable = pgstore.NewWinnerStore(pool)
	}

	var arenas app.ArenaRepository = memory.NewArenaStore()
	if redisClient != nil {
		arenas = redisinfra.NewArenaStore(redisClient, redisTTL)
	}

	var winners app.WinnerArchive = memory.NewWinnerArchive()
	switch {
	case redisClient != nil && durable != nil:
		winners = redisinfra.NewWinnerArchive(redisClient, durable, winnersTTL)
	case redisClient != nil:
		winners = redisinfra.NewWinnerArchive(redisClient, nil, winnersTTL)
	case durable != nil:
		winners = durable
	}

	service := app.NewArenaService(arenas, winners, idgen.New(), cfg.ScoringValues(), closeDelay)
	wsHandler := transport.NewWSHandler(service)

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
		log.Printf("starting arena service on :%s", finalPort)
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
