package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"trivia-arena-service/internal/app"
	"trivia-arena-service/internal/domain"
	"trivia-arena-service/internal/idgen"
	pgstore "trivia-arena-service/internal/infra/postgres"
	pgmigrations "trivia-arena-service/internal/infra/postgres/migrations"
	infraredis "trivia-arena-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestWinnerHistoryEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	durable := pgstore.NewWinnerStore(pool)
	archive := infraredis.NewWinnerArchive(redisClient, durable, 5*time.Minute)
	arenas := infraredis.NewArenaStore(redisClient, 5*time.Minute)
	service := app.NewArenaService(arenas, archive, idgen.New(), domain.DefaultScoring(), 50*time.Millisecond)

	arena, history, err := service.CreateArena(ctx, "admin-1", "Quizmaster")
	if err != nil {
		t.Fatalf("create arena: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history for fresh admin, got %v", history)
	}

	_, team, err := service.JoinArena(ctx, "team-1", arena.Code(), "Falcons")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := service.StartQuestion("admin-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	service.Buzz("team-1")
	if err := service.EvaluateAnswer("admin-1", team.ID, domain.VerdictCorrect, false); err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if err := service.AnnounceFinalWinner(ctx, "admin-1", "Falcons"); err != nil {
		t.Fatalf("announce: %v", err)
	}

	winners, err := service.PreviousWinners(ctx, "admin-1")
	if err != nil {
		t.Fatalf("previous winners: %v", err)
	}
	if len(winners) != 1 || winners[0].Name != "Falcons" {
		t.Fatalf("expected Falcons in history, got %v", winners)
	}

	// Drop the Redis cache: the history must come back from Postgres.
	if err := redisClient.FlushAll(ctx).Err(); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	winners, err = archive.List(ctx, "admin-1")
	if err != nil {
		t.Fatalf("list after flush: %v", err)
	}
	if len(winners) != 1 || winners[0].Name != "Falcons" {
		t.Fatalf("expected durable history after cache loss, got %v", winners)
	}

	// The scheduled teardown deregisters the arena and clears the liveness key.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := service.Arena(arena.Code()); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("arena never torn down after final winner")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if arenas.Exists(arena.Code()) {
		t.Fatalf("expected liveness marker cleared")
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "arena", "POSTGRES_PASSWORD": "arenapass", "POSTGRES_DB": "arenadb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://arena:arenapass@%s:%s/arenadb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
