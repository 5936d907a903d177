package database

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Abhi-Verma2005/OMS-sub001/internal/config"
)

var (
	Pool  *pgxpool.Pool
	Redis *redis.Client
)

// ConnectDatabases opens the Postgres ledger pool and Redis. Postgres
// is mandatory; Redis only backs the rate limiter, so an unreachable
// Redis is a warning, not a boot failure.
func ConnectDatabases() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	connectPostgres(ctx)
	connectRedis(ctx)

	log.Println("✅ All databases connected")
}

func connectPostgres(ctx context.Context) {
	url := config.DatabaseURL()
	if url == "" {
		log.Fatal("❌ DATABASE_URL is not set")
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		log.Fatalf("❌ Postgres pool init failed: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("❌ Postgres unreachable: %v", err)
	}
	Pool = pool
	log.Println("✅ Postgres connected")

	if err := EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("❌ Schema migration failed: %v", err)
	}
	log.Println("✅ Ledger schema ready")
}

func connectRedis(ctx context.Context) {
	Redis = redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
	})

	if err := Redis.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis unreachable (%v) — rate limiting will fail open", err)
		return
	}
	log.Println("✅ Redis connected")
}
