package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/roulettedraft/go/internal/dbconfig"
	"github.com/mcdev12/roulettedraft/go/internal/player"
)

func main() {
	seedPath := flag.String("seed", "go/internal/assets/players.yaml", "catalog seed file")
	redisAddr := flag.String("redis", os.Getenv("REDIS_ADDR"), "catalog cache to clear after seeding; empty skips it")
	flag.Parse()

	ctx := context.Background()

	// 1) Load the seed
	players, err := player.LoadSeedFile(*seedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load seed: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect to DB
	poolConfig, err := dbconfig.NewConfigFromEnv().PoolConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "database config: %v\n", err)
		os.Exit(1)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect error: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Upsert in one transaction
	repo := player.NewPostgresRepository(pool)
	if err := repo.UpsertPlayers(ctx, players); err != nil {
		fmt.Fprintf(os.Stderr, "seed players: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Players: %d upserted from %s\n", len(players), *seedPath)

	// 4) Drop cached lookups so running servers see the new catalog
	if *redisAddr == "" {
		return
	}
	client := redis.NewClient(&redis.Options{Addr: *redisAddr})
	defer client.Close()
	if err := player.NewCachedRepository(repo, client, 0).Invalidate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "clear catalog cache: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Catalog cache at %s cleared\n", *redisAddr)
}
