package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/fardaria/api/internal/config"
	"github.com/fardaria/api/internal/database"
	"github.com/fardaria/api/internal/database/memstore"
	"github.com/fardaria/api/internal/router"
	"github.com/fardaria/api/internal/service"
	"github.com/fardaria/api/internal/ws"
)

func main() {
	// .env is optional; environment variables win
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	var (
		store    router.Store
		db       service.TxBeginner
		newStore service.NewOrderStore
	)

	switch cfg.StoreDriver {
	case "memory":
		mem := memstore.New()
		store = mem
		db = mem
		newStore = func(tx database.DBTX) service.OrderStore {
			return tx.(service.OrderStore)
		}
		log.Println("Using in-memory store")

	case "postgres":
		ctx := context.Background()
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Unable to connect to database: %v", err)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			log.Fatalf("Unable to ping database: %v", err)
		}
		log.Println("Connected to database")

		store = database.New(pool)
		db = pool
		newStore = func(tx database.DBTX) service.OrderStore {
			return database.New(tx)
		}

	default:
		log.Fatalf("Unknown STORE_DRIVER %q (want postgres or memory)", cfg.StoreDriver)
	}

	hub := ws.NewHub()
	go hub.Run()

	r := router.New(store, db, newStore, hub)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}
