package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kirves-server/server/service"
	"kirves-server/server/store"
	"kirves-server/server/tx"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	_ = godotenv.Load()

	var migrate bool
	for _, a := range os.Args[1:] {
		if a == "--migrate" {
			migrate = true
		}
	}

	port := getenv("PORT", "8080")
	txTimeout := time.Duration(atoiDef(os.Getenv("TX_TIMEOUT_SECONDS"), 0)) * time.Second
	if txTimeout == 0 {
		txTimeout = tx.DefaultTimeout
	}

	var gateway service.Store
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := store.Open(dsn)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close(context.Background())
		if err := db.Ping(context.Background()); err != nil {
			log.Fatal(err)
		}
		if migrate || getenv("AUTO_MIGRATE", "") == "1" {
			if err := store.Migrate(context.Background(), db); err != nil {
				log.Fatal(err)
			}
			log.Println("migrated")
			if migrate {
				return
			}
		}
		gateway = db
	} else {
		log.Println("DATABASE_URL not set, using in-memory store (state is lost on restart)")
		gateway = store.NewMem()
	}

	svc := service.New(gateway, txTimeout)
	ident := HeaderIdentity{Header: getenv("IDENTITY_HEADER", "X-Player-Email")}

	r := Router(svc, ident)
	srv := &http.Server{Addr: ":" + port, Handler: r, ReadTimeout: 15 * time.Second, WriteTimeout: 15 * time.Second}

	go func() {
		log.Printf("listening on http://localhost:%s (Ctrl+C to stop)", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("stopped")
}
