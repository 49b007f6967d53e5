package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/appvote/portal/internal/app"
	"github.com/appvote/portal/internal/auth"
	"github.com/appvote/portal/internal/db/postgres"
	"github.com/appvote/portal/internal/metrics"
	"github.com/appvote/portal/internal/server"
)

func main() {
	log.SetOutput(os.Stdout)
	log.Println("Initializing server...")

	_ = godotenv.Load()

	client, err := postgres.NewClient(requiredEnv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err.Error())
	}
	log.Println("\tPostgres client initialized")

	metrics.Register()

	contest := app.NewContestService(client)
	contest.Admins = splitList(os.Getenv("ADMINS"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := contest.Initialize(ctx); err != nil {
		log.Fatal(err.Error())
	}
	log.Println("\tContest state loaded")

	authClient, err := auth.InitJwtAuth(
		envDefault("JWT_SECRET_PATH", "keys/portal.pem"),
		envDefault("JWT_PUBLIC_PATH", "keys/portal.pub"),
	)
	if err != nil {
		log.Fatal(err.Error())
	}
	log.Println("\tJWT keys loaded")

	srv := server.NewServer()
	srv.App = contest
	srv.AuthClient = authClient
	srv.IdentityClient = server.NewIdentityClient(requiredEnv("IDENTITY_PROVIDER_URL"))
	srv.SetHost(os.Getenv("HOST"))
	srv.AuthRoutes()

	corsWrapper := cors.New(cors.Options{
		AllowedOrigins:   splitList(envDefault("ALLOWED_ORIGINS", "http://localhost:5173")),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := handlers.CombinedLoggingHandler(os.Stdout, corsWrapper.Handler(srv.Handler()))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
		log.Printf("\tDefaulting to port %s", port)
	} else {
		log.Printf("\tUsing port %s from environment variable", port)
	}

	httpSrv := &http.Server{
		Handler:      handler,
		Addr:         fmt.Sprintf(":%s", port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		log.Println("Shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %s", err)
		}
		cancel()
	}()

	log.Println("Serving...")

	err = httpSrv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal(err.Error())
	}
	log.Println("Server closed")
}

func requiredEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("%s must be set", key)
	}
	return v
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
