package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/punchamoorthee/bankstream/internal/api"
	"github.com/punchamoorthee/bankstream/internal/config"
	"github.com/punchamoorthee/bankstream/internal/service"
	"github.com/punchamoorthee/bankstream/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	eventStore, err := store.NewStore(cfg.DBSource)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer eventStore.Close()

	if err := eventStore.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Unable to ensure schema: %v", err)
	}

	// Initialize Layers
	accounts := service.NewAccountService(eventStore)
	handler := api.NewHandler(accounts)

	// Router
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", handler.HealthCheck)

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	handler.Routes(apiV1)

	log.Printf("Server starting on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
