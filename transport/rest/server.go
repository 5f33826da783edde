package rest

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Start wires the request surface onto a router and serves it.
func Start(logger *slog.Logger, port string, arbiter matchArbiter) error {
	handlers := newHandlers(logger, arbiter)

	router := mux.NewRouter()
	router.HandleFunc("/ping", handlers.Ping).Methods(http.MethodGet)
	router.HandleFunc("/game", handlers.GetGame).Methods(http.MethodGet)
	router.HandleFunc("/game", handlers.PostMove).Methods(http.MethodPost)
	router.HandleFunc("/game", handlers.QuitGame).Methods(http.MethodDelete)
	router.HandleFunc("/game/create", handlers.CreateGame).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
