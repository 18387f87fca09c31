package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

// serve bloque jusqu'au signal d'arrêt ou à l'échec de l'écoute, puis arrête le serveur.
// Une erreur d'écoute remonte à l'appelant au lieu de quitter le processus.
func serve(server *http.Server, quit <-chan os.Signal, shutdownTimeout time.Duration) error {
	serverErr := make(chan error, 1)
	go func() {
		log.Println("🚀 Serveur DisputeShield lancé sur", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("serveur arrêté: %w", err)
	case <-quit:
	}

	log.Println("🛑 Arrêt du serveur...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("arrêt forcé: %w", err)
	}
	log.Println("✅ Serveur arrêté")
	return nil
}
