package main

import (
	"log"
	"net/http"

	"github.com/rs/cors"

	"mileage-manager/internal/config"
	"mileage-manager/internal/handlers"
	"mileage-manager/internal/services"
	"mileage-manager/internal/session"
	"mileage-manager/internal/store"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize document store
	st, err := store.NewPostgres(cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Initialize session manager
	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionDuration, cfg.SessionActiveWindow)

	// Initialize email service
	emailService := services.NewEmailService(cfg)

	router := handlers.NewRouter(handlers.Deps{
		Store:    st,
		Sessions: sessions,
		Email:    emailService,
		Cfg:      cfg,
	})

	// CORS configuration
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})

	// Start server
	log.Printf("Server running on port %s", cfg.AppPort)
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, corsHandler.Handler(router)))
}
