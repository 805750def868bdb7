package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/YeonghyeonKO/waffle-sugang/internal/auth"
	"github.com/YeonghyeonKO/waffle-sugang/internal/cache"
	"github.com/YeonghyeonKO/waffle-sugang/internal/config"
	"github.com/YeonghyeonKO/waffle-sugang/internal/database"
	"github.com/YeonghyeonKO/waffle-sugang/internal/enrollment"
	"github.com/YeonghyeonKO/waffle-sugang/internal/handlers"
	"github.com/YeonghyeonKO/waffle-sugang/internal/notifier"
	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db := database.Connect(cfg)

	// Initialize Notifier
	var enrollmentNotifier notifier.Notifier
	if cfg.DiscordBotToken != "" {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			log.Printf("Discord notifier not initialized: %v", err)
		} else {
			enrollmentNotifier = notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID)
		}
	}

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db)
	engine := enrollment.NewEngine(db, cfg.CapacityCountsInstructors)
	listCache := cache.NewSeminarList(db, cfg.ListCacheTTL, cfg.EarliestListCacheTTL)
	userHandler := handlers.NewUserHandler(db, authHandler)
	seminarHandler := handlers.NewSeminarHandler(db, engine, listCache, enrollmentNotifier, authHandler)

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, userHandler, seminarHandler)

	// Start Server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
