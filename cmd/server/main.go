package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/duskwatch/werewolf/internal/api"
	"github.com/duskwatch/werewolf/internal/chat"
	"github.com/duskwatch/werewolf/internal/config"
	"github.com/duskwatch/werewolf/internal/database"
	"github.com/duskwatch/werewolf/internal/game"
	"github.com/duskwatch/werewolf/internal/id"
	"github.com/duskwatch/werewolf/internal/middleware"
	"github.com/duskwatch/werewolf/internal/store/pg"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Try multiple paths to find a .env file; ignore its absence in
	// production where env vars are set directly.
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("✓ connected to database")

	roleConfig, err := game.LoadRoleConfig(cfg.Bot.RoleConfigPath)
	if err != nil {
		log.Fatalf("failed to load role config %s: %v", cfg.Bot.RoleConfigPath, err)
	}

	st := pg.New(db.PG)
	ids := id.NewGenerator()
	hub := chat.NewHub(st, ids, cfg.Bot.ID, cfg.Bot.Prefix, roleConfig, db.Redis)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub.Bootstrap(ctx)
	go hub.Run(ctx)
	log.Println("✓ chat hub started")

	handler := api.NewHandler(st, hub, cfg.JWT)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.POST("/users/", handler.CreateUser)
	router.POST("/users/login/", handler.Login)
	router.POST("/users/refresh/", handler.RefreshToken)

	protected := router.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		protected.GET("/users/", handler.GetUsers)
		protected.GET("/users/info/", handler.GetUserInfo)
	}

	// The websocket upgrade authenticates itself (Bearer header or
	// ?token= query) rather than going through AuthMiddleware, since a
	// failed upgrade needs to reply over plain HTTP before any
	// connection exists to carry an Error frame.
	router.GET("/ws", handler.HandleWebSocket)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🚀 server starting on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	cancel() // stop the hub's fanout subscription and any running game loops' context-aware waits

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Println("server exited gracefully")
}
