package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/triviaengine/sessionengine/internal/config"
	"github.com/triviaengine/sessionengine/internal/engine"
	"github.com/triviaengine/sessionengine/internal/hub"
	pgRepo "github.com/triviaengine/sessionengine/internal/repository/postgres"
	redisRepo "github.com/triviaengine/sessionengine/internal/repository/redis"
	"github.com/triviaengine/sessionengine/internal/scorepolicy"
	"github.com/triviaengine/sessionengine/internal/transport/httpapi"
	"github.com/triviaengine/sessionengine/pkg/database"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	log.Printf("loading configuration from %q", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("failed to load config: %v", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), database.PoolSettings{
		MaxOpenConns:    cfg.Database.PoolSize,
		MaxIdleConns:    cfg.Database.PoolSize,
		ConnMaxLifetime: time.Duration(cfg.Database.PoolRecycleSeconds) * time.Second,
		ConnectTimeout:  time.Duration(cfg.Database.ConnectTimeoutSeconds) * time.Second,
	})
	if err != nil {
		log.Printf("failed to connect to database: %v", err)
		os.Exit(1)
	}

	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("failed to connect to redis: %v", err)
		os.Exit(1)
	}
	log.Println("connected to redis")

	// Repositories.
	userRepo := pgRepo.NewUserRepo(db)
	triviaRepo := pgRepo.NewTriviaRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	triviaQuestionRepo := pgRepo.NewTriviaQuestionRepo(db)
	participationRepo := pgRepo.NewParticipationRepo(db)
	answerRepo := pgRepo.NewAnswerRepo(db)
	unitOfWork := pgRepo.NewUnitOfWork(db)

	// Redis presence cache mirrors last-seen timestamps on every heartbeat.
	// The engine's source of truth for presence is always
	// Participation.LastSeenAt; a failed mirror write only logs, it never
	// fails Heartbeat.
	presenceCache := redisRepo.NewPresenceCache(redisClient)

	h := hub.New()

	ticketTTL := cfg.Engine.TicketTTL()
	ticketStore := hub.NewRedisTicketStore(redisClient)

	scorePolicy := scorepolicy.FromPoints(cfg.Engine.PointsForEasy, cfg.Engine.PointsForMedium, cfg.Engine.PointsForHard)

	eng := engine.New(engine.Dependencies{
		UnitOfWork:      unitOfWork,
		Trivias:         triviaRepo,
		Questions:       questionRepo,
		TriviaQuestions: triviaQuestionRepo,
		Participations:  participationRepo,
		Answers:         answerRepo,
		Users:           userRepo,
		Hub:             h,
		PresenceCache:   presenceCache,
		ScorePolicy:     scorePolicy,
		Config: engine.Config{
			PresenceTTL:              cfg.Engine.PresenceTTL(),
			DefaultQuestionTimeLimit: cfg.Engine.DefaultQuestionTimeLimit(),
		},
	})

	api := httpapi.New(eng, h, ticketStore, ticketTTL)

	router := gin.Default()
	if err := router.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	api.RegisterRoutes(router.Group("/api"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("server exited properly")
}
