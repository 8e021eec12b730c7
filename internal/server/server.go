package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"taskup/internal/auth"
	"taskup/internal/config"
	"taskup/internal/database"
	"taskup/internal/handler"
	"taskup/internal/middleware"
	"taskup/internal/repository"
	"taskup/internal/service"
	"taskup/internal/validation"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("❌ %w", err)
	}

	engine, err := NewEngine(cfg, db)
	if err != nil {
		return nil, err
	}

	return &Server{
		Engine: engine,
		DB:     db,
		Config: cfg,
	}, nil
}

// NewEngine wires repositories, services and handlers onto a gin engine.
func NewEngine(cfg *config.Config, db *gorm.DB) (*gin.Engine, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if err := validation.Register(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	gin.SetMode(cfg.GinMode)
	r := gin.Default()

	// Initialize repositories
	tx := repository.NewTransactor(db)
	memberRepo := repository.NewMemberRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	taskLogRepo := repository.NewTaskLogRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	metricsRepo := repository.NewMetricsRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	goalRepo := repository.NewGoalRepository(db)

	// Initialize services
	pointsService := service.NewPointsService(ledgerRepo, memberRepo)
	taskService := service.NewTaskService(tx, taskRepo, taskLogRepo, memberRepo, pointsService)
	achievementService := service.NewAchievementService(service.NewCheckers(taskLogRepo, loc), achievementRepo)
	metricsService := service.NewMetricsService(metricsRepo, taskRepo, goalRepo, loc)
	rewardService := service.NewRewardService(tx, rewardRepo, ledgerRepo)
	goalService := service.NewGoalService(goalRepo, taskRepo, memberRepo)

	// Initialize handlers
	taskHandler := handler.NewTaskHandler(taskService)
	pointsHandler := handler.NewPointsHandler(pointsService, rewardService, metricsService)
	achievementHandler := handler.NewAchievementHandler(achievementService)
	metricsHandler := handler.NewMetricsHandler(metricsService)
	rewardHandler := handler.NewRewardHandler(rewardService)
	goalHandler := handler.NewGoalHandler(goalService)

	tokens := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiry)

	// Public routes
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require a session in an organization
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(tokens, memberRepo))
	{
		// Task routes
		authorized.POST("/tasks", taskHandler.Create)
		authorized.GET("/tasks", taskHandler.List)
		authorized.GET("/tasks/board", taskHandler.Board)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.PATCH("/tasks/:id/status", taskHandler.ChangeStatus)
		authorized.PATCH("/tasks/:id/difficulty", taskHandler.ChangeDifficulty)
		authorized.PATCH("/tasks/:id/priority", taskHandler.ChangePriority)
		authorized.POST("/tasks/:id/assignees", taskHandler.Assign)
		authorized.DELETE("/tasks/:id/assignees/:user_id", taskHandler.Unassign)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
		authorized.GET("/tasks/:id/logs", taskHandler.Logs)

		// Points routes
		authorized.GET("/points/me", pointsHandler.Me)
		authorized.GET("/points/me/transactions", pointsHandler.Transactions)
		authorized.GET("/points/leaderboard", pointsHandler.Leaderboard)

		// Achievement routes
		authorized.GET("/achievements", achievementHandler.List)
		authorized.POST("/achievements/acknowledge", achievementHandler.Acknowledge)

		// Metrics routes
		authorized.GET("/metrics/points", metricsHandler.Points)
		authorized.GET("/dashboard", metricsHandler.Dashboard)

		// Reward routes
		authorized.POST("/rewards", rewardHandler.Create)
		authorized.GET("/rewards", rewardHandler.List)
		authorized.POST("/rewards/:id/redeem", rewardHandler.Redeem)
		authorized.GET("/redemptions/me", rewardHandler.MyRedemptions)
		authorized.PATCH("/redemptions/:id/status", rewardHandler.SetRedemptionStatus)

		// Goal routes
		authorized.POST("/goals", goalHandler.Create)
		authorized.GET("/goals", goalHandler.List)
		authorized.POST("/goals/:id/tasks", goalHandler.AttachTask)
		authorized.POST("/goals/:id/assignees", goalHandler.AddAssignee)
		authorized.PATCH("/goals/:id/status", goalHandler.UpdateStatus)
	}
	return r, nil
}

// Run serves HTTP until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.Config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("✅ Server exited properly")
	return nil
}
