package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/api"
	"github.com/agencydesk/agencydesk/internal/chat"
	"github.com/agencydesk/agencydesk/internal/config"
	"github.com/agencydesk/agencydesk/internal/db"
	"github.com/agencydesk/agencydesk/internal/identity"
	"github.com/agencydesk/agencydesk/internal/middleware"
	"github.com/agencydesk/agencydesk/internal/observ"
	"github.com/agencydesk/agencydesk/internal/repository/mongodb"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server exited: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	mongo, err := db.New(ctx, cfg.MongoURL, cfg.MongoDB, logger)
	if err != nil {
		return fmt.Errorf("init mongo: %w", err)
	}
	defer mongo.Close(context.Background())

	if err := mongo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// Redis only backs rate limiting, which fails open.
		logger.Warn("redis unreachable at startup", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	users := mongodb.NewUserStore(mongo)
	employees := mongodb.NewEmployeeStore(mongo)
	conversations := mongodb.NewConversationStore(mongo)
	messages := mongodb.NewMessageStore(mongo)
	projects := mongodb.NewProjectStore(mongo)
	announcements := mongodb.NewAnnouncementStore(mongo)
	orders := mongodb.NewOrderStore(mongo)
	items := mongodb.NewItemStore(mongo)
	tickets := mongodb.NewTicketStore(mongo)
	attendance := mongodb.NewAttendanceStore(mongo)
	leaves := mongodb.NewLeaveStore(mongo)
	ticketLabels := mongodb.NewLabelStore(mongo, "ticketLabels")
	taskLabels := mongodb.NewLabelStore(mongo, "taskLabels")
	noteCategories := mongodb.NewLabelStore(mongo, "noteCategories")

	resolver := identity.NewResolver(users, employees, logger)
	chatSvc := chat.NewService(conversations, messages, users, projects, employees, resolver, mongo, logger)

	authHandler := api.NewAuthHandler(users, cfg.JWTSecret, logger)
	userHandler := api.NewUserHandler(users, employees, resolver, logger)
	conversationHandler := api.NewConversationHandler(chatSvc, logger)
	messageHandler := api.NewMessageHandler(chatSvc, logger)
	projectHandler := api.NewProjectHandler(projects, logger)
	employeeHandler := api.NewEmployeeHandler(employees, logger)
	announcementHandler := api.NewAnnouncementHandler(announcements, logger)
	orderHandler := api.NewOrderHandler(orders, logger)
	itemHandler := api.NewItemHandler(items, logger)
	ticketHandler := api.NewTicketHandler(tickets, logger)
	attendanceHandler := api.NewAttendanceHandler(attendance, employees, resolver, logger)
	leaveHandler := api.NewLeaveHandler(leaves, employees, resolver, logger)
	ticketLabelHandler := api.NewLabelHandler(ticketLabels, "#4F46E5", logger)
	taskLabelHandler := api.NewLabelHandler(taskLabels, "", logger)
	noteCategoryHandler := api.NewLabelHandler(noteCategories, "", logger)
	uploadHandler := api.NewUploadHandler(cfg.UploadDir, logger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())

	r.GET("/v1/health", func(c *gin.Context) {
		if err := mongo.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"write_strategy": chatSvc.Strategy().String(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static("/uploads", cfg.UploadDir)

	r.POST("/v1/auth/login", authHandler.Login)

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg.JWTSecret, users))
	{
		v1.GET("/users/me", userHandler.Me)
		v1.GET("/users/lookup", userHandler.Lookup)

		admin := v1.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/users", userHandler.AdminList)
			admin.PATCH("/users/:id", userHandler.AdminUpdate)
			admin.POST("/employees", employeeHandler.Create)
			admin.DELETE("/orders/:id", orderHandler.Delete)
			admin.DELETE("/items/:id", itemHandler.Delete)
			admin.DELETE("/announcements/:id", announcementHandler.Delete)
			admin.DELETE("/ticket-labels/:id", ticketLabelHandler.Delete)
			admin.DELETE("/task-labels/:id", taskLabelHandler.Delete)
			admin.DELETE("/note-categories/:id", noteCategoryHandler.Delete)
		}

		v1.GET("/conversations", conversationHandler.List)
		v1.POST("/conversations", conversationHandler.Create)
		v1.GET("/conversations/:id/messages", conversationHandler.Messages)

		v1.POST("/messages", middleware.RateLimit(rdb, 30, time.Minute, logger), messageHandler.Create)
		v1.POST("/messages/read", messageHandler.MarkRead)

		v1.GET("/projects", projectHandler.List)
		v1.GET("/projects/:id", projectHandler.Get)
		v1.POST("/projects", projectHandler.Create)
		v1.PATCH("/projects/:id", projectHandler.Update)

		v1.GET("/employees", employeeHandler.List)
		v1.GET("/employees/:id", employeeHandler.Get)

		v1.GET("/announcements", announcementHandler.List)
		v1.POST("/announcements", announcementHandler.Create)
		v1.PATCH("/announcements/:id", announcementHandler.Update)

		v1.GET("/orders", orderHandler.List)
		v1.GET("/orders/:id", orderHandler.Get)
		v1.POST("/orders", orderHandler.Create)
		v1.PATCH("/orders/:id", orderHandler.Update)

		v1.GET("/items", itemHandler.List)
		v1.GET("/items/:id", itemHandler.Get)
		v1.POST("/items", itemHandler.Create)
		v1.PATCH("/items/:id", itemHandler.Update)

		v1.GET("/tickets", ticketHandler.List)
		v1.GET("/tickets/:id", ticketHandler.Get)
		v1.POST("/tickets", ticketHandler.Create)
		v1.PATCH("/tickets/:id", ticketHandler.Update)
		v1.POST("/tickets/:id/messages", ticketHandler.AddMessage)

		v1.GET("/attendance", attendanceHandler.List)
		v1.POST("/attendance/clock-in", attendanceHandler.ClockIn)
		v1.POST("/attendance/clock-out", attendanceHandler.ClockOut)

		v1.GET("/leaves", leaveHandler.List)
		v1.POST("/leaves", leaveHandler.Create)
		v1.PATCH("/leaves/:id", leaveHandler.Update)
		v1.DELETE("/leaves/:id", leaveHandler.Delete)

		v1.GET("/ticket-labels", ticketLabelHandler.List)
		v1.POST("/ticket-labels", ticketLabelHandler.Create)
		v1.PATCH("/ticket-labels/:id", ticketLabelHandler.Update)

		v1.GET("/task-labels", taskLabelHandler.List)
		v1.POST("/task-labels", taskLabelHandler.Create)
		v1.PATCH("/task-labels/:id", taskLabelHandler.Update)

		v1.GET("/note-categories", noteCategoryHandler.List)
		v1.POST("/note-categories", noteCategoryHandler.Create)
		v1.PATCH("/note-categories/:id", noteCategoryHandler.Update)

		v1.POST("/uploads", uploadHandler.Upload)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
