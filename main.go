package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"linkup-service/internal/auth"
	"linkup-service/internal/config"
	"linkup-service/internal/db"
	"linkup-service/internal/events"
	"linkup-service/internal/handlers"
	"linkup-service/internal/logger"
	"linkup-service/internal/middleware"
	"linkup-service/internal/observability"
	"linkup-service/internal/repositories"
	"linkup-service/internal/telemetry"
	"linkup-service/internal/tracing"
	"linkup-service/internal/ws"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPEndpoint != "" {
		shutdown, err := tracing.Init(ctx, cfg.OTLPEndpoint, cfg.Environment)
		if err != nil {
			logger.Log.WithError(err).Warn("tracing disabled")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(shutdownCtx)
			}()
		}
	}

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to database")
	}
	defer database.Close()

	publisher := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	events.SetPublisher(publisher)

	audit := telemetry.NewAuditEmitter(publisher, "audit.linkup", cfg.Environment)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
	}

	userRepo := repositories.NewUserRepo(database)
	followRepo := repositories.NewFollowRepo(database)
	notificationRepo := repositories.NewNotificationRepo(database)
	chatRepo := repositories.NewChatRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	jobRepo := repositories.NewJobRepo(database)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	verifier := auth.NewGoogleVerifier(cfg.GoogleClientID)

	hub := ws.NewHub()

	authHandler := handlers.NewAuthHandler(userRepo, tokens, verifier, audit)
	socialHandler := handlers.NewSocialHandler(userRepo, followRepo, notificationRepo)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	chatHandler := handlers.NewChatHandler(chatRepo, messageRepo, followRepo, userRepo, hub)
	jobHandler := handlers.NewJobHandler(jobRepo, userRepo, notificationRepo)
	chatWS := ws.NewChatWebSocketHandler(hub, chatRepo, messageRepo, followRepo, tokens)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("linkup-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authRateLimit := middleware.NewAuthRateLimiter(redisClient).Limit()
	authRequired := middleware.AuthMiddleware(tokens)

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authRateLimit, authHandler.Register)
		authRoutes.POST("/login", authRateLimit, authHandler.Login)
		authRoutes.POST("/google", authRateLimit, authHandler.GoogleLogin)
		authRoutes.GET("/me", authRequired, authHandler.Me)
	}

	router.GET("/search", authRequired, authHandler.SearchUsers)

	users := router.Group("/users", authRequired)
	{
		users.GET("/:user_id", authHandler.GetProfile)
		users.PATCH("/:user_id", authHandler.UpdateProfile)
	}

	social := router.Group("/social", authRequired)
	{
		social.POST("/follow", socialHandler.Follow)
		social.POST("/follow/respond", socialHandler.RespondToRequest)
		social.POST("/unfollow", socialHandler.Unfollow)
		social.GET("/follow-status/:user_id", socialHandler.FollowStatus)
		social.GET("/follow-requests", socialHandler.ListPendingRequests)
		social.GET("/following/:user_id", socialHandler.Following)
		social.GET("/followers/:user_id", socialHandler.Followers)
	}

	notifications := router.Group("/notifications", authRequired)
	{
		notifications.GET("", notificationHandler.List)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
	}

	chats := router.Group("/chats", authRequired)
	{
		chats.GET("", chatHandler.ListRooms)
		chats.POST("", chatHandler.CreateRoom)
		chats.GET("/:room_id", chatHandler.GetRoom)
		chats.GET("/:room_id/messages", chatHandler.ListMessages)
		chats.POST("/:room_id/messages", chatHandler.PostMessage)
		chats.POST("/:room_id/read", chatHandler.MarkRead)
	}

	applications := router.Group("/job-applications", authRequired)
	{
		applications.GET("/mine", jobHandler.MyApplications)
		applications.POST("/:application_id/status", jobHandler.SetApplicationStatus)
	}

	jobs := router.Group("/jobs", authRequired)
	{
		jobs.GET("", jobHandler.ListPostings)
		jobs.POST("", jobHandler.CreatePosting)
		jobs.GET("/:job_id", jobHandler.GetPosting)
		jobs.PUT("/:job_id", jobHandler.UpdatePosting)
		jobs.DELETE("/:job_id", jobHandler.DeactivatePosting)
		jobs.POST("/:job_id/apply", jobHandler.Apply)
		jobs.GET("/:job_id/applications", jobHandler.ListApplications)
	}

	// Token auth for the websocket happens inside the handler so browser
	// clients can pass it as a query parameter.
	router.GET("/ws/chat/:room_id", chatWS.Handle)

	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Log.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Error("server error")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("graceful shutdown failed")
		os.Exit(1)
	}
}
