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
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"chatlink-service/internal/cache"
	"chatlink-service/internal/db"
	"chatlink-service/internal/dispatch"
	"chatlink-service/internal/fanout"
	"chatlink-service/internal/handlers"
	"chatlink-service/internal/media"
	"chatlink-service/internal/middleware"
	"chatlink-service/internal/observability"
	"chatlink-service/internal/rabbitmq"
	"chatlink-service/internal/repositories"
	"chatlink-service/internal/telemetry"
	"chatlink-service/internal/ws"
)

const serviceName = "chatlink-service"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := telemetry.SetupTracing(ctx, serviceName, os.Getenv("OTLP_ENDPOINT"))
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("trace shutdown: %v", err)
		}
	}()

	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	publisher := rabbitmq.NewPublisher(os.Getenv("AMQP_URL"), getEnv("AMQP_EXCHANGE", "chatlink.events"))
	defer publisher.Close()
	observability.SetPublisher(publisher)

	audit := telemetry.NewAuditEmitter(publisher, "audit.chatlink", serviceName, getEnv("ENVIRONMENT", "dev"))

	members := cache.NewGroupMembers(os.Getenv("REDIS_ADDR"))

	messageRepo := repositories.NewMessageRepo(database)
	groupRepo := repositories.NewGroupRepo(database)
	scheduleRepo := repositories.NewScheduleRepo(database)
	reminderRepo := repositories.NewReminderRepo(database)
	statusRepo := repositories.NewStatusRepo(database)
	notificationRepo := repositories.NewNotificationRepo(database)

	registry := ws.NewRegistry()
	wsRouter := ws.NewRouter(registry)
	relay := ws.NewWatchRelay(wsRouter)

	verifier := middleware.NewTokenVerifier(getEnv("JWT_SECRET", "dev-secret"))
	gateway := ws.NewGateway(registry, wsRouter, relay, verifier)

	fan := fanout.New(wsRouter, groupRepo, members)
	mediaStore := media.PassthroughStore{}

	messageHandler := handlers.NewMessageHandler(messageRepo, groupRepo, scheduleRepo, mediaStore, fan)
	groupHandler := handlers.NewGroupHandler(groupRepo, members, mediaStore, audit)
	reminderHandler := handlers.NewReminderHandler(reminderRepo)
	statusHandler := handlers.NewStatusHandler(statusRepo, mediaStore)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)

	dispatcher := dispatch.New(scheduleRepo, reminderRepo, messageRepo, notificationRepo, wsRouter, audit, dispatch.DefaultInterval)
	go dispatcher.Run(ctx)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{getEnv("CORS_ORIGIN", "http://localhost:5173")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(verifier)

	router.GET("/messages/:id", authMiddleware, messageHandler.GetMessages)
	router.POST("/messages/:id", authMiddleware, messageHandler.SendDirectMessage)
	router.POST("/messages/group/:group_id", authMiddleware, messageHandler.SendGroupMessage)
	router.POST("/messages/schedule", authMiddleware, messageHandler.ScheduleMessage)
	router.DELETE("/messages/:message_id/all", authMiddleware, messageHandler.DeleteMessageForAll)
	router.DELETE("/messages/:message_id/me", authMiddleware, messageHandler.DeleteMessageForMe)

	router.POST("/groups", authMiddleware, groupHandler.CreateGroup)
	router.GET("/groups", authMiddleware, groupHandler.ListGroups)
	router.PUT("/groups/:group_id", authMiddleware, groupHandler.UpdateGroupInfo)
	router.PUT("/groups/:group_id/photo", authMiddleware, groupHandler.UpdateGroupPhoto)
	router.PUT("/groups/:group_id/admin", authMiddleware, groupHandler.ChangeAdmin)
	router.POST("/groups/:group_id/members", authMiddleware, groupHandler.AddMembers)
	router.DELETE("/groups/:group_id/members/:member_id", authMiddleware, groupHandler.RemoveMember)
	router.DELETE("/groups/:group_id", authMiddleware, groupHandler.DeleteGroup)

	router.POST("/reminders", authMiddleware, reminderHandler.CreateReminder)
	router.GET("/reminders", authMiddleware, reminderHandler.ListReminders)
	router.PUT("/reminders/:id", authMiddleware, reminderHandler.UpdateReminder)
	router.DELETE("/reminders/:id", authMiddleware, reminderHandler.DeleteReminder)

	router.POST("/statuses", authMiddleware, statusHandler.CreateStatus)
	router.GET("/statuses", authMiddleware, statusHandler.ListStatuses)
	router.POST("/statuses/:id/view", authMiddleware, statusHandler.MarkViewed)
	router.DELETE("/statuses/:id", authMiddleware, statusHandler.DeleteStatus)

	router.GET("/notifications", authMiddleware, notificationHandler.ListNotifications)
	router.DELETE("/notifications/:id", authMiddleware, notificationHandler.DeleteNotification)
	router.DELETE("/notifications", authMiddleware, notificationHandler.ClearNotifications)

	router.GET("/ws", gateway.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, audit, publisher, os.Getenv("DEBUG_ROUTES") == "true")

	srv := &http.Server{
		Addr:    ":" + getEnv("PORT", "8083"),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("listening on %s", srv.Addr)

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
