package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"civicpulse-be/config"
	"civicpulse-be/controllers"
	"civicpulse-be/middlewares"
	"civicpulse-be/routes"
	"civicpulse-be/services"
	"civicpulse-be/stores"
)

const issuesPerUserPerDay = 5

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	db := config.ConnectDB()
	if db == nil {
		sugar.Fatal("Failed to connect to MongoDB")
	}
	sugar.Info("MongoDB connection established")

	config.ConnectRedis()
	sugar.Info("Redis connection established")

	issueStore := stores.NewMongoIssueStore(db)
	infraStore := stores.NewMongoInfrastructureStore(db)
	userStore := stores.NewMongoUserStore(db)

	verifier := services.NewWebhookVerifier(os.Getenv("VERIFY_WEBHOOK_URL"), sugar)
	notifier := services.NewWebhookNotifier(os.Getenv("NOTIFY_WEBHOOK_URL"), sugar)

	workflow := services.NewStatusWorkflow(issueStore, sugar)
	resolution := services.NewResolutionGateway(issueStore, userStore, verifier, notifier, workflow, sugar)

	authController := controllers.NewAuthController(userStore, sugar)
	issueController := controllers.NewIssueController(issueStore, userStore, workflow, resolution, sugar)
	infraController := controllers.NewInfraController(infraStore, sugar)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(sugar))
	r.Use(cors.New(corsConfig()))

	routes.AuthRoutes(r, authController)
	routes.IssueRoutes(r, issueController, middlewares.IssueRateLimiter(issuesPerUserPerDay))
	routes.InfraRoutes(r, infraController)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		sugar.Fatalf("Failed to start server: %v", err)
	}
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowCredentials = true
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "X-Request-ID")
	cfg.MaxAge = 12 * time.Hour

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowOrigins = strings.Split(origins, ",")
	} else {
		cfg.AllowOrigins = []string{"http://localhost:5173"}
	}
	return cfg
}
