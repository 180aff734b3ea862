package main

import (
	"os"

	_ "backend/api/swagger" // swagger docs
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/logging"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Approval Workflow API
// @version         1.0
// @description     Role-gated approval workflows for sales orders, production, overtime and general requests.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log := logging.Get()

	if err := godotenv.Load("configs/.env"); err != nil {
		log.Info("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.WithError(err).Fatal("Database connection failed")
	}
	log.Info("Connected to PostgreSQL successfully")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	productionRepo := repository.NewProductionRepository(db)
	overtimeRepo := repository.NewOvertimeRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	lookupRepo := repository.NewLookupRepository(db)

	userService := service.NewUserService(userRepo, auditRepo, txManager)
	orderService := service.NewOrderService(orderRepo, auditRepo, txManager, wsHub)
	productionService := service.NewProductionService(productionRepo, auditRepo, txManager, wsHub)
	overtimeService := service.NewOvertimeService(overtimeRepo, auditRepo, txManager, wsHub)
	requestService := service.NewRequestService(requestRepo, auditRepo, txManager, wsHub)
	taskService := service.NewTaskService(orderRepo, productionRepo, overtimeRepo, requestRepo)
	lookupService := service.NewLookupService(lookupRepo)
	auditService := service.NewAuditService(auditRepo)

	// Approval and cancellation endpoints re-verify the caller's password.
	confirmPassword := middleware.ConfirmPassword(userRepo)

	userHandler := handler.NewUserHandler(userService)
	orderHandler := handler.NewOrderHandler(orderService, confirmPassword)
	productionHandler := handler.NewProductionHandler(productionService, confirmPassword)
	overtimeHandler := handler.NewOvertimeHandler(overtimeService, confirmPassword)
	requestHandler := handler.NewRequestHandler(requestService, confirmPassword)
	taskHandler := handler.NewTaskHandler(taskService)
	lookupHandler := handler.NewLookupHandler(lookupService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Confirm-Password"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	api := router.Group("/api")
	userHandler.RegisterRoutes(api)
	orderHandler.RegisterRoutes(api)
	productionHandler.RegisterRoutes(api)
	overtimeHandler.RegisterRoutes(api)
	requestHandler.RegisterRoutes(api)
	taskHandler.RegisterRoutes(api)
	lookupHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.WithField("port", port).Info("Server listening")
	if err := router.Run(":" + port); err != nil {
		log.WithError(err).Fatal("Server failed")
	}
}
