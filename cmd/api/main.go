package main

import (
	"log"
	"os"

	_ "billbook/api/swagger" // swagger docs
	"billbook/internal/database"
	"billbook/internal/handler"
	"billbook/internal/middleware"
	"billbook/internal/repository"
	"billbook/internal/service"
	"billbook/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Billbook API
// @version         1.0
// @description     Bill and purchase order management: lifecycle transitions, recurring bills, and payments.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
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
		dbName = "billbook"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	billRepo := repository.NewBillRepository(db)
	poRepo := repository.NewPurchaseOrderRepository(db)
	recurringRepo := repository.NewRecurringBillRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	contactRepo := repository.NewContactRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	userRepo := repository.NewUserRepository(db)

	billService := service.NewBillService(billRepo, contactRepo, auditRepo, txManager, wsHub)
	poService := service.NewPurchaseOrderService(poRepo, billRepo, contactRepo, auditRepo, txManager, wsHub)
	recurringService := service.NewRecurringBillService(recurringRepo, billRepo, contactRepo, auditRepo, txManager, wsHub)
	paymentService := service.NewPaymentService(paymentRepo, billRepo, auditRepo, txManager, wsHub)
	contactService := service.NewContactService(contactRepo, auditRepo, txManager)
	auditService := service.NewAuditService(auditRepo)
	userService := service.NewUserService(userRepo)

	// Initialize Handlers
	billHandler := handler.NewBillHandler(billService)
	poHandler := handler.NewPurchaseOrderHandler(poService)
	recurringHandler := handler.NewRecurringBillHandler(recurringService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	contactHandler := handler.NewContactHandler(contactService)
	auditHandler := handler.NewAuditHandler(auditService)
	userHandler := handler.NewUserHandler(userService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
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
	billHandler.RegisterRoutes(router.Group(""))
	poHandler.RegisterRoutes(router.Group(""))
	recurringHandler.RegisterRoutes(router.Group(""))
	paymentHandler.RegisterRoutes(router.Group(""))
	contactHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))
	userHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
