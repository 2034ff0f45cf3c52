package main

import (
	_ "dhobighar-backend/api/swagger" // swagger docs
	"dhobighar-backend/internal/database"
	"dhobighar-backend/internal/handler"
	"dhobighar-backend/internal/middleware"
	"dhobighar-backend/internal/repository"
	"dhobighar-backend/internal/service"
	"dhobighar-backend/internal/websocket"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Dhobighar Billing API
// @version         1.0
// @description     Backend for the Dhobighar laundry billing app: invoices, offline sync, catalog and staff approval.
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
		dbName = "dhobighar"
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

	// Local store backing the offline queue, invoice cache and id counter
	storePath := os.Getenv("LOCAL_STORE_PATH")
	if storePath == "" {
		storePath = "data/localstore.json"
	}
	localStore, err := repository.NewFileStore(storePath)
	if err != nil {
		log.Fatalf("Local store initialization failed: %v", err)
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	itemRepo := repository.NewServiceItemRepository(db)
	pkgRepo := repository.NewPackageRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	counterRepo := repository.NewCounterRepository(db)
	txManager := repository.NewTransactionManager(db)

	probe := service.NewDBProbe(db)
	userService := service.NewUserService(userRepo, notifRepo, auditRepo, txManager, wsHub)
	auditService := service.NewAuditService(auditRepo)
	catalogService := service.NewCatalogService(itemRepo, pkgRepo, auditRepo)
	billingService := service.NewBillingService(itemRepo, localStore)
	syncService := service.NewSyncService(invoiceRepo, counterRepo, txManager, localStore, probe, wsHub)
	exportService := service.NewExportService(syncService)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService, auditService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	invoiceHandler := handler.NewInvoiceHandler(billingService, syncService)
	exportHandler := handler.NewExportHandler(exportService)

	// Background queue drain: once at startup, then every 30 seconds
	syncService.StartScheduler()
	defer syncService.StopScheduler()

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true // mobile clients, no cookie auth
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint (admin event feed)
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	catalogHandler.RegisterRoutes(router.Group(""))
	invoiceHandler.RegisterRoutes(router.Group(""))
	exportHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
