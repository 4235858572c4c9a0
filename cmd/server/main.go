package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/almirah2204/edify-pakistan-sub000/internal/handlers"
	authMiddleware "github.com/almirah2204/edify-pakistan-sub000/internal/middleware"
	"github.com/almirah2204/edify-pakistan-sub000/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize Firebase
	credPath := os.Getenv("FIREBASE_CREDENTIALS_PATH")
	if credPath == "" {
		credPath = "./firebase-service-account.json"
	}

	authClient, err := services.InitFirebase(credPath)
	if err != nil {
		log.Printf("Warning: Firebase initialization failed: %v", err)
		log.Println("Auth features will not work until valid credentials are provided")
	}

	// Initialize Database
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize Redis. The cache is nil-safe, so a missing REDIS_URL
	// only disables report caching.
	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Printf("Warning: Redis initialization failed: %v", err)
			cache = nil
		}
	} else {
		log.Println("Warning: REDIS_URL not set, report caching disabled")
	}

	// Initialize services
	settingsService := services.NewSettingsService(db)
	invoiceService := services.NewInvoiceService(db, cache, settingsService)
	paymentService := services.NewPaymentService(db, cache, services.NewMidtransService())
	reportService := services.NewReportService(db, cache)

	// Create Echo instance
	e := echo.New()
	e.HTTPErrorHandler = authMiddleware.CustomErrorHandler
	e.Validator = handlers.NewRequestValidator()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authClient)
	feeStructureHandler := handlers.NewFeeStructureHandler(db)
	studentFeeHandler := handlers.NewStudentFeeHandler(db)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	reportHandler := handlers.NewReportHandler(reportService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	publicHandler := handlers.NewPublicHandler(invoiceService, paymentService)

	// Public routes
	e.POST("/auth/login", authHandler.HandleLogin)
	e.POST("/auth/logout", authHandler.HandleLogout)
	e.GET("/p/invoices/:uuid", publicHandler.ShowInvoice)
	e.POST("/p/invoices/:uuid/pay", publicHandler.InitiatePayment)
	e.POST("/webhooks/midtrans", publicHandler.GatewayNotification)

	// Protected API routes
	api := e.Group("/api")
	api.Use(authMiddleware.RequireAuth(authClient))

	admin := api.Group("", authMiddleware.RequireAdmin())

	// Fee structure catalog
	api.GET("/fee-structures", feeStructureHandler.ListFeeStructures)
	api.GET("/fee-structures/:id", feeStructureHandler.GetFeeStructure)
	admin.POST("/fee-structures", feeStructureHandler.CreateFeeStructure)
	admin.PUT("/fee-structures/:id", feeStructureHandler.UpdateFeeStructure)
	admin.DELETE("/fee-structures/:id", feeStructureHandler.DeleteFeeStructure)

	// Student fee assignments
	api.GET("/students/:id/fees", studentFeeHandler.ListStudentFees)
	admin.POST("/students/:id/fees", studentFeeHandler.AssignStudentFee)
	admin.PUT("/student-fees/:id", studentFeeHandler.UpdateStudentFee)
	admin.DELETE("/student-fees/:id", studentFeeHandler.DeleteStudentFee)

	// Invoices
	admin.POST("/invoices/generate", invoiceHandler.GenerateInvoices)
	api.GET("/invoices", invoiceHandler.ListInvoices)
	api.GET("/invoices/pending", invoiceHandler.ListPendingInvoices)
	api.GET("/invoices/:id", invoiceHandler.GetInvoice)

	// Payments
	admin.POST("/invoices/:id/payments", paymentHandler.RecordPayment)
	api.GET("/invoices/:id/payments", paymentHandler.ListPayments)

	// Reports
	api.GET("/reports/defaulters", reportHandler.ListDefaulters)
	api.GET("/reports/monthly", reportHandler.MonthlyReport)
	api.GET("/reports/summary", reportHandler.Summary)
	api.GET("/students/:id/ledger", reportHandler.StudentLedger)

	// Settings
	api.GET("/settings/late-fine", settingsHandler.GetLateFineConfig)
	admin.PUT("/settings/late-fine", settingsHandler.UpdateLateFineConfig)
	api.GET("/settings/billing", settingsHandler.GetBillingConfig)
	admin.PUT("/settings/billing", settingsHandler.UpdateBillingConfig)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
