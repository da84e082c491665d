package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"workhub_app/internal/handlers"
	appmw "workhub_app/internal/middleware"
	"workhub_app/internal/services"
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

	// Redis is optional; handlers degrade to direct queries without it
	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Printf("Warning: Redis initialization failed: %v", err)
			cache = nil
		}
	}

	// Create Echo instance
	e := echo.New()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Validator = handlers.NewRequestValidator()
	e.HTTPErrorHandler = appmw.CustomErrorHandler

	// Initialize handlers
	saleHandler := handlers.NewSaleHandler(db)
	clientHandler := handlers.NewClientHandler(db)
	voucherHandler := handlers.NewVoucherHandler(db, cache)
	paymentHandler := handlers.NewMonthlyPaymentHandler(db)
	eodHandler := handlers.NewEndOfDayHandler(db)
	dashboardHandler := handlers.NewDashboardHandler(db, cache)

	// Public routes
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/vouchers/status/:code", voucherHandler.VoucherStatus)

	// Protected API
	api := e.Group("/api")
	api.Use(appmw.RequireAuth(authClient))

	api.POST("/sales", saleHandler.CreateSale)
	api.GET("/sales", saleHandler.ListSales)
	api.POST("/sale-returns", saleHandler.CreateSaleReturn)
	api.GET("/sale-returns", saleHandler.ListSaleReturns)

	api.POST("/clients", clientHandler.CreateClient)
	api.GET("/clients", clientHandler.ListClients)
	api.GET("/clients/:id", clientHandler.GetClient)
	api.PATCH("/clients/:id", clientHandler.UpdateClient)
	api.GET("/clients/:id/payment-history", clientHandler.ClientPaymentHistory)
	api.GET("/clients/:id/pending-payments", clientHandler.ClientPendingPayments)

	api.POST("/voucher-categories", voucherHandler.CreateCategory)
	api.GET("/voucher-categories", voucherHandler.ListCategories)
	api.POST("/voucher-categories/:id/files", voucherHandler.UploadFile)
	api.GET("/voucher-files", voucherHandler.ListFiles)
	api.POST("/voucher-files/:id/populate", voucherHandler.PopulateFile)
	api.GET("/vouchers", voucherHandler.ListVouchers)
	api.GET("/vouchers/:id", voucherHandler.GetVoucher)
	api.POST("/vouchers/:id/mark", voucherHandler.MarkVoucher)
	api.POST("/vouchers/:id/assign-user", voucherHandler.AssignUser)
	api.GET("/voucher-logs", voucherHandler.ListLogs)

	api.POST("/monthly-payments", paymentHandler.CreatePayment)
	api.GET("/monthly-payments", paymentHandler.ListPayments)
	api.GET("/monthly-payments/:id", paymentHandler.GetPayment)
	api.POST("/monthly-payments/:id/process", paymentHandler.ProcessPayment)
	api.POST("/monthly-payments/:id/cancel", paymentHandler.CancelPayment)
	api.POST("/monthly-payments/generate", paymentHandler.GeneratePayments)
	api.POST("/monthly-payments/mark-overdue", paymentHandler.MarkOverdue)

	api.POST("/end-of-day", eodHandler.RunEndOfDay)
	api.GET("/end-of-day", eodHandler.ListEndOfDays)
	api.GET("/end-of-day/:id", eodHandler.GetEndOfDay)
	api.GET("/end-of-day/:id/pdf", eodHandler.DownloadPDF)
	api.GET("/end-of-day/:id/excel", eodHandler.ExportExcel)

	api.GET("/dashboard/stats", dashboardHandler.Stats)
	api.GET("/dashboard/today-voucher-users", dashboardHandler.TodayVoucherUsers)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
