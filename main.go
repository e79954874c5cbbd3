package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"campuscafe/internal/cache"
	"campuscafe/internal/config"
	"campuscafe/internal/database"
	"campuscafe/internal/handlers"
	"campuscafe/internal/middleware"
	"campuscafe/internal/notify"
	"campuscafe/internal/tracing"
)

func main() {
	config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		logger.Fatal("mongodb connect failed", zap.Error(err))
	}

	db := client.Database(config.AppEnv.DBName)
	logger.Info("mongodb connected", zap.String("database", db.Name()))

	if err := database.EnsureVendorIndexes(db); err != nil {
		log.Printf("⚠️ vendor index warning: %v", err)
	}
	if err := database.EnsureMenuIndexes(db); err != nil {
		log.Printf("⚠️ menu index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("⚠️ order index warning: %v", err)
	}
	if err := database.EnsureCreditIndexes(db); err != nil {
		log.Printf("⚠️ credit index warning: %v", err)
	}
	if err := database.EnsureReviewIndexes(db); err != nil {
		log.Printf("⚠️ review index warning: %v", err)
	}
	if err := database.EnsureOutboxIndexes(db); err != nil {
		log.Printf("⚠️ outbox index warning: %v", err)
	}

	rdb, err := cache.Connect(config.AppEnv.RedisAddr, config.AppEnv.RedisPassword)
	if err != nil {
		logger.Fatal("redis connect failed", zap.Error(err))
	}
	defer rdb.Close()
	reports := cache.NewReportCache(rdb, config.AppEnv.ReportCacheTTL, logger)

	producer, err := notify.InitProducer(config.AppEnv.KafkaBrokers, logger)
	if err != nil {
		logger.Fatal("kafka producer init failed", zap.Error(err))
	}
	defer producer.Close()

	shutdownTracing, err := tracing.Init("campuscafe", config.AppEnv.JaegerEndpoint)
	if err != nil {
		logger.Fatal("tracing init failed", zap.Error(err))
	}
	defer shutdownTracing()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := notify.NewDispatcher(db, producer, config.AppEnv.KafkaTopic, 2*time.Second, logger)
	go dispatcher.Run(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("campuscafe"))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", middleware.PrometheusHandler())

	jwtSecret := config.AppEnv.JWTSecret

	r.GET("/menu", handlers.GetMenu(db))
	r.GET("/menu/:id", handlers.GetMenuItem(db))
	r.GET("/menu/:id/reviews", handlers.GetMenuItemReviews(db))

	r.POST("/orders", middleware.UserAuth(jwtSecret), handlers.CreateOrder(db, reports))
	r.GET("/orders", middleware.UserAuth(jwtSecret), handlers.GetMyOrders(db))
	r.GET("/orders/:id", middleware.UserAuth(jwtSecret), handlers.GetOrder(db))

	// Internal service-to-service hook, deliberately unauthenticated.
	r.POST("/api/reports/clear-cache", handlers.ClearReportCache(reports))

	user := r.Group("/api")
	user.Use(middleware.UserAuth(jwtSecret))
	{
		user.GET("/credits", handlers.GetCredits(db))
		user.GET("/credits/history", handlers.GetCreditHistory(db))
		user.POST("/credits/spend", handlers.SpendCredits(db))

		user.POST("/reviews", handlers.CreateReview(db))

		user.POST("/feedback", handlers.CreateFeedback(db))
		user.GET("/feedback", handlers.GetMyFeedback(db))
	}

	vendor := r.Group("/api/vendor")
	vendor.Use(middleware.VendorAuth(jwtSecret))
	{
		vendor.GET("/orders", handlers.GetVendorOrders(db))
		vendor.GET("/orders/stats", handlers.GetVendorOrderStats(db))
		vendor.GET("/orders/:id", handlers.GetOrder(db))

		vendor.POST("/menu", handlers.CreateMenuItem(db))
		vendor.PUT("/menu/:id", handlers.UpdateMenuItem(db))
		vendor.PATCH("/menu/:id/availability", handlers.SetMenuItemAvailability(db))
		vendor.DELETE("/menu/:id", handlers.DeleteMenuItem(db))

		vendor.GET("/reviews", handlers.GetVendorReviews(db))
		vendor.POST("/reviews/:id/reply", handlers.ReplyReview(db))

		vendor.GET("/reports/sales", handlers.GetSalesReport(db, reports))
		vendor.GET("/reports/daily", handlers.GetDailyReport(db, reports))
		vendor.GET("/reports/hourly", handlers.GetHourlyReport(db, reports))
		vendor.GET("/reports/products", handlers.GetProductReport(db, reports))
	}

	r.PATCH("/api/orders/:id/status", middleware.VendorAuth(jwtSecret), handlers.UpdateOrderStatus(db, reports))

	admin := r.Group("/api/admin")
	admin.Use(middleware.AdminAuth(jwtSecret))
	{
		admin.GET("/vendors", handlers.ListVendors(db))
		admin.POST("/vendors", handlers.CreateVendor(db))
		admin.PUT("/vendors/:id", handlers.UpdateVendor(db))
		admin.PATCH("/vendors/:id/deactivate", handlers.DeactivateVendor(db))

		admin.GET("/users/:id/credits", handlers.GetUserCredits(db))

		admin.GET("/feedback", handlers.ListFeedback(db))
		admin.POST("/feedback/:id/respond", handlers.RespondFeedback(db))

		admin.PATCH("/reviews/:id/hide", handlers.HideReview(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Info("server starting", zap.String("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		logger.Error("mongodb disconnect failed", zap.Error(err))
	}
}
