package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caribesoft/pos_backend/config"
	"github.com/caribesoft/pos_backend/handlers"
	"github.com/caribesoft/pos_backend/middlewares"
	"github.com/caribesoft/pos_backend/models"
	"github.com/caribesoft/pos_backend/workflow"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const defaultPort = "8080"

func main() {
	logger := config.NewLogger()

	db, err := config.ConnectDatabaseWithRetry()
	if err != nil {
		logger.Fatal(err.Error())
	}
	if err := models.MigrateTables(db); err != nil {
		logger.Fatal(err.Error())
	}

	rdb, locker := config.ConnectRedis()

	saleService := workflow.NewSaleService(db, rdb, logger)
	fiscalService := workflow.NewFiscalService(db, rdb, locker, logger)

	productHandler := handlers.NewProductHandler(db, logger)
	saleHandler := handlers.NewSaleHandler(saleService)
	taxHandler := handlers.NewTaxHandler(db, rdb, logger)
	fiscalHandler := handlers.NewFiscalHandler(fiscalService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Business-Id", "X-Idempotency-Key", "x-correlation-id"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middlewares.CorrelationIdMiddleware())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	api := r.Group("/api", middlewares.BusinessScopeMiddleware())
	{
		api.GET("/products", productHandler.List)
		api.GET("/products/:id", productHandler.Get)
		api.POST("/products", productHandler.Create)
		api.PUT("/products/:id", productHandler.Update)
		api.DELETE("/products/:id", productHandler.Delete)

		api.GET("/sales", saleHandler.List)
		api.GET("/sales/summary", saleHandler.Summary)
		api.GET("/sales/:id", saleHandler.Get)
		api.POST("/sales", saleHandler.Create)

		api.GET("/tax-configurations", taxHandler.List)
		api.POST("/tax-configurations", taxHandler.Create)
		api.PUT("/tax-configurations/:id", taxHandler.Update)
		api.DELETE("/tax-configurations/:id", taxHandler.Delete)

		api.GET("/fiscal-sequences", fiscalHandler.ListSequences)
		api.POST("/fiscal-sequences", fiscalHandler.CreateSequence)
		api.PUT("/fiscal-sequences/:id", fiscalHandler.UpdateSequence)

		api.GET("/fiscal-documents", fiscalHandler.ListDocuments)
		api.GET("/fiscal-documents/:id", fiscalHandler.GetDocument)
		api.POST("/fiscal-documents", fiscalHandler.IssueDocument)
	}

	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(err.Error())
		}
	}()
	logger.Infof("listening on :%s", port)

	<-sigCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(err.Error())
	}
}
