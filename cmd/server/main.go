package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gestaozap/backoffice/internal/api"
	"github.com/gestaozap/backoffice/internal/blob"
	"github.com/gestaozap/backoffice/internal/campaigns"
	"github.com/gestaozap/backoffice/internal/catalog"
	"github.com/gestaozap/backoffice/internal/config"
	"github.com/gestaozap/backoffice/internal/crm"
	"github.com/gestaozap/backoffice/internal/db"
	"github.com/gestaozap/backoffice/internal/export"
	"github.com/gestaozap/backoffice/internal/importer"
	"github.com/gestaozap/backoffice/internal/ledger"
	"github.com/gestaozap/backoffice/internal/pdfsplit"
	"github.com/gestaozap/backoffice/internal/services"
	"github.com/gestaozap/backoffice/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	cfg := config.Load()

	bunDB := db.NewBunPostgresClient(cfg.DatabaseURL)
	defer bunDB.Close()

	importStore := store.NewPostgresStore(bunDB)
	if err := importStore.InitializeDatabase(context.Background()); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}
	if err := db.InitializeSchema(context.Background(), bunDB); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	blobStore, err := blob.NewGCSStore(cfg.UploadBucket)
	if err != nil {
		log.Fatalf("Failed to create GCS store: %v", err)
	}
	defer blobStore.Close()

	extractor, err := services.NewGeminiExtractor(context.Background(), cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to create AI extractor: %v", err)
	}

	catalogRepo := catalog.NewRepository(bunDB)
	entryRepo := ledger.NewEntryRepository(bunDB)
	contactRepo := crm.NewContactRepository(bunDB)
	campaignRepo := campaigns.NewRepository(bunDB)

	imp := importer.New(importer.Deps{
		Store:         importStore,
		Blobs:         blobStore,
		Splitter:      pdfsplit.NewSplitter(),
		Extractor:     extractor,
		ContextSource: catalogRepo,
		DefaultModel:  cfg.DefaultModel,
		CategoryLimit: cfg.PromptCategoryLimit,
	})

	commitService := ledger.NewService(entryRepo, importStore)
	exportService := export.NewService(entryRepo)

	importHandler := api.NewImportHandler(importStore, imp, blobStore, commitService)
	catalogHandler := api.NewCatalogHandler(catalogRepo)
	ledgerHandler := api.NewLedgerHandler(entryRepo, exportService)
	crmHandler := api.NewCRMHandler(contactRepo, campaignRepo)

	router := api.SetupRoutes(importHandler, catalogHandler, ledgerHandler, crmHandler)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Server starting on %s", cfg.ServerAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed to start: %v", err)
	}

	log.Println("Server stopped")
}
