package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-formflow/internal/config"
	"github.com/goliatone/go-formflow/internal/engine"
	"github.com/goliatone/go-formflow/internal/httpapi"
	"github.com/goliatone/go-formflow/internal/logger"
	"github.com/goliatone/go-formflow/internal/store"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/renderers/html"
	"github.com/goliatone/go-formflow/pkg/schema"
)

func main() {
	configPath := flag.String("config", os.Getenv("FORMFLOW_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if isProd(cfg.LogMode) {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := store.Open(cfg.Database, log)
	if err != nil {
		log.Fatal("Database unavailable", "error", err)
	}

	log.Info("Setting up repos...")
	serviceRepo := store.NewServiceRepo(db, log)
	applicationRepo := store.NewApplicationRepo(db, log)

	eng := engine.New(serviceRepo, applicationRepo, log, engine.WithSanitizer(cfg.SanitizeValues))

	if cfg.CatalogDir != "" {
		log.Info("Seeding service catalog", "dir", cfg.CatalogDir)
		catalog, err := schema.LoadFS(os.DirFS(cfg.CatalogDir))
		if err != nil {
			log.Fatal("Could not load service catalog", "dir", cfg.CatalogDir, "error", err)
		}
		if err := eng.SeedCatalog(context.Background(), catalog); err != nil {
			log.Fatal("Could not seed service catalog", "error", err)
		}
	}

	renderers := render.NewRegistry()
	htmlRenderer, err := html.New()
	if err != nil {
		log.Fatal("Could not init HTML renderer", "error", err)
	}
	if err := renderers.Register(htmlRenderer); err != nil {
		log.Fatal("Could not register HTML renderer", "error", err)
	}

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Log:                log,
		CORSOrigins:        cfg.CORSOrigins,
		ServiceHandler:     httpapi.NewServiceHandler(log, eng, renderers),
		ApplicationHandler: httpapi.NewApplicationHandler(log, eng),
	})

	log.Info("Server listening", "addr", cfg.HTTPAddr)
	if err := router.Run(cfg.HTTPAddr); err != nil {
		log.Fatal("Server stopped", "error", err)
	}
}

func isProd(mode string) bool {
	switch strings.ToLower(mode) {
	case "prod", "production":
		return true
	}
	return false
}
