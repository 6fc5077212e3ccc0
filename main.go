package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"churnboard/adapters/charts"
	"churnboard/internal/config"
	"churnboard/internal/dataset"
	"churnboard/ui"
	"churnboard/ui/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.LoadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	// Load the dataset up front so a broken source fails at startup
	start := time.Now()
	loader := dataset.Shared(appConfig.Data.File)
	ds, err := loader.Load(context.Background())
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	log.Printf("Dataset %s ready: %d rows in %v", ds.Source(), ds.Len(), time.Since(start))

	dashboard := services.NewDashboardService(loader, appConfig.Data.PreviewRows, appConfig.Data.HistogramBins)
	chartService := services.NewChartService(dashboard, charts.NewRenderer(appConfig.Data.HistogramBins), 4)

	server, err := ui.NewServer(dashboard, chartService)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			log.Printf("Performance profiling server starting on :%s", appConfig.Profiling.Port)
			log.Printf("View profiles: go tool pprof -http=:8081 http://localhost:%s/debug/pprof/profile?seconds=30", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				log.Printf("pprof server failed: %v", err)
			}
		}()
	}

	log.Printf("Starting churn dashboard server on port %s", appConfig.Server.Port)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
