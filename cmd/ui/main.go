package main

import (
	"context"
	"log"
	"os"

	"churnboard/adapters/charts"
	"churnboard/internal/config"
	"churnboard/internal/dataset"
	"churnboard/ui"
	"churnboard/ui/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.LoadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	loader := dataset.Shared(appConfig.Data.File)
	if _, err := loader.Load(context.Background()); err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	dashboard := services.NewDashboardService(loader, appConfig.Data.PreviewRows, appConfig.Data.HistogramBins)
	chartService := services.NewChartService(dashboard, charts.NewRenderer(appConfig.Data.HistogramBins), 4)

	app, err := ui.NewApp(ui.Config{Port: appConfig.Server.Port}, dashboard, chartService)
	if err != nil {
		log.Fatal("Failed to create UI app:", err)
	}

	log.Printf("Starting churn dashboard UI on http://localhost:%s", appConfig.Server.Port)
	log.Fatal(app.Start())
}
