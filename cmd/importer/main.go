// cmd/importer/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/n4vhf/callbook/config"
	"github.com/n4vhf/callbook/database"
	"github.com/n4vhf/callbook/importer"
	"github.com/n4vhf/callbook/models"
	"github.com/n4vhf/callbook/state"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional; env vars still apply)")
	noLock := flag.Bool("no-lock", false, "run without the advisory lock (concurrent runs become your problem)")
	checkChanged := flag.Bool("check-changed", false, "skip the import when the upstream package is unchanged")
	markerPath := flag.String("marker", "", "override the marker file path")
	flag.Parse()

	// .env is optional; containers usually inject real env vars instead.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if *noLock {
		cfg.Importer.UseLock = false
	}
	if *checkChanged {
		cfg.Importer.CheckChanged = true
	}
	if *markerPath != "" {
		cfg.Paths.MarkerPath = *markerPath
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer db.Close()

	states := state.NewStore(cfg.Paths.StateDir, cfg.Paths.MarkerPath)
	runner := importer.NewRunner(cfg, db, states)

	out := runner.Run(context.Background())

	// One structured line per terminal state; cron and log scrapers key
	// off this.
	switch out.Result {
	case models.RunFailed:
		log.Printf("IMPORT result=%s error=%q", out.Result, out.Err)
		db.Close()
		os.Exit(1)
	case models.RunSuccess:
		log.Printf("IMPORT result=%s", out.Result)
	default:
		log.Printf("IMPORT result=%s reason=%q", out.Result, out.SkipReason)
	}
}
