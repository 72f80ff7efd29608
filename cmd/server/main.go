// cmd/server/main.go
package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/n4vhf/callbook/config"
	"github.com/n4vhf/callbook/database"
	"github.com/n4vhf/callbook/handlers"
	"github.com/n4vhf/callbook/importer"
	"github.com/n4vhf/callbook/state"
)

func main() {
	log.Println("Starting callbook XML API...")

	configPath := flag.String("config", "", "path to config.yaml (optional; env vars still apply)")
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	log.Printf("Configuration loaded. Server port: %s, DB name: %s",
		cfg.Server.Port, cfg.Database.DBName)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer db.Close()

	states := state.NewStore(cfg.Paths.StateDir, cfg.Paths.MarkerPath)
	runner := importer.NewRunner(cfg, db, states)

	mux := http.NewServeMux()
	handlers.New(cfg, db, states, runner).Register(mux)

	serverAddr := ":" + cfg.Server.Port
	log.Printf("Server starting on http://localhost%s", serverAddr)
	if err := http.ListenAndServe(serverAddr, mux); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
