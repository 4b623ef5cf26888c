package main

import (
	"log"

	"github.com/SteveElouga/waterbill-api/app"
	"github.com/SteveElouga/waterbill-api/config"
)

func main() {
	cfg := &config.Config{}
	if err := config.LoadConfig(cfg); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app.New(cfg).Run()
}
