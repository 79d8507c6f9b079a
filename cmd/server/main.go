package main

import (
	"log"

	"agrolink-backend/internal/auth"
	"agrolink-backend/internal/clock"
	"agrolink-backend/internal/config"
	"agrolink-backend/internal/database"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)
	clk := clock.System()

	app := newServer(cfg, clk)
	auth.StartResetTokenSweeper(cfg, clk)

	log.Println("Server listening on port", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
