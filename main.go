package main

import (
	"log"

	"github.com/meowls-gov/visa-portal/config"
	"github.com/meowls-gov/visa-portal/internal/api"
)

func main() {
	cfg := config.LoadConfig()

	log.Println("Meowls e-Visa portal starting...")
	api.StartServer(cfg)
}
