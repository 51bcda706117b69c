package main

import (
	"flag"
	"log"

	"innkeep/config"
	"innkeep/server"
)

func main() {
	cfgPath := flag.String("config", "", "path to config file (optional, env vars work too)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app := &server.App{}
	app.Initialize(cfg)
	if err := app.Run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
