package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/modelmart/modelmart/internal/server"
	"github.com/modelmart/modelmart/internal/server/config"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found")
	}

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
