package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/secmon-lab/bonk/pkg/cli"
)

var version = "dev"

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := cli.Run(context.Background(), os.Args, version); err != nil {
		os.Exit(1)
	}
}
