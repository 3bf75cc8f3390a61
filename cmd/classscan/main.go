package main

import (
	"log"
	"os"

	"github.com/a2y-d5l/classscan/internal/cli"
	"github.com/a2y-d5l/classscan/internal/config"
	"github.com/a2y-d5l/classscan/internal/scan"
)

func main() {
	cfg, err := config.FromEnv(os.Getenv)
	if err != nil {
		// Broken environment → exit 1 before touching the arguments
		log.Print(err)
		os.Exit(cli.ExitFailure)
	}

	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr, scan.New(cfg, os.Stderr)))
}
