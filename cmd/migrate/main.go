package main

import (
	"log"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"

	"github.com/fdg312/nutridesk/internal/config"
	"github.com/fdg312/nutridesk/internal/dbmigrate"
)

func main() {
	allowed := strings.Join(dbmigrate.Commands, "|")
	if len(os.Args) < 2 {
		log.Fatalf("usage: migrate [%s]", allowed)
	}

	command := os.Args[1]
	if !dbmigrate.IsCommand(command) {
		log.Fatalf("unsupported command %q (allowed: %s)", command, allowed)
	}

	cfg := config.Load()
	target, err := dbmigrate.SelectTarget(cfg, false)
	if err != nil {
		log.Fatalf("FATAL migrate: %v", err)
	}
	if target.Warning != "" {
		log.Printf("WARN migrate: %s", target.Warning)
	}
	log.Printf("INFO migrate: command=%s using=%s migrations=%s", command, target.Source, dbmigrate.DescribeDir(cfg.MigrationsDir))

	if err := dbmigrate.Run(command, target.URL, cfg.MigrationsDir); err != nil {
		log.Fatalf("FATAL migrate: %v", err)
	}

	log.Printf("INFO migrate: %s done", command)
}
