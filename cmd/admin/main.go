package main

import (
	"log"
	"os"

	"github.com/tkmproject/tkm-api/internal/repository"
	"github.com/tkmproject/tkm-api/internal/service"
	"github.com/tkmproject/tkm-api/pkg/config"
	"github.com/tkmproject/tkm-api/pkg/database"
	"github.com/tkmproject/tkm-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect postgres: %v", err)
	}
	defer db.Close() //nolint:errcheck

	admins := repository.NewAdminUserRepository(db)
	cli := commandLine{
		admins: service.NewAuthService(admins, nil, nil, logr, service.AuthConfig{}),
		out:    os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			log.Printf("error: %s", err)
		}
		os.Exit(1)
	}
}
