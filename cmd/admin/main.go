// Command admin manages authoring accounts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"archives/internal/config"
	"archives/internal/database"
	"archives/internal/repository"
	"archives/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/admin <create|list> [-email addr -password secret]")
}

func run() error {
	if len(os.Args) < 2 {
		return usage()
	}
	cmd := strings.ToLower(strings.TrimSpace(os.Args[1]))

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	email := fs.String("email", "", "Admin email")
	password := fs.String("password", "", "Admin password (min 8 characters)")
	if err := fs.Parse(os.Args[2:]); err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.IsDemo() {
		return fmt.Errorf("BACKEND_MODE=demo has no admin accounts")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	admins := repository.NewAdminRepository(db)
	ctx := context.Background()

	switch cmd {
	case "create":
		auth := service.NewAuthService(admins, nil, cfg)
		admin, err := auth.CreateAdmin(ctx, *email, *password)
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		log.Printf("created admin %d (%s)", admin.ID, admin.Email)
	case "list":
		all, err := admins.List(ctx)
		if err != nil {
			return fmt.Errorf("list admins: %w", err)
		}
		for _, a := range all {
			fmt.Printf("%d\t%s\t%s\n", a.ID, a.Email, a.CreatedAt.Format("2006-01-02"))
		}
	default:
		return usage()
	}
	return nil
}
