// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/edustack/edustack-api/internal/config"
	"github.com/edustack/edustack-api/internal/core"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Usage = func() {
		slog.Info("usage: migrate [-config path] <up|down|status|reset|version|redo> [args]")
		flag.PrintDefaults()
	}
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	if err := run(*configPath, command, flag.Args()); err != nil {
		slog.Error("migration failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func run(configPath, command string, args []string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("database close error", "error", closeErr)
		}
	}()

	var extra []string
	if len(args) > 1 {
		extra = args[1:]
	}

	if err := core.RunMigrations(ctx, db.DB.DB, command, extra...); err != nil {
		return err
	}

	slog.Info("migration finished", "command", command)
	return nil
}
