package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/projectsanctuary/sanctuary/config"
	"github.com/projectsanctuary/sanctuary/internal/autoarchive"
	"github.com/projectsanctuary/sanctuary/internal/bootstrap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer app.Close()

	// Follow sign-ins made by the daemon or the CLI so sweeps hit the right backend.
	if err := app.Start(ctx); err != nil {
		log.Fatalf("session: %v", err)
	}

	// The daemon runs the same schedule; this binary covers installs without it.
	scheduler := autoarchive.NewScheduler(cfg.AutoArchive.Schedule, app.AutoArchiveSweeper())
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to create cron job: %v", err)
	}

	<-ctx.Done()
	log.Println("Stopping auto-archive scheduler...")
	scheduler.Stop()
}
