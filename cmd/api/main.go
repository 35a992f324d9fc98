package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/projectsanctuary/sanctuary/config"
	"github.com/projectsanctuary/sanctuary/internal/api/http/routes"
	"github.com/projectsanctuary/sanctuary/internal/autoarchive"
	"github.com/projectsanctuary/sanctuary/internal/bootstrap"
	"github.com/projectsanctuary/sanctuary/internal/cloudbackup"
	engagementhttp "github.com/projectsanctuary/sanctuary/internal/engagement/http"
	projecthttp "github.com/projectsanctuary/sanctuary/internal/projects/http"
	sessionhttp "github.com/projectsanctuary/sanctuary/internal/session/http"
	"github.com/projectsanctuary/sanctuary/internal/settings"
	transferhttp "github.com/projectsanctuary/sanctuary/internal/transfer/http"
	"github.com/projectsanctuary/sanctuary/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer app.Close()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("session: %v", err)
	}

	scheduler := autoarchive.NewScheduler(cfg.AutoArchive.Schedule, app.AutoArchiveSweeper())
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to create cron job: %v", err)
	}

	v1 := routes.V1Deps{
		Owner:      app.Gate,
		Session:    sessionhttp.New(app.Gate, app.Projects),
		Projects:   projecthttp.New(app.Projects, app.Profiles),
		Transfer:   transferhttp.New(app.Projects, app.Profiles),
		Engagement: engagementhttp.New(app.Engagement),
		Users:      users.NewHandler(app.Profiles),
		Settings:   settings.NewHandler(app.Settings),
	}
	if app.Verifier != nil {
		v1.Verifier = app.Verifier
	}
	if cfg.CloudStorage.GoogleClientID != "" || cfg.CloudStorage.DropboxClientID != "" || cfg.CloudStorage.OneDriveClientID != "" {
		v1.Cloud = cloudbackup.NewHandler(
			cloudbackup.NewOAuth(cfg.CloudStorage),
			cloudbackup.NewDrive(cfg.CloudStorage.UploadsPerMinute),
			app.Projects,
			app.Profiles,
			app.Settings,
		)
	}

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "sanctuary",
		Version:     cfg.App.Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		Backend:     app.Projects.Backend,
		Checks:      app.HealthChecks(),
		V1:          v1,
	})

	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: r}
	go func() {
		log.Printf("listening on :%s (backend %s)", cfg.Server.Port, app.Projects.Backend())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	sctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("Stopping auto-archive scheduler...")
	scheduler.Stop()
}
