package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/projectsanctuary/sanctuary/config"
	httpapi "github.com/projectsanctuary/sanctuary/internal/api/http"
	"github.com/projectsanctuary/sanctuary/internal/auth"
	"github.com/projectsanctuary/sanctuary/internal/autoarchive"
	erepo "github.com/projectsanctuary/sanctuary/internal/engagement/repository"
	eservice "github.com/projectsanctuary/sanctuary/internal/engagement/service"
	"github.com/projectsanctuary/sanctuary/internal/logging"
	"github.com/projectsanctuary/sanctuary/internal/migration"
	"github.com/projectsanctuary/sanctuary/internal/projects/domain"
	"github.com/projectsanctuary/sanctuary/internal/projects/repository"
	"github.com/projectsanctuary/sanctuary/internal/projects/service"
	"github.com/projectsanctuary/sanctuary/internal/session"
	"github.com/projectsanctuary/sanctuary/internal/settings"
	"github.com/projectsanctuary/sanctuary/internal/storage/local"
	"github.com/projectsanctuary/sanctuary/internal/storage/postgres"
	"github.com/projectsanctuary/sanctuary/internal/users"
)

// App holds every long-lived component of a Sanctuary process. Hosted fields
// are nil when the matching backing service is not configured.
type App struct {
	Config *config.Config

	Local *local.Store
	SQL   *sql.DB
	Pool  *pgxpool.Pool
	Redis *redis.Client

	Verifier auth.TokenVerifier
	Catalog  *domain.Catalog

	Backends   *repository.Selector
	Migration  *migration.Protocol
	Gate       *session.Gate
	Projects   *service.ProjectService
	Engagement *eservice.EngagementService
	Profiles   *users.ProfileService
	Settings   *settings.Store
}

// NewApp opens the stores and wires the services. Nothing is loaded until
// Start or Restore.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}
	if err := a.open(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.wire(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) open(ctx context.Context) error {
	cfg := a.Config

	store, err := local.Open(cfg.Local.DataDir)
	if err != nil {
		return fmt.Errorf("open device store: %w", err)
	}
	a.Local = store

	if cfg.Database.Enabled() {
		db, err := postgres.NewConnection(&cfg.Database)
		if err != nil {
			return err
		}
		a.SQL = db
		if err := postgres.Migrate(db); err != nil {
			return fmt.Errorf("migrate hosted store: %w", err)
		}

		pool, err := OpenDB(ctx, DBOptionsFrom(cfg.Database))
		if err != nil {
			return err
		}
		a.Pool = pool
		log.Printf("Hosted store connected (%s:%d/%s)", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	} else {
		log.Println("No hosted store configured, running local only")
	}

	if cfg.Redis.Enabled() {
		client, err := OpenRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		a.Redis = client
	}

	if cfg.Firebase.CredentialsPath != "" {
		client, err := auth.InitializeFirebase(&cfg.Firebase)
		if err != nil {
			return err
		}
		a.Verifier = auth.NewFirebaseVerifier(client)
	} else {
		log.Println("FIREBASE_CREDENTIALS_PATH not set, sign-in disabled")
	}

	return nil
}

func (a *App) wire() error {
	catalog, err := domain.DefaultCatalog()
	if err != nil {
		return err
	}
	a.Catalog = catalog

	localProjects := repository.NewLocalBackend(a.Local)
	localEngagement := erepo.NewLocalStore(a.Local)

	// Interfaces stay untyped nil without a hosted store.
	var (
		hostedProjects   repository.Backend
		hostedSink       migration.ProjectSink
		hostedEngagement erepo.Store
		profiles         *users.Repo
	)
	if a.SQL != nil {
		hb := repository.NewHostedBackend(a.SQL)
		hostedProjects, hostedSink = hb, hb
		hostedEngagement = erepo.NewHostedStore(a.SQL)
	}
	if a.Pool != nil {
		profiles = users.NewRepo(a.Pool)
	}

	a.Migration = migration.New(migration.Deps{
		State:            a.Local,
		LocalProjects:    localProjects,
		HostedProjects:   hostedSink,
		LocalEngagement:  localEngagement,
		HostedEngagement: hostedEngagement,
	})

	opts := session.Options{
		State:     a.Local,
		Migration: a.Migration,
		DeviceID:  a.Config.Local.DeviceID,
	}
	if a.Verifier != nil {
		opts.Verifier = a.Verifier
	}
	if a.Redis != nil {
		opts.Bus = session.NewRedisBus(a.Redis, a.Config.Redis.AuthChannel)
	}
	a.Gate = session.NewGate(opts)

	a.Backends = repository.NewSelector(localProjects, hostedProjects, a.Gate)
	a.Projects = service.NewProjectService(a.Backends, catalog)
	a.Engagement = eservice.NewEngagementService(localEngagement, hostedEngagement, a.Gate)
	a.Profiles = users.NewProfileService(profiles, a.Local, a.Gate, catalog)
	a.Settings = settings.NewStore(a.Local)

	// Every sign-in, sign-out and accepted migration reloads the collection
	// from whichever backend is now active.
	a.Gate.OnChange(func(ctx context.Context, ch session.Change) {
		if err := a.Projects.Load(ctx); err != nil {
			logging.NewLogger(ctx).LogErrorf("app.reload", "signed_in=%t error=%v", ch.SignedIn, err)
		}
	})
	return nil
}

// Start restores the session and listens for auth events from other processes.
func (a *App) Start(ctx context.Context) error {
	return a.Gate.Start(ctx)
}

// Restore loads the session and projects without listening for events.
func (a *App) Restore(ctx context.Context) error {
	return a.Gate.Restore(ctx)
}

// AutoArchiveSweeper sweeps the process's own project service, so a sweep run
// by the daemon and its HTTP handlers share one in-memory collection.
func (a *App) AutoArchiveSweeper() *autoarchive.Sweeper {
	return autoarchive.NewSweeper(a.Projects, a.Settings, a.Config.AutoArchive.AfterDays)
}

// HealthChecks lists the probes for the health endpoint.
func (a *App) HealthChecks() []httpapi.Check {
	checks := []httpapi.Check{{Name: "local", Required: true, Ping: a.Local.Ping}}

	db := httpapi.Check{Name: "db"}
	if a.Pool != nil {
		db.Ping = a.Pool.Ping
	}
	rdb := httpapi.Check{Name: "redis"}
	if a.Redis != nil {
		rdb.Ping = func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() }
	}
	return append(checks, db, rdb)
}

func (a *App) Close() error {
	var errs []error
	if a.Gate != nil {
		errs = append(errs, a.Gate.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
	if a.SQL != nil {
		errs = append(errs, a.SQL.Close())
	}
	if a.Local != nil {
		errs = append(errs, a.Local.Close())
	}
	return errors.Join(errs...)
}
