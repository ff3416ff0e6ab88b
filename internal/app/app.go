// Package app assembles stores, services and the push transport from
// configuration. The API server and sarkarctl share it.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"sarkar/internal/eligibility"
	eligibilitymetrics "sarkar/internal/eligibility/metrics"
	jwttoken "sarkar/internal/jwt_token"
	notificationmetrics "sarkar/internal/notification/metrics"
	"sarkar/internal/notification/sender"
	"sarkar/internal/notification/sweep"
	"sarkar/internal/platform/config"
	platformmetrics "sarkar/internal/platform/metrics"
	"sarkar/internal/platform/postgres"
	platformredis "sarkar/internal/platform/redis"
	profilemetrics "sarkar/internal/profile/metrics"
	profilemodels "sarkar/internal/profile/models"
	profileservice "sarkar/internal/profile/service"
	profilestore "sarkar/internal/profile/store"
	schememetrics "sarkar/internal/scheme/metrics"
	schemeservice "sarkar/internal/scheme/service"
	schemestore "sarkar/internal/scheme/store"
	httptransport "sarkar/internal/transport/http"
	"sarkar/pkg/platform/circuit"
)

const (
	kafkaPartitions  = 3
	kafkaReplication = 1
	fcmCooldown      = time.Minute
)

// ProfileStore is every profile store operation the process uses.
type ProfileStore interface {
	profileservice.Store
	ListAllUsers(ctx context.Context) ([]*profilemodels.UserDocument, error)
	SetNotificationRecord(ctx context.Context, userID string, record profilemodels.NotificationRecord) error
	MarkNotified(ctx context.Context, userID, schemeID string, at time.Time) error
}

// App holds the wired process. Close releases connections in reverse order.
type App struct {
	Config   config.Server
	Logger   *slog.Logger
	DB       *sql.DB
	Redis    *platformredis.Client
	Profiles *profileservice.Service
	Schemes  *schemeservice.Service
	Sweeper  *sweep.Sweeper
	Sender   sweep.Sender

	profileStore ProfileStore
	catalog      schemestore.Catalog
	startedAt    time.Time
	closers      []func()
}

// Options tune construction for callers that need less than the server.
type Options struct {
	// SkipMigrations leaves the schema untouched; sarkarctl migrate owns it.
	SkipMigrations bool
}

// New connects to the configured backends and builds every service. With no
// DATABASE_URL the stores live in memory.
func New(ctx context.Context, cfg config.Server, logger *slog.Logger, opts Options) (*App, error) {
	a := &App{Config: cfg, Logger: logger, startedAt: time.Now()}

	if err := a.openStores(ctx, opts); err != nil {
		a.Close()
		return nil, err
	}

	engine := eligibility.NewEngine(eligibility.WithMetrics(eligibilitymetrics.New()))
	notifyMetrics := notificationmetrics.New()

	var err error
	a.Profiles, err = profileservice.New(a.profileStore,
		profileservice.WithLogger(logger),
		profileservice.WithMetrics(profilemetrics.New()),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Schemes, err = schemeservice.New(a.catalog, a.profileStore,
		schemeservice.WithLogger(logger),
		schemeservice.WithMetrics(schememetrics.New()),
		schemeservice.WithEngine(engine),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Sender, err = a.newSender(ctx, notifyMetrics)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Sweeper, err = sweep.New(a.profileStore, a.catalog, a.Sender,
		sweep.WithLogger(logger),
		sweep.WithMetrics(notifyMetrics),
		sweep.WithEngine(engine),
		sweep.WithConcurrency(cfg.Sweep.Concurrency),
		sweep.WithWindowDays(cfg.Sweep.WindowDays),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) openStores(ctx context.Context, opts Options) error {
	if a.Config.DatabaseURL == "" {
		a.Logger.WarnContext(ctx, "DATABASE_URL not set, using in-memory stores")
		a.profileStore = profilestore.NewInMemoryStore()
		a.catalog = schemestore.NewInMemoryStore()
	} else {
		if !opts.SkipMigrations {
			if err := postgres.Migrate(a.Config.DatabaseURL); err != nil {
				return err
			}
		}
		db, err := postgres.Open(ctx, a.Config.DatabaseURL)
		if err != nil {
			return err
		}
		a.DB = db
		a.closers = append(a.closers, func() { _ = db.Close() })
		a.profileStore = profilestore.NewPostgres(db)
		a.catalog = schemestore.NewPostgres(db)
	}

	rc, err := platformredis.New(ctx, a.Config.Redis)
	if err != nil {
		return err
	}
	if rc != nil {
		a.Redis = rc
		a.closers = append(a.closers, func() { _ = rc.Close() })
		a.catalog = schemestore.NewCached(a.catalog, rc.Client, a.Config.SchemeCacheTTL, a.Logger)
	}
	return nil
}

func (a *App) newSender(ctx context.Context, m *notificationmetrics.Metrics) (sweep.Sender, error) {
	push := a.Config.Push
	switch push.Driver {
	case config.PushDriverLog:
		return sender.NewLogSender(a.Logger, m), nil
	case config.PushDriverFCM:
		breaker := circuit.New("fcm", circuit.WithCooldown(fcmCooldown))
		fcm, err := sender.NewFCMSender(push.FCMBaseURL, push.FCMProjectID, push.FCMAccessToken,
			sender.WithFCMBreaker(breaker),
			sender.WithFCMLogger(a.Logger),
			sender.WithFCMMetrics(m),
		)
		if err != nil {
			return nil, err
		}
		return fcm, nil
	case config.PushDriverKafka:
		ks, err := sender.NewKafkaSender(push.KafkaBrokers, push.KafkaTopic, a.Logger, m)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, ks.Close)
		if err := ks.EnsureTopic(ctx, kafkaPartitions, kafkaReplication); err != nil {
			a.Logger.WarnContext(ctx, "could not ensure push topic", "topic", push.KafkaTopic, "error", err)
		}
		return ks, nil
	default:
		return nil, fmt.Errorf("unknown PUSH_DRIVER %q", push.Driver)
	}
}

// Router builds the HTTP API over the wired services.
func (a *App) Router() http.Handler {
	checks := map[string]httptransport.HealthCheck{}
	if a.DB != nil {
		checks["postgres"] = a.DB.PingContext
	}
	if a.Redis != nil {
		checks["redis"] = a.Redis.Health
	}

	jwtService := jwttoken.NewJWTService(a.Config.JWTSigningKey, a.Config.JWTIssuer, a.Config.JWTAudience)
	return httptransport.NewRouter(httptransport.Deps{
		Logger:     a.Logger,
		Validator:  jwttoken.NewJWTServiceAdapter(jwtService),
		Profiles:   a.Profiles,
		Schemes:    a.Schemes,
		Ingester:   a.Schemes,
		Tokens:     a.Profiles,
		AdminToken: a.Config.AdminToken,
		Metrics:    platformmetrics.NewHTTP(),
		Checks:     checks,
		StartedAt:  a.startedAt,
	})
}

// Scheduler runs the sweep daily at the configured wall-clock time.
func (a *App) Scheduler() (*sweep.Scheduler, error) {
	if !a.Config.Sweep.Enabled {
		return nil, errors.New("sweep is disabled")
	}
	return sweep.NewScheduler(a.Sweeper, a.Config.Sweep.At, a.Config.Sweep.Timezone, a.Logger)
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
