// Package app wires the console from configuration: logging, metrics, the
// session, the selected data provider and the domain services.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/clinic-console/internal/config"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/repository"
	"github.com/jwalitptl/clinic-console/internal/repository/memory"
	"github.com/jwalitptl/clinic-console/internal/repository/remote"
	"github.com/jwalitptl/clinic-console/internal/service"
	appointmentService "github.com/jwalitptl/clinic-console/internal/service/appointment"
	pharmacyService "github.com/jwalitptl/clinic-console/internal/service/pharmacy"
	recordService "github.com/jwalitptl/clinic-console/internal/service/record"
	reportService "github.com/jwalitptl/clinic-console/internal/service/report"
	"github.com/jwalitptl/clinic-console/internal/session"
	"github.com/jwalitptl/clinic-console/pkg/logger"
	"github.com/jwalitptl/clinic-console/pkg/messaging"
	redisBroker "github.com/jwalitptl/clinic-console/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-console/pkg/metrics"
	"github.com/jwalitptl/clinic-console/pkg/security"
	"github.com/jwalitptl/clinic-console/pkg/validator"
)

// Console is everything a front end needs to talk to the clinic data.
type Console struct {
	Config   *config.Config
	Log      *logger.Logger
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	Session       *session.Store
	Authenticator session.Authenticator
	// Registrar is set only when accounts live on the backend.
	Registrar Registrar

	Appointments *appointmentService.Service
	Records      *recordService.Service
	Pharmacy     *pharmacyService.Service
	Reports      *reportService.Service

	// Events carries status changes; nil when events.broker is empty.
	Events messaging.Broker

	closers []io.Closer
}

// Registrar creates backend accounts.
type Registrar interface {
	Register(ctx context.Context, req model.RegisterRequest) (model.RegisteredUser, error)
}

type options struct {
	hasher    security.PasswordHasher
	logOutput io.Writer
	storage   session.Storage
	memOpts   []memory.Option
	remOpts   []remote.Option
	now       func() time.Time
}

type Option func(*options)

// WithHasher replaces the bcrypt hasher used for the local credential table.
func WithHasher(h security.PasswordHasher) Option {
	return func(o *options) { o.hasher = h }
}

// WithLogOutput redirects the log stream, os.Stderr by default.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOutput = w }
}

// WithSessionStorage bypasses session.storage from the config.
func WithSessionStorage(s session.Storage) Option {
	return func(o *options) { o.storage = s }
}

// WithStoreOptions is passed through to the simulated provider.
func WithStoreOptions(opts ...memory.Option) Option {
	return func(o *options) { o.memOpts = append(o.memOpts, opts...) }
}

// WithClientOptions is passed through to the remote client.
func WithClientOptions(opts ...remote.Option) Option {
	return func(o *options) { o.remOpts = append(o.remOpts, opts...) }
}

// WithClock fixes "today" for the services that depend on it.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewLogger builds the process logger from the log section.
func NewLogger(cfg config.LogConfig, out io.Writer) *logger.Logger {
	if out == nil {
		out = os.Stderr
	}
	return logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Level),
		TimeFormat: time.RFC3339,
		Output:     out,
		JSON:       cfg.Format == "json",
	})
}

// New assembles a Console. The session is restored from its storage, so a
// console started against redis picks up an earlier sign-in.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Console, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Console{
		Config:   cfg,
		Log:      NewLogger(cfg.Log, o.logOutput),
		Registry: prometheus.NewRegistry(),
	}
	c.Metrics = metrics.NewMetrics(c.Registry, cfg.Metrics.Namespace, "console")

	storage, err := c.sessionStorage(ctx, o)
	if err != nil {
		return nil, err
	}
	if c.Session, err = session.Restore(ctx, storage); err != nil {
		c.Close()
		return nil, err
	}

	var (
		appts    repository.AppointmentRepository
		records  repository.RecordRepository
		pharmacy repository.PharmacyRepository
		reports  repository.ReportRepository
		client   *remote.Client
	)
	switch cfg.Provider {
	case config.ProviderRemote:
		clientOpts := append([]remote.Option{remote.WithMetrics(c.Metrics), remote.WithLogger(c.Log)}, o.remOpts...)
		client = remote.NewClient(cfg.Remote.ToClientConfig(), c.Session, clientOpts...)
		appts = remote.NewAppointmentRepository(client)
		records = remote.NewRecordRepository(client, cfg.Remote.DictionaryTTL)
		pharmacy = remote.NewPharmacyRepository(client)
		reports = remote.NewReportRepository(client)
	default:
		storeOpts := append([]memory.Option{memory.WithLatency(cfg.Simulated.ToLatency())}, o.memOpts...)
		store := memory.NewStore(memory.DefaultSeed(), storeOpts...)
		appts, records, pharmacy, reports = store, store, store, store
	}

	if err := c.authenticator(cfg, client, o); err != nil {
		c.Close()
		return nil, err
	}

	if err := c.eventBroker(ctx, cfg.Events); err != nil {
		c.Close()
		return nil, err
	}

	var obsOpts []service.ObserverOption
	if c.Events != nil {
		obsOpts = append(obsOpts, service.WithEvents(c.Events, cfg.Events.Channel))
	}
	v := validator.New()
	obs := service.NewObserver(c.Log, c.Metrics, obsOpts...)
	c.Appointments = appointmentService.NewService(appts, c.Session, v, obs)
	c.Records = recordService.NewService(records, v, obs)
	c.Pharmacy = pharmacyService.NewService(pharmacy, v, obs, pharmacyService.WithClock(o.now))
	c.Reports = reportService.NewService(reports, v, obs)

	c.Log.Info("console ready", "provider", cfg.Provider, "auth", cfg.Auth.Mode, "session", cfg.Session.Storage)
	return c, nil
}

func (c *Console) sessionStorage(ctx context.Context, o options) (session.Storage, error) {
	if o.storage != nil {
		return o.storage, nil
	}
	if c.Config.Session.Storage != config.StorageRedis {
		return session.NewMemoryStorage(c.Config.Session.TTL), nil
	}
	rs, err := session.NewRedisStorage(ctx, c.Config.Session.ToRedisConfig())
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, rs)
	return rs, nil
}

func (c *Console) eventBroker(ctx context.Context, cfg config.EventsConfig) error {
	switch cfg.Broker {
	case config.BrokerMemory:
		c.Events = messaging.NewMemoryBroker(0)
	case config.BrokerRedis:
		b, err := redisBroker.NewRedisBroker(ctx, redisBroker.Config{URL: cfg.RedisURL}, c.Log)
		if err != nil {
			return fmt.Errorf("failed to start event broker: %w", err)
		}
		c.Events = b
	default:
		return nil
	}
	c.closers = append(c.closers, c.Events)
	return nil
}

func (c *Console) authenticator(cfg *config.Config, client *remote.Client, o options) error {
	if cfg.Auth.Mode == config.AuthAPI {
		if client == nil {
			client = remote.NewClient(cfg.Remote.ToClientConfig(), c.Session, remote.WithMetrics(c.Metrics), remote.WithLogger(c.Log))
		}
		roles, err := cfg.RoleTable()
		if err != nil {
			return err
		}
		a := session.NewAPIAuthenticator(remote.NewAuthService(client), roles)
		c.Authenticator, c.Registrar = a, a
		return nil
	}

	hasher := o.hasher
	if hasher == nil {
		hasher = security.NewBcryptHasher(bcrypt.DefaultCost)
	}
	users, err := session.HashDevUsers(hasher, session.DefaultDevUsers())
	if err != nil {
		return fmt.Errorf("failed to build credential table: %w", err)
	}
	c.Authenticator = session.NewPasswordAuthenticator(hasher, users)
	return nil
}

// SignIn authenticates and stores the resulting session.
func (c *Console) SignIn(ctx context.Context, req model.LoginRequest) error {
	if err := c.Session.SignIn(ctx, c.Authenticator, req); err != nil {
		c.Log.Warn("sign in failed", "username", req.Username, "error", err.Error())
		return err
	}
	c.Log.Info("signed in", "username", req.Username, "role", string(c.Session.Role()))
	return nil
}

// Close releases the session storage and the event broker.
func (c *Console) Close() error {
	var first error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}
