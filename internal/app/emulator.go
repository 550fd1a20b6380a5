package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/clinic-console/internal/config"
	"github.com/jwalitptl/clinic-console/internal/handler/appointment"
	authHandler "github.com/jwalitptl/clinic-console/internal/handler/auth"
	"github.com/jwalitptl/clinic-console/internal/handler/health"
	"github.com/jwalitptl/clinic-console/internal/handler/pharmacy"
	promHandler "github.com/jwalitptl/clinic-console/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-console/internal/handler/record"
	"github.com/jwalitptl/clinic-console/internal/handler/report"
	"github.com/jwalitptl/clinic-console/internal/middleware"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/repository/memory"
	"github.com/jwalitptl/clinic-console/internal/router"
	"github.com/jwalitptl/clinic-console/internal/session"
	"github.com/jwalitptl/clinic-console/pkg/auth"
	"github.com/jwalitptl/clinic-console/pkg/logger"
	"github.com/jwalitptl/clinic-console/pkg/metrics"
	"github.com/jwalitptl/clinic-console/pkg/security"
	"github.com/jwalitptl/clinic-console/pkg/validator"
)

// EmulatorDeps are the collaborators of NewEmulator. Zero values get
// production defaults.
type EmulatorDeps struct {
	Store    *memory.Store
	Log      *logger.Logger
	Registry *prometheus.Registry
	Hasher   security.PasswordHasher
}

// DevAccounts converts the demo credential set into backend accounts with
// the backend's numeric role ids.
func DevAccounts(hasher security.PasswordHasher, users []session.DevUser) ([]authHandler.Account, error) {
	out := make([]authHandler.Account, 0, len(users))
	for _, u := range users {
		roleID, ok := authHandler.RoleIDs[u.Role]
		if !ok {
			return nil, fmt.Errorf("no backend role id for %q", u.Role)
		}
		hash, err := hasher.Hash(u.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", u.Username, err)
		}
		out = append(out, authHandler.Account{
			UserID:       u.User.ID,
			Username:     u.Username,
			PasswordHash: hash,
			RealName:     u.User.Name,
			RoleID:       roleID,
		})
	}
	return out, nil
}

// NewEmulator builds the REST backend over a simulated store so the remote
// provider can be run against something real.
func NewEmulator(cfg *config.Config, deps EmulatorDeps) (*router.Router, error) {
	if deps.Store == nil {
		deps.Store = memory.NewStore(memory.DefaultSeed(), memory.WithLatency(memory.Latency{}))
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	if deps.Hasher == nil {
		deps.Hasher = security.NewBcryptHasher(bcrypt.DefaultCost)
	}

	accounts, err := DevAccounts(deps.Hasher, session.DefaultDevUsers())
	if err != nil {
		return nil, err
	}

	m := metrics.NewMetrics(deps.Registry, cfg.Metrics.Namespace, "emulator")
	jwtSvc := auth.NewJWTService(cfg.Server.JWTSecret, cfg.Server.TokenTTL)
	v := validator.New()

	ops := []router.Handler{
		health.NewHandler(map[string]health.Checker{
			"store": func(ctx context.Context) error {
				_, err := deps.Store.ListDepartments(ctx, model.Pagination{Page: 1, PageSize: 1})
				return err
			},
		}),
		promHandler.New(deps.Registry),
	}
	domain := []router.Handler{
		appointment.NewHandler(deps.Store, v),
		record.NewHandler(deps.Store, v),
		pharmacy.NewHandler(deps.Store, v),
		report.NewHandler(deps.Store, v),
	}

	r := router.NewRouter(
		router.RouterConfig{
			Prefix:      cfg.Server.Prefix,
			MaxBodySize: middleware.DefaultMaxBodySize,
			CORSConfig:  middleware.DefaultCORSConfig(),
		},
		middleware.NewAuthMiddleware(jwtSvc),
		authHandler.NewHandler(authHandler.NewUsers(accounts), deps.Hasher, jwtSvc, v),
		ops,
		domain,
		deps.Log,
		m,
	)
	r.Setup()
	return r, nil
}
