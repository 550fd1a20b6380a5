// Package router assembles the gin engine that emulates the clinic backend.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-console/internal/middleware"
	"github.com/jwalitptl/clinic-console/pkg/logger"
	"github.com/jwalitptl/clinic-console/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// ProtectedHandler mounts some of its routes behind authentication.
type ProtectedHandler interface {
	Handler
	RegisterProtectedRoutes(*gin.RouterGroup)
}

type RouterConfig struct {
	// Prefix is prepended to every backend route, e.g. "/api".
	Prefix      string
	RateLimit   float64
	RateBurst   int
	MaxBodySize int64
	CORSConfig  middleware.CORSConfig
}

type Router struct {
	engine  *gin.Engine
	config  RouterConfig
	auth    *middleware.AuthMiddleware
	authH   ProtectedHandler
	ops     []Handler
	domain  []Handler
	log     *logger.Logger
	metrics *metrics.Metrics
	limiter *middleware.RateLimiter
}

// NewRouter wires the middleware chain. ops are mounted outside auth and
// outside Prefix (health, metrics); domain handlers sit behind the token
// check.
func NewRouter(
	config RouterConfig,
	auth *middleware.AuthMiddleware,
	authH ProtectedHandler,
	ops []Handler,
	domain []Handler,
	log *logger.Logger,
	m *metrics.Metrics,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	if log == nil {
		log = logger.Nop()
	}

	r := &Router{
		engine:  gin.New(),
		config:  config,
		auth:    auth,
		authH:   authH,
		ops:     ops,
		domain:  domain,
		log:     log,
		metrics: m,
		limiter: middleware.NewRateLimiter(middleware.RateLimiterConfig{RPS: config.RateLimit, Burst: config.RateBurst}),
	}

	r.engine.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.Logger(log),
		middleware.Metrics(m),
		middleware.CORS(config.CORSConfig),
	)
	return r
}

func (r *Router) Setup() {
	root := r.engine.Group("")
	for _, h := range r.ops {
		h.RegisterRoutes(root)
	}

	api := r.engine.Group(r.config.Prefix)
	api.Use(r.limiter.RateLimit(), middleware.SizeLimit(r.config.MaxBodySize))

	if r.authH != nil {
		r.authH.RegisterRoutes(api)
	}

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	if r.authH != nil {
		r.authH.RegisterProtectedRoutes(protected)
	}
	for _, h := range r.domain {
		h.RegisterRoutes(protected)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
