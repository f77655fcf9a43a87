package middleware

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"safeher/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

// RateLimiterConfig uses limiter's formatted rates, e.g. "100-15M" or "20-M".
type RateLimiterConfig struct {
	Name       string   // metrics label, e.g. "api" or "auth"
	Rate       string   // default rate
	Identifier string   // ip | user
	SkipPaths  []string // prefix match on the route template
	AddHeaders bool
}

type MetricsObserver interface {
	OnAllow(limiterName, route string)
	OnDeny(limiterName, route string)
}

type PrometheusObserver struct {
	allow *prometheus.CounterVec
	deny  *prometheus.CounterVec
}

var (
	promObserverOnce sync.Once
	promObserver     *PrometheusObserver
)

// NewPrometheusObserver returns the process-wide observer; collectors can only
// be registered once.
func NewPrometheusObserver() *PrometheusObserver {
	promObserverOnce.Do(func() {
		promObserver = &PrometheusObserver{
			allow: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "rate_limit_allow_total",
				Help: "Allowed requests by rate limiter",
			}, []string{"limiter", "route"}),
			deny: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "rate_limit_deny_total",
				Help: "Denied requests by rate limiter",
			}, []string{"limiter", "route"}),
		}
	})
	return promObserver
}

func (p *PrometheusObserver) OnAllow(name, route string) { p.allow.WithLabelValues(name, route).Inc() }
func (p *PrometheusObserver) OnDeny(name, route string)  { p.deny.WithLabelValues(name, route).Inc() }

type RateLimiter struct {
	cfg      RateLimiterConfig
	limiter  *limiter.Limiter
	observer MetricsObserver
}

// NewRateLimiter builds a limiter over store; a nil store means in-memory.
func NewRateLimiter(cfg RateLimiterConfig, store limiter.Store) (*RateLimiter, error) {
	if store == nil {
		store = memory.NewStore()
	}
	if cfg.Rate == "" {
		cfg.Rate = "100-15M"
	}
	rate, err := limiter.NewRateFromFormatted(cfg.Rate)
	if err != nil {
		return nil, err
	}
	return &RateLimiter{cfg: cfg, limiter: limiter.New(store, rate)}, nil
}

// NewLimiterStore shares limits across instances through Redis when a client
// is available and falls back to process memory otherwise.
func NewLimiterStore(client *redis.Client, lg *zap.Logger) limiter.Store {
	if client == nil {
		return memory.NewStore()
	}
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   "safeher:limiter",
		MaxRetry: 3,
	})
	if err != nil {
		lg.Warn("Redis limiter store unavailable, using memory", zap.Error(err))
		return memory.NewStore()
	}
	return store
}

func (l *RateLimiter) WithObserver(observer MetricsObserver) *RateLimiter {
	l.observer = observer
	return l
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := routeOf(c)
		if pathSkipped(l.cfg.SkipPaths, route) {
			c.Next()
			return
		}

		key := l.key(c)
		lctx, err := l.limiter.Get(c.Request.Context(), key)
		if err != nil {
			// Fail open when the store errors.
			c.Next()
			return
		}
		if l.cfg.AddHeaders {
			setStandardHeaders(c, lctx)
		}
		if lctx.Reached {
			setRetryAfter(c, time.Until(time.Unix(lctx.Reset, 0)))
			if l.observer != nil {
				l.observer.OnDeny(l.cfg.Name, route)
			}
			utils.TooManyRequests(c, "Too many requests, please try again later")
			return
		}

		if l.observer != nil {
			l.observer.OnAllow(l.cfg.Name, route)
		}
		c.Next()
	}
}

func (l *RateLimiter) key(c *gin.Context) string {
	ip := strings.TrimPrefix(c.ClientIP(), "::ffff:")
	if l.cfg.Identifier == "user" {
		if user := c.GetString(ContextUserID); user != "" {
			return l.cfg.Name + ":user:" + user
		}
	}
	return l.cfg.Name + ":ip:" + ip
}

func routeOf(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return c.Request.URL.Path
}

func pathSkipped(prefixes []string, path string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func setStandardHeaders(c *gin.Context, ctx limiter.Context) {
	c.Header("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
	resetSec := int(time.Until(time.Unix(ctx.Reset, 0)).Seconds())
	if resetSec < 0 {
		resetSec = 0
	}
	c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))
}

func setRetryAfter(c *gin.Context, d time.Duration) {
	sec := int(d.Seconds())
	if sec < 0 {
		sec = 0
	}
	c.Header("Retry-After", strconv.Itoa(sec))
}
