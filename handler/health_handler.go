package handler

import (
	"context"
	"net/http"
	"time"

	"safeher/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type PendingCounter interface {
	Pending() int
}

type ActiveCounter interface {
	CountActive(ctx context.Context) (int64, error)
}

type HealthHandler struct {
	Database  Pinger
	Cache     Pinger // optional
	Watchdog  PendingCounter
	Sessions  ActiveCounter
	SMSReady  bool
	MailReady bool
	Started   time.Time
	CPUSample time.Duration
}

func (h *HealthHandler) check(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "up"
}

// Health reports dependency reachability and host load. The database is the
// only dependency that makes the service unhealthy.
func (h *HealthHandler) Health(c *gin.Context) {
	db := h.check(c.Request.Context(), h.Database)
	body := gin.H{
		"status":    "healthy",
		"database":  db,
		"cache":     h.check(c.Request.Context(), h.Cache),
		"cpu_usage": utils.GetCPUUsage(h.CPUSample),
		"mem_usage": utils.GetMemoryUsage(),
		"timestamp": time.Now().UTC(),
	}
	if db != "up" {
		body["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (h *HealthHandler) Status(c *gin.Context) {
	pending := 0
	if h.Watchdog != nil {
		pending = h.Watchdog.Pending()
	}
	body := gin.H{
		"service":        "safeher",
		"uptime_seconds": int64(time.Since(h.Started).Seconds()),
		"pending_timers": pending,
		"sms_enabled":    h.SMSReady,
		"email_enabled":  h.MailReady,
	}
	if h.Sessions != nil {
		if n, err := h.Sessions.CountActive(c.Request.Context()); err == nil {
			body["active_sessions"] = n
		}
	}
	utils.Success(c, body)
}

func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
