package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/linkbox/internal/httpserver/mw"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
	"github.com/MrSnakeDoc/linkbox/internal/metrics"
	"github.com/MrSnakeDoc/linkbox/internal/service"
)

// Pinger is implemented by store backends that sit behind a network hop.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	Service       *service.Bookmarks // links, folders, search, import
	Metrics       *metrics.Metrics   // served on /metrics
	Backend       string             // store backend name, reported by /infra
	Store         Pinger             // nil for embedded backends
	AllowedHosts  []string           // Host headers allowed to access the server
	AdminCIDRS    []string           // IPs allowed to reach admin routes
	TrustProxy    bool               // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateLimit     mw.RateLimitConfig // per-IP limits on write routes
	ReloadTrigger chan struct{}      // manual import reload (nil if no import file)
}
