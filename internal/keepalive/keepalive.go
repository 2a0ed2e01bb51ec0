// Package keepalive posts an empty notification body to the service's own
// public URL on a schedule, so hosts that idle out quiet processes keep it
// warm. It is fully isolated from request handling: its failures are
// swallowed, never surfaced to a live request.
package keepalive

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Pinger runs the scheduled self-ping.
type Pinger struct {
	cron   *cron.Cron
	url    string
	client *http.Client
	logger *slog.Logger
}

// New builds a Pinger for the given URL and cron schedule (for example
// "@every 10m"). The schedule is validated here so a typo fails startup
// instead of silently never pinging.
func New(url, schedule string, logger *slog.Logger) (*Pinger, error) {
	p := &Pinger{
		cron:   cron.New(),
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
	if _, err := p.cron.AddFunc(schedule, p.ping); err != nil {
		return nil, err
	}
	return p, nil
}

// Start begins the schedule. Pings run on the cron's own goroutine.
func (p *Pinger) Start() {
	p.logger.Info("keepalive started", "url", p.url)
	p.cron.Start()
}

// Stop halts the schedule, waiting briefly for an in-flight ping.
func (p *Pinger) Stop() {
	ctx := p.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

// ping is best-effort: any failure is logged at debug and dropped.
func (p *Pinger) ping() {
	resp, err := p.client.Post(p.url, "application/json", strings.NewReader("{}"))
	if err != nil {
		p.logger.Debug("keepalive ping failed", "error", err)
		return
	}
	resp.Body.Close()
}
