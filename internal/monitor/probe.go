// Package monitor watches whether the PriceTracker API is reachable.
package monitor

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/pricetracker/web/internal/integrations/backend"
	"github.com/pricetracker/web/internal/metrics"
	"github.com/pricetracker/web/internal/session"
)

const probeTimeout = 5 * time.Second

// Getter is the part of the API client a probe needs
type Getter interface {
	Get(ctx context.Context, sess session.Session, path string) (*backend.Response, error)
}

// Probe periodically GETs an API path and tracks reachability
type Probe struct {
	api  Getter
	path string
	log  *logrus.Logger
	cron *cron.Cron

	mu      sync.Mutex
	known   bool
	up      bool
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewProbe creates a probe for path on the given cron schedule
func NewProbe(api Getter, path, schedule string, log *logrus.Logger) (*Probe, error) {
	p := &Probe{
		api:  api,
		path: path,
		log:  log,
		cron: cron.New(),
	}
	if _, err := p.cron.AddFunc(schedule, p.run); err != nil {
		return nil, fmt.Errorf("invalid probe schedule '%s': %w", schedule, err)
	}
	return p, nil
}

// Start checks once and then follows the schedule
func (p *Probe) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.running = true
	p.mu.Unlock()

	p.Check(p.ctx)
	p.cron.Start()
	p.log.WithField("path", p.path).Info("Upstream probe started")
}

// Stop waits for a running check to finish
func (p *Probe) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.running = false
	p.mu.Unlock()

	<-p.cron.Stop().Done()
	p.log.Info("Upstream probe stopped")
}

func (p *Probe) run() {
	p.mu.Lock()
	ctx := p.ctx
	p.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	p.Check(ctx)
}

// Check probes the API once and reports whether it answered. Any response
// below 500 counts as reachable.
func (p *Probe) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	resp, err := p.api.Get(ctx, session.Session{}, p.path)
	up := err == nil && resp.StatusCode < http.StatusInternalServerError

	if up {
		metrics.UpstreamUp.Set(1)
	} else {
		metrics.UpstreamUp.Set(0)
	}

	p.mu.Lock()
	changed := !p.known || p.up != up
	p.known, p.up = true, up
	p.mu.Unlock()

	if changed {
		entry := p.log.WithField("path", p.path)
		switch {
		case up:
			entry.Info("PriceTracker API is reachable")
		case err != nil:
			entry.WithError(err).Warn("PriceTracker API is unreachable")
		default:
			entry.WithField("status", resp.StatusCode).Warn("PriceTracker API is unhealthy")
		}
	}

	return up
}

// Up reports the result of the last check
func (p *Probe) Up() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.up
}
