package loader

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pricetracker/web/internal/integrations/backend"
	"github.com/pricetracker/web/internal/metrics"
	"github.com/pricetracker/web/internal/models"
	"github.com/pricetracker/web/internal/schema"
	"github.com/pricetracker/web/internal/session"
)

// ConfigsData is the scraper configuration page data
type ConfigsData struct {
	UserAgents   []string `json:"userAgents"`
	ProxyServers []string `json:"proxyServers"`
}

// Configs fetches user agents and proxy servers independently. A failed
// sub-fetch is logged and yields an empty list; it never fails the page.
func (l *Loader) Configs(ctx context.Context, sess session.Session) (*ConfigsData, error) {
	data := &ConfigsData{}

	var g errgroup.Group
	g.Go(func() error {
		data.UserAgents = l.configList(ctx, sess, "user agents", backend.UserAgentsPath,
			func(c models.Config) []string { return c.UserAgents })
		return nil
	})
	g.Go(func() error {
		data.ProxyServers = l.configList(ctx, sess, "proxy servers", backend.ProxyServersPath,
			func(c models.Config) []string { return c.ProxyServers })
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return data, nil
}

func (l *Loader) configList(ctx context.Context, sess session.Session, resource, path string, pick func(models.Config) []string) []string {
	list, err := l.fetchConfig(ctx, sess, resource, path, pick)
	if err != nil {
		l.log.WithError(err).WithField("resource", resource).Errorf("Error fetching %s", resource)
		metrics.DegradedFetches.WithLabelValues(resource).Inc()
		return []string{}
	}
	return list
}

func (l *Loader) fetchConfig(ctx context.Context, sess session.Session, resource, path string, pick func(models.Config) []string) ([]string, error) {
	resp, err := l.api.Get(ctx, sess, path)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("failed to fetch %s: status %d", resource, resp.StatusCode)
	}

	cfg, err := schema.Config.Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	if list := pick(cfg); list != nil {
		return list, nil
	}
	return []string{}, nil
}
