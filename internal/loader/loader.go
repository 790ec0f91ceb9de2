// Package loader gathers and validates the data each page needs before it
// renders. A loader either returns page data or fails with a *Redirect or a
// *PageError; it never returns partially validated data.
package loader

import (
	"context"
	"time"

	"github.com/pricetracker/web/internal/integrations/backend"
	"github.com/pricetracker/web/internal/session"
	"github.com/sirupsen/logrus"
)

// Fetcher is the loaders' capability to reach the PriceTracker API.
type Fetcher interface {
	Get(ctx context.Context, sess session.Session, path string) (*backend.Response, error)
	PostJSON(ctx context.Context, sess session.Session, path string, payload any) (*backend.Response, error)
}

// Loader runs page loaders against the API
type Loader struct {
	api Fetcher
	log *logrus.Logger
	now func() time.Time
}

// New initializes a new loader
func New(api Fetcher, log *logrus.Logger) *Loader {
	return &Loader{api: api, log: log, now: time.Now}
}
