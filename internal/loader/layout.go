package loader

import (
	"context"
	"net/http"
	"sync"

	"github.com/pricetracker/web/internal/integrations/backend"
	"github.com/pricetracker/web/internal/models"
	"github.com/pricetracker/web/internal/schema"
	"github.com/pricetracker/web/internal/session"
)

// LayoutData is shared by every dashboard page
type LayoutData struct {
	AuthenticatedUser *models.User `json:"authenticatedUser"`
}

// ParentFunc gives a child page access to the layout data of its request.
type ParentFunc func(ctx context.Context) (*LayoutData, error)

// Layout loads the authenticated user for the dashboard. Anonymous or
// rejected sessions are sent back to the landing page.
func (l *Loader) Layout(ctx context.Context, sess session.Session) (*LayoutData, error) {
	if sess.Anonymous() || sess.Expired(l.now()) {
		return nil, RedirectTo(http.StatusFound, "/")
	}

	resp, err := l.api.Get(ctx, sess, backend.AuthUserPath)
	if err != nil {
		l.log.WithError(err).Error("Error fetching user")
		return nil, Fail(http.StatusBadGateway, MsgAPIUnavailable, err)
	}
	if !resp.OK() {
		l.log.WithField("status", resp.StatusCode).Info("Session rejected, redirecting to landing page")
		return nil, RedirectTo(http.StatusFound, "/")
	}

	user, err := schema.User.Parse(resp.Body)
	if err != nil {
		l.log.WithError(err).Error("Error fetching user")
		return nil, Fail(http.StatusInternalServerError, MsgInvalidUser, err)
	}

	return &LayoutData{AuthenticatedUser: &user}, nil
}

// Parent returns a ParentFunc that runs the layout at most once.
func (l *Loader) Parent(sess session.Session) ParentFunc {
	var (
		once sync.Once
		data *LayoutData
		err  error
	)
	return func(ctx context.Context) (*LayoutData, error) {
		once.Do(func() {
			data, err = l.Layout(ctx, sess)
		})
		return data, err
	}
}

func requireUser(ctx context.Context, parent ParentFunc, message string) (*models.User, error) {
	data, err := parent(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil || data.AuthenticatedUser == nil {
		return nil, Fail(http.StatusUnauthorized, message, nil)
	}
	return data.AuthenticatedUser, nil
}
