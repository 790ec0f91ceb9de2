package loader

import (
	"context"

	"github.com/pricetracker/web/internal/models"
)

// DashboardData is the dashboard home page data
type DashboardData struct {
	AuthenticatedUser *models.User `json:"authenticatedUser"`
}

// Dashboard re-uses the layout's user and refuses to render without one.
func (l *Loader) Dashboard(ctx context.Context, parent ParentFunc) (*DashboardData, error) {
	user, err := requireUser(ctx, parent, MsgUnauthorizedDashboard)
	if err != nil {
		return nil, err
	}
	return &DashboardData{AuthenticatedUser: user}, nil
}
