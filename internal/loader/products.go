package loader

import (
	"context"
	"net/http"

	"github.com/pricetracker/web/internal/integrations/backend"
	"github.com/pricetracker/web/internal/models"
	"github.com/pricetracker/web/internal/schema"
	"github.com/pricetracker/web/internal/session"
)

// ProductsData lists the user's tracked products
type ProductsData struct {
	Products []models.Product `json:"products"`
}

// ProductsAddData is the add-product form data
type ProductsAddData struct {
	AuthUser *models.User `json:"authUser"`
}

// Products loads every tracked product of the authenticated user.
func (l *Loader) Products(ctx context.Context, sess session.Session, parent ParentFunc) (*ProductsData, error) {
	if _, err := requireUser(ctx, parent, MsgUnauthorized); err != nil {
		return nil, err
	}

	resp, err := l.api.Get(ctx, sess, backend.ProductsPath)
	if err != nil {
		l.log.WithError(err).Error("Error fetching products")
		return nil, Fail(http.StatusBadGateway, MsgAPIUnavailable, err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, RedirectTo(http.StatusFound, "/")
	case !resp.OK():
		l.log.WithField("status", resp.StatusCode).Error("Error fetching products")
		return nil, Fail(http.StatusBadGateway, MsgProductsUnavailable, nil)
	}

	products, err := schema.Product.ParseList(resp.Body)
	if err != nil {
		l.log.WithError(err).Error("Error fetching products")
		return nil, Fail(http.StatusInternalServerError, MsgInvalidProducts, err)
	}

	return &ProductsData{Products: products}, nil
}

// ProductsAdd hands the layout's user to the add-product form.
func (l *Loader) ProductsAdd(ctx context.Context, parent ParentFunc) (*ProductsAddData, error) {
	user, err := requireUser(ctx, parent, MsgUnauthorized)
	if err != nil {
		return nil, err
	}
	return &ProductsAddData{AuthUser: user}, nil
}
