package schema

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/pricetracker/web/internal/models"
)

type productWire struct {
	ID              *string        `json:"id" validate:"required,anyuuid"`
	UserID          *string        `json:"user_id" validate:"required,anyuuid"`
	Platform        *string        `json:"platform" validate:"required,oneof=amazon ebay newegg"`
	ProductLink     *string        `json:"product_link" validate:"required,url"`
	ProductName     *string        `json:"product_name" validate:"required"`
	ProductImage    *string        `json:"product_image" validate:"required,url"`
	CreatedAt       *string        `json:"created_at" validate:"required,isodatetime"`
	UpdatedAt       *string        `json:"updated_at" validate:"required,isodatetime"`
	ProductTracking []trackingWire `json:"product_tracking" validate:"required,dive"`
}

type trackingWire struct {
	Price     *float64    `json:"price" validate:"required"`
	Timestamp *string     `json:"timestamp" validate:"required,isodatetime"`
	Seller    *sellerWire `json:"seller"`
	Coupon    *couponWire `json:"coupon"`
}

type sellerWire struct {
	ShipsFrom *string `json:"ships_from"`
	SoldBy    *string `json:"sold_by"`
}

type couponWire struct {
	Value        *float64 `json:"value" validate:"required"`
	DiscountType *string  `json:"discount_type" validate:"required,oneof=percentage fixed"`
}

// Product validates a tracked product payload.
var Product = newSchema("product", func(w *productWire) (models.Product, error) {
	id, err := uuid.Parse(*w.ID)
	if err != nil {
		return models.Product{}, fmt.Errorf("id: %w", err)
	}
	userID, err := uuid.Parse(*w.UserID)
	if err != nil {
		return models.Product{}, fmt.Errorf("user_id: %w", err)
	}
	createdAt, err := ParseDateTime(*w.CreatedAt)
	if err != nil {
		return models.Product{}, err
	}
	updatedAt, err := ParseDateTime(*w.UpdatedAt)
	if err != nil {
		return models.Product{}, err
	}

	tracking := make([]models.TrackingEntry, 0, len(w.ProductTracking))
	for _, tw := range w.ProductTracking {
		ts, err := ParseDateTime(*tw.Timestamp)
		if err != nil {
			return models.Product{}, err
		}
		entry := models.TrackingEntry{Price: *tw.Price, Timestamp: ts}
		if tw.Seller != nil {
			entry.Seller = &models.Seller{ShipsFrom: deref(tw.Seller.ShipsFrom), SoldBy: deref(tw.Seller.SoldBy)}
		}
		if tw.Coupon != nil {
			entry.Coupon = &models.Coupon{Value: *tw.Coupon.Value, DiscountType: models.DiscountType(*tw.Coupon.DiscountType)}
		}
		tracking = append(tracking, entry)
	}

	return models.Product{
		ID:        id,
		UserID:    userID,
		Platform:  models.Platform(*w.Platform),
		Link:      *w.ProductLink,
		Name:      *w.ProductName,
		Image:     *w.ProductImage,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		Tracking:  tracking,
	}, nil
})
