package models

import (
	"time"

	"github.com/google/uuid"
)

// Platform is the marketplace a product is tracked on
type Platform string

const (
	PlatformAmazon Platform = "amazon"
	PlatformEbay   Platform = "ebay"
	PlatformNewegg Platform = "newegg"
)

// DiscountType describes how a coupon value applies
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Product represents a tracked product
type Product struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Platform  Platform        `json:"platform"`
	Link      string          `json:"product_link"`
	Name      string          `json:"product_name"`
	Image     string          `json:"product_image"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Tracking  []TrackingEntry `json:"product_tracking"`
}

// TrackingEntry is a single price observation
type TrackingEntry struct {
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
	Seller    *Seller   `json:"seller,omitempty"`
	Coupon    *Coupon   `json:"coupon,omitempty"`
}

// Seller describes who ships and sells the product
type Seller struct {
	ShipsFrom string `json:"ships_from,omitempty"`
	SoldBy    string `json:"sold_by,omitempty"`
}

// Coupon is a discount attached to an observation
type Coupon struct {
	Value        float64      `json:"value"`
	DiscountType DiscountType `json:"discount_type"`
}
