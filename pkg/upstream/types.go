package upstream

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shoplane/storefront-backend/pkg/types"
)

// PromoKind identifies how a promo code's benefit is computed.
type PromoKind string

const (
	PromoKindFixed         PromoKind = "fixed"
	PromoKindPercentage    PromoKind = "percentage"
	PromoKindLoyaltyPoints PromoKind = "loyalty_points"
)

// PromoDefinition is one promo code rule as published by the platform.
// Definitions are fetched in bulk and treated as immutable for the session.
type PromoDefinition struct {
	Code                 string          `json:"code" validate:"required"`
	Kind                 PromoKind       `json:"kind" validate:"required"`
	OfferAmountCents     int64           `json:"offer_amount_cents" validate:"gte=0"`
	OfferPercent         decimal.Decimal `json:"offer_percent"`
	MinimumCheckoutCents int64           `json:"minimum_checkout_cents" validate:"gte=0"`
	UptoCents            int64           `json:"upto_cents" validate:"gte=0"`
	UsageLimit           int             `json:"usage_limit"`
	Active               bool            `json:"active"`
	StartsAt             *time.Time      `json:"starts_at,omitempty"`
	EndsAt               *time.Time      `json:"ends_at,omitempty"`
}

type promoListResponse struct {
	Promos []PromoDefinition `json:"promos" validate:"dive"`
}

// PromoValidationRequest carries the candidate code plus the cart it would
// apply to.
type PromoValidationRequest struct {
	Code          string                `json:"code"`
	CustomerID    string                `json:"customer_id"`
	Items         []PromoValidationItem `json:"items"`
	SubtotalCents int64                 `json:"subtotal_cents"`
}

// PromoValidationItem is the line-item projection the validator inspects.
type PromoValidationItem struct {
	ProductID      uuid.UUID `json:"product_id"`
	Qty            int       `json:"qty"`
	UnitPriceCents int64     `json:"unit_price_cents"`
}

// PromoValidationResult is the platform's verdict on a candidate code.
type PromoValidationResult struct {
	IsValid bool   `json:"is_valid"`
	Code    string `json:"code" validate:"required"`
	Reason  string `json:"reason,omitempty"`
}

// ShippingQuoteRequest asks the platform to price delivery to an address.
type ShippingQuoteRequest struct {
	CustomerID    string        `json:"customer_id"`
	Address       types.Address `json:"address"`
	SubtotalCents int64         `json:"subtotal_cents"`
}

// ShippingQuote is the authoritative delivery fee for the given address.
type ShippingQuote struct {
	FeeCents     int64  `json:"fee_cents" validate:"gte=0"`
	Currency     string `json:"currency" validate:"required"`
	EstimateDays *int   `json:"estimate_days,omitempty"`
}

// Product is the catalog detail view.
type Product struct {
	ID             uuid.UUID  `json:"id" validate:"required"`
	VariantID      *uuid.UUID `json:"variant_id,omitempty"`
	Name           string     `json:"name" validate:"required"`
	PriceCents     int64      `json:"price_cents" validate:"gte=0"`
	SalePriceCents *int64     `json:"sale_price_cents,omitempty"`
	Currency       string     `json:"currency" validate:"required"`
	CategoryID     *uuid.UUID `json:"category_id,omitempty"`
	StockCount     *int       `json:"stock_count,omitempty"`
	ImagePath      string     `json:"image_path"`
	Active         bool       `json:"active"`
}

// EffectiveUnitPriceCents returns the sale price when one is set.
func (p Product) EffectiveUnitPriceCents() int64 {
	if p.SalePriceCents != nil {
		return *p.SalePriceCents
	}
	return p.PriceCents
}

type productListResponse struct {
	Products []Product `json:"products" validate:"dive"`
}

// Category is one catalog category.
type Category struct {
	ID   uuid.UUID `json:"id" validate:"required"`
	Name string    `json:"name" validate:"required"`
}

type categoryListResponse struct {
	Categories []Category `json:"categories" validate:"dive"`
}

// OrderRequest places an order with the reconciled totals.
type OrderRequest struct {
	CustomerID    string            `json:"customer_id"`
	Items         []OrderItem       `json:"items"`
	Address       types.Address     `json:"address"`
	PromoCode     string            `json:"promo_code,omitempty"`
	SubtotalCents int64             `json:"subtotal_cents"`
	ShippingCents int64             `json:"shipping_cents"`
	TaxCents      int64             `json:"tax_cents"`
	DiscountCents int64             `json:"discount_cents"`
	TotalCents    int64             `json:"total_cents"`
	Currency      string            `json:"currency"`
}

// OrderItem is one purchased line.
type OrderItem struct {
	ProductID      uuid.UUID  `json:"product_id"`
	VariantID      *uuid.UUID `json:"variant_id,omitempty"`
	Name           string     `json:"name"`
	Qty            int        `json:"qty"`
	UnitPriceCents int64      `json:"unit_price_cents"`
}

// Order is the platform's view of a placed order.
type Order struct {
	ID          uuid.UUID  `json:"id" validate:"required"`
	Status      string     `json:"status" validate:"required"`
	TotalCents  int64      `json:"total_cents"`
	Currency    string     `json:"currency"`
	PlacedAt    time.Time  `json:"placed_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

type orderListResponse struct {
	Orders []Order `json:"orders" validate:"dive"`
}

// WalletBalance is the customer's stored-value balance.
type WalletBalance struct {
	BalanceCents int64  `json:"balance_cents"`
	Currency     string `json:"currency" validate:"required"`
}

// WalletTransaction is one wallet ledger entry.
type WalletTransaction struct {
	ID          uuid.UUID `json:"id" validate:"required"`
	AmountCents int64     `json:"amount_cents"`
	Kind        string    `json:"kind" validate:"required"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

type walletTransactionsResponse struct {
	Transactions []WalletTransaction `json:"transactions" validate:"dive"`
}

// PointsPreview reports the loyalty points an order would earn.
type PointsPreview struct {
	Points int64 `json:"points" validate:"gte=0"`
}

// PointsRedemption is the result of converting points into wallet value.
type PointsRedemption struct {
	RedeemedPoints int64 `json:"redeemed_points"`
	CreditedCents  int64 `json:"credited_cents"`
}

// Credentials is the login/signup payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// Session is an authenticated platform session.
type Session struct {
	Token      string `json:"token" validate:"required"`
	CustomerID string `json:"customer_id" validate:"required"`
}

// Profile is the customer's account record.
type Profile struct {
	CustomerID string `json:"customer_id" validate:"required"`
	Email      string `json:"email" validate:"required"`
	Name       string `json:"name"`
}

// AssetConfig resolves relative image paths to absolute URLs.
type AssetConfig struct {
	ImageBaseURL string `json:"image_base_url" validate:"required,url"`
}
