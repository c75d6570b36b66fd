package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	pkgerrors "github.com/shoplane/storefront-backend/pkg/errors"
)

// PlaceOrder submits the checkout payload for processing.
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	var out Order
	if err := c.do(ctx, "order_place", http.MethodPost, "/v1/orders", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders returns the customer's order history.
func (c *Client) ListOrders(ctx context.Context, customerID string) ([]Order, error) {
	query := url.Values{"customer_id": []string{customerID}}
	var out orderListResponse
	if err := c.do(ctx, "order_list", http.MethodGet, "/v1/orders", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// GetOrder loads one order.
func (c *Client) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	var out Order
	if err := c.do(ctx, "order_detail", http.MethodGet, "/v1/orders/"+id.String(), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelOrder asks the platform to cancel a placed order.
func (c *Client) CancelOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	var out Order
	if err := c.do(ctx, "order_cancel", http.MethodPost, "/v1/orders/"+id.String()+"/cancel", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
