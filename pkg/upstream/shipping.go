package upstream

import (
	"context"
	"net/http"

	pkgerrors "github.com/shoplane/storefront-backend/pkg/errors"
)

// QuoteShipping prices delivery to the given address. The fee in the quote is
// authoritative; nothing is computed locally.
func (c *Client) QuoteShipping(ctx context.Context, req ShippingQuoteRequest) (*ShippingQuote, error) {
	if err := req.Address.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address")
	}
	var out ShippingQuote
	if err := c.do(ctx, "shipping_quote", http.MethodPost, "/v1/shipping/quote", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
