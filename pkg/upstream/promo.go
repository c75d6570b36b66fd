package upstream

import (
	"context"
	"net/http"
	"strings"

	pkgerrors "github.com/shoplane/storefront-backend/pkg/errors"
)

// ListPromos fetches the published promo definitions in bulk.
func (c *Client) ListPromos(ctx context.Context) ([]PromoDefinition, error) {
	var out promoListResponse
	if err := c.do(ctx, "promo_list", http.MethodGet, "/v1/promos", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Promos, nil
}

// ValidatePromo asks the platform whether a candidate code applies to the
// given cart contents. A rejected code is a successful call: the verdict is
// in the result, not the error.
func (c *Client) ValidatePromo(ctx context.Context, req PromoValidationRequest) (*PromoValidationResult, error) {
	if strings.TrimSpace(req.Code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code is required")
	}
	var out PromoValidationResult
	if err := c.do(ctx, "promo_validate", http.MethodPost, "/v1/promos/validate", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
