package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// ProductListParams filters the catalog listing.
type ProductListParams struct {
	Query      string
	CategoryID *uuid.UUID
	Limit      int
	Offset     int
}

// ListProducts searches the catalog.
func (c *Client) ListProducts(ctx context.Context, params ProductListParams) ([]Product, error) {
	query := url.Values{}
	if params.Query != "" {
		query.Set("q", params.Query)
	}
	if params.CategoryID != nil {
		query.Set("category_id", params.CategoryID.String())
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		query.Set("offset", strconv.Itoa(params.Offset))
	}

	var out productListResponse
	if err := c.do(ctx, "product_list", http.MethodGet, "/v1/products", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// GetProduct loads one product's detail view.
func (c *Client) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	var out Product
	if err := c.do(ctx, "product_detail", http.MethodGet, "/v1/products/"+id.String(), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCategories returns the catalog's category tree roots.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out categoryListResponse
	if err := c.do(ctx, "category_list", http.MethodGet, "/v1/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// AssetConfig fetches the image base URL used to resolve relative paths.
func (c *Client) AssetConfig(ctx context.Context) (*AssetConfig, error) {
	var out AssetConfig
	if err := c.do(ctx, "asset_config", http.MethodGet, "/v1/assets/config", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
