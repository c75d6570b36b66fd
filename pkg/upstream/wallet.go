package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// WalletBalance fetches the customer's stored-value balance.
func (c *Client) WalletBalance(ctx context.Context, customerID string) (*WalletBalance, error) {
	query := url.Values{"customer_id": []string{customerID}}
	var out WalletBalance
	if err := c.do(ctx, "wallet_balance", http.MethodGet, "/v1/wallet/balance", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WalletTransactions lists the customer's wallet ledger entries.
func (c *Client) WalletTransactions(ctx context.Context, customerID string) ([]WalletTransaction, error) {
	query := url.Values{"customer_id": []string{customerID}}
	var out walletTransactionsResponse
	if err := c.do(ctx, "wallet_transactions", http.MethodGet, "/v1/wallet/transactions", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Transactions, nil
}

// PreviewPoints reports the loyalty points an order total would earn.
func (c *Client) PreviewPoints(ctx context.Context, customerID string, totalCents int64) (*PointsPreview, error) {
	query := url.Values{
		"customer_id": []string{customerID},
		"total_cents": []string{strconv.FormatInt(totalCents, 10)},
	}
	var out PointsPreview
	if err := c.do(ctx, "points_preview", http.MethodGet, "/v1/points/preview", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RedeemPoints converts loyalty points into wallet credit.
func (c *Client) RedeemPoints(ctx context.Context, customerID string, points int64) (*PointsRedemption, error) {
	body := map[string]any{"customer_id": customerID, "points": points}
	var out PointsRedemption
	if err := c.do(ctx, "points_redeem", http.MethodPost, "/v1/points/redeem", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
