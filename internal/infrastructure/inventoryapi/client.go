package inventoryapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Stone is the raw record shape returned by the external inventory API. Field
// names differ from the dashboard's internal shape and most fields are
// optional or inconsistent across records, so everything nullable is a pointer.
type Stone struct {
	ID             *int64   `json:"id,omitempty"`
	Shape          string   `json:"shape,omitempty"`
	Color          string   `json:"color,omitempty"`
	Clarity        string   `json:"clarity,omitempty"`
	Weight         *float64 `json:"weight,omitempty"`
	Carat          *float64 `json:"carat,omitempty"`
	Price          *int64   `json:"price,omitempty"`
	PricePerCarat  *float64 `json:"price_per_carat,omitempty"`
	Stock          string   `json:"stock,omitempty"`
	StockNumber    string   `json:"stock_number,omitempty"`
	Owners         []int64  `json:"owners,omitempty"`
	OwnerID        *int64   `json:"owner_id,omitempty"`
	Status         string   `json:"status,omitempty"`
	Cut            string   `json:"cut,omitempty"`
	Polish         string   `json:"polish,omitempty"`
	Symmetry       string   `json:"symmetry,omitempty"`
	Picture        string   `json:"picture,omitempty"`
	CertificateURL string   `json:"certificate_url,omitempty"`
}

// Client abstracts the external inventory API (for the HTTP client or test doubles).
type Client interface {
	GetAllStones(ctx context.Context, userID int64) ([]Stone, error)
	DeleteStone(ctx context.Context, stockNumber string, userID int64) error
}

// HTTPClient talks to the inventory API over HTTP with a static bearer token.
type HTTPClient struct {
	BaseURL     string
	AccessToken string
	Client      *http.Client
}

var defaultClient = &http.Client{Timeout: 15 * time.Second}

// httpClient must not write to the receiver: one client instance is shared by
// the inventory and dashboard services across concurrent requests.
func (c *HTTPClient) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return defaultClient
}

// GetAllStones fetches the full stone list for a user (GET /api/v1/get_all_stones?user_id=N).
func (c *HTTPClient) GetAllStones(ctx context.Context, userID int64) ([]Stone, error) {
	url := fmt.Sprintf("%s/api/v1/get_all_stones?user_id=%d", c.BaseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("inventory api request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("inventory api returned status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var stones []Stone
	if err := json.Unmarshal(body, &stones); err != nil {
		return nil, fmt.Errorf("inventory api response decode: %w", err)
	}
	return stones, nil
}

// DeleteStone deletes a stone by stock number (DELETE /api/v1/delete_diamond).
// The API identifies stones by stock number and scopes by user id in the body.
func (c *HTTPClient) DeleteStone(ctx context.Context, stockNumber string, userID int64) error {
	url := c.BaseURL + "/api/v1/delete_diamond"
	payload, _ := json.Marshal(map[string]interface{}{
		"diamond_id": stockNumber,
		"user_id":    userID,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("inventory api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("inventory api returned status %d: %s", resp.StatusCode, truncate(body, 200))
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
