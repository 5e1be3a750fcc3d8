package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-querystring/query"

	"github.com/harborstay/reservations/internal/domain"
)

// Client is a thin typed client for the reservations API, used by sibling
// services and ops tooling.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SearchOptions mirrors the search endpoint's query parameters.
type SearchOptions struct {
	UserID    string `url:"user_id,omitempty"`
	HostID    string `url:"host_id,omitempty"`
	ListingID string `url:"listing_id,omitempty"`
	Status    string `url:"status,omitempty"`
	CheckIn   string `url:"check_in,omitempty"`
	CheckOut  string `url:"check_out,omitempty"`
	Limit     int    `url:"limit,omitempty"`
	Offset    int    `url:"offset,omitempty"`
}

type searchResponse struct {
	Reservations []domain.Reservation `json:"reservations"`
}

type availabilityOptions struct {
	CheckIn  string `url:"check_in"`
	CheckOut string `url:"check_out"`
}

type availabilityResponse struct {
	Available bool `json:"available"`
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reservations API returned %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) SearchReservations(ctx context.Context, opts SearchOptions) ([]domain.Reservation, error) {
	values, err := query.Values(opts)
	if err != nil {
		return nil, err
	}

	var out searchResponse
	if err := c.get(ctx, "/v1/reservations/search?"+values.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Reservations, nil
}

func (c *Client) CheckAvailability(ctx context.Context, listingID, checkIn, checkOut string) (bool, error) {
	values, err := query.Values(availabilityOptions{CheckIn: checkIn, CheckOut: checkOut})
	if err != nil {
		return false, err
	}

	var out availabilityResponse
	path := fmt.Sprintf("/v1/listings/%s/availability?%s", listingID, values.Encode())
	if err := c.get(ctx, path, &out); err != nil {
		return false, err
	}
	return out.Available, nil
}
