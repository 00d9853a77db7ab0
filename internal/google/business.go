package google

import (
	"context"
	"encoding/json"
	"fmt"
)

type BusinessAccount struct {
	Name        string `json:"name"`
	AccountName string `json:"accountName,omitempty"`
	Type        string `json:"type,omitempty"`
}

type BusinessLocation struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
}

type businessAccountsResponse struct {
	Accounts []BusinessAccount `json:"accounts"`
}

type businessLocationsResponse struct {
	Locations []BusinessLocation `json:"locations"`
}

// ListBusinessAccounts returns the Business Profile accounts visible to the
// connected Google account.
func (c *Client) ListBusinessAccounts(ctx context.Context, accessToken string) ([]BusinessAccount, error) {
	body, err := c.getJSON(ctx, c.endpoints.BusinessAccounts, accessToken)
	if err != nil {
		return nil, err
	}

	var resp businessAccountsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode business accounts response: %w", err)
	}
	return resp.Accounts, nil
}

// ListBusinessLocations returns the locations under one account resource name
// (e.g. "accounts/123").
func (c *Client) ListBusinessLocations(ctx context.Context, accessToken, accountName string) ([]BusinessLocation, error) {
	locationsURL := fmt.Sprintf(c.endpoints.BusinessLocations, accountName) + "?readMask=name,title"
	body, err := c.getJSON(ctx, locationsURL, accessToken)
	if err != nil {
		return nil, err
	}

	var resp businessLocationsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode business locations response: %w", err)
	}
	return resp.Locations, nil
}
