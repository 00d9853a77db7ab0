package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/config"
	apperrors "github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/errors"
)

// Endpoints holds the provider URLs. Tests point these at httptest servers.
type Endpoints struct {
	Auth             string
	Token            string
	Userinfo         string
	Revoke           string
	CalendarEvents   string
	BusinessAccounts string
	// BusinessLocations is a format string taking the account resource name.
	BusinessLocations string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		Auth:              "https://accounts.google.com/o/oauth2/v2/auth",
		Token:             "https://oauth2.googleapis.com/token",
		Userinfo:          "https://www.googleapis.com/oauth2/v2/userinfo",
		Revoke:            "https://oauth2.googleapis.com/revoke",
		CalendarEvents:    "https://www.googleapis.com/calendar/v3/calendars/primary/events",
		BusinessAccounts:  "https://mybusinessaccountmanagement.googleapis.com/v1/accounts",
		BusinessLocations: "https://mybusinessbusinessinformation.googleapis.com/v1/%s/locations",
	}
}

// Scopes requested per integration type. Space-joined into the consent URL.
var (
	CalendarScopes = []string{
		"openid", "email", "profile",
		"https://www.googleapis.com/auth/calendar.readonly",
	}
	BusinessProfileScopes = []string{
		"openid", "email", "profile",
		"https://www.googleapis.com/auth/business.manage",
	}
)

type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string
	endpoints    Endpoints
	httpClient   *http.Client
}

func NewClient(clientID, clientSecret, redirectURI string) *Client {
	return NewClientWithEndpoints(clientID, clientSecret, redirectURI, DefaultEndpoints())
}

func NewClientWithEndpoints(clientID, clientSecret, redirectURI string, endpoints Endpoints) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		endpoints:    endpoints,
		httpClient:   &http.Client{Timeout: config.GoogleRequestTimeout},
	}
}

func (c *Client) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// AuthURL builds the consent URL for an offline-access authorization-code grant.
func (c *Client) AuthURL(scopes []string, state string) string {
	params := url.Values{
		"client_id":     {c.clientID},
		"redirect_uri":  {c.redirectURI},
		"response_type": {"code"},
		"scope":         {strings.Join(scopes, " ")},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
		"state":         {state},
	}
	return c.endpoints.Auth + "?" + params.Encode()
}

// TokenResponse is the token endpoint's JSON body. RefreshToken is only
// present on the first authorization-code grant; IDToken only when the openid
// scope was requested.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	IDToken      string `json:"id_token"`
}

// ExchangeCode trades an authorization code for a token pair.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	data := url.Values{
		"code":          {code},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"redirect_uri":  {c.redirectURI},
		"grant_type":    {"authorization_code"},
	}
	return c.postToken(ctx, data)
}

// RefreshAccessToken performs a refresh-token grant.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	data := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"refresh_token": {refreshToken},
		"grant_type":    {"refresh_token"},
	}
	return c.postToken(ctx, data)
}

func (c *Client) postToken(ctx context.Context, data url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoints.Token, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.External("google token endpoint", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error().Int("status", resp.StatusCode).Str("grantType", data.Get("grant_type")).Msg("Google token grant failed")
		return nil, apperrors.ProviderError(resp.StatusCode, string(body))
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	return &tokenResp, nil
}

type Userinfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// FetchUserinfo resolves the account's identity with the access token. A 401
// here is the distinct "authorization insufficient" condition, not a generic
// provider failure.
func (c *Client) FetchUserinfo(ctx context.Context, accessToken string) (*Userinfo, error) {
	body, err := c.getJSON(ctx, c.endpoints.Userinfo, accessToken)
	if err != nil {
		return nil, err
	}

	var info Userinfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	return &info, nil
}

// RevokeToken tells Google to invalidate the token. Best-effort: callers mark
// the local connection revoked regardless of the outcome here.
func (c *Client) RevokeToken(ctx context.Context, token string) error {
	revokeURL := c.endpoints.Revoke + "?token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, "POST", revokeURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create revoke request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.External("google revoke endpoint", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return apperrors.ProviderError(resp.StatusCode, string(body))
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, rawURL, accessToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.External("google api", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		log.Warn().Str("url", rawURL).Msg("Google API rejected access token")
		return nil, apperrors.AuthInsufficient()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.ProviderError(resp.StatusCode, string(body))
	}
	return body, nil
}
