package canto

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const tokenPath = "/oauth/api/oauth2/compatible/token"

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	ExpiresIn    any    `json:"expiresIn"`
	TokenType    string `json:"tokenType"`
	RefreshToken string `json:"refreshToken"`
}

// AuthorizeWithClientCredentials runs the client credentials grant and returns the access token
func (c *Client) AuthorizeWithClientCredentials(ctx context.Context, userID, scope string) (string, error) {
	query := url.Values{}
	query.Set("app_id", c.appID)
	query.Set("app_secret", c.appSecret)
	query.Set("grant_type", "client_credentials")
	if userID != "" {
		query.Set("user_id", userID)
	}
	if scope != "" {
		query.Set("scope", scope)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.oauthURL+tokenPath+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	var resp tokenResponse
	if err := c.send(req, tokenPath, &resp); err != nil {
		return "", err
	}

	if resp.AccessToken == "" {
		return "", &ResponseError{Kind: ErrInvalidResponse, Method: http.MethodPost, Path: tokenPath, Body: "empty access token"}
	}

	return resp.AccessToken, nil
}
