package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// RequestTokenResult holds the temporary credential from the request-token
// exchange.
type RequestTokenResult struct {
	OAuthToken        string
	OAuthTokenSecret  string
	CallbackConfirmed bool
}

// AccessTokenResult holds the caller credential issued after authorization.
type AccessTokenResult struct {
	OAuthToken       string
	OAuthTokenSecret string
	UserID           string
	ScreenName       string
}

// RequestToken starts the three-legged authorization flow, registering the
// callback the user is redirected to after approving access.
func (c *Client) RequestToken(ctx context.Context, callbackURL string) (*RequestTokenResult, error) {
	extra := map[string]string{"oauth_callback": callbackURL}
	body, err := c.postForm(ctx, "request token", c.oauthURL("request_token"), nil, nil, extra)
	if err != nil {
		return nil, err
	}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("request token: parse response: %w", err)
	}
	result := &RequestTokenResult{
		OAuthToken:        values.Get("oauth_token"),
		OAuthTokenSecret:  values.Get("oauth_token_secret"),
		CallbackConfirmed: values.Get("oauth_callback_confirmed") == "true",
	}
	if result.OAuthToken == "" {
		return nil, fmt.Errorf("request token: response missing oauth_token")
	}
	return result, nil
}

// AccessToken exchanges an authorized request token and verifier for the
// caller's access token pair.
func (c *Client) AccessToken(ctx context.Context, oauthToken, verifier string) (*AccessTokenResult, error) {
	extra := map[string]string{
		"oauth_token":    oauthToken,
		"oauth_verifier": verifier,
	}
	body, err := c.postForm(ctx, "access token", c.oauthURL("access_token"), nil, nil, extra)
	if err != nil {
		return nil, err
	}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("access token: parse response: %w", err)
	}
	result := &AccessTokenResult{
		OAuthToken:       values.Get("oauth_token"),
		OAuthTokenSecret: values.Get("oauth_token_secret"),
		UserID:           values.Get("user_id"),
		ScreenName:       values.Get("screen_name"),
	}
	if result.OAuthToken == "" || result.OAuthTokenSecret == "" {
		return nil, fmt.Errorf("access token: response missing token pair")
	}
	return result, nil
}

// Profile fetches the authenticated user's profile document.
func (c *Client) Profile(ctx context.Context, token Token, screenName, userID string) (json.RawMessage, error) {
	params := url.Values{}
	if screenName != "" {
		params.Set("screen_name", screenName)
	}
	if userID != "" {
		params.Set("user_id", userID)
	}
	body, err := c.getForm(ctx, "user profile", c.apiBase+"/users/show.json", params, &token)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// AuthorizeURL returns the page where the user approves the request token.
func (c *Client) AuthorizeURL(oauthToken string) string {
	return c.oauthURL("authorize") + "?oauth_token=" + url.QueryEscape(oauthToken)
}

// oauthURL maps the versioned API base to the unversioned oauth endpoints.
func (c *Client) oauthURL(endpoint string) string {
	base := c.apiBase
	if parsed, err := url.Parse(base); err == nil && parsed.Path != "" {
		parsed.Path = ""
		base = parsed.String()
	}
	return base + "/oauth/" + endpoint
}
