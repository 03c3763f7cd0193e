// Package auth consumes the hosted GoTrue authentication service. Identity
// is owned by the platform; this package signs users in and out, triggers
// recovery emails and verifies the access tokens it hands back.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"stackit/internal/config"
)

type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (status %d): %s", e.StatusCode, e.Message)
}

type Client struct {
	config *config.Config
	http   *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: 15 * time.Second},
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type SignInResponse struct {
	User         SessionUser `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*SessionUser, error) {
	var result struct {
		ID    string       `json:"id"`
		Email string       `json:"email"`
		User  *SessionUser `json:"user"`
	}
	err := c.post(ctx, "/auth/v1/signup", credentialsRequest{Email: email, Password: password}, "", &result)
	if err != nil {
		return nil, err
	}
	// GoTrue nests the user when autoconfirm issues a session right away.
	if result.User != nil {
		return result.User, nil
	}
	return &SessionUser{ID: result.ID, Email: result.Email}, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*SignInResponse, error) {
	var result SignInResponse
	err := c.post(ctx, "/auth/v1/token?grant_type=password", credentialsRequest{Email: email, Password: password}, "", &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SignOut revokes the session behind the given access token.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.post(ctx, "/auth/v1/logout", struct{}{}, accessToken, nil)
}

type recoverRequest struct {
	Email string `json:"email"`
}

// Recover triggers the password-reset email. Delivery is the platform's job.
func (c *Client) Recover(ctx context.Context, email string) error {
	return c.post(ctx, "/auth/v1/recover", recoverRequest{Email: email}, "", nil)
}

// ProviderAuthorizeURL is where the browser goes for a third-party sign-in
// (the Google popup flow). GoTrue redirects back with tokens in the fragment.
func (c *Client) ProviderAuthorizeURL(provider, redirectTo string) string {
	q := url.Values{}
	q.Set("provider", provider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return fmt.Sprintf("%s/auth/v1/authorize?%s", c.config.Supabase.URL, q.Encode())
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*SessionUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.Supabase.URL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.config.Supabase.AnonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAuthError(resp)
	}

	var user SessionUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, accessToken string, dest any) error {
	reqBody, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Supabase.URL+path, bytes.NewBuffer(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.config.Supabase.AnonKey)
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return decodeAuthError(resp)
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

func decodeAuthError(resp *http.Response) error {
	var errResp map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&errResp)

	msg := "unknown error"
	if m, ok := errResp["msg"].(string); ok {
		msg = m
	} else if m, ok := errResp["error_description"].(string); ok {
		msg = m
	} else if m, ok := errResp["message"].(string); ok {
		msg = m
	}
	return &AuthError{StatusCode: resp.StatusCode, Message: msg}
}
