package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type adminCreateUserRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	EmailConfirm bool   `json:"email_confirm"`
}

// AdminCreateUser provisions a confirmed user with the service role key.
// Used by cmd/seed only.
func (c *Client) AdminCreateUser(ctx context.Context, email, password string) (*SessionUser, error) {
	reqBody, _ := json.Marshal(adminCreateUserRequest{
		Email:        email,
		Password:     password,
		EmailConfirm: true,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Supabase.URL+"/auth/v1/admin/users", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.config.Supabase.ServiceRoleKey)
	req.Header.Set("Authorization", "Bearer "+c.config.Supabase.ServiceRoleKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("admin create user: %w", decodeAuthError(resp))
	}

	var user SessionUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}
