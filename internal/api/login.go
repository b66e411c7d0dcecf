package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"idm_bridge/internal/types"
)

// Login submits the username and the already hashed password.
// A response without a token, or whose first installation lacks an id or name,
// is reported as ErrMalformed.
func (c *APIClient) Login(ctx context.Context, username, passwordHash string) (*types.LoginResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", passwordHash)

	data, err := c.postForm(ctx, pathLogin, form)
	if err != nil {
		return nil, err
	}

	var resp types.LoginResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: unmarshal login: %w", ErrMalformed, err)
	}

	if resp.Token == "" {
		return nil, fmt.Errorf("%w: no token in login response", ErrMalformed)
	}
	if len(resp.Installations) == 0 {
		return nil, fmt.Errorf("%w: no installations in login response", ErrMalformed)
	}
	if !resp.Installations[0].ID.Valid || resp.Installations[0].ID.Text == "" {
		return nil, fmt.Errorf("%w: installation without id", ErrMalformed)
	}
	if strings.TrimSpace(resp.Installations[0].Name) == "" {
		return nil, fmt.Errorf("%w: installation without name", ErrMalformed)
	}

	return &resp, nil
}
