package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"idm_bridge/internal/types"
)

// GetValues retrieves the current values of an installation.
func (c *APIClient) GetValues(ctx context.Context, token, installationID string) (*types.ValuesResponse, error) {
	form := url.Values{}
	form.Set("token", token)
	form.Set("installation", installationID)

	data, err := c.postForm(ctx, pathValues, form)
	if err != nil {
		return nil, err
	}

	var values types.ValuesResponse
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: unmarshal values: %w", ErrMalformed, err)
	}

	return &values, nil
}
