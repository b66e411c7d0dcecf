package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"idm_bridge/internal/types"
)

// Command is the form payload of /api/installation/command.
type Command struct {
	Name    string
	Value   int
	Circuit *int
}

// SendCommand dispatches a command and returns the vendor acknowledgment.
func (c *APIClient) SendCommand(ctx context.Context, token, installationID string, cmd Command) (*types.CommandResponse, error) {
	form := url.Values{}
	form.Set("token", token)
	form.Set("installation", installationID)
	form.Set("command", cmd.Name)
	form.Set("value", strconv.Itoa(cmd.Value))
	if cmd.Circuit != nil {
		form.Set("circuit", strconv.Itoa(*cmd.Circuit))
	}

	data, err := c.postForm(ctx, pathCommand, form)
	if err != nil {
		return nil, err
	}

	var resp types.CommandResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: unmarshal command: %w", ErrMalformed, err)
	}

	return &resp, nil
}
