package client

import (
	"context"

	"github.com/nickabs/shopfront/internal/ui/types"
)

// Health checks the API is up and can reach its database
func (c *Client) Health(ctx context.Context) (*types.HealthStatus, error) {
	status, err := doJSON[types.HealthStatus](ctx, c, "/api/health", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return &status, nil
}
