package client

import (
	"context"
	"net/http"

	"github.com/nickabs/shopfront/internal/optional"
	"github.com/nickabs/shopfront/internal/ui/types"
)

type errorReportBatch struct {
	Errors []types.ErrorReport `json:"errors"`
}

// ReportErrors sends a batch of captured UI errors to the API.
//
// Reports are not retried here: the monitoring service re-queues a failed batch and tries again on its next flush.
func (c *Client) ReportErrors(ctx context.Context, reports []types.ErrorReport) error {
	_, err := c.Do(ctx, "/api/monitoring/errors", RequestOptions{
		Method:  http.MethodPost,
		Body:    errorReportBatch{Errors: reports},
		Retries: optional.Some(0),
	})
	return err
}
