package autoenhance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/instant-hdr/autoenhance-go/internal/logging"
)

// CheckImageStatus fetches the current record for an image. A non-200
// response is returned as an *APIError.
func (c *Client) CheckImageStatus(ctx context.Context, imageID string) (*ImageRecord, error) {
	status, data, err := c.do(ctx, opCheckImageStatus, imageID, request{
		method: http.MethodGet,
		path:   imagePath(imageID),
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, newAPIError(status, data)
	}

	var record ImageRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, logging.NewOperationError(opCheckImageStatus, imageID,
			fmt.Errorf("failed to decode response: %w, body: %s", err, string(data)))
	}
	record.Raw = data
	return &record, nil
}

// WaitForImage polls CheckImageStatus with the client's poll options until
// the image is processed. When the budget runs out it returns a *PollError
// wrapping ErrPollTimeout or ErrPollMaxAttempts.
func (c *Client) WaitForImage(ctx context.Context, imageID string) (*ImageRecord, error) {
	return c.WaitForImageWithOptions(ctx, imageID, c.poll)
}

// WaitForImageWithOptions is WaitForImage with an explicit poll budget.
func (c *Client) WaitForImageWithOptions(ctx context.Context, imageID string, opts PollOptions) (*ImageRecord, error) {
	opLogger := logging.WithOperation(c.logger, opWaitForImage, imageID)

	attempts := 0
	record, err := Poll(ctx, opts,
		func(ctx context.Context) (*ImageRecord, error) {
			attempts++
			r, err := c.CheckImageStatus(ctx, imageID)
			if err == nil {
				opLogger.Debug("polled image status", zap.Int("attempt", attempts), zap.String("status", string(r.Status)))
			}
			return r, err
		},
		func(r *ImageRecord) bool { return r.IsProcessed() },
	)
	if err != nil {
		opLogger.Warn("image not processed", zap.Int("attempts", attempts), zap.Error(err))
		return nil, err
	}

	opLogger.Info("image processed", zap.Int("attempts", attempts))
	return record, nil
}

// CheckOrderStatus fetches an order and the records of its images.
func (c *Client) CheckOrderStatus(ctx context.Context, orderID string) (*OrderRecord, error) {
	status, data, err := c.do(ctx, opCheckOrderStatus, orderID, request{
		method: http.MethodGet,
		path:   orderPath(orderID),
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, newAPIError(status, data)
	}

	var order OrderRecord
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, logging.NewOperationError(opCheckOrderStatus, orderID,
			fmt.Errorf("failed to decode response: %w, body: %s", err, string(data)))
	}
	order.Raw = data
	return &order, nil
}
