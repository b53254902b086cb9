package autoenhance

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// PreviewImage downloads the preview of a processed image.
func (c *Client) PreviewImage(ctx context.Context, imageID string) (*ImageResult, error) {
	return c.fetchImage(ctx, opPreviewImage, imageID, request{
		method: http.MethodGet,
		path:   imagePath(imageID, "preview"),
	})
}

// WebOptimisedImage downloads the small, web sized enhanced image.
func (c *Client) WebOptimisedImage(ctx context.Context, imageID string) (*ImageResult, error) {
	return c.fetchImage(ctx, opWebOptimisedImage, imageID, request{
		method: http.MethodGet,
		path:   imagePath(imageID, "enhanced"),
		params: url.Values{"size": []string{"small"}},
	})
}

// FullResolutionImage downloads the full resolution enhanced image. These
// are usually 4-6MB.
func (c *Client) FullResolutionImage(ctx context.Context, imageID string) (*ImageResult, error) {
	return c.fetchImage(ctx, opFullResolution, imageID, request{
		method: http.MethodGet,
		path:   imagePath(imageID, "enhanced"),
	})
}

// EditEnhancement reprocesses an image with new options, e.g. to turn sky
// replacement on when the AI missed a sky. The response is the reprocessed
// image.
func (c *Client) EditEnhancement(ctx context.Context, imageID string, opts EnhancementOptions) (*ImageResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return c.fetchImage(ctx, opEditEnhancement, imageID, request{
		method: http.MethodPost,
		path:   imagePath(imageID, "process"),
		body:   opts.forProcess(),
	})
}

func (c *Client) fetchImage(ctx context.Context, op, imageID string, r request) (*ImageResult, error) {
	status, data, err := c.do(ctx, op, imageID, r)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		c.logger.Debug("image request failed", zap.String("operation", op), zap.String("image_id", imageID), zap.Int("status", status))
		return &ImageResult{StatusCode: status, Failure: newAPIError(status, data)}, nil
	}
	return &ImageResult{StatusCode: status, Image: data}, nil
}
