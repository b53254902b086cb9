package autoenhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/instant-hdr/autoenhance-go/internal/logging"
)

// UploadRequest describes one image to register and upload.
type UploadRequest struct {
	// Name is the file name, e.g. house.jpg. Its extension selects the
	// content type.
	Name  string
	Image []byte

	// OrderID groups several uploads under one order. Optional.
	OrderID     string
	EnhanceType EnhanceType

	// Options defaults to DefaultEnhancementOptions when nil.
	Options *EnhancementOptions
}

type registerImageRequest struct {
	ImageName   string       `json:"image_name"`
	ContentType string       `json:"content_type"`
	OrderID     *string      `json:"order_id"`
	EnhanceType *EnhanceType `json:"enhance_type"`
	EnhancementOptions
}

type registerImageResponse struct {
	UploadURL string `json:"s3PutObjectUrl"`
	ImageID   string `json:"image_id"`
}

// NewOrderID returns a fresh id for grouping uploads into an order.
func NewOrderID() string {
	return uuid.NewString()
}

// ContentType infers the MIME type sent for an image. The extension after the
// last dot wins, lowercased so house.PNG and house.png both give image/png,
// with jpg mapped to jpeg. Names without an extension fall back to sniffing
// data.
func ContentType(name string, data []byte) string {
	ext := ""
	if i := strings.LastIndex(name, "."); i >= 0 && i < len(name)-1 {
		ext = strings.ToLower(name[i+1:])
	}
	if ext == "" || strings.ContainsAny(ext, "/\\") {
		if len(data) == 0 {
			return "application/octet-stream"
		}
		return mimetype.Detect(data).String()
	}
	if ext == "jpg" {
		ext = "jpeg"
	}
	return "image/" + ext
}

// UploadImage registers the image with the API and PUTs its bytes to the
// presigned URL it returns. It does not wait for processing; see
// WaitForImage.
//
// A non-200 from either step is returned as a failed UploadResult. An error is
// returned only for invalid options, transport failures, or a 200
// registration response without an upload URL or image id.
func (c *Client) UploadImage(ctx context.Context, in UploadRequest) (*UploadResult, error) {
	opts := DefaultEnhancementOptions()
	if in.Options != nil {
		opts = *in.Options
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	opLogger := logging.WithOperation(c.logger, opUploadImage, in.Name)
	contentType := ContentType(in.Name, in.Image)

	body := registerImageRequest{
		ImageName:          in.Name,
		ContentType:        contentType,
		EnhancementOptions: opts,
	}
	if in.OrderID != "" {
		body.OrderID = &in.OrderID
	}
	if in.EnhanceType != "" {
		body.EnhanceType = &in.EnhanceType
	}

	status, data, err := c.do(ctx, opUploadImage, in.Name, request{
		method: http.MethodPost,
		path:   "image",
		body:   body,
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		opLogger.Warn("image registration failed", zap.Int("status", status))
		return &UploadResult{StatusCode: status, Message: data}, nil
	}

	var registered registerImageResponse
	if err := json.Unmarshal(data, &registered); err != nil {
		return nil, logging.NewOperationError(opUploadImage, in.Name,
			fmt.Errorf("failed to decode response: %w, body: %s", err, string(data)))
	}
	if registered.UploadURL == "" || registered.ImageID == "" {
		return nil, logging.NewOperationError(opUploadImage, in.Name,
			fmt.Errorf("%w: registration missing s3PutObjectUrl or image_id, body: %s", ErrMalformedResponse, string(data)))
	}

	putStatus, putBody, err := c.uploadFile(ctx, registered.UploadURL, contentType, in.Image)
	if err != nil {
		return nil, logging.NewOperationError(opUploadImage, registered.ImageID, err)
	}
	if putStatus != http.StatusOK {
		opLogger.Warn("image upload failed", zap.String("image_id", registered.ImageID), zap.Int("status", putStatus))
		return &UploadResult{StatusCode: putStatus, Message: putBody}, nil
	}

	opLogger.Info("image uploaded", zap.String("image_id", registered.ImageID), zap.String("order_id", in.OrderID))
	return &UploadResult{
		ImageID:    registered.ImageID,
		OrderID:    in.OrderID,
		StatusCode: http.StatusOK,
	}, nil
}

// uploadFile PUTs data to a presigned storage URL. The request goes straight
// to storage and carries no API key.
func (c *Client) uploadFile(ctx context.Context, uploadURL, contentType string, data []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}
