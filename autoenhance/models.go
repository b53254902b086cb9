package autoenhance

import (
	"encoding/json"
	"fmt"
	"time"
)

// ImageStatus is the processing state reported for an image.
type ImageStatus string

const (
	StatusProcessing ImageStatus = "processing"
	StatusProcessed  ImageStatus = "processed"
)

// ImageRecord is the server's view of an uploaded image.
type ImageRecord struct {
	ImageID            string        `json:"image_id"`
	OrderID            string        `json:"order_id,omitempty"`
	ImageName          string        `json:"image_name"`
	ImageType          string        `json:"image_type,omitempty"`
	EnhanceType        EnhanceType   `json:"enhance_type,omitempty"`
	DateAdded          int64         `json:"date_added,omitempty"`
	UserID             string        `json:"user_id,omitempty"`
	Status             ImageStatus   `json:"status"`
	Downloaded         bool          `json:"downloaded,omitempty"`
	SkyReplacement     bool          `json:"sky_replacement"`
	VerticalCorrection bool          `json:"vertical_correction"`
	Vibrant            bool          `json:"vibrant,omitempty"`
	ThreeSixty         bool          `json:"threesixty,omitempty"`
	HDR                bool          `json:"hdr,omitempty"`
	SkyType            SkyType       `json:"sky_type,omitempty"`
	CloudType          CloudType     `json:"cloud_type,omitempty"`
	ContrastBoost      ContrastBoost `json:"contrast_boost,omitempty"`

	// Raw is the response body the record was decoded from.
	Raw json.RawMessage `json:"-"`
}

// IsProcessed reports whether the image reached its terminal state.
func (r *ImageRecord) IsProcessed() bool {
	return r != nil && r.Status == StatusProcessed
}

// DateAddedTime converts the millisecond timestamp to a time.Time.
func (r *ImageRecord) DateAddedTime() time.Time {
	return time.UnixMilli(r.DateAdded).UTC()
}

// OrderRecord groups the images uploaded under one order id.
type OrderRecord struct {
	OrderID      string        `json:"order_id"`
	IsProcessing bool          `json:"is_processing"`
	Images       []ImageRecord `json:"images"`

	Raw json.RawMessage `json:"-"`
}

// UploadResult is the outcome of UploadImage. On success ImageID is set and
// StatusCode is 200; otherwise Message holds the failing response body and
// the identifiers are empty.
type UploadResult struct {
	ImageID    string `json:"image_id,omitempty"`
	OrderID    string `json:"order_id,omitempty"`
	StatusCode int    `json:"status"`
	Message    []byte `json:"message,omitempty"`
}

// OK reports whether the upload succeeded.
func (r *UploadResult) OK() bool {
	return r != nil && r.StatusCode == 200 && r.ImageID != ""
}

// ImageResult carries either the image bytes (status 200) or the error body.
type ImageResult struct {
	StatusCode int
	Image      []byte
	Failure    *APIError
}

// OK reports whether Image holds a payload.
func (r *ImageResult) OK() bool {
	return r != nil && r.Failure == nil
}

// ReportResult is the outcome of ReportEnhancement.
type ReportResult struct {
	StatusCode int
	Failure    *APIError
}

// OK reports whether the report was accepted.
func (r *ReportResult) OK() bool {
	return r != nil && r.Failure == nil
}

// APIError is a non-200 response from the API.
type APIError struct {
	StatusCode int
	Body       []byte
	// Message is the "error" or "message" field of a JSON body, if any.
	Message string
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Body: body}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		e.Message = payload.Error
		if e.Message == "" {
			e.Message = payload.Message
		}
	}
	return e
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("autoenhance: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("autoenhance: status %d, body: %s", e.StatusCode, string(e.Body))
}
