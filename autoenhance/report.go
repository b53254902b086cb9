package autoenhance

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// ErrInvalidCategory is matched by every *CategoryError.
var ErrInvalidCategory = errors.New("invalid report category")

// ReportCategory is a reason an enhancement is reported as bad.
type ReportCategory string

// Accepted report categories. hdr covers brackets that failed to merge or
// were grouped incorrectly; processing covers images that never returned.
const (
	ReportDownload              ReportCategory = "download"
	ReportHDR                   ReportCategory = "hdr"
	ReportLensCorrection        ReportCategory = "lens_correction"
	ReportPerspectiveCorrection ReportCategory = "perspective_correction"
	ReportProcessing            ReportCategory = "processing"
	ReportImageQuality          ReportCategory = "image_quality"
	ReportSkyReplacement        ReportCategory = "sky_replacement"
	ReportContrast              ReportCategory = "contrast"
	ReportColour                ReportCategory = "colour"
	ReportWhiteBalance          ReportCategory = "white_balance"
	ReportOther                 ReportCategory = "other"
)

var reportCategories = []ReportCategory{
	ReportDownload,
	ReportHDR,
	ReportLensCorrection,
	ReportPerspectiveCorrection,
	ReportProcessing,
	ReportImageQuality,
	ReportSkyReplacement,
	ReportContrast,
	ReportColour,
	ReportWhiteBalance,
	ReportOther,
}

// ReportCategories returns the accepted categories in documentation order.
func ReportCategories() []ReportCategory {
	out := make([]ReportCategory, len(reportCategories))
	copy(out, reportCategories)
	return out
}

// Valid reports whether c is one of the accepted categories.
func (c ReportCategory) Valid() bool {
	for _, v := range reportCategories {
		if c == v {
			return true
		}
	}
	return false
}

// CategoryError names a category that is not accepted by the report endpoint.
type CategoryError struct {
	Value ReportCategory
	Valid []ReportCategory
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("%q is not in the categories list. Valid values are %v", string(e.Value), e.Valid)
}

// Is makes errors.Is(err, ErrInvalidCategory) work.
func (e *CategoryError) Is(target error) bool {
	return target == ErrInvalidCategory
}

// ValidateCategories returns a *CategoryError for the first unknown entry.
func ValidateCategories(categories []ReportCategory) error {
	for _, c := range categories {
		if !c.Valid() {
			return &CategoryError{Value: c, Valid: ReportCategories()}
		}
	}
	return nil
}

type reportRequest struct {
	Category []ReportCategory `json:"category"`
	Comment  *string          `json:"comment"`
}

// ReportEnhancement reports quality issues with an enhanced image. The
// categories are validated before anything is sent.
func (c *Client) ReportEnhancement(ctx context.Context, imageID string, categories []ReportCategory, comment string) (*ReportResult, error) {
	if err := ValidateCategories(categories); err != nil {
		return nil, err
	}

	if categories == nil {
		categories = []ReportCategory{}
	}
	body := reportRequest{Category: categories}
	if comment != "" {
		body.Comment = &comment
	}

	status, data, err := c.do(ctx, opReportEnhancement, imageID, request{
		method: http.MethodPost,
		path:   imagePath(imageID, "report"),
		body:   body,
	})
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		c.logger.Warn("report rejected", zap.String("image_id", imageID), zap.Int("status", status))
		return &ReportResult{StatusCode: status, Failure: newAPIError(status, data)}, nil
	}
	return &ReportResult{StatusCode: status}, nil
}
