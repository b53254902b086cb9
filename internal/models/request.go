package models

// EnhancementOptions are the processing switches accepted on upload and
// reprocess. ContrastBoost is null when no boost is applied.
type EnhancementOptions struct {
	VerticalCorrection bool    `json:"vertical_correction"`
	SkyReplacement     bool    `json:"sky_replacement"`
	SkyType            string  `json:"sky_type"`
	CloudType          string  `json:"cloud_type"`
	ContrastBoost      *string `json:"contrast_boost"`
	ThreeSixty         bool    `json:"threesixty"`
	HDR                bool    `json:"hdr"`
}

type RegisterImageRequest struct {
	ImageName   string  `json:"image_name" binding:"required"`
	ContentType string  `json:"content_type" binding:"required"`
	OrderID     *string `json:"order_id"`
	EnhanceType *string `json:"enhance_type"`
	EnhancementOptions
}

type ReportRequest struct {
	Category []string `json:"category"`
	Comment  *string  `json:"comment"`
}
