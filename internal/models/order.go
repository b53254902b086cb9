package models

// Image status values. Images wait for their upload, then process.
const (
	StatusWaiting    = "waiting"
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
)

// Image is the record returned by GET image/{id}.
type Image struct {
	ImageID            string  `json:"image_id"`
	OrderID            string  `json:"order_id"`
	ImageName          string  `json:"image_name"`
	ImageType          string  `json:"image_type"`
	EnhanceType        string  `json:"enhance_type"`
	DateAdded          int64   `json:"date_added"`
	UserID             string  `json:"user_id"`
	Status             string  `json:"status"`
	Downloaded         bool    `json:"downloaded"`
	SkyReplacement     bool    `json:"sky_replacement"`
	VerticalCorrection bool    `json:"vertical_correction"`
	Vibrant            bool    `json:"vibrant"`
	ThreeSixty         bool    `json:"threesixty"`
	HDR                bool    `json:"hdr"`
	SkyType            string  `json:"sky_type"`
	CloudType          string  `json:"cloud_type"`
	ContrastBoost      *string `json:"contrast_boost"`
}

// Order is the record returned by GET order/{id}.
type Order struct {
	OrderID      string  `json:"order_id"`
	IsProcessing bool    `json:"is_processing"`
	Images       []Image `json:"images"`
}
