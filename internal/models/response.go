package models

type RegisterImageResponse struct {
	UploadURL string `json:"s3PutObjectUrl"`
	ImageID   string `json:"image_id"`
	OrderID   string `json:"order_id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
