package logging

import "fmt"

// OperationError records which API call failed and the image or order id it
// was made for. Wrapped errors stay reachable through errors.Is and errors.As.
type OperationError struct {
	Operation  string
	ResourceID string
	Err        error
}

func (e *OperationError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	if e.ResourceID != "" {
		return fmt.Sprintf("%s %s: %v", e.Operation, e.ResourceID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewOperationError tags err with an operation name such as
// autoenhance.check_image_status and the id it concerns. A nil err stays nil.
func NewOperationError(operation, resourceID string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Operation: operation, ResourceID: resourceID, Err: err}
}
