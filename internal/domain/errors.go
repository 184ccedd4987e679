package domain

// ProxyError is the uniform error body every gateway endpoint returns when an
// upstream call or the gateway's own configuration fails. The shape matches
// what the form's error banner consumes.
type ProxyError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// APIError represents a standardized validation error with field messages
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Error types used in APIError bodies
const (
	ErrorTypeValidation = "validation_error"
	ErrorTypeBadRequest = "bad_request"
	ErrorTypeInternal   = "internal_error"
)
