package dto

// SuccessResponse is the envelope of every successful API response
type SuccessResponse struct {
	Message string `json:"message" example:"course found"`
	Data    any    `json:"data"`
}

// ErrorResponse is the envelope of every failed API response
type ErrorResponse struct {
	Message string   `json:"message" example:"validation error"`
	Errors  []string `json:"errors"`
}

// NewSuccessResponse builds a success envelope. A nil data payload is
// rendered as an empty object.
func NewSuccessResponse(message string, data any) SuccessResponse {
	if data == nil {
		data = struct{}{}
	}
	return SuccessResponse{Message: message, Data: data}
}

// NewErrorResponse builds an error envelope. Without details the errors
// array is rendered empty rather than null.
func NewErrorResponse(message string, errs ...string) ErrorResponse {
	if errs == nil {
		errs = []string{}
	}
	return ErrorResponse{Message: message, Errors: errs}
}

// HealthResponse is the payload of the health check
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
