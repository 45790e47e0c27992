// Package api はHTTPレスポンスの共通JSONエンベロープを定義します。
package api

// ErrorResponse is the body of every failed request.
// Errors is set only for field validation failures.
type ErrorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Detail  string            `json:"error,omitempty"`
}

// MessageResponse is a success body without payload.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Fail builds an ErrorResponse with a message.
func Fail(message string) ErrorResponse {
	return ErrorResponse{Success: false, Message: message}
}

// Invalid builds an ErrorResponse for field validation failures.
func Invalid(fields map[string]string) ErrorResponse {
	return ErrorResponse{Success: false, Message: "validation failed", Errors: fields}
}
