package dto

// ErrorResponse carries a machine-stable error code plus an optional human
// readable detail.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
