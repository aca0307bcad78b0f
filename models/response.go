package models

// RequestErrorCode - machine-readable error code returned in response body
type RequestErrorCode *string

// NewRequestErrorCode - creates a new error code
func NewRequestErrorCode(code string) RequestErrorCode {
	return RequestErrorCode(&code)
}

// Response - struct for sending payload from server and more info about occurred error
// It behaves like Either Monad: 'Error' field is set if error occurred, otherwise 'Body' contains payload
type Response struct {
	Error interface{} `json:"error"`
	Body  interface{} `json:"body"`
}
