package auth

// DevAuthRequest is the optional body of POST /v1/auth/dev.
type DevAuthRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// DevAuthResponse is returned by POST /v1/auth/dev.
type DevAuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
