package dto

// Data Transfer Objects for authentication requests and responses

// SignupRequest: payload for user registration
type SignupRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=72"`
}

// SignupResponse: response payload after successful registration
type SignupResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

// SigninRequest: payload for user login
type SigninRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SigninResponse: response payload after successful authentication
type SigninResponse struct {
	Message   string `json:"message"`
	Username  string `json:"username"`
	UserID    int64  `json:"userId"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"` // seconds
}

// AuthenticatedResponse reports whether the presented token is valid
type AuthenticatedResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserID        int64  `json:"userId,omitempty"`
	Username      string `json:"username,omitempty"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
