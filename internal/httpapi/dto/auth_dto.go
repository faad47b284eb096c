package dto

// Data Transfer Objects for the signup / confirmation-code handshake

// SignupRequest: payload for POST /auth/signup
type SignupRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Email    string `json:"email" binding:"required,email,max=254"`
}

// SignupResponse echoes the accepted identity pair
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest: payload for POST /auth/token
type TokenRequest struct {
	Username         string `json:"username" binding:"required"`
	ConfirmationCode string `json:"confirmation_code" binding:"required"`
}

// TokenResponse: the signed bearer token
type TokenResponse struct {
	Token string `json:"token"`
}
