package api

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpResponse struct {
	UserID string `json:"user_id"`
	// The verification token is returned directly because no mail delivery is
	// wired up; a deployment would send it out of band instead.
	VerificationToken string `json:"verification_token,omitempty"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	Token         string `json:"token"`
	UserID        string `json:"user_id"`
	EmailVerified bool   `json:"email_verified"`
}
