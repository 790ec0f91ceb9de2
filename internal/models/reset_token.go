package models

// ResetTokenData is the account a password reset token belongs to
type ResetTokenData struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Token    string `json:"token"`
}
