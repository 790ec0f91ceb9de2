package schema

import (
	"github.com/pricetracker/web/internal/models"
)

type resetTokenWire struct {
	Email    *string     `json:"email" validate:"required,email"`
	Username *string     `json:"username" validate:"required,min=1"`
	Token    *string     `json:"token" validate:"required"`
	ID       *identifier `json:"id" validate:"required"`
}

// ResetToken validates the /api/validate-reset-token payload.
var ResetToken = newSchema("reset token", func(w *resetTokenWire) (models.ResetTokenData, error) {
	return models.ResetTokenData{
		ID:       string(*w.ID),
		Email:    *w.Email,
		Username: *w.Username,
		Token:    *w.Token,
	}, nil
})
