package schema

import (
	"github.com/pricetracker/web/internal/models"
)

type userWire struct {
	ID                  *identifier `json:"_id" validate:"required"`
	Role                *string     `json:"role" validate:"required,oneof=admin user"`
	Email               *string     `json:"email" validate:"required,email"`
	Username            *string     `json:"username" validate:"required"`
	Password            *string     `json:"password"`
	FirstName           *string     `json:"firstName"`
	LastName            *string     `json:"lastName"`
	Avatar              *string     `json:"avatar"`
	CreatedAt           *string     `json:"createdAt" validate:"required,anydate"`
	ForcePasswordChange *bool       `json:"forcePasswordChange"`
}

// User validates the /api/auth-user payload.
var User = newSchema("user", func(w *userWire) (models.User, error) {
	createdAt, err := ParseDate(*w.CreatedAt)
	if err != nil {
		return models.User{}, err
	}

	u := models.User{
		ID:        string(*w.ID),
		Role:      models.Role(*w.Role),
		Email:     *w.Email,
		Username:  *w.Username,
		FirstName: deref(w.FirstName),
		LastName:  deref(w.LastName),
		Avatar:    w.Avatar,
		CreatedAt: createdAt,
	}
	if w.Password != nil && *w.Password != "" {
		u.Password = w.Password
	}
	if w.ForcePasswordChange != nil {
		u.ForcePasswordChange = *w.ForcePasswordChange
	}
	return u, nil
})

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
