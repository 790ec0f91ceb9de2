package loader

import (
	"context"
	"net/http"
	"strings"

	"github.com/pricetracker/web/internal/integrations/backend"
	"github.com/pricetracker/web/internal/models"
	"github.com/pricetracker/web/internal/schema"
	"github.com/pricetracker/web/internal/session"
)

// PasswordResetData is the reset form data
type PasswordResetData struct {
	ResetTokenData models.ResetTokenData `json:"resetTokenData"`
}

type resetTokenRequest struct {
	Token string `json:"token"`
}

// PasswordReset checks the token from the reset link with the API.
func (l *Loader) PasswordReset(ctx context.Context, sess session.Session, token string) (*PasswordResetData, error) {
	if strings.TrimSpace(token) == "" {
		return nil, Fail(http.StatusBadRequest, MsgInvalidToken, nil)
	}

	resp, err := l.api.PostJSON(ctx, sess, backend.ValidateResetTokenPath, resetTokenRequest{Token: token})
	if err != nil {
		l.log.WithError(err).Error("Error validating reset token")
		return nil, Fail(http.StatusBadRequest, MsgInvalidToken, err)
	}
	if !resp.OK() {
		return nil, Fail(http.StatusBadRequest, MsgInvalidToken, nil)
	}

	res := schema.ResetToken.SafeParse(resp.Body)
	if !res.Success() {
		l.log.WithError(res.Err).Warn("Reset token response failed validation")
		return nil, Fail(http.StatusBadRequest, MsgInvalidResponse, res.Err)
	}

	return &PasswordResetData{ResetTokenData: res.Value}, nil
}
