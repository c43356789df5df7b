package auth

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/teamchat/internal"
	"github.com/frahmantamala/teamchat/internal/core/account"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks required fields.
func (d LoginDTO) Validate() error {
	if strings.TrimSpace(d.Email) == "" || d.Password == "" {
		return errors.NewValidationError("Please provide email and password", errors.ErrCodeValidationFailed)
	}
	return nil
}

type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	User      account.Profile `json:"user"`
}

type MeResponse struct {
	User account.Profile `json:"user"`
}
