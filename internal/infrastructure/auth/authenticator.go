package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/stockpilot/backend/internal/infrastructure/config"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password
var ErrInvalidCredentials = errors.New("invalid credentials")

// Authenticator verifies logins against the statically configured accounts
type Authenticator struct {
	users map[string]config.AuthUser
}

// NewAuthenticator indexes the configured users by username
func NewAuthenticator(users []config.AuthUser) *Authenticator {
	byName := make(map[string]config.AuthUser, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}
	return &Authenticator{users: byName}
}

// Authenticate checks the password against the stored bcrypt hash. Unknown
// users and wrong passwords are indistinguishable to the caller.
func (a *Authenticator) Authenticate(username, password string) (*config.AuthUser, error) {
	user, ok := a.users[username]
	if !ok {
		// burn comparable time so user enumeration is not trivial
		bcrypt.CompareHashAndPassword([]byte("$2a$10$000000000000000000000uGywIPAGheOm4cHuFpSayZyhPwT1Ja2"), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
