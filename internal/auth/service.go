// Package auth orchestrates login, registration, auto-login, and password
// reset by composing the credential store, the vault, and the session
// controller. It keeps no state of its own.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ordermaster/identity/internal/common"
	"github.com/ordermaster/identity/internal/logging"
	"github.com/ordermaster/identity/internal/session"
	"github.com/ordermaster/identity/internal/users"
	"github.com/ordermaster/identity/internal/vault"
)

const tempPasswordLength = 8

const tempPasswordChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Candidate is a registration request. Validation mirrors what the signup
// form enforced: a name, a syntactically valid email, a password of at
// least six characters, and one of the three fixed roles.
type Candidate struct {
	FullName string     `validate:"required"`
	Email    string     `validate:"required,email"`
	Username string     `validate:"required,min=3"`
	Password string     `validate:"required,min=6"`
	Role     users.Role `validate:"required,oneof=Admin Manager Customer"`
}

// Service is the authentication facade the presentation layer talks to.
type Service struct {
	store    *users.Store
	vault    *vault.Vault
	sessions *session.Controller
	validate *validator.Validate
	log      logging.Logger
}

// NewService wires the three components together.
func NewService(store *users.Store, v *vault.Vault, sessions *session.Controller, log logging.Logger) *Service {
	return &Service{
		store:    store,
		vault:    v,
		sessions: sessions,
		validate: validator.New(),
		log:      log.With("component", "auth"),
	}
}

// Login authenticates identifier/password and, on success, starts a
// session. With rememberMe the credentials and a fresh auto-login token are
// persisted through the vault; without it, anything previously remembered
// is cleared.
//
// The password buffer is wiped before Login returns; callers must not reuse it.
func (s *Service) Login(identifier string, password []byte, rememberMe bool) LoginResult {
	defer common.WipeByteArray(password)

	user, err := s.store.Authenticate(identifier, string(password))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			return LoginResult{Status: LoginNotFound}
		case errors.Is(err, common.ErrInactive):
			return LoginResult{Status: LoginInactive}
		default:
			return LoginResult{Status: LoginBadPassword}
		}
	}

	// the session keeps its own copy of the secret and wipes it on end
	secret := make([]byte, len(password))
	copy(secret, password)
	s.sessions.Start(user, rememberMe, secret)

	if rememberMe {
		if err := s.vault.SaveCredentials(&vault.SavedCredentials{
			Username:  identifier,
			Password:  string(password),
			AutoLogin: true,
		}); err != nil {
			s.log.Error(context.Background(), "saving remembered credentials failed", "error", err)
		}
		if err := s.vault.SaveAutoLoginToken(user.ID); err != nil {
			s.log.Error(context.Background(), "saving auto-login token failed", "error", err)
		}
	} else {
		s.vault.Clear()
	}

	return LoginResult{Status: LoginSuccess, User: user}
}

// TryAutoLogin resumes a session from a persisted auto-login token. All
// failure paths return nil silently: an absent token, an expired token, and
// a deactivated user are indistinguishable from "never configured".
func (s *Service) TryAutoLogin() *users.User {
	token := s.vault.LoadAutoLoginToken()
	if token == nil {
		return nil
	}

	user := s.store.FindByID(token.UserID)
	if user == nil {
		return nil
	}

	s.sessions.Start(user, true, nil)
	s.log.Info(context.Background(), "auto-login succeeded", "userId", user.ID)
	return user
}

// Logout ends the current session. With forget, the vault is cleared as
// well; otherwise remembered credentials survive for the next login.
func (s *Service) Logout(forget bool) {
	s.sessions.End(session.EndManual)
	if forget {
		s.vault.Clear()
	}
}

// Register validates the candidate and creates the account.
func (s *Service) Register(c Candidate) RegisterResult {
	if err := s.validate.Struct(c); err != nil {
		return RegisterResult{Status: RegisterInvalid}
	}

	id, err := s.store.Register(&users.User{
		Username: c.Username,
		Email:    c.Email,
		FullName: c.FullName,
		Role:     c.Role,
	}, c.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrEmailTaken):
			return RegisterResult{Status: RegisterDuplicateEmail}
		case errors.Is(err, common.ErrUsernameTaken):
			return RegisterResult{Status: RegisterDuplicateUsername}
		default:
			s.log.Error(context.Background(), "registration failed", "error", err)
			return RegisterResult{Status: RegisterInvalid}
		}
	}

	return RegisterResult{Status: RegisterSuccess, UserID: id}
}

// ResetPassword generates a temporary password for the account with the
// given email and stores it. The password is returned for display; actual
// delivery is someone else's job. Reports false when no active account
// matches.
func (s *Service) ResetPassword(email string) (string, bool) {
	user := s.store.FindByEmail(email)
	if user == nil {
		return "", false
	}

	generated, err := generateTempPassword()
	if err != nil {
		s.log.Error(context.Background(), "generating temporary password failed", "error", err)
		return "", false
	}

	if !s.store.ChangePassword(user.ID, generated) {
		return "", false
	}

	s.log.Info(context.Background(), "password reset", "userId", user.ID)
	return generated, true
}

// SavedLoginForm returns remembered credentials for pre-populating the
// login form, or nil when nothing (readable) is saved.
func (s *Service) SavedLoginForm() *vault.SavedCredentials {
	return s.vault.LoadCredentials()
}

// CurrentUser returns the signed-in user, or nil.
func (s *Service) CurrentUser() *users.User {
	return s.sessions.CurrentUser()
}

// ExtendSession resets the inactivity window without re-authenticating.
func (s *Service) ExtendSession() {
	s.sessions.Extend()
}

// RemainingSessionTime returns the time left before expiry, zero when
// logged out.
func (s *Service) RemainingSessionTime() time.Duration {
	return s.sessions.RemainingTime()
}

// OnSessionExpired registers the presentation layer's expiry handler.
func (s *Service) OnSessionExpired(fn func(*users.User)) {
	s.sessions.OnExpired(fn)
}

func generateTempPassword() (string, error) {
	out := make([]byte, tempPasswordLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(tempPasswordChars))))
		if err != nil {
			return "", err
		}
		out[i] = tempPasswordChars[n.Int64()]
	}
	return string(out), nil
}
