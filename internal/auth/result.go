package auth

import "github.com/ordermaster/identity/internal/users"

// LoginStatus classifies the outcome of a login attempt.
type LoginStatus int

const (
	LoginSuccess LoginStatus = iota
	LoginNotFound
	LoginBadPassword
	LoginInactive
)

func (s LoginStatus) String() string {
	switch s {
	case LoginSuccess:
		return "success"
	case LoginNotFound:
		return "not found"
	case LoginBadPassword:
		return "bad password"
	case LoginInactive:
		return "account deactivated"
	default:
		return "unknown"
	}
}

// LoginResult carries the status and, on success, the authenticated user.
type LoginResult struct {
	Status LoginStatus
	User   *users.User
}

// RegisterStatus classifies the outcome of a registration attempt.
type RegisterStatus int

const (
	RegisterSuccess RegisterStatus = iota
	RegisterDuplicateEmail
	RegisterDuplicateUsername
	RegisterInvalid
)

func (s RegisterStatus) String() string {
	switch s {
	case RegisterSuccess:
		return "success"
	case RegisterDuplicateEmail:
		return "email already taken"
	case RegisterDuplicateUsername:
		return "username already taken"
	case RegisterInvalid:
		return "invalid candidate"
	default:
		return "unknown"
	}
}

// RegisterResult carries the status and, on success, the assigned user ID.
type RegisterResult struct {
	Status RegisterStatus
	UserID int
}
