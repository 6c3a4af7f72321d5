// Package identity resolves client-supplied tokens to system accounts.
package identity

import (
	"errors"
	"os/user"
)

// ErrNotFound is returned when a token matches no account.
var ErrNotFound = errors.New("user not found")

// User is a resolved system account.
type User struct {
	// UID is the numeric user ID, as reported by the account database.
	UID string

	// HomeDir is the account's home directory.
	HomeDir string
}

// Resolver maps identity tokens to system accounts.
type Resolver interface {
	// Resolve returns the account for a token, or [ErrNotFound] if no
	// account matches.
	Resolve(token string) (User, error)
}

// System resolves tokens against the host account database.
type System struct{}

// Resolve maps a token to an account. Tokens made entirely of decimal
// digits are treated as numeric user IDs; anything else as an account
// name. A leading minus sign disqualifies a token from numeric treatment:
// user IDs are unsigned, so negative tokens can only fail name lookup.
func (System) Resolve(token string) (User, error) {
	var u *user.User
	var err error
	if isNumeric(token) {
		u, err = user.LookupId(token)
	} else {
		u, err = user.Lookup(token)
	}
	if err != nil {
		return User{}, ErrNotFound
	}
	return User{UID: u.Uid, HomeDir: u.HomeDir}, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
