// auth package contains the password, token and role helpers used by the authentication
// handlers. They operate on plain user records and are called explicitly, never as write hooks.
package auth

import (
	"time"

	"github.com/natours/natours-api/types"
)

const (
	PasswordField          = "password"
	PasswordConfirmField   = "passwordConfirm"
	PasswordChangedAtField = "passwordChangedAt"
	RoleField              = "role"
	ActiveField            = "active"
)

// ChangedPasswordAfter reports whether the user changed their password after the token was issued.
// Token timestamps have second precision so the change time is truncated the same way.
func ChangedPasswordAfter(user types.Record, issuedAt time.Time) bool {
	changedAt, ok := timeValue(user[PasswordChangedAtField])
	if !ok {
		return false
	}
	return changedAt.Truncate(time.Second).After(issuedAt)
}

// PasswordChangedAt is the change timestamp stored with a new password. It is backdated by a second
// so a token issued right after the change is still accepted.
func PasswordChangedAt(now time.Time) time.Time {
	return now.Add(-time.Second).UTC()
}

// HasRole reports whether the user holds one of roles
func HasRole(user types.Record, roles ...string) bool {
	role, _ := user[RoleField].(string)
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func timeValue(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case string:
		t, err := time.Parse(time.RFC3339, v)
		return t, err == nil
	}
	return time.Time{}, false
}
