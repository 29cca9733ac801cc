package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/natours/natours-api/types"
)

func TestChangedPasswordAfter(t *testing.T) {
	issued := time.Date(2021, 4, 25, 9, 0, 0, 0, time.UTC)

	assert.False(t, ChangedPasswordAfter(types.Record{}, issued))
	assert.False(t, ChangedPasswordAfter(types.Record{PasswordChangedAtField: issued.Add(-time.Hour)}, issued))
	assert.True(t, ChangedPasswordAfter(types.Record{PasswordChangedAtField: issued.Add(time.Hour)}, issued))
	assert.True(t, ChangedPasswordAfter(types.Record{PasswordChangedAtField: "2021-04-26T00:00:00Z"}, issued))
	// Same second as the token
	assert.False(t, ChangedPasswordAfter(types.Record{PasswordChangedAtField: issued.Add(500 * time.Millisecond)}, issued))
}

func TestPasswordChangedAtAcceptsLaterTokens(t *testing.T) {
	now := time.Now()
	user := types.Record{PasswordChangedAtField: PasswordChangedAt(now)}
	assert.False(t, ChangedPasswordAfter(user, now.Truncate(time.Second)))
}

func TestHasRole(t *testing.T) {
	user := types.Record{RoleField: "lead-guide"}
	assert.True(t, HasRole(user, "admin", "lead-guide"))
	assert.False(t, HasRole(user, "admin"))
	assert.False(t, HasRole(types.Record{}, "user"))
}
