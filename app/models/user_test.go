package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserHashesPassword(t *testing.T) {
	u, err := CreateUser("Jane Doe", "jane@example.com", "correct horse battery")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse battery", u.Password)
	assert.True(t, u.CheckPassword("correct horse battery"))
	assert.False(t, u.CheckPassword("wrong"))
	assert.True(t, u.IsActive())
	assert.False(t, u.IsAdmin())
}

func TestUserAnonymize(t *testing.T) {
	u, err := CreateUser("Jane Doe", "jane@example.com", "correct horse battery")
	require.NoError(t, err)
	u.ID = 42

	u.Anonymize()

	assert.Equal(t, "Deleted User", u.Name)
	assert.True(t, strings.HasPrefix(u.Email, "deleted-42@"))
	assert.Equal(t, STATUS_DELETED, u.Status)
	assert.False(t, u.CheckPassword("correct horse battery"))
}
