package users_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepulse/internal/testsupport"
	"sitepulse/internal/users"
)

func TestCreateUser(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	user, err := users.CreateUser(db, "alice@example.com", "Alice", "super-secret")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "super-secret", user.EncryptedPassword, "password must be hashed")

	_, err = users.CreateUser(db, "alice@example.com", "Alice Again", "other-secret")
	assert.ErrorIs(t, err, users.ErrUserExists)

	_, err = users.CreateUser(db, "", "Nobody", "secret")
	assert.Error(t, err)

	_, err = users.CreateUser(db, "bob@example.com", "Bob", "")
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	created, err := users.CreateUser(db, "alice@example.com", "Alice", "super-secret")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := users.Authenticate(db, "alice@example.com", "super-secret")
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := users.Authenticate(db, "alice@example.com", "wrong")
		assert.ErrorIs(t, err, users.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := users.Authenticate(db, "nobody@example.com", "super-secret")
		assert.ErrorIs(t, err, users.ErrInvalidCredentials)
	})
}

func TestFindByEmailAndID(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	created, err := users.CreateUser(db, "alice@example.com", "Alice", "super-secret")
	require.NoError(t, err)

	byEmail, err := users.FindByEmail(db, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := users.FindByID(db, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)

	_, err = users.FindByID(db, 9999)
	assert.Error(t, err)
}
