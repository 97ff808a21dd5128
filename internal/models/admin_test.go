package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAdmin_SetPassword_HashesOnlyOnChange(t *testing.T) {
	PasswordCost = bcrypt.MinCost
	t.Cleanup(func() { PasswordCost = bcrypt.DefaultCost })

	admin := &Admin{Username: "admin"}

	changed, err := admin.SetPassword("hunter2")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotEqual(t, "hunter2", admin.PasswordHash)
	first := admin.PasswordHash

	changed, err = admin.SetPassword("hunter2")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, first, admin.PasswordHash)

	changed, err = admin.SetPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotEqual(t, first, admin.PasswordHash)
	assert.True(t, admin.CheckPassword("correct horse"))
	assert.False(t, admin.CheckPassword("hunter2"))
}

func TestAdmin_SetPassword_SaltsEachHash(t *testing.T) {
	PasswordCost = bcrypt.MinCost
	t.Cleanup(func() { PasswordCost = bcrypt.DefaultCost })

	a, b := &Admin{}, &Admin{}
	_, err := a.SetPassword("same")
	require.NoError(t, err)
	_, err = b.SetPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, a.PasswordHash, b.PasswordHash)
}
