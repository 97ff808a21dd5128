package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAndLookup(t *testing.T) {
	values, err := Decode(`{"jwt_secret":"s3cret","redis_password":""}`)
	require.NoError(t, err)

	v, err := Lookup(values, KeyJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", v)

	_, err = Lookup(values, KeyRedisPassword)
	assert.Error(t, err)

	_, err = Decode(`not json`)
	assert.Error(t, err)
}
