package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pickup-archive/pickups-api/pkg/errors"
)

func TestMatchmakingRequest_Validate(t *testing.T) {
	ok := &MatchmakingRequest{Players: []string{" Ecual ", "Bob"}}
	require.NoError(t, ok.Validate())
	assert.Equal(t, "Ecual", ok.Players[0])

	tests := []struct {
		name    string
		players []string
	}{
		{"too few", []string{"solo"}},
		{"none", nil},
		{"duplicate", []string{"a", "a"}},
		{"duplicate ignoring case", []string{"Ecual", "ecual"}},
		{"duplicate after trim", []string{"bob", " BOB "}},
		{"blank name", []string{"a", "  "}},
		{"too many", make41()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&MatchmakingRequest{Players: tt.players}).Validate()
			appErr := apperrors.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
		})
	}
}

func TestLoginRequest_Validate(t *testing.T) {
	assert.NoError(t, (&LoginRequest{Username: "a", Password: "b"}).Validate())

	appErr := apperrors.As((&LoginRequest{}).Validate())
	require.NotNil(t, appErr)
	assert.ElementsMatch(t, []string{"username", "password"}, appErr.Fields)
}

func make41() []string {
	out := make([]string, 41)
	for i := range out {
		out[i] = string(rune('A'+i%26)) + string(rune('a'+i/26))
	}
	return out
}
