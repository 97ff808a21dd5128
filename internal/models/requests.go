package models

import (
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/pickup-archive/pickups-api/pkg/errors"
)

const (
	MinMatchPlayers = 2
	MaxMatchPlayers = 40
)

// MatchmakingRequest names the players to split into two teams.
type MatchmakingRequest struct {
	Players []string `json:"players" validate:"required,min=2,max=40,unique,dive,text"`
	Metric  string   `json:"metric"`
}

// Validate checks the request and trims the names. Names are compared
// case-insensitively, the same way player records are looked up.
func (r *MatchmakingRequest) Validate() error {
	seen := make(map[string]struct{}, len(r.Players))
	duplicate := false
	for i := range r.Players {
		r.Players[i] = strings.TrimSpace(r.Players[i])
		key := strings.ToLower(r.Players[i])
		if _, ok := seen[key]; ok {
			duplicate = true
		}
		seen[key] = struct{}{}
	}

	err := pickupValidator.Struct(r)
	if err != nil {
		var verrs validator.ValidationErrors
		if !asValidationErrors(err, &verrs) {
			return apperrors.NewAppError(apperrors.CodeInternalError, "Validation could not run", err)
		}
	}
	if err != nil || duplicate {
		return apperrors.NewValidationError(
			"players must list between 2 and 40 distinct, non-empty names",
			[]string{"players"},
		)
	}
	return nil
}

// Validate reports both credentials at once.
func (r *LoginRequest) Validate() error {
	if err := pickupValidator.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if !asValidationErrors(err, &verrs) {
			return apperrors.NewAppError(apperrors.CodeInternalError, "Validation could not run", err)
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return apperrors.NewValidationError("Username and password are required", fields)
	}
	return nil
}
