package models

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/pickup-archive/pickups-api/pkg/errors"
)

// PickupInput is the loosely typed body of insert and update requests. Every
// field is required; numbers may arrive as JSON numbers or numeric strings and
// Win may also be a boolean.
type PickupInput struct {
	Player       interface{} `json:"Player" validate:"required,text"`
	Score        interface{} `json:"Score" validate:"required,stat"`
	Kills        interface{} `json:"Kills" validate:"required,stat"`
	Deaths       interface{} `json:"Deaths" validate:"required,stat"`
	Assists      interface{} `json:"Assists" validate:"required,stat"`
	TeamKills    interface{} `json:"Team Kills" validate:"required,stat"`
	Blocks       interface{} `json:"Blocks" validate:"required,stat"`
	ImpactRating interface{} `json:"Impact Rating" validate:"required,stat"`
	Regiment     interface{} `json:"Regiment" validate:"required,text"`
	Win          interface{} `json:"Win" validate:"required,winflag"`
	Date         interface{} `json:"Date" validate:"required,calendardate"`
}

var pickupValidator = newPickupValidator()

func newPickupValidator() *validator.Validate {
	v := validator.New()

	// report fields by their wire names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "stat", func(fl validator.FieldLevel) bool {
		_, ok := toFloat(fl.Field().Interface())
		return ok
	})
	mustRegister(v, "text", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && strings.TrimSpace(s) != ""
	})
	mustRegister(v, "winflag", func(fl validator.FieldLevel) bool {
		_, ok := toWin(fl.Field().Interface())
		return ok
	})
	mustRegister(v, "calendardate", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		_, err := ParseDate(s)
		return err == nil
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// ToPickup validates the whole input in one pass and returns the typed record.
// The returned error is a validation AppError naming every offending field.
func (in *PickupInput) ToPickup() (*Pickup, error) {
	if err := pickupValidator.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !asValidationErrors(err, &verrs) {
			return nil, apperrors.NewAppError(apperrors.CodeInternalError, "Validation could not run", err)
		}
		return nil, describe(verrs)
	}

	score, _ := toFloat(in.Score)
	kills, _ := toFloat(in.Kills)
	deaths, _ := toFloat(in.Deaths)
	assists, _ := toFloat(in.Assists)
	teamKills, _ := toFloat(in.TeamKills)
	blocks, _ := toFloat(in.Blocks)
	impact, _ := toFloat(in.ImpactRating)
	win, _ := toWin(in.Win)
	date, _ := ParseDate(in.Date.(string))

	return &Pickup{
		Player:       strings.TrimSpace(in.Player.(string)),
		Score:        score,
		Kills:        kills,
		Deaths:       deaths,
		Assists:      assists,
		TeamKills:    teamKills,
		Blocks:       blocks,
		ImpactRating: impact,
		Regiment:     strings.TrimSpace(in.Regiment.(string)),
		Win:          win,
		Date:         date,
	}, nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

func describe(verrs validator.ValidationErrors) *apperrors.AppError {
	var missing, fields, problems []string
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
		switch fe.Tag() {
		case "required":
			missing = append(missing, fe.Field())
		case "stat":
			problems = append(problems, fe.Field()+" must be a number")
		case "winflag":
			problems = append(problems, fe.Field()+" must be 0, 1, true or false")
		case "calendardate":
			problems = append(problems, fe.Field()+" must be a valid date")
		default:
			problems = append(problems, fe.Field()+" must be a non-empty string")
		}
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "Missing required fields: "+strings.Join(missing, ", "))
	}
	parts = append(parts, problems...)

	return apperrors.NewValidationError(strings.Join(parts, "; "), fields)
}

func toFloat(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toWin(v interface{}) (int, bool) {
	switch w := v.(type) {
	case bool:
		if w {
			return 1, true
		}
		return 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(w)) {
		case "true":
			return 1, true
		case "false":
			return 0, true
		}
	}
	f, ok := toFloat(v)
	if !ok || (f != 0 && f != 1) {
		return 0, false
	}
	return int(f), true
}
