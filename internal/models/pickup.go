package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/pickup-archive/pickups-api/pkg/errors"
)

// Pickup is one player's line from a single pickup match. JSON and BSON keys
// match the archive's existing documents, spaces included.
type Pickup struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Player       string             `json:"Player" bson:"Player"`
	Score        float64            `json:"Score" bson:"Score"`
	Kills        float64            `json:"Kills" bson:"Kills"`
	Deaths       float64            `json:"Deaths" bson:"Deaths"`
	Assists      float64            `json:"Assists" bson:"Assists"`
	TeamKills    float64            `json:"Team Kills" bson:"Team Kills"`
	Blocks       float64            `json:"Blocks" bson:"Blocks"`
	ImpactRating float64            `json:"Impact Rating" bson:"Impact Rating"`
	Regiment     string             `json:"Regiment" bson:"Regiment"`
	Win          int                `json:"Win" bson:"Win"`
	Date         Date               `json:"Date" bson:"Date"`
}

// ParseID validates a record id before it reaches the store.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.NewAppErrorf(apperrors.CodeBadRequest, err, "Invalid ID format: %q", id)
	}
	return oid, nil
}

const dateLayout = "2006-01-02"

var acceptedDateLayouts = []string{
	dateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"01/02/2006",
	"2006/01/02",
}

// Date is a calendar day. It is stored as a BSON datetime so the archive sorts
// chronologically and rendered as YYYY-MM-DD.
type Date struct {
	time.Time
}

// ParseDate accepts the date spellings the archive has historically received.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t.UTC()}, nil
		}
	}
	return Date{}, fmt.Errorf("unrecognised date %q", s)
}

// MustDate is for fixtures and seed data.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	return d.UTC().Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(d.Time)
}

// UnmarshalBSONValue also reads string dates left by older imports.
func (d *Date) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.DateTime:
		d.Time = raw.Time().UTC()
		return nil
	case bsontype.String:
		parsed, err := ParseDate(raw.StringValue())
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case bsontype.Null:
		d.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot decode %s into Date", t)
	}
}
