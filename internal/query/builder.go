// Package query turns list request parameters into record store queries.
package query

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultPage   = 1
	PlayerField   = "Player"
	DateField     = "Date"
	fallbackLimit = 10
)

// Params are the caller-facing paging inputs after coercion.
type Params struct {
	Page   int
	Limit  int
	Search string
}

// Query is a complete find specification for the pickups collection.
type Query struct {
	Filter bson.M
	Skip   int64
	Limit  int64
	Sort   bson.D
	Params Params
}

// Builder coerces raw query-string values and applies paging bounds.
type Builder struct {
	defaultLimit int
	maxLimit     int
}

func NewBuilder(defaultLimit, maxLimit int) *Builder {
	if defaultLimit < 1 {
		defaultLimit = fallbackLimit
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &Builder{defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// Parse coerces page/limit strings. Missing, malformed and non-positive values
// fall back to the defaults; limit is clamped to the configured maximum and
// page to the last one whose offset is representable.
func (b *Builder) Parse(page, limit, search string) Params {
	p := Params{
		Page:   parsePositive(page, DefaultPage),
		Limit:  parsePositive(limit, b.defaultLimit),
		Search: strings.TrimSpace(search),
	}
	if p.Limit > b.maxLimit {
		p.Limit = b.maxLimit
	}
	// keep (page-1)*limit within the driver's int64 skip
	if maxPage := math.MaxInt64 / int64(p.Limit); int64(p.Page-1) > maxPage {
		p.Page = int(maxPage)
	}
	return p
}

// Build produces the store query: substring match on the player name when
// searching, newest records first.
func (b *Builder) Build(p Params) Query {
	filter := bson.M{}
	if p.Search != "" {
		filter[PlayerField] = ContainsInsensitive(p.Search)
	}

	return Query{
		Filter: filter,
		Skip:   int64(p.Page-1) * int64(p.Limit),
		Limit:  int64(p.Limit),
		Sort:   DefaultSort(),
		Params: p,
	}
}

// FindOptions renders the paging part of q for the driver.
func (q Query) FindOptions() *options.FindOptions {
	return options.Find().
		SetSort(q.Sort).
		SetSkip(q.Skip).
		SetLimit(q.Limit)
}

// DefaultSort orders by date descending; _id breaks ties so pages are stable.
func DefaultSort() bson.D {
	return bson.D{{Key: DateField, Value: -1}, {Key: "_id", Value: -1}}
}

// ContainsInsensitive matches s anywhere in the field, ignoring case. s is
// matched literally.
func ContainsInsensitive(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

// EqualsInsensitive matches the whole field against s, ignoring case.
func EqualsInsensitive(s string) bson.M {
	return bson.M{"$regex": "^" + regexp.QuoteMeta(s) + "$", "$options": "i"}
}

func parsePositive(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
