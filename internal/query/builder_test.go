package query

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBuilder_Parse_Defaults(t *testing.T) {
	b := NewBuilder(10, 100)

	p := b.Parse("", "", "")
	assert.Equal(t, Params{Page: 1, Limit: 10}, p)

	p = b.Parse("abc", "-4", "  Ecual ")
	assert.Equal(t, Params{Page: 1, Limit: 10, Search: "Ecual"}, p)

	p = b.Parse("3", "25", "")
	assert.Equal(t, Params{Page: 3, Limit: 25}, p)
}

func TestBuilder_Parse_ClampsLimit(t *testing.T) {
	b := NewBuilder(10, 100)
	assert.Equal(t, 100, b.Parse("1", "100000", "").Limit)
}

func TestBuilder_Parse_ClampsHugePage(t *testing.T) {
	b := NewBuilder(10, 100)

	for _, limit := range []string{"1", "100"} {
		t.Run("limit "+limit, func(t *testing.T) {
			q := b.Build(b.Parse("9223372036854775807", limit, ""))
			assert.GreaterOrEqual(t, q.Skip, int64(0))
			assert.Equal(t, int64(q.Params.Page-1)*q.Limit, q.Skip)
		})
	}

	q := b.Build(b.Parse("1000", "100", ""))
	assert.Equal(t, int64(99900), q.Skip)
}

func TestNewBuilder_RepairsBounds(t *testing.T) {
	b := NewBuilder(0, 0)
	p := b.Parse("", "", "")
	assert.Equal(t, fallbackLimit, p.Limit)
	assert.Equal(t, fallbackLimit, b.Parse("", "500", "").Limit)
}

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder(10, 100)

	q := b.Build(Params{Page: 3, Limit: 20})
	assert.Equal(t, bson.M{}, q.Filter)
	assert.Equal(t, int64(40), q.Skip)
	assert.Equal(t, int64(20), q.Limit)
	assert.Equal(t, bson.D{{Key: "Date", Value: -1}, {Key: "_id", Value: -1}}, q.Sort)

	q = b.Build(Params{Page: 1, Limit: 10, Search: "ecu"})
	assert.Equal(t, int64(0), q.Skip)
	assert.Equal(t, bson.M{"Player": bson.M{"$regex": "ecu", "$options": "i"}}, q.Filter)
}

func TestContainsInsensitive_EscapesMetacharacters(t *testing.T) {
	m := ContainsInsensitive("a.b*(c")
	pattern := m["$regex"].(string)

	re := regexp.MustCompile("(?i)" + pattern)
	assert.True(t, re.MatchString("xxA.B*(Cyy"))
	assert.False(t, re.MatchString("aXbbc"))
}

func TestEqualsInsensitive(t *testing.T) {
	pattern := EqualsInsensitive("Ecual")["$regex"].(string)

	re := regexp.MustCompile("(?i)" + pattern)
	assert.True(t, re.MatchString("ecual"))
	assert.False(t, re.MatchString("Ecual2"))
}

func TestQuery_FindOptions(t *testing.T) {
	q := NewBuilder(10, 100).Build(Params{Page: 2, Limit: 5})
	opts := q.FindOptions()

	assert.Equal(t, int64(5), *opts.Skip)
	assert.Equal(t, int64(5), *opts.Limit)
	assert.Equal(t, q.Sort, opts.Sort)
}
