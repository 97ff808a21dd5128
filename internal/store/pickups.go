package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pickup-archive/pickups-api/internal/config"
	"github.com/pickup-archive/pickups-api/internal/metrics"
	"github.com/pickup-archive/pickups-api/internal/models"
	"github.com/pickup-archive/pickups-api/internal/query"
	"github.com/pickup-archive/pickups-api/internal/tracing"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const storeMongo = "mongo"

// PickupStore is the MongoDB-backed record store.
type PickupStore struct {
	collection *mongo.Collection
	timeout    time.Duration
	logger     *logrus.Logger
}

func NewPickupStore(client *mongo.Client, cfg *config.MongoConfig, logger *logrus.Logger) *PickupStore {
	return &PickupStore{
		collection: client.Database(cfg.Database).Collection(cfg.PickupsCollection),
		timeout:    cfg.OperationTimeout,
		logger:     logger,
	}
}

// EnsureIndexes creates the indexes list and search queries rely on.
func (s *PickupStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: query.DateField, Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: query.PlayerField, Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create pickup indexes: %w", err)
	}
	return nil
}

// List returns one page of records matching q and the total match count.
func (s *PickupStore) List(ctx context.Context, q query.Query) ([]models.Pickup, int64, error) {
	ctx, done := s.begin(ctx, "list", attribute.String("search", q.Params.Search), attribute.Int("page", q.Params.Page))
	var err error
	defer func() { done(err) }()

	total, err := s.collection.CountDocuments(ctx, q.Filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count pickups: %w", err)
	}

	cursor, err := s.collection.Find(ctx, q.Filter, q.FindOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("find pickups: %w", err)
	}

	records := make([]models.Pickup, 0, q.Limit)
	if err = cursor.All(ctx, &records); err != nil {
		return nil, 0, fmt.Errorf("decode pickups: %w", err)
	}

	return records, total, nil
}

func (s *PickupStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Pickup, error) {
	ctx, done := s.begin(ctx, "get", attribute.String("id", id.Hex()))
	var err error
	defer func() { done(err) }()

	var record models.Pickup
	err = s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		err = notFound(err)
		return nil, err
	}
	return &record, nil
}

// Create inserts p and assigns its id.
func (s *PickupStore) Create(ctx context.Context, p *models.Pickup) error {
	ctx, done := s.begin(ctx, "create")
	var err error
	defer func() { done(err) }()

	p.ID = primitive.NewObjectID()
	if _, err = s.collection.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert pickup: %w", err)
	}
	return nil
}

// Replace swaps the whole document for id and returns the stored version.
func (s *PickupStore) Replace(ctx context.Context, id primitive.ObjectID, p *models.Pickup) (*models.Pickup, error) {
	ctx, done := s.begin(ctx, "replace", attribute.String("id", id.Hex()))
	var err error
	defer func() { done(err) }()

	p.ID = id
	var updated models.Pickup
	err = s.collection.FindOneAndReplace(ctx, bson.M{"_id": id}, p,
		options.FindOneAndReplace().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		err = notFound(err)
		return nil, err
	}
	return &updated, nil
}

// Delete removes the record and returns it as it was.
func (s *PickupStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Pickup, error) {
	ctx, done := s.begin(ctx, "delete", attribute.String("id", id.Hex()))
	var err error
	defer func() { done(err) }()

	var deleted models.Pickup
	err = s.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted)
	if err != nil {
		err = notFound(err)
		return nil, err
	}
	return &deleted, nil
}

// SuggestNames returns up to limit distinct player names containing partial.
func (s *PickupStore) SuggestNames(ctx context.Context, partial string, limit int) ([]string, error) {
	ctx, done := s.begin(ctx, "suggest", attribute.String("partial", partial))
	var err error
	defer func() { done(err) }()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{query.PlayerField: query.ContainsInsensitive(partial)}}},
		{{Key: "$group", Value: bson.M{"_id": "$" + query.PlayerField}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate names: %w", err)
	}

	var rows []struct {
		Name string `bson:"_id"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode names: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Name)
	}
	return names, nil
}

// Summary aggregates every record of one player, matched case-insensitively.
func (s *PickupStore) Summary(ctx context.Context, player string) (*models.PlayerSummary, error) {
	ctx, done := s.begin(ctx, "summary", attribute.String("player", player))
	var err error
	defer func() { done(err) }()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{query.PlayerField: query.EqualsInsensitive(player)}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "player", Value: bson.M{"$first": "$Player"}},
			{Key: "games", Value: bson.M{"$sum": 1}},
			{Key: "wins", Value: bson.M{"$sum": "$Win"}},
			{Key: "avgScore", Value: bson.M{"$avg": "$Score"}},
			{Key: "avgKills", Value: bson.M{"$avg": "$Kills"}},
			{Key: "avgDeaths", Value: bson.M{"$avg": "$Deaths"}},
			{Key: "avgAssists", Value: bson.M{"$avg": "$Assists"}},
			{Key: "avgTeamKills", Value: bson.M{"$avg": "$Team Kills"}},
			{Key: "avgBlocks", Value: bson.M{"$avg": "$Blocks"}},
			{Key: "avgImpactRating", Value: bson.M{"$avg": "$Impact Rating"}},
		}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate summary: %w", err)
	}

	var rows []models.PlayerSummary
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	if len(rows) == 0 {
		err = ErrNotFound
		return nil, err
	}

	summary := rows[0]
	summary.Finalize()
	return &summary, nil
}

// Ping reports whether the primary is reachable.
func (s *PickupStore) Ping(ctx context.Context) error {
	return s.collection.Database().Client().Ping(ctx, nil)
}

// begin applies the operation timeout and opens a span; the returned func
// closes both and records metrics.
func (s *PickupStore) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	ctx, span := tracing.StartSpan(ctx, "store.PickupStore."+op, trace.WithAttributes(attrs...))

	return ctx, func(err error) {
		status := "success"
		switch {
		case errors.Is(err, ErrNotFound):
			status = "not_found"
		case err != nil:
			status = "failure"
			tracing.RecordError(span, err)
			s.logger.WithError(err).WithField("operation", op).Error("Pickup store operation failed")
		}
		metrics.RecordStoreOperation(storeMongo, op, status, time.Since(start))
		span.End()
		cancel()
	}
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
