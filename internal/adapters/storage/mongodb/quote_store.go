// Package mongodb provides the MongoDB-backed quote store.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/jsamuelsen/daily-quote/internal/domain"
)

const (
	// DefaultDatabase and DefaultCollection match the layout existing deployments use.
	DefaultDatabase   = "sadhguru_quotes"
	DefaultCollection = "quotes"

	// HealthName is the health check name of the store.
	HealthName = "quote-store"

	uniqueIndexName   = "month_1_day_1_year_1"
	monthDayIndexName = "month_1_day_1"
)

// Config controls the MongoDB client.
type Config struct {
	DSN            string
	Database       string
	Collection     string
	MaxConns       int32
	ConnectTimeout time.Duration
}

// quoteDocument is the stored form of a quote.
type quoteDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Month     string             `bson:"month"`
	Day       string             `bson:"day"`
	Year      int                `bson:"year"`
	Quote     string             `bson:"quote"`
	URL       string             `bson:"url"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *quoteDocument) toDomain() *domain.Quote {
	return &domain.Quote{
		Month:     d.Month,
		Day:       d.Day,
		Year:      d.Year,
		Text:      d.Quote,
		URL:       d.URL,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// QuoteStore implements ports.QuoteStore on a MongoDB collection.
type QuoteStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger *slog.Logger
	now    func() time.Time
}

// New connects to MongoDB and returns a store. The connection is verified
// with a ping before returning.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*QuoteStore, error) {
	if cfg.DSN == "" {
		return nil, errors.New("store dsn is required")
	}

	opts := options.Client().ApplyURI(cfg.DSN)
	if cfg.MaxConns > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxConns))
	}

	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout).SetServerSelectionTimeout(cfg.ConnectTimeout)
	}

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("parse mongodb dsn: %w", err)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, domain.NewUnavailableError(HealthName, fmt.Sprintf("connect mongodb: %v", err))
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, domain.NewUnavailableError(HealthName, fmt.Sprintf("ping mongodb: %v", err))
	}

	database := cfg.Database
	if database == "" {
		database = DefaultDatabase
	}

	collection := cfg.Collection
	if collection == "" {
		collection = DefaultCollection
	}

	store := NewWithCollection(client.Database(database).Collection(collection), logger)
	store.logger.Info("connected to mongodb",
		slog.String("database", database),
		slog.String("collection", collection),
	)

	return store, nil
}

// NewWithCollection constructs a store on an existing collection. Close
// disconnects the collection's client.
func NewWithCollection(coll *mongo.Collection, logger *slog.Logger) *QuoteStore {
	if coll == nil {
		panic("mongodb.QuoteStore: collection is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteStore{
		client: coll.Database().Client(),
		coll:   coll,
		logger: logger.With(slog.String("component", "mongodb.QuoteStore")),
		now:    time.Now,
	}
}

// EnsureSchema creates the unique (month, day, year) index and the
// (month, day) lookup index.
func (s *QuoteStore) EnsureSchema(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "month", Value: 1}, {Key: "day", Value: 1}, {Key: "year", Value: 1}},
			Options: options.Index().SetName(uniqueIndexName).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "month", Value: 1}, {Key: "day", Value: 1}},
			Options: options.Index().SetName(monthDayIndexName),
		},
	}

	if _, err := s.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	s.logger.DebugContext(ctx, "indexes ensured", slog.String("collection", s.coll.Name()))

	return nil
}

// FindByKey returns the quote stored under key, or a not found error.
func (s *QuoteStore) FindByKey(ctx context.Context, key domain.QuoteKey) (*domain.Quote, error) {
	filter := bson.D{{Key: "month", Value: key.Month}, {Key: "day", Value: key.Day}, {Key: "year", Value: key.Year}}

	var doc quoteDocument

	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.NewQuoteNotFoundError(key)
	}

	if err != nil {
		return nil, fmt.Errorf("find quote %s: %w", key, err)
	}

	return doc.toDomain(), nil
}

// ListByMonthDay returns every stored quote for month and day, oldest year first.
func (s *QuoteStore) ListByMonthDay(ctx context.Context, month, day string) ([]*domain.Quote, error) {
	filter := bson.D{{Key: "month", Value: month}, {Key: "day", Value: day}}

	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "year", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list quotes %s-%s: %w", month, day, err)
	}

	var docs []quoteDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list quotes %s-%s: %w", month, day, err)
	}

	quotes := make([]*domain.Quote, 0, len(docs))
	for i := range docs {
		quotes = append(quotes, docs[i].toDomain())
	}

	return quotes, nil
}

// Insert stores q and sets its timestamps. A quote already stored under the
// same key yields a conflict error.
func (s *QuoteStore) Insert(ctx context.Context, q *domain.Quote) error {
	// BSON dates carry millisecond precision.
	now := s.now().UTC().Truncate(time.Millisecond)

	doc := quoteDocument{
		Month:     q.Month,
		Day:       q.Day,
		Year:      q.Year,
		Quote:     q.Text,
		URL:       q.URL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.NewDuplicateQuoteError(q.Key(), err)
		}

		return fmt.Errorf("insert quote %s: %w", q.Key(), err)
	}

	q.CreatedAt = now
	q.UpdatedAt = now

	return nil
}

// Name returns the health check name.
// Implements ports.HealthChecker.
func (s *QuoteStore) Name() string {
	return HealthName
}

// Check pings the primary.
// Implements ports.HealthChecker.
func (s *QuoteStore) Check(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return domain.NewUnavailableError(HealthName, err.Error())
	}

	return nil
}

// Close disconnects the client.
func (s *QuoteStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongodb: %w", err)
	}

	return nil
}
