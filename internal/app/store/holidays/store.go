// internal/app/store/holidays/store.go
package holidays

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Holiday is one Japanese national holiday.
type Holiday struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Date      string             `bson:"date"` // YYYY-MM-DD
	Name      string             `bson:"name"` // Japanese name
	NameEN    string             `bson:"name_en"`
	Year      int                `bson:"year"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// Store manages the holidays collection.
type Store struct {
	c *mongo.Collection
}

// New creates a holidays Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("holidays")}
}

// EnsureIndexes creates necessary indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "date", Value: 1}},
			Options: options.Index().SetName("idx_holiday_date").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "year", Value: 1}},
			Options: options.Index().SetName("idx_holiday_year"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Upsert inserts or refreshes one holiday keyed by date. Returns true
// when a new document was created.
func (s *Store) Upsert(ctx context.Context, h Holiday) (bool, error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"date": h.Date},
		bson.M{
			"$set": bson.M{
				"name":       h.Name,
				"name_en":    h.NameEN,
				"year":       h.Year,
				"updated_at": now,
			},
			"$setOnInsert": bson.M{
				"created_at": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

// GetByDate returns the holiday on a YYYY-MM-DD date, or nil when the
// date is not a holiday.
func (s *Store) GetByDate(ctx context.Context, date string) (*Holiday, error) {
	var h Holiday
	err := s.c.FindOne(ctx, bson.M{"date": date}).Decode(&h)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// ListYear returns all holidays in a calendar year, ordered by date.
func (s *Store) ListYear(ctx context.Context, year int) ([]Holiday, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"year": year}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Holiday
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MapRange returns holiday dates in the inclusive [from, to] range as
// a lookup set keyed by YYYY-MM-DD.
func (s *Store) MapRange(ctx context.Context, from, to string) (map[string]bool, error) {
	cur, err := s.c.Find(ctx, bson.M{"date": bson.M{"$gte": from, "$lte": to}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	dates := make(map[string]bool)
	for cur.Next(ctx) {
		var h Holiday
		if err := cur.Decode(&h); err != nil {
			return nil, err
		}
		dates[h.Date] = true
	}
	return dates, cur.Err()
}

// Count returns the total number of stored holidays.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
