// internal/app/store/activity/store.go
package activity

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Operation names for learning activity events, following the reader
// platform's vocabulary.
const (
	OpOpen       = "OPEN"
	OpClose      = "CLOSE"
	OpNext       = "NEXT"
	OpPrev       = "PREV"
	OpPageJump   = "PAGE_JUMP"
	OpAddMarker  = "ADD_MARKER"
	OpAddMemo    = "ADD_MEMO"
	OpAddHWMemo  = "ADD_HW_MEMO"
	OpAnswerQuiz = "ANSWER_QUIZ"
)

// Roles recorded on events.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// CategoryOf buckets an operation into the coarse categories the daily
// activity chart stacks.
func CategoryOf(op string) string {
	switch op {
	case OpAddMarker, OpAddMemo, OpAddHWMemo:
		return "annotation"
	case OpAnswerQuiz:
		return "quiz"
	default:
		return "reading"
	}
}

// Event is one learning activity statement.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"user_id"` // Moodle account id
	Role        string             `bson:"role"`
	Operation   string             `bson:"operation"`
	ContentID   string             `bson:"content_id,omitempty"`
	ContentName string             `bson:"content_name,omitempty"`
	ObjectID    string             `bson:"object_id,omitempty"`
	Timestamp   time.Time          `bson:"timestamp"`
}

// DailyCount aggregates one calendar day of student activity.
type DailyCount struct {
	Date            string `bson:"_id" json:"date"`
	ActiveUsers     int64  `bson:"active_users" json:"active_users"`
	TotalActivities int64  `bson:"total_activities" json:"total_activities"`
}

// HeatmapCell is the activity density of one (date, hour) bucket.
type HeatmapCell struct {
	Date       string `json:"date"`
	Hour       int    `json:"hour"`
	Activities int64  `json:"activities"`
	Students   int64  `json:"students"`
}

// StudentTotal ranks one student by interaction count.
type StudentTotal struct {
	UserID string `bson:"_id" json:"user_id"`
	Total  int64  `bson:"total" json:"total"`
}

// ContentTotal ranks one content item by interaction count.
type ContentTotal struct {
	ContentID   string `bson:"_id" json:"content_id"`
	ContentName string `bson:"content_name" json:"content_name"`
	Total       int64  `bson:"total" json:"total"`
}

// Store manages learning activity events.
type Store struct {
	c *mongo.Collection
}

// New creates an activity Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("activity_events")}
}

// EnsureIndexes creates the indexes the aggregations rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: 1}},
			Options: options.Index().SetName("idx_activity_user_time"),
		},
		{
			Keys:    bson.D{{Key: "operation", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_activity_op_time"),
		},
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_activity_time"),
		},
		{
			Keys:    bson.D{{Key: "content_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_activity_content_time"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Record stores one event.
func (s *Store) Record(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// RecordMany stores a batch of events.
func (s *Store) RecordMany(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(events))
	for _, e := range events {
		if e.ID.IsZero() {
			e.ID = primitive.NewObjectID()
		}
		if e.Timestamp.IsZero() {
			e.Timestamp = time.Now().UTC()
		}
		docs = append(docs, e)
	}
	_, err := s.c.InsertMany(ctx, docs)
	return err
}

// CountSince counts student events at or after the given time.
func (s *Store) CountSince(ctx context.Context, since time.Time) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"role":      RoleStudent,
		"timestamp": bson.M{"$gte": since},
	})
}

// timezoneName maps a location to the IANA name Mongo's date operators
// accept. A nil location buckets in UTC.
func timezoneName(loc *time.Location) string {
	if loc == nil {
		return "UTC"
	}
	return loc.String()
}

// DailyCounts aggregates student events since the given time into one
// row per calendar day in loc, with distinct active users plus total
// activities. Days with no events are absent; callers densify with
// calendarfill.
func (s *Store) DailyCounts(ctx context.Context, since time.Time, loc *time.Location) ([]DailyCount, error) {
	tz := timezoneName(loc)
	pipeline := []bson.M{
		{"$match": bson.M{
			"role":      RoleStudent,
			"timestamp": bson.M{"$gte": since},
		}},
		{"$group": bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$timestamp", "timezone": tz}},
			"users": bson.M{"$addToSet": "$user_id"},
			"total": bson.M{"$sum": 1},
		}},
		{"$project": bson.M{
			"active_users":     bson.M{"$size": "$users"},
			"total_activities": "$total",
		}},
		{"$sort": bson.M{"_id": 1}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []DailyCount
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DailyCategoryCounts aggregates student events since the given time
// into per-day counts in loc, keyed by activity category (reading,
// annotation, quiz).
func (s *Store) DailyCategoryCounts(ctx context.Context, since time.Time, loc *time.Location) (map[string]map[string]int64, error) {
	tz := timezoneName(loc)
	pipeline := []bson.M{
		{"$match": bson.M{
			"role":      RoleStudent,
			"timestamp": bson.M{"$gte": since},
		}},
		{"$group": bson.M{
			"_id": bson.M{
				"date": bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$timestamp", "timezone": tz}},
				"op":   "$operation",
			},
			"total": bson.M{"$sum": 1},
		}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	byDate := make(map[string]map[string]int64)
	for cur.Next(ctx) {
		var doc struct {
			ID struct {
				Date string `bson:"date"`
				Op   string `bson:"op"`
			} `bson:"_id"`
			Total int64 `bson:"total"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		if byDate[doc.ID.Date] == nil {
			byDate[doc.ID.Date] = make(map[string]int64)
		}
		byDate[doc.ID.Date][CategoryOf(doc.ID.Op)] += doc.Total
	}
	return byDate, cur.Err()
}

// HeatmapCells aggregates student events since the given time into
// (date, hour) buckets in loc with activity and distinct-student
// counts. Date and hour come from the same timezone conversion, so a
// cell's wall-clock hour always belongs to its wall-clock date.
func (s *Store) HeatmapCells(ctx context.Context, since time.Time, loc *time.Location) ([]HeatmapCell, error) {
	tz := timezoneName(loc)
	pipeline := []bson.M{
		{"$match": bson.M{
			"role":      RoleStudent,
			"timestamp": bson.M{"$gte": since},
		}},
		{"$group": bson.M{
			"_id": bson.M{
				"date": bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$timestamp", "timezone": tz}},
				"hour": bson.M{"$hour": bson.M{"date": "$timestamp", "timezone": tz}},
			},
			"users": bson.M{"$addToSet": "$user_id"},
			"total": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"_id.date": 1, "_id.hour": 1}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []HeatmapCell
	for cur.Next(ctx) {
		var doc struct {
			ID struct {
				Date string `bson:"date"`
				Hour int    `bson:"hour"`
			} `bson:"_id"`
			Users []string `bson:"users"`
			Total int64    `bson:"total"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, HeatmapCell{
			Date:       doc.ID.Date,
			Hour:       doc.ID.Hour,
			Activities: doc.Total,
			Students:   int64(len(doc.Users)),
		})
	}
	return out, cur.Err()
}

// TopStudents returns the most active students by event count.
func (s *Store) TopStudents(ctx context.Context, limit int64) ([]StudentTotal, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"role": RoleStudent, "user_id": bson.M{"$ne": ""}}},
		{"$group": bson.M{"_id": "$user_id", "total": bson.M{"$sum": 1}}},
		{"$sort": bson.M{"total": -1}},
		{"$limit": limit},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []StudentTotal
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TopContents returns the most active content items, optionally
// restricted to a single operation (e.g. OpAddMemo for "most
// annotated content").
func (s *Store) TopContents(ctx context.Context, operation string, limit int64) ([]ContentTotal, error) {
	match := bson.M{"role": RoleStudent, "content_id": bson.M{"$ne": ""}}
	if operation != "" {
		match["operation"] = operation
	}
	pipeline := []bson.M{
		{"$match": match},
		{"$group": bson.M{
			"_id":          "$content_id",
			"content_name": bson.M{"$first": "$content_name"},
			"total":        bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"total": -1}},
		{"$limit": limit},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []ContentTotal
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DistinctActiveStudents counts students with at least one event.
func (s *Store) DistinctActiveStudents(ctx context.Context) (int64, error) {
	vals, err := s.c.Distinct(ctx, "user_id", bson.M{"role": RoleStudent, "user_id": bson.M{"$ne": ""}})
	if err != nil {
		return 0, err
	}
	return int64(len(vals)), nil
}

// DistinctContents counts content items with at least one event.
func (s *Store) DistinctContents(ctx context.Context) (int64, error) {
	vals, err := s.c.Distinct(ctx, "content_id", bson.M{"content_id": bson.M{"$ne": ""}})
	if err != nil {
		return 0, err
	}
	return int64(len(vals)), nil
}

// LastEventTime returns the most recent event timestamp for a user, or
// nil when the user has no events.
func (s *Store) LastEventTime(ctx context.Context, userID string) (*time.Time, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	var event Event
	err := s.c.FindOne(ctx, bson.M{"user_id": userID}, opts).Decode(&event)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ts := event.Timestamp
	return &ts, nil
}

// TimeSpentHours estimates hours spent per student since the given
// time. Events are walked in (user, timestamp) order; consecutive
// events closer than idleGap extend the current session, larger gaps
// start a new one. A session's duration is the span of its events, so
// an isolated single event contributes zero.
func (s *Store) TimeSpentHours(ctx context.Context, since time.Time, idleGap time.Duration) (map[string]float64, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: 1}}).
		SetProjection(bson.M{"user_id": 1, "timestamp": 1})

	cur, err := s.c.Find(ctx, bson.M{
		"role":      RoleStudent,
		"user_id":   bson.M{"$ne": ""},
		"timestamp": bson.M{"$gte": since},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	hours := make(map[string]float64)
	var prevUser string
	var prevTime time.Time

	for cur.Next(ctx) {
		var doc struct {
			UserID    string    `bson:"user_id"`
			Timestamp time.Time `bson:"timestamp"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		if _, ok := hours[doc.UserID]; !ok {
			hours[doc.UserID] = 0
		}
		if doc.UserID == prevUser {
			if gap := doc.Timestamp.Sub(prevTime); gap > 0 && gap <= idleGap {
				hours[doc.UserID] += gap.Hours()
			}
		}
		prevUser = doc.UserID
		prevTime = doc.Timestamp
	}
	return hours, cur.Err()
}
