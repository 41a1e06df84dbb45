// internal/app/store/courses/store.go
package courses

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Course mirrors one Moodle course locally. The Moodle database is the
// source of truth for every field except SubjectCategory and
// LevelCategory, which are assigned here and never written by sync.
type Course struct {
	ID primitive.ObjectID `bson:"_id,omitempty"`

	CourseID   int64  `bson:"course_id"`
	CourseName string `bson:"course_name"`

	ParentCategoryID   int64  `bson:"parent_category_id"`
	ParentCategoryName string `bson:"parent_category_name"`
	ChildCategoryID    int64  `bson:"child_category_id"`
	ChildCategoryName  string `bson:"child_category_name"`

	SortOrder int64      `bson:"sortorder"`
	Visible   bool       `bson:"visible"`
	StartDate *time.Time `bson:"start_date,omitempty"`
	EndDate   *time.Time `bson:"end_date,omitempty"`
	Created   time.Time  `bson:"course_created"`

	SubjectCategory string `bson:"subject_category,omitempty"`
	LevelCategory   string `bson:"level_category,omitempty"`

	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
	LastSynced time.Time `bson:"last_synced"`
}

// MirrorEquals reports whether every Moodle-owned field of c matches o.
// Locally-owned fields and bookkeeping timestamps are ignored.
func (c Course) MirrorEquals(o Course) bool {
	return c.CourseID == o.CourseID &&
		c.CourseName == o.CourseName &&
		c.ParentCategoryID == o.ParentCategoryID &&
		c.ParentCategoryName == o.ParentCategoryName &&
		c.ChildCategoryID == o.ChildCategoryID &&
		c.ChildCategoryName == o.ChildCategoryName &&
		c.SortOrder == o.SortOrder &&
		c.Visible == o.Visible &&
		timePtrEqual(c.StartDate, o.StartDate) &&
		timePtrEqual(c.EndDate, o.EndDate) &&
		c.Created.Equal(o.Created)
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// IsActive reports whether the course is visible and inside its start
// and end dates as of now.
func (c Course) IsActive(now time.Time) bool {
	if !c.Visible {
		return false
	}
	if c.StartDate != nil && c.StartDate.After(now) {
		return false
	}
	if c.EndDate != nil && c.EndDate.Before(now) {
		return false
	}
	return true
}

// FullCategoryPath renders "Parent > Child" for list views.
func (c Course) FullCategoryPath() string {
	return c.ParentCategoryName + " > " + c.ChildCategoryName
}

// Store manages the local course mirror.
type Store struct {
	c *mongo.Collection
}

// New creates a course Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("courses")}
}

// EnsureIndexes creates the mirror's indexes. course_id is unique: a
// sync run must never produce two rows for the same Moodle course.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "course_id", Value: 1}},
			Options: options.Index().SetName("idx_courses_course_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "parent_category_id", Value: 1}},
			Options: options.Index().SetName("idx_courses_parent_category"),
		},
		{
			Keys:    bson.D{{Key: "child_category_id", Value: 1}},
			Options: options.Index().SetName("idx_courses_child_category"),
		},
		{
			Keys:    bson.D{{Key: "subject_category", Value: 1}},
			Options: options.Index().SetName("idx_courses_subject_category"),
		},
		{
			Keys:    bson.D{{Key: "level_category", Value: 1}},
			Options: options.Index().SetName("idx_courses_level_category"),
		},
		{
			Keys:    bson.D{{Key: "visible", Value: 1}},
			Options: options.Index().SetName("idx_courses_visible"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// GetByCourseID returns the mirrored course, or nil if it has not been
// observed by any sync run yet.
func (s *Store) GetByCourseID(ctx context.Context, courseID int64) (*Course, error) {
	var course Course
	err := s.c.FindOne(ctx, bson.M{"course_id": courseID}).Decode(&course)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// Insert stores a newly observed course.
func (s *Store) Insert(ctx context.Context, course Course) error {
	now := time.Now().UTC()
	if course.ID.IsZero() {
		course.ID = primitive.NewObjectID()
	}
	course.CreatedAt = now
	course.UpdatedAt = now
	course.LastSynced = now
	_, err := s.c.InsertOne(ctx, course)
	return err
}

// Replace rewrites every Moodle-owned field of the existing document in
// one atomic update, preserving the locally-assigned categories, and
// refreshes last_synced. The single-document write is the per-course
// transaction boundary: a failure leaves the previous version intact.
func (s *Store) Replace(ctx context.Context, course Course) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"course_id": course.CourseID},
		bson.M{"$set": bson.M{
			"course_name":          course.CourseName,
			"parent_category_id":   course.ParentCategoryID,
			"parent_category_name": course.ParentCategoryName,
			"child_category_id":    course.ChildCategoryID,
			"child_category_name":  course.ChildCategoryName,
			"sortorder":            course.SortOrder,
			"visible":              course.Visible,
			"start_date":           course.StartDate,
			"end_date":             course.EndDate,
			"course_created":       course.Created,
			"updated_at":           now,
			"last_synced":          now,
		}},
	)
	return err
}

// TouchLastSynced records that a sync run observed the course unchanged.
func (s *Store) TouchLastSynced(ctx context.Context, courseID int64) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"course_id": courseID},
		bson.M{"$set": bson.M{"last_synced": time.Now().UTC()}},
	)
	return err
}

// ListFilter narrows List results.
type ListFilter struct {
	VisibleOnly     bool
	SubjectCategory string
}

// List returns mirrored courses ordered the way the admin UI shows them:
// parent category, child category, then Moodle sort order.
func (s *Store) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Course, error) {
	q := bson.M{}
	if filter.VisibleOnly {
		q["visible"] = true
	}
	if filter.SubjectCategory != "" {
		q["subject_category"] = filter.SubjectCategory
	}

	opts := options.Find().
		SetSort(bson.D{
			{Key: "parent_category_name", Value: 1},
			{Key: "child_category_name", Value: 1},
			{Key: "sortorder", Value: 1},
		}).
		SetSkip(offset)
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Course
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of mirrored courses matching filter.
func (s *Store) Count(ctx context.Context, filter ListFilter) (int64, error) {
	q := bson.M{}
	if filter.VisibleOnly {
		q["visible"] = true
	}
	if filter.SubjectCategory != "" {
		q["subject_category"] = filter.SubjectCategory
	}
	return s.c.CountDocuments(ctx, q)
}

// SetSubjectCategory assigns the locally-owned subject classification.
func (s *Store) SetSubjectCategory(ctx context.Context, courseID int64, category string) error {
	return s.setLocalCategory(ctx, courseID, "subject_category", category)
}

// SetLevelCategory assigns the locally-owned level classification.
func (s *Store) SetLevelCategory(ctx context.Context, courseID int64, category string) error {
	return s.setLocalCategory(ctx, courseID, "level_category", category)
}

func (s *Store) setLocalCategory(ctx context.Context, courseID int64, field, category string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"course_id": courseID},
		bson.M{"$set": bson.M{
			field:        category,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
