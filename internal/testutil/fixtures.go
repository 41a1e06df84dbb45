package testutil

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/learnscope/internal/app/store/activity"
	"github.com/dalemusser/learnscope/internal/app/store/courses"
	"github.com/dalemusser/learnscope/internal/app/store/holidays"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateCourse inserts a mirrored course with sensible defaults.
// Returns the stored course.
func (f *Fixtures) CreateCourse(ctx context.Context, courseID int64, name string) courses.Course {
	f.t.Helper()

	now := time.Now().UTC()
	start := now.AddDate(0, -1, 0)
	c := courses.Course{
		CourseID:           courseID,
		CourseName:         name,
		ParentCategoryID:   1,
		ParentCategoryName: "2026",
		ChildCategoryID:    10,
		ChildCategoryName:  "Grade 1",
		SortOrder:          courseID * 100,
		Visible:            true,
		StartDate:          &start,
		Created:            now.AddDate(0, -2, 0),
		CreatedAt:          now,
		UpdatedAt:          now,
		LastSynced:         now,
	}
	if err := courses.New(f.db).Insert(ctx, c); err != nil {
		f.t.Fatalf("create course fixture: %v", err)
	}
	return c
}

// RecordEvent inserts one student activity event.
func (f *Fixtures) RecordEvent(ctx context.Context, userID, operation string, ts time.Time) {
	f.t.Helper()

	err := activity.New(f.db).Record(ctx, activity.Event{
		UserID:      userID,
		Role:        activity.RoleStudent,
		Operation:   operation,
		ContentID:   "content-1",
		ContentName: "Reading Material",
		Timestamp:   ts,
	})
	if err != nil {
		f.t.Fatalf("record event fixture: %v", err)
	}
}

// CreateHoliday upserts one holiday.
func (f *Fixtures) CreateHoliday(ctx context.Context, date, name, nameEN string, year int) {
	f.t.Helper()

	_, err := holidays.New(f.db).Upsert(ctx, holidays.Holiday{
		Date:   date,
		Name:   name,
		NameEN: nameEN,
		Year:   year,
	})
	if err != nil {
		f.t.Fatalf("create holiday fixture: %v", err)
	}
}
