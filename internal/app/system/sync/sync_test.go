// internal/app/system/sync/sync_test.go
package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dalemusser/learnscope/internal/app/store/courses"
	"github.com/dalemusser/learnscope/internal/app/store/moodle"
)

type fakeSource struct {
	rows        []moodle.CourseRow
	err         error
	gotCourseID int64
}

func (f *fakeSource) FetchCourseRows(ctx context.Context, courseID int64) ([]moodle.CourseRow, error) {
	f.gotCourseID = courseID
	if f.err != nil || courseID == 0 {
		return f.rows, f.err
	}
	var out []moodle.CourseRow
	for _, r := range f.rows {
		if r.CourseID != nil && *r.CourseID == courseID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeMirror struct {
	byID     map[int64]courses.Course
	inserts  int
	replaces int
	touches  int
	failOn   int64 // course id whose writes fail
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{byID: make(map[int64]courses.Course)}
}

func (f *fakeMirror) GetByCourseID(ctx context.Context, courseID int64) (*courses.Course, error) {
	c, ok := f.byID[courseID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeMirror) Insert(ctx context.Context, course courses.Course) error {
	if course.CourseID == f.failOn {
		return errors.New("write failed")
	}
	f.inserts++
	f.byID[course.CourseID] = course
	return nil
}

func (f *fakeMirror) Replace(ctx context.Context, course courses.Course) error {
	if course.CourseID == f.failOn {
		return errors.New("write failed")
	}
	f.replaces++
	f.byID[course.CourseID] = course
	return nil
}

func (f *fakeMirror) TouchLastSynced(ctx context.Context, courseID int64) error {
	f.touches++
	return nil
}

func courseRow(id int64, name string) moodle.CourseRow {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	return moodle.CourseRow{
		CourseID:           &id,
		CourseName:         name,
		ParentCategoryID:   1,
		ParentCategoryName: "2026",
		ChildCategoryID:    10,
		ChildCategoryName:  "Grade 1",
		SortOrder:          int64(id * 100),
		Visible:            true,
		StartDate:          &start,
		Created:            time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestRunCreatesNewCourses(t *testing.T) {
	src := &fakeSource{rows: []moodle.CourseRow{courseRow(101, "Math I"), courseRow(102, "Science I")}}
	mir := newFakeMirror()
	rec := New(src, mir, zap.NewNop())

	stats, err := rec.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Created != 2 || stats.Updated != 0 || stats.Errors != 0 {
		t.Fatalf("stats = %+v, want 2 created", stats)
	}
	if mir.inserts != 2 {
		t.Fatalf("inserts = %d, want 2", mir.inserts)
	}
	if got := mir.byID[101].CourseName; got != "Math I" {
		t.Fatalf("stored name = %q", got)
	}
}

func TestRunSecondPassIsUnchanged(t *testing.T) {
	src := &fakeSource{rows: []moodle.CourseRow{courseRow(101, "Math I")}}
	mir := newFakeMirror()
	rec := New(src, mir, zap.NewNop())

	if _, err := rec.Run(context.Background(), Options{}); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	stats, err := rec.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if stats.Unchanged != 1 || stats.Created != 0 || stats.Updated != 0 {
		t.Fatalf("stats = %+v, want 1 unchanged", stats)
	}
	if mir.touches != 1 {
		t.Fatalf("touches = %d, want 1: freshness must advance on unchanged rows", mir.touches)
	}
}

func TestRunUpdatesChangedField(t *testing.T) {
	src := &fakeSource{rows: []moodle.CourseRow{courseRow(101, "Math I")}}
	mir := newFakeMirror()
	rec := New(src, mir, zap.NewNop())

	if _, err := rec.Run(context.Background(), Options{}); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	src.rows = []moodle.CourseRow{courseRow(101, "Math I (revised)")}
	stats, err := rec.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if stats.Updated != 1 {
		t.Fatalf("stats = %+v, want 1 updated", stats)
	}
	if got := mir.byID[101].CourseName; got != "Math I (revised)" {
		t.Fatalf("stored name = %q", got)
	}
}

func TestRunSkipsCategoriesWithoutCourse(t *testing.T) {
	src := &fakeSource{rows: []moodle.CourseRow{
		{ChildCategoryID: 10, ChildCategoryName: "Empty grade"}, // no course joined
		courseRow(101, "Math I"),
	}}
	mir := newFakeMirror()
	rec := New(src, mir, zap.NewNop())

	stats, err := rec.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.SkippedIncomplete != 1 || stats.Created != 1 {
		t.Fatalf("stats = %+v, want 1 skipped and 1 created", stats)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	src := &fakeSource{rows: []moodle.CourseRow{courseRow(101, "Math I")}}
	mir := newFakeMirror()
	rec := New(src, mir, zap.NewNop())

	stats, err := rec.Run(context.Background(), Options{DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Created != 1 {
		t.Fatalf("stats = %+v, want 1 created reported", stats)
	}
	if mir.inserts != 0 || mir.replaces != 0 || mir.touches != 0 {
		t.Fatalf("dry run wrote to the mirror: %+v", mir)
	}
}

func TestRunIsolatesRowFailures(t *testing.T) {
	src := &fakeSource{rows: []moodle.CourseRow{
		courseRow(101, "Math I"),
		courseRow(102, "Science I"),
		courseRow(103, "History I"),
	}}
	mir := newFakeMirror()
	mir.failOn = 102
	rec := New(src, mir, zap.NewNop())

	stats, err := rec.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Errors != 1 {
		t.Fatalf("errors = %d, want 1", stats.Errors)
	}
	if stats.Created != 2 {
		t.Fatalf("created = %d, want 2: other rows must still sync", stats.Created)
	}
}

func TestRunCourseIDFilter(t *testing.T) {
	src := &fakeSource{rows: []moodle.CourseRow{courseRow(101, "Math I"), courseRow(102, "Science I")}}
	mir := newFakeMirror()
	rec := New(src, mir, zap.NewNop())

	stats, err := rec.Run(context.Background(), Options{CourseID: 102})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if src.gotCourseID != 102 {
		t.Fatalf("source received course id %d, want the filter pushed down as 102", src.gotCourseID)
	}
	if stats.Fetched != 1 {
		t.Fatalf("fetched = %d, want 1: the source must not return unrelated rows", stats.Fetched)
	}
	if stats.Created != 1 {
		t.Fatalf("created = %d, want 1", stats.Created)
	}
	if _, ok := mir.byID[101]; ok {
		t.Fatal("course 101 synced despite filter")
	}
}

func TestRunSanitizesNames(t *testing.T) {
	row := courseRow(101, `Math <script>alert(1)</script>I`)
	row.ParentCategoryName = `<b>2026</b>`
	src := &fakeSource{rows: []moodle.CourseRow{row}}
	mir := newFakeMirror()
	rec := New(src, mir, zap.NewNop())

	if _, err := rec.Run(context.Background(), Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	stored := mir.byID[101]
	if stored.CourseName != "Math I" {
		t.Fatalf("course name = %q, want markup stripped", stored.CourseName)
	}
	if stored.ParentCategoryName != "2026" {
		t.Fatalf("parent category = %q, want markup stripped", stored.ParentCategoryName)
	}
}

func TestRunPropagatesSourceFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	rec := New(src, newFakeMirror(), zap.NewNop())

	if _, err := rec.Run(context.Background(), Options{}); err == nil {
		t.Fatal("want error when the source is unreachable")
	}
}
