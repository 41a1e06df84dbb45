package dashboard_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dalemusser/learnscope/internal/app/features/dashboard"
	uierrors "github.com/dalemusser/learnscope/internal/app/features/errors"
	activitystore "github.com/dalemusser/learnscope/internal/app/store/activity"
	coursestore "github.com/dalemusser/learnscope/internal/app/store/courses"
	holidaystore "github.com/dalemusser/learnscope/internal/app/store/holidays"
	"github.com/dalemusser/learnscope/internal/app/store/moodle"
	"github.com/dalemusser/learnscope/internal/app/system/cache"
	"github.com/dalemusser/learnscope/internal/testutil"
)

type fakeDirectory struct {
	count    int64
	enrolled map[string]bool
	users    map[int64]moodle.User
}

func (f *fakeDirectory) StudentCount(ctx context.Context) (int64, error) {
	return f.count, nil
}

func (f *fakeDirectory) EnrolledStudentIDs(ctx context.Context) (map[string]bool, error) {
	return f.enrolled, nil
}

func (f *fakeDirectory) GetUsers(ctx context.Context, ids []int64) (map[int64]moodle.User, error) {
	return f.users, nil
}

func newTestHandler(t *testing.T, dir dashboard.Directory) (*dashboard.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := dashboard.NewHandler(
		coursestore.New(db),
		activitystore.New(db),
		holidaystore.New(db),
		dir,
		cache.New(nil, nil),
		dashboard.Config{
			Location:        time.UTC,
			SchoolStartHour: 8,
			SchoolEndHour:   16,
			WindowDays:      7,
			TopStudents:     5,
			CacheTTL:        time.Minute,
		},
		uierrors.NewErrorLogger(zap.NewNop()),
		zap.NewNop(),
	)
	return h, testutil.NewFixtures(t, db)
}

func TestServeDailyActivity_DenseWindow(t *testing.T) {
	h, fx := newTestHandler(t, nil)
	ctx := context.Background()

	now := time.Now().UTC()
	fx.RecordEvent(ctx, "1001", activitystore.OpOpen, now.Add(-2*time.Hour))
	fx.RecordEvent(ctx, "1001", activitystore.OpAddMemo, now.Add(-1*time.Hour))
	fx.RecordEvent(ctx, "1002", activitystore.OpAnswerQuiz, now.Add(-30*time.Minute))

	rec := httptest.NewRecorder()
	h.ServeDailyActivity(rec, httptest.NewRequest("GET", "/dashboard/api/daily-activity", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp dashboard.DailyActivityResponse
	testutil.DecodeJSON(t, rec, &resp)

	if len(resp.Days) != 7 {
		t.Fatalf("len(days) = %d, want dense 7-day window", len(resp.Days))
	}

	var reading, annotation, quiz int64
	for _, d := range resp.Days {
		reading += d.Reading
		annotation += d.Annotation
		quiz += d.Quiz
		if d.Total != d.Reading+d.Annotation+d.Quiz {
			t.Errorf("day %s total %d does not match category sum", d.Date, d.Total)
		}
	}
	// Events 2h/1h/30m old can straddle a date boundary but never
	// leave the window, so category totals are stable.
	if reading != 1 || annotation != 1 || quiz != 1 {
		t.Fatalf("category totals = %d/%d/%d, want 1/1/1", reading, annotation, quiz)
	}
}

func TestServeOverview(t *testing.T) {
	dir := &fakeDirectory{count: 42}
	h, fx := newTestHandler(t, dir)
	ctx := context.Background()

	fx.CreateCourse(ctx, 101, "Math I")
	fx.CreateCourse(ctx, 102, "Science I")

	now := time.Now().UTC()
	fx.RecordEvent(ctx, "1001", activitystore.OpOpen, now.Add(-time.Hour))
	fx.RecordEvent(ctx, "1002", activitystore.OpNext, now.Add(-time.Hour))
	fx.RecordEvent(ctx, "1002", activitystore.OpNext, now.Add(-50*time.Minute))

	rec := httptest.NewRecorder()
	h.ServeOverview(rec, httptest.NewRequest("GET", "/dashboard/api/overview", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp dashboard.OverviewResponse
	testutil.DecodeJSON(t, rec, &resp)

	if resp.TotalCourses != 2 {
		t.Errorf("total courses = %d, want 2", resp.TotalCourses)
	}
	if resp.ActiveStudents != 2 {
		t.Errorf("active students = %d, want 2", resp.ActiveStudents)
	}
	if resp.TotalActivities != 3 {
		t.Errorf("total activities = %d, want 3", resp.TotalActivities)
	}
	if resp.EnrolledStudents != 42 {
		t.Errorf("enrolled students = %d, want 42", resp.EnrolledStudents)
	}
	if resp.Thresholds.High <= 0 {
		t.Errorf("thresholds not computed: %+v", resp.Thresholds)
	}
}

func TestServeStudentHighlights(t *testing.T) {
	dir := &fakeDirectory{
		enrolled: map[string]bool{"1001": true},
		users: map[int64]moodle.User{
			1001: {ID: 1001, FirstName: "Aiko", LastName: "Tanaka"},
		},
	}
	h, fx := newTestHandler(t, dir)
	ctx := context.Background()

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		fx.RecordEvent(ctx, "1001", activitystore.OpOpen, now.Add(-time.Duration(i+1)*time.Hour))
	}
	fx.RecordEvent(ctx, "2002", activitystore.OpOpen, now.Add(-time.Hour))

	rec := httptest.NewRecorder()
	h.ServeStudentHighlights(rec, httptest.NewRequest("GET", "/dashboard/api/student-highlights", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp dashboard.StudentHighlightsResponse
	testutil.DecodeJSON(t, rec, &resp)

	if len(resp.Students) != 2 {
		t.Fatalf("len(students) = %d, want 2", len(resp.Students))
	}
	first := resp.Students[0]
	if first.UserID != "1001" || first.Total != 3 {
		t.Fatalf("first student = %+v, want 1001 with 3 events", first)
	}
	if first.Name != "Aiko Tanaka" {
		t.Errorf("name = %q, want Moodle name", first.Name)
	}
	if first.Status != "active" {
		t.Errorf("status = %q, want active", first.Status)
	}
	second := resp.Students[1]
	if second.Status != "not_enrolled" {
		t.Errorf("second status = %q, want not_enrolled", second.Status)
	}
	if second.Name != "Student 2002" {
		t.Errorf("second name = %q, want fallback", second.Name)
	}
}

func TestServeHourlyHeatmap(t *testing.T) {
	h, fx := newTestHandler(t, nil)
	ctx := context.Background()

	ts := time.Now().UTC().Add(-3 * time.Hour).Truncate(time.Hour).Add(10 * time.Minute)
	fx.RecordEvent(ctx, "1001", activitystore.OpOpen, ts)
	fx.RecordEvent(ctx, "1002", activitystore.OpOpen, ts.Add(5*time.Minute))

	rec := httptest.NewRecorder()
	h.ServeHourlyHeatmap(rec, httptest.NewRequest("GET", "/dashboard/api/hourly-heatmap", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp dashboard.HeatmapResponse
	testutil.DecodeJSON(t, rec, &resp)

	if resp.Timezone != "UTC" {
		t.Errorf("timezone = %q", resp.Timezone)
	}
	if len(resp.Cells) != 1 {
		t.Fatalf("len(cells) = %d, want 1", len(resp.Cells))
	}
	cell := resp.Cells[0]
	if cell.Activities != 2 || cell.Students != 2 {
		t.Errorf("cell = %+v, want 2 activities from 2 students", cell)
	}
	if cell.Hour != ts.Hour() {
		t.Errorf("hour = %d, want %d", cell.Hour, ts.Hour())
	}
}

func TestServeTimeSpent(t *testing.T) {
	h, fx := newTestHandler(t, nil)
	ctx := context.Background()

	now := time.Now().UTC()
	// 1001: two sessions, 20 min + 10 min, inside the 30-minute gap.
	fx.RecordEvent(ctx, "1001", activitystore.OpOpen, now.Add(-3*time.Hour))
	fx.RecordEvent(ctx, "1001", activitystore.OpNext, now.Add(-3*time.Hour).Add(20*time.Minute))
	fx.RecordEvent(ctx, "1001", activitystore.OpOpen, now.Add(-time.Hour))
	fx.RecordEvent(ctx, "1001", activitystore.OpClose, now.Add(-time.Hour).Add(10*time.Minute))
	// 2002: a single isolated event, zero measurable time.
	fx.RecordEvent(ctx, "2002", activitystore.OpOpen, now.Add(-time.Hour))

	rec := httptest.NewRecorder()
	h.ServeTimeSpent(rec, httptest.NewRequest("GET", "/dashboard/api/time-spent", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp dashboard.TimeSpentResponse
	testutil.DecodeJSON(t, rec, &resp)

	// 30 minutes total across both students.
	if resp.TotalHours < 0.49 || resp.TotalHours > 0.51 {
		t.Errorf("total hours = %f, want 0.5", resp.TotalHours)
	}
	var students int64
	for _, b := range resp.Buckets {
		students += b.Students
	}
	if students != 2 {
		t.Errorf("bucketed students = %d, want 2", students)
	}
	if resp.Buckets[0].Students != 2 {
		t.Errorf("under-1h bucket = %d, want 2", resp.Buckets[0].Students)
	}
}
