// internal/app/features/courses/handler_test.go
package courses_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dalemusser/learnscope/internal/app/features/courses"
	uierrors "github.com/dalemusser/learnscope/internal/app/features/errors"
	coursestore "github.com/dalemusser/learnscope/internal/app/store/courses"
	"github.com/dalemusser/learnscope/internal/testutil"
)

func newTestHandler(t *testing.T) (*courses.Handler, *coursestore.Store, *testutil.Fixtures) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := coursestore.New(db)
	logger := zap.NewNop()
	h := courses.NewHandler(store, uierrors.NewErrorLogger(logger), logger)
	return h, store, fx
}

func TestServeListJSON(t *testing.T) {
	h, _, fx := newTestHandler(t)
	ctx := context.Background()

	fx.CreateCourse(ctx, 101, "Algebra I")
	fx.CreateCourse(ctx, 102, "World History")

	req := httptest.NewRequest(http.MethodGet, "/courses/api/list", nil)
	rec := httptest.NewRecorder()
	h.ServeListJSON(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp courses.ListResponse
	testutil.DecodeJSON(t, rec, &resp)

	if resp.Total != 2 {
		t.Errorf("Total = %d, want 2", resp.Total)
	}
	if len(resp.Courses) != 2 {
		t.Fatalf("len(Courses) = %d, want 2", len(resp.Courses))
	}
	if resp.HasPrev || resp.HasNext {
		t.Errorf("HasPrev/HasNext = %v/%v, want false/false", resp.HasPrev, resp.HasNext)
	}
}

func TestServeListJSON_SubjectFilter(t *testing.T) {
	h, store, fx := newTestHandler(t)
	ctx := context.Background()

	fx.CreateCourse(ctx, 201, "Algebra I")
	fx.CreateCourse(ctx, 202, "World History")
	if err := store.SetSubjectCategory(ctx, 201, "math"); err != nil {
		t.Fatalf("SetSubjectCategory: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/courses/api/list?subject=math", nil)
	rec := httptest.NewRecorder()
	h.ServeListJSON(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp courses.ListResponse
	testutil.DecodeJSON(t, rec, &resp)

	if resp.Total != 1 {
		t.Fatalf("Total = %d, want 1", resp.Total)
	}
	if resp.Courses[0].CourseID != 201 {
		t.Errorf("CourseID = %d, want 201", resp.Courses[0].CourseID)
	}
	if resp.Courses[0].SubjectCategory != "math" {
		t.Errorf("SubjectCategory = %q, want %q", resp.Courses[0].SubjectCategory, "math")
	}
}

func TestServeListJSON_HiddenCourses(t *testing.T) {
	h, store, fx := newTestHandler(t)
	ctx := context.Background()

	fx.CreateCourse(ctx, 211, "Algebra I")
	hidden := fx.CreateCourse(ctx, 212, "Retired Course")
	hidden.Visible = false
	if err := store.Replace(ctx, hidden); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/courses/api/list", nil)
	rec := httptest.NewRecorder()
	h.ServeListJSON(rec, req)

	var resp courses.ListResponse
	testutil.DecodeJSON(t, rec, &resp)

	if resp.Total != 1 {
		t.Fatalf("Total = %d, want 1", resp.Total)
	}
	if resp.Courses[0].CourseID != 211 {
		t.Errorf("CourseID = %d, want 211", resp.Courses[0].CourseID)
	}

	req = httptest.NewRequest(http.MethodGet, "/courses/api/list?all=1", nil)
	rec = httptest.NewRecorder()
	h.ServeListJSON(rec, req)

	testutil.DecodeJSON(t, rec, &resp)
	if resp.Total != 2 {
		t.Errorf("Total with all=1 = %d, want 2", resp.Total)
	}
}

func TestServeAssignSubject(t *testing.T) {
	h, store, fx := newTestHandler(t)
	ctx := context.Background()

	fx.CreateCourse(ctx, 301, "Chemistry")

	form := url.Values{"subject": {"science"}}
	req := httptest.NewRequest(http.MethodPost, "/courses/301/subject", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = testutil.WithChiURLParam(req, "courseID", "301")
	rec := httptest.NewRecorder()
	h.ServeAssignSubject(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	c, err := store.GetByCourseID(ctx, 301)
	if err != nil {
		t.Fatalf("GetByCourseID: %v", err)
	}
	if c == nil {
		t.Fatal("course not found after assign")
	}
	if c.SubjectCategory != "science" {
		t.Errorf("SubjectCategory = %q, want %q", c.SubjectCategory, "science")
	}
}

func TestServeAssignSubject_UnknownCourse(t *testing.T) {
	h, _, _ := newTestHandler(t)

	form := url.Values{"subject": {"science"}}
	req := httptest.NewRequest(http.MethodPost, "/courses/999999/subject", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = testutil.WithChiURLParam(req, "courseID", "999999")
	rec := httptest.NewRecorder()
	h.ServeAssignSubject(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestServeAssignSubject_TouchesTimestamps(t *testing.T) {
	h, store, fx := newTestHandler(t)
	ctx := context.Background()

	fx.CreateCourse(ctx, 401, "Physics")
	before, err := store.GetByCourseID(ctx, 401)
	if err != nil || before == nil {
		t.Fatalf("GetByCourseID: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	form := url.Values{"subject": {"science"}}
	req := httptest.NewRequest(http.MethodPost, "/courses/401/subject", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = testutil.WithChiURLParam(req, "courseID", "401")
	rec := httptest.NewRecorder()
	h.ServeAssignSubject(rec, req)

	after, err := store.GetByCourseID(ctx, 401)
	if err != nil || after == nil {
		t.Fatalf("GetByCourseID: %v", err)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Errorf("UpdatedAt not advanced: before=%v after=%v", before.UpdatedAt, after.UpdatedAt)
	}
}
