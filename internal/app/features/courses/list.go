// internal/app/features/courses/list.go
package courses

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"

	coursestore "github.com/dalemusser/learnscope/internal/app/store/courses"
	"github.com/dalemusser/learnscope/internal/app/system/paging"
	"github.com/dalemusser/learnscope/internal/app/system/timeouts"
	"github.com/dalemusser/learnscope/internal/app/system/viewdata"
)

// ServeList renders the paged course list.
// GET /courses?start=N&subject=math&all=1
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	subject := query.Get(r, "subject")
	includeHidden := query.Get(r, "all") == "1"

	rows, total, res, err := h.fetchPage(ctx, start, subject, includeHidden)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "course list failed", err, "A database error occurred.", "/")
		return
	}

	now := time.Now()
	vms := make([]CourseVM, 0, len(rows))
	for _, c := range rows {
		vms = append(vms, toVM(c, now))
	}

	data := listPageData{
		BaseVM:  viewdata.NewBaseVM(r, "Courses", "/"),
		Courses: vms,
		Total:   total,
		Subject: subject,
		Range:   paging.ComputeRange(start, len(vms)),
		HasPrev: res.HasPrev,
		HasNext: res.HasNext,
	}
	templates.Render(w, r, "courses_list", data)
}

// ServeListJSON returns the same page as JSON.
// GET /courses/api/list?start=N&subject=math&all=1
func (h *Handler) ServeListJSON(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := paging.ParseStart(r)
	subject := query.Get(r, "subject")
	includeHidden := query.Get(r, "all") == "1"

	rows, total, res, err := h.fetchPage(ctx, start, subject, includeHidden)
	if err != nil {
		h.ErrLog.LogJSONError(w, r, http.StatusInternalServerError, "course list failed", err, "Could not load courses.")
		return
	}

	now := time.Now()
	resp := ListResponse{
		Courses: make([]CourseVM, 0, len(rows)),
		Total:   total,
		HasPrev: res.HasPrev,
		HasNext: res.HasNext,
	}
	for _, c := range rows {
		resp.Courses = append(resp.Courses, toVM(c, now))
	}
	writeJSON(w, resp)
}

// fetchPage loads one page of courses plus the full match count, using
// look-ahead pagination. Hidden courses are excluded unless includeHidden
// is set.
func (h *Handler) fetchPage(ctx context.Context, start int, subject string, includeHidden bool) ([]coursestore.Course, int64, paging.Result, error) {
	filter := coursestore.ListFilter{VisibleOnly: !includeHidden, SubjectCategory: subject}

	rows, err := h.Courses.List(ctx, filter, paging.LimitPlusOne(), int64(start-1))
	if err != nil {
		return nil, 0, paging.Result{}, err
	}
	res := paging.TrimPage(&rows, start)

	total, err := h.Courses.Count(ctx, filter)
	if err != nil {
		return nil, 0, paging.Result{}, err
	}
	return rows, total, res, nil
}
