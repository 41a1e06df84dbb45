// internal/app/features/courses/detail.go
package courses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	uierrors "github.com/dalemusser/learnscope/internal/app/features/errors"
	"github.com/dalemusser/learnscope/internal/app/system/timeouts"
	"github.com/dalemusser/learnscope/internal/app/system/viewdata"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// courseIDParam parses the {courseID} URL parameter.
func courseIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "courseID"), 10, 64)
	return id, err == nil && id > 0
}

// ServeDetail renders one course.
// GET /courses/{courseID}
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	courseID, ok := courseIDParam(r)
	if !ok {
		uierrors.RenderNotFound(w, r, "No such course.", "/courses")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	course, err := h.Courses.GetByCourseID(ctx, courseID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "course lookup failed", err, "A database error occurred.", "/courses")
		return
	}
	if course == nil {
		uierrors.RenderNotFound(w, r, "No such course.", "/courses")
		return
	}

	data := detailPageData{
		BaseVM: viewdata.NewBaseVM(r, course.CourseName, "/courses"),
		Course: toVM(*course, time.Now()),
	}
	templates.Render(w, r, "courses_detail", data)
}

// ServeAssignSubject stores the locally-owned subject classification of
// a mirrored course. Sync never touches this field.
// POST /courses/{courseID}/subject with form value "subject"
func (h *Handler) ServeAssignSubject(w http.ResponseWriter, r *http.Request) {
	h.assignCategory(w, r, "subject", h.Courses.SetSubjectCategory)
}

// ServeAssignLevel stores the locally-owned level classification.
// POST /courses/{courseID}/level with form value "level"
func (h *Handler) ServeAssignLevel(w http.ResponseWriter, r *http.Request) {
	h.assignCategory(w, r, "level", h.Courses.SetLevelCategory)
}

func (h *Handler) assignCategory(w http.ResponseWriter, r *http.Request, field string, set func(context.Context, int64, string) error) {
	courseID, ok := courseIDParam(r)
	if !ok {
		uierrors.WriteJSONError(w, http.StatusNotFound, "no such course")
		return
	}

	if err := r.ParseForm(); err != nil {
		uierrors.WriteJSONError(w, http.StatusBadRequest, "malformed form data")
		return
	}
	value := strings.TrimSpace(r.PostFormValue(field))
	if len(value) > 100 {
		uierrors.WriteJSONError(w, http.StatusBadRequest, field+" is too long")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := set(ctx, courseID, value); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.WriteJSONError(w, http.StatusNotFound, "no such course")
			return
		}
		h.ErrLog.LogJSONError(w, r, http.StatusInternalServerError, field+" assignment failed", err, "Could not save the "+field+".")
		return
	}

	h.Log.Info("course category assigned",
		zap.Int64("course_id", courseID),
		zap.String(field, value))

	writeJSON(w, map[string]any{"ok": true, "course_id": courseID, field: value})
}
