// internal/app/features/courses/types.go
package courses

import (
	"time"

	coursestore "github.com/dalemusser/learnscope/internal/app/store/courses"
	"github.com/dalemusser/learnscope/internal/app/system/calendarfill"
	"github.com/dalemusser/learnscope/internal/app/system/paging"
	"github.com/dalemusser/learnscope/internal/app/system/viewdata"
)

// CourseVM is a mirrored course shaped for display and JSON.
type CourseVM struct {
	CourseID        int64  `json:"course_id"`
	CourseName      string `json:"course_name"`
	CategoryPath    string `json:"category_path"`
	Visible         bool   `json:"visible"`
	Active          bool   `json:"active"`
	StartDate       string `json:"start_date,omitempty"`
	EndDate         string `json:"end_date,omitempty"`
	SubjectCategory string `json:"subject_category,omitempty"`
	LevelCategory   string `json:"level_category,omitempty"`
	LastSynced      string `json:"last_synced"` // RFC 3339
}

func toVM(c coursestore.Course, now time.Time) CourseVM {
	vm := CourseVM{
		CourseID:        c.CourseID,
		CourseName:      c.CourseName,
		CategoryPath:    c.FullCategoryPath(),
		Visible:         c.Visible,
		Active:          c.IsActive(now),
		SubjectCategory: c.SubjectCategory,
		LevelCategory:   c.LevelCategory,
		LastSynced:      c.LastSynced.UTC().Format(time.RFC3339),
	}
	if c.StartDate != nil {
		vm.StartDate = c.StartDate.UTC().Format(calendarfill.DateFormat)
	}
	if c.EndDate != nil {
		vm.EndDate = c.EndDate.UTC().Format(calendarfill.DateFormat)
	}
	return vm
}

// ListResponse is the payload for GET /courses/api/list.
type ListResponse struct {
	Courses []CourseVM `json:"courses"`
	Total   int64      `json:"total"`
	HasPrev bool       `json:"has_prev"`
	HasNext bool       `json:"has_next"`
}

// listPageData is the view model for the course list page.
type listPageData struct {
	viewdata.BaseVM

	Courses []CourseVM
	Total   int64
	Subject string
	Range   paging.Range
	HasPrev bool
	HasNext bool
}

// detailPageData is the view model for the course detail page.
type detailPageData struct {
	viewdata.BaseVM

	Course CourseVM
}
