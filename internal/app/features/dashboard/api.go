// internal/app/features/dashboard/api.go
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/dalemusser/learnscope/internal/app/store/courses"
	"github.com/dalemusser/learnscope/internal/app/system/calendarfill"
	"github.com/dalemusser/learnscope/internal/app/system/engagement"
	"github.com/dalemusser/learnscope/internal/app/system/schooltime"
	"github.com/dalemusser/learnscope/internal/app/system/timeouts"
)

// Cache keys for dashboard aggregates.
const (
	cacheKeyOverview   = "dashboard:overview"
	cacheKeyDaily      = "dashboard:daily_activity"
	cacheKeyHighlights = "dashboard:student_highlights"
	cacheKeyHeatmap    = "dashboard:hourly_heatmap"
	cacheKeyTimeSpent  = "dashboard:time_spent"
)

// Students are considered absent after a week with no events.
const absenceThreshold = 7 * 24 * time.Hour

// A gap of half an hour or more between events ends a reading session.
const sessionIdleGap = 30 * time.Minute

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// ServeOverview handles GET /dashboard/api/overview.
func (h *Handler) ServeOverview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var cached OverviewResponse
	if h.Cache.GetJSON(ctx, cacheKeyOverview, &cached) {
		writeJSON(w, cached)
		return
	}

	resp, err := h.buildOverview(ctx, time.Now())
	if err != nil {
		h.ErrLog.LogJSONError(w, r, http.StatusInternalServerError, "dashboard overview failed", err, "Could not load overview data.")
		return
	}

	h.Cache.SetJSON(ctx, cacheKeyOverview, resp, h.Cfg.CacheTTL)
	writeJSON(w, resp)
}

func (h *Handler) buildOverview(ctx context.Context, now time.Time) (OverviewResponse, error) {
	var resp OverviewResponse

	total, err := h.Courses.Count(ctx, courses.ListFilter{})
	if err != nil {
		return resp, fmt.Errorf("count courses: %w", err)
	}
	resp.TotalCourses = total

	all, err := h.Courses.List(ctx, courses.ListFilter{}, 0, 0)
	if err != nil {
		return resp, fmt.Errorf("list courses: %w", err)
	}
	for _, c := range all {
		if c.IsActive(now) {
			resp.ActiveCourses++
		}
	}

	resp.ActiveStudents, err = h.Activity.DistinctActiveStudents(ctx)
	if err != nil {
		return resp, fmt.Errorf("count active students: %w", err)
	}
	resp.ContentsUsed, err = h.Activity.DistinctContents(ctx)
	if err != nil {
		return resp, fmt.Errorf("count contents: %w", err)
	}

	since := h.windowStart(now)
	resp.TotalActivities, err = h.Activity.CountSince(ctx, since)
	if err != nil {
		return resp, fmt.Errorf("count activities: %w", err)
	}

	if h.Directory != nil {
		resp.EnrolledStudents, err = h.Directory.StudentCount(ctx)
		if err != nil {
			// Moodle being down degrades the overview rather than
			// failing it; the mirror-backed numbers still render.
			h.Log.Warn("moodle student count unavailable", zap.Error(err))
			resp.EnrolledStudents = 0
		}
	}

	daily, err := h.Activity.DailyCounts(ctx, since, h.Cfg.Location)
	if err != nil {
		return resp, fmt.Errorf("daily counts: %w", err)
	}
	samples := make([]engagement.Sample, 0, len(daily))
	points := make([]calendarfill.Point, 0, len(daily))
	today := now.In(h.Cfg.Location).Format(calendarfill.DateFormat)
	for _, d := range daily {
		samples = append(samples, engagement.Sample{Activities: d.TotalActivities, Students: d.ActiveUsers})
		points = append(points, calendarfill.Point{Date: d.Date, Value: d.TotalActivities})
		if d.Date == today && d.ActiveUsers > 0 {
			resp.TodayRatio = float64(d.TotalActivities) / float64(d.ActiveUsers)
		}
	}
	resp.Sparkline = calendarfill.Series(points, 7, h.Cfg.Location)
	resp.Thresholds = engagement.Compute(samples)
	resp.TodayLevel = resp.Thresholds.Classify(resp.TodayRatio)

	return resp, nil
}

// ServeDailyActivity handles GET /dashboard/api/daily-activity.
// The series is dense: every day of the window appears, zero-filled
// when nothing happened.
func (h *Handler) ServeDailyActivity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var cached DailyActivityResponse
	if h.Cache.GetJSON(ctx, cacheKeyDaily, &cached) {
		writeJSON(w, cached)
		return
	}

	resp, err := h.buildDailyActivity(ctx, time.Now())
	if err != nil {
		h.ErrLog.LogJSONError(w, r, http.StatusInternalServerError, "dashboard daily activity failed", err, "Could not load daily activity.")
		return
	}

	h.Cache.SetJSON(ctx, cacheKeyDaily, resp, h.Cfg.CacheTTL)
	writeJSON(w, resp)
}

func (h *Handler) buildDailyActivity(ctx context.Context, now time.Time) (DailyActivityResponse, error) {
	since := h.windowStart(now)

	byCategory, err := h.Activity.DailyCategoryCounts(ctx, since, h.Cfg.Location)
	if err != nil {
		return DailyActivityResponse{}, fmt.Errorf("daily category counts: %w", err)
	}
	daily, err := h.Activity.DailyCounts(ctx, since, h.Cfg.Location)
	if err != nil {
		return DailyActivityResponse{}, fmt.Errorf("daily counts: %w", err)
	}

	records := make([]calendarfill.Row, 0, len(byCategory))
	for date, cats := range byCategory {
		fields := map[string]int64{
			"reading":    cats["reading"],
			"annotation": cats["annotation"],
			"quiz":       cats["quiz"],
		}
		records = append(records, calendarfill.Row{Date: date, Fields: fields})
	}
	usersByDate := make(map[string]int64, len(daily))
	for _, d := range daily {
		usersByDate[d.Date] = d.ActiveUsers
	}

	dense := calendarfill.Table(records, h.Cfg.WindowDays, []string{"reading", "annotation", "quiz"}, h.Cfg.Location)

	resp := DailyActivityResponse{WindowDays: h.Cfg.WindowDays}
	for _, row := range dense {
		out := DailyActivityRow{
			Date:        row.Date,
			Reading:     row.Fields["reading"],
			Annotation:  row.Fields["annotation"],
			Quiz:        row.Fields["quiz"],
			ActiveUsers: usersByDate[row.Date],
		}
		out.Total = out.Reading + out.Annotation + out.Quiz
		resp.Days = append(resp.Days, out)
	}
	return resp, nil
}

// ServeStudentHighlights handles GET /dashboard/api/student-highlights.
func (h *Handler) ServeStudentHighlights(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var cached StudentHighlightsResponse
	if h.Cache.GetJSON(ctx, cacheKeyHighlights, &cached) {
		writeJSON(w, cached)
		return
	}

	resp, err := h.buildStudentHighlights(ctx, time.Now())
	if err != nil {
		h.ErrLog.LogJSONError(w, r, http.StatusInternalServerError, "dashboard student highlights failed", err, "Could not load student highlights.")
		return
	}

	h.Cache.SetJSON(ctx, cacheKeyHighlights, resp, h.Cfg.CacheTTL)
	writeJSON(w, resp)
}

func (h *Handler) buildStudentHighlights(ctx context.Context, now time.Time) (StudentHighlightsResponse, error) {
	top, err := h.Activity.TopStudents(ctx, int64(h.Cfg.TopStudents))
	if err != nil {
		return StudentHighlightsResponse{}, fmt.Errorf("top students: %w", err)
	}

	var enrolled map[string]bool
	var names map[int64]string
	if h.Directory != nil {
		enrolled, err = h.Directory.EnrolledStudentIDs(ctx)
		if err != nil {
			h.Log.Warn("moodle enrolments unavailable", zap.Error(err))
			enrolled = nil
		}

		ids := make([]int64, 0, len(top))
		for _, s := range top {
			if id, err := strconv.ParseInt(s.UserID, 10, 64); err == nil {
				ids = append(ids, id)
			}
		}
		if users, err := h.Directory.GetUsers(ctx, ids); err == nil {
			names = make(map[int64]string, len(users))
			for id, u := range users {
				names[id] = u.FirstName + " " + u.LastName
			}
		} else {
			h.Log.Warn("moodle user lookup unavailable", zap.Error(err))
		}
	}

	resp := StudentHighlightsResponse{Students: make([]StudentHighlight, 0, len(top))}
	for _, s := range top {
		row := StudentHighlight{
			UserID: s.UserID,
			Name:   "Student " + s.UserID,
			Total:  s.Total,
			Status: "unknown",
		}
		if id, err := strconv.ParseInt(s.UserID, 10, 64); err == nil {
			if name, ok := names[id]; ok {
				row.Name = name
			}
		}

		last, err := h.Activity.LastEventTime(ctx, s.UserID)
		if err != nil {
			return StudentHighlightsResponse{}, fmt.Errorf("last event for %s: %w", s.UserID, err)
		}
		if last != nil {
			row.LastSeen = last.UTC().Format(time.RFC3339)
		}

		if enrolled != nil {
			switch {
			case !enrolled[s.UserID]:
				row.Status = "not_enrolled"
			case last != nil && now.Sub(*last) <= absenceThreshold:
				row.Status = "active"
			default:
				row.Status = "absent"
			}
		}
		resp.Students = append(resp.Students, row)
	}
	return resp, nil
}

// ServeHourlyHeatmap handles GET /dashboard/api/hourly-heatmap.
// Cells are reported in the configured school timezone with a flag
// marking school-time buckets (school day, inside school hours).
func (h *Handler) ServeHourlyHeatmap(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var cached HeatmapResponse
	if h.Cache.GetJSON(ctx, cacheKeyHeatmap, &cached) {
		writeJSON(w, cached)
		return
	}

	resp, err := h.buildHourlyHeatmap(ctx, time.Now())
	if err != nil {
		h.ErrLog.LogJSONError(w, r, http.StatusInternalServerError, "dashboard heatmap failed", err, "Could not load the activity heatmap.")
		return
	}

	h.Cache.SetJSON(ctx, cacheKeyHeatmap, resp, h.Cfg.CacheTTL)
	writeJSON(w, resp)
}

func (h *Handler) buildHourlyHeatmap(ctx context.Context, now time.Time) (HeatmapResponse, error) {
	since := h.windowStart(now)

	cells, err := h.Activity.HeatmapCells(ctx, since, h.Cfg.Location)
	if err != nil {
		return HeatmapResponse{}, fmt.Errorf("heatmap cells: %w", err)
	}

	daily, err := h.Activity.DailyCounts(ctx, since, h.Cfg.Location)
	if err != nil {
		return HeatmapResponse{}, fmt.Errorf("daily counts: %w", err)
	}
	samples := make([]engagement.Sample, 0, len(daily))
	for _, d := range daily {
		samples = append(samples, engagement.Sample{Activities: d.TotalActivities, Students: d.ActiveUsers})
	}
	thresholds := engagement.Compute(samples)

	from := since.In(h.Cfg.Location).Format(calendarfill.DateFormat)
	to := now.In(h.Cfg.Location).Format(calendarfill.DateFormat)
	holidaySet, err := h.Holidays.MapRange(ctx, from, to)
	if err != nil {
		return HeatmapResponse{}, fmt.Errorf("holiday range: %w", err)
	}
	classifier := schooltime.New(h.Cfg.Location, h.Cfg.SchoolStartHour, h.Cfg.SchoolEndHour, holidaySet)

	// Cells arrive already bucketed by wall-clock date and hour in the
	// configured timezone, so each (date, hour) pair appears once.
	resp := HeatmapResponse{Timezone: h.Cfg.Location.String()}
	resp.Cells = make([]HeatmapCell, 0, len(cells))
	for _, c := range cells {
		day, err := time.ParseInLocation(calendarfill.DateFormat, c.Date, h.Cfg.Location)
		if err != nil {
			continue
		}
		local := time.Date(day.Year(), day.Month(), day.Day(), c.Hour, 0, 0, 0, h.Cfg.Location)

		cell := HeatmapCell{
			Date:       c.Date,
			Weekday:    local.Weekday().String(),
			Hour:       c.Hour,
			SchoolTime: classifier.IsSchoolTime(local),
			Activities: c.Activities,
			Students:   c.Students,
		}
		if cell.Students > 0 {
			cell.Ratio = float64(cell.Activities) / float64(cell.Students)
		}
		cell.Level = thresholds.Classify(cell.Ratio)
		resp.Cells = append(resp.Cells, cell)
	}
	sort.Slice(resp.Cells, func(i, j int) bool {
		if resp.Cells[i].Date != resp.Cells[j].Date {
			return resp.Cells[i].Date < resp.Cells[j].Date
		}
		return resp.Cells[i].Hour < resp.Cells[j].Hour
	})
	return resp, nil
}

// timeSpentBuckets are the histogram bar boundaries in hours.
var timeSpentBuckets = []struct {
	label string
	max   float64
}{
	{"under 1h", 1},
	{"1-2h", 2},
	{"2-5h", 5},
	{"5-10h", 10},
	{"over 10h", 0}, // catch-all
}

// ServeTimeSpent handles GET /dashboard/api/time-spent.
func (h *Handler) ServeTimeSpent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	var cached TimeSpentResponse
	if h.Cache.GetJSON(ctx, cacheKeyTimeSpent, &cached) {
		writeJSON(w, cached)
		return
	}

	resp, err := h.buildTimeSpent(ctx, time.Now())
	if err != nil {
		h.ErrLog.LogJSONError(w, r, http.StatusInternalServerError, "dashboard time spent failed", err, "Could not load time-spent data.")
		return
	}

	h.Cache.SetJSON(ctx, cacheKeyTimeSpent, resp, h.Cfg.CacheTTL)
	writeJSON(w, resp)
}

func (h *Handler) buildTimeSpent(ctx context.Context, now time.Time) (TimeSpentResponse, error) {
	since := h.windowStart(now)

	hours, err := h.Activity.TimeSpentHours(ctx, since, sessionIdleGap)
	if err != nil {
		return TimeSpentResponse{}, fmt.Errorf("time spent: %w", err)
	}

	resp := TimeSpentResponse{WindowDays: h.Cfg.WindowDays}
	resp.Buckets = make([]TimeSpentBucket, len(timeSpentBuckets))
	for i, b := range timeSpentBuckets {
		resp.Buckets[i].Label = b.label
	}

	for _, spent := range hours {
		resp.TotalHours += spent
		placed := false
		for i, b := range timeSpentBuckets {
			if b.max > 0 && spent < b.max {
				resp.Buckets[i].Students++
				placed = true
				break
			}
		}
		if !placed {
			resp.Buckets[len(resp.Buckets)-1].Students++
		}
	}
	return resp, nil
}
