// internal/app/features/dashboard/types.go
package dashboard

import (
	"github.com/dalemusser/learnscope/internal/app/system/calendarfill"
	"github.com/dalemusser/learnscope/internal/app/system/engagement"
)

// OverviewResponse is the payload for GET /dashboard/api/overview.
type OverviewResponse struct {
	TotalCourses     int64 `json:"total_courses"`
	ActiveCourses    int64 `json:"active_courses"`
	ActiveStudents   int64 `json:"active_students"`
	EnrolledStudents int64 `json:"enrolled_students"`
	TotalActivities  int64 `json:"total_activities"`
	ContentsUsed     int64 `json:"contents_used"`

	// Dense 7-day total-activity series for the overview sparkline.
	Sparkline []calendarfill.Point `json:"sparkline"`

	// Engagement classification derived from recent daily samples.
	Thresholds engagement.Thresholds `json:"thresholds"`
	TodayRatio float64               `json:"today_ratio"`
	TodayLevel engagement.Level      `json:"today_level"`
}

// DailyActivityRow is one day in the dense daily-activity series.
type DailyActivityRow struct {
	Date        string `json:"date"`
	Reading     int64  `json:"reading"`
	Annotation  int64  `json:"annotation"`
	Quiz        int64  `json:"quiz"`
	Total       int64  `json:"total"`
	ActiveUsers int64  `json:"active_users"`
}

// DailyActivityResponse is the payload for GET /dashboard/api/daily-activity.
type DailyActivityResponse struct {
	WindowDays int                `json:"window_days"`
	Days       []DailyActivityRow `json:"days"`
}

// StudentHighlight is one row of the most-active-students table.
type StudentHighlight struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Total    int64  `json:"total"`
	LastSeen string `json:"last_seen,omitempty"` // RFC 3339
	Status   string `json:"status"`              // active, absent, not_enrolled, unknown
}

// StudentHighlightsResponse is the payload for GET /dashboard/api/student-highlights.
type StudentHighlightsResponse struct {
	Students []StudentHighlight `json:"students"`
}

// HeatmapCell is one (date, hour) bucket in local time.
type HeatmapCell struct {
	Date       string `json:"date"`
	Weekday    string `json:"weekday"`
	Hour       int    `json:"hour"`
	Activities int64  `json:"activities"`
	Students   int64  `json:"students"`

	// Ratio is activities per distinct student in the bucket; Level is
	// its engagement classification against the window's thresholds.
	Ratio float64          `json:"ratio"`
	Level engagement.Level `json:"level"`

	SchoolTime bool `json:"school_time"`
}

// HeatmapResponse is the payload for GET /dashboard/api/hourly-heatmap.
type HeatmapResponse struct {
	Timezone string        `json:"timezone"`
	Cells    []HeatmapCell `json:"cells"`
}

// TimeSpentBucket is one bar of the time-spent histogram.
type TimeSpentBucket struct {
	Label    string `json:"label"`
	Students int64  `json:"students"`
}

// TimeSpentResponse is the payload for GET /dashboard/api/time-spent.
type TimeSpentResponse struct {
	WindowDays int               `json:"window_days"`
	Buckets    []TimeSpentBucket `json:"buckets"`
	TotalHours float64           `json:"total_hours"`
}
