// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"

	uierrors "github.com/dalemusser/learnscope/internal/app/features/errors"
	"github.com/dalemusser/learnscope/internal/app/store/activity"
	"github.com/dalemusser/learnscope/internal/app/store/courses"
	"github.com/dalemusser/learnscope/internal/app/store/holidays"
	"github.com/dalemusser/learnscope/internal/app/store/moodle"
	"github.com/dalemusser/learnscope/internal/app/system/cache"
)

// Directory is the slice of Moodle the dashboard reads for student
// names and enrolment status. Nil disables those columns.
type Directory interface {
	StudentCount(ctx context.Context) (int64, error)
	EnrolledStudentIDs(ctx context.Context) (map[string]bool, error)
	GetUsers(ctx context.Context, userIDs []int64) (map[int64]moodle.User, error)
}

// Config carries the dashboard tuning knobs from app configuration.
type Config struct {
	Location        *time.Location
	SchoolStartHour int
	SchoolEndHour   int
	WindowDays      int
	TopStudents     int
	CacheTTL        time.Duration
}

// Handler is the shared dependency container for the dashboard feature.
type Handler struct {
	Courses   *courses.Store
	Activity  *activity.Store
	Holidays  *holidays.Store
	Directory Directory
	Cache     *cache.Cache
	Cfg       Config
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
}

// NewHandler constructs a dashboard Handler.
func NewHandler(courseStore *courses.Store, activityStore *activity.Store, holidayStore *holidays.Store, dir Directory, c *cache.Cache, cfg Config, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.WindowDays < 1 {
		cfg.WindowDays = 31
	}
	if cfg.TopStudents < 1 {
		cfg.TopStudents = 10
	}
	return &Handler{
		Courses:   courseStore,
		Activity:  activityStore,
		Holidays:  holidayStore,
		Directory: dir,
		Cache:     c,
		Cfg:       cfg,
		Log:       logger,
		ErrLog:    errLog,
	}
}

// windowStart returns the UTC start of the dense daily window: the
// first instant of the day windowDays-1 days before today.
func (h *Handler) windowStart(now time.Time) time.Time {
	day := now.In(h.Cfg.Location).AddDate(0, 0, -(h.Cfg.WindowDays - 1))
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, h.Cfg.Location).UTC()
}
