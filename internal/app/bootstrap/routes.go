// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	coursesfeature "github.com/dalemusser/learnscope/internal/app/features/courses"
	dashboardfeature "github.com/dalemusser/learnscope/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/learnscope/internal/app/features/errors"
	healthfeature "github.com/dalemusser/learnscope/internal/app/features/health"
	holidaysfeature "github.com/dalemusser/learnscope/internal/app/features/holidays"
	homefeature "github.com/dalemusser/learnscope/internal/app/features/home"
	activitystore "github.com/dalemusser/learnscope/internal/app/store/activity"
	coursestore "github.com/dalemusser/learnscope/internal/app/store/courses"
	holidaystore "github.com/dalemusser/learnscope/internal/app/store/holidays"
	moodlestore "github.com/dalemusser/learnscope/internal/app/store/moodle"
	"github.com/dalemusser/learnscope/internal/app/system/cache"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// LearnScope initializes the template engine and mounts feature routers for
// the landing page, dashboard, course catalog, holiday calendar, and health.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	// Validated in ValidateConfig; load cannot fail here.
	loc, err := time.LoadLocation(appCfg.Timezone)
	if err != nil {
		logger.Error("timezone load failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	courseStore := coursestore.New(db)
	activityStore := activitystore.New(db)
	holidayStore := holidaystore.New(db)

	var directory dashboardfeature.Directory
	if deps.MoodlePool != nil {
		directory = moodlestore.New(deps.MoodlePool)
	}

	dashCache := cache.New(deps.RedisClient, logger)

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.MoodlePool, deps.RedisClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Engagement dashboard
	dashboardHandler := dashboardfeature.NewHandler(
		courseStore, activityStore, holidayStore, directory, dashCache,
		dashboardfeature.Config{
			Location:        loc,
			SchoolStartHour: appCfg.SchoolStartHour,
			SchoolEndHour:   appCfg.SchoolEndHour,
			WindowDays:      appCfg.DailyWindowDays,
			TopStudents:     appCfg.TopStudents,
			CacheTTL:        appCfg.CacheTTL,
		},
		errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))

	// Course catalog mirrored from Moodle
	coursesHandler := coursesfeature.NewHandler(courseStore, errLog, logger)
	r.Mount("/courses", coursesfeature.Routes(coursesHandler))

	// National holiday calendar
	holidaysHandler := holidaysfeature.NewHandler(holidayStore, errLog, logger)
	r.Mount("/holidays", holidaysfeature.Routes(holidaysHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)

	return r, nil
}
