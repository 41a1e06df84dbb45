// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging level, request limits). AppConfig is everything specific to
// LearnScope: backend connection strings, the Moodle source database,
// school-time boundaries, and dashboard tuning knobs.
type AppConfig struct {
	// MongoDB connection configuration (course mirror + analytics data)
	MongoURI      string
	MongoDatabase string

	// External Moodle Postgres, read-only source of truth for courses
	// and enrolments.
	MoodleDSN string

	// Redis cache for dashboard aggregates. Blank address disables
	// caching entirely.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// School-time classification
	Timezone        string // IANA name, e.g. "Asia/Tokyo"
	SchoolStartHour int    // inclusive
	SchoolEndHour   int    // exclusive

	// Dashboard windows
	DailyWindowDays int // dense daily series length
	TopStudents     int // rows in the student highlights table

	// Holiday source endpoint (overridable for testing)
	HolidayAPIBaseURL string
}
