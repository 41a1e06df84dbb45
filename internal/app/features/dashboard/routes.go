// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard feature under whatever mount point
// the top-level router chooses (e.g., "/dashboard").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Final paths are /dashboard and /dashboard/api/... when mounted
	// at "/dashboard".
	r.Get("/", h.ServeDashboard)

	r.Route("/api", func(api chi.Router) {
		api.Get("/overview", h.ServeOverview)
		api.Get("/daily-activity", h.ServeDailyActivity)
		api.Get("/student-highlights", h.ServeStudentHighlights)
		api.Get("/hourly-heatmap", h.ServeHourlyHeatmap)
		api.Get("/time-spent", h.ServeTimeSpent)
	})

	return r
}
