// internal/app/features/dashboard/page.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"

	"github.com/dalemusser/learnscope/internal/app/system/viewdata"
)

// pageData is the view model for the dashboard page shell. The charts
// themselves load from the JSON API endpoints.
type pageData struct {
	viewdata.BaseVM

	WindowDays int
	Timezone   string
}

// ServeDashboard renders the dashboard page.
// GET /dashboard
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		BaseVM:     viewdata.NewBaseVM(r, "Dashboard", "/"),
		WindowDays: h.Cfg.WindowDays,
		Timezone:   h.Cfg.Location.String(),
	}
	templates.Render(w, r, "dashboard_view", data)
}
