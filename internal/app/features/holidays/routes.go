// internal/app/features/holidays/routes.go
package holidays

import "github.com/go-chi/chi/v5"

// Routes mounts the holidays feature endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/api/{year}", h.ServeYearJSON)
	return r
}
