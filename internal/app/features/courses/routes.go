// internal/app/features/courses/routes.go
package courses

import "github.com/go-chi/chi/v5"

// Routes returns the router for the courses feature, mounted at
// "/courses" by the top-level router.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/api/list", h.ServeListJSON)
	r.Get("/{courseID}", h.ServeDetail)
	r.Post("/{courseID}/subject", h.ServeAssignSubject)
	r.Post("/{courseID}/level", h.ServeAssignLevel)

	return r
}
