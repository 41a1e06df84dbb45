// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
)

// RenderNotFound shows a friendly "not found" page with a message.
// If backURL is empty, it defaults to the site root.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = "/"
	}
	if msg == "" {
		msg = "The page you requested does not exist."
	}

	w.WriteHeader(http.StatusNotFound)
	data := pageData{
		Title:   "Page not found",
		Message: msg,
		BackURL: backURL,
	}
	templates.Render(w, r, "error_page", data)
}

// RenderServerError shows a friendly "something went wrong" page.
// If backURL is empty, it defaults to the site root.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = "/"
	}
	if msg == "" {
		msg = "Something went wrong. Please try again."
	}

	w.WriteHeader(http.StatusInternalServerError)
	data := pageData{
		Title:   "Something went wrong",
		Message: msg,
		BackURL: backURL,
	}
	templates.Render(w, r, "error_page", data)
}
