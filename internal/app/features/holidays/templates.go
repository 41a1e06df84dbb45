// internal/app/features/holidays/templates.go
package holidays

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "holidays",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
