// Package templates holds the page-level templ components of the web layer.
package templates

import (
	"github.com/JonMunkholm/structtable/internal/web/middleware"
	"github.com/a-h/templ"
)

// HTMXScript is the htmx build the pages load.
const HTMXScript = middleware.HTMXSource + "/htmx.org@2.0.4/dist/htmx.min.js"

// Section is one mounted table on a page.
type Section struct {
	Name string
	Path string

	// SelectAll and Clear show the toolbar buttons of the same name.
	SelectAll bool
	Clear     bool

	Table templ.Component
}
