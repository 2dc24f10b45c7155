package gateway

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFiles embed.FS

// PageHandler serves the bundled display page.
func PageHandler() http.Handler {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// static is embedded at build time
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
