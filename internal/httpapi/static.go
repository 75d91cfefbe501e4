package httpapi

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var uiAssets embed.FS

// newStaticHandler serves the browser client under /ui/. The page itself is
// marked no-store so a restarted server never pairs it with stale scripts.
func newStaticHandler() http.Handler {
	root, err := fs.Sub(uiAssets, "static")
	if err != nil {
		return http.NotFoundHandler()
	}
	files := http.FileServer(http.FS(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "", "/", "index.html":
			w.Header().Set("Cache-Control", "no-store")
		}
		files.ServeHTTP(w, r)
	})
}
