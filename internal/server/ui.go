package server

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// uiFS holds the embedded study UI. Set via SetUI before creating the server.
var uiFS fs.FS

// SetUI sets the embedded filesystem for serving the study UI.
func SetUI(fsys fs.FS) {
	uiFS = fsys
}

// spaHandler serves static files from the embedded FS. Paths that don't
// name a file fall back to index.html so client-side routes like
// /sets/<id>/study load the app. Unknown /api paths never reach here.
func spaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if uiFS == nil {
			http.Error(w, "study UI not embedded in this build", http.StatusNotFound)
			return
		}

		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" {
			name = "index.html"
		}

		if st, err := fs.Stat(uiFS, name); err != nil || st.IsDir() {
			name = "index.html"
		}

		http.ServeFileFS(w, r, uiFS, name)
	}
}
