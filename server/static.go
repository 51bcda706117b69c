package server

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed static/*
var staticFS embed.FS

// RegisterStatic отдаёт встроенную статику (css) по указанному префиксу.
func (a *App) RegisterStatic(prefix string) {
	if prefix == "" {
		prefix = "/static/"
	}
	slash := strings.TrimSuffix(prefix, "/") + "/"

	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// без статики в бинаре лучше упасть сразу, чем раздавать 404
		panic(err)
	}
	fileServer := http.StripPrefix(slash, http.FileServer(http.FS(sub)))
	a.Router.PathPrefix(slash).Handler(fileServer)
}
