package main

import (
	"embed"
	"io/fs"

	"github.com/lazypower/flashdeck/internal/server"
)

// The ui directory holds the study SPA shell; a full frontend build can
// replace its contents.
//
//go:embed all:ui
var uiDist embed.FS

func init() {
	sub, err := fs.Sub(uiDist, "ui")
	if err != nil {
		return
	}
	server.SetUI(sub)
}
