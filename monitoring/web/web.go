// Package web holds the monitor page: one HTML shell, a stylesheet, and a
// script per panel, all embedded in the binary.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
)

// EnvAssetDir names a directory served in place of the embedded page, so the
// page can be edited without rebuilding ps2sim.
const EnvAssetDir = "PS2SIM_MONITOR_ASSETS"

//go:embed dist
var dist embed.FS

// Assets returns the files the monitor serves under "/".
func Assets() http.FileSystem {
	if dir, ok := os.LookupEnv(EnvAssetDir); ok && dir != "" {
		return http.Dir(dir)
	}

	page, err := fs.Sub(dist, "dist")
	if err != nil {
		panic(err)
	}

	return http.FS(page)
}
