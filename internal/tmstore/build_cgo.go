//go:build sqlite_cgo
// +build sqlite_cgo

package tmstore

// This file is compiled when building with CGO and the sqlite_cgo tag.
// It uses the C SQLite implementation for faster indexing of very large
// translation stores.
//
// Build command:
//   CGO_ENABLED=1 go build -tags "sqlite_cgo,fts5" ./...
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)
